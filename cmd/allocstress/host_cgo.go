//go:build cgo && !windows

package main

import (
	"unsafe"

	"github.com/gomlx/alignalloc"
	"github.com/gomlx/alignalloc/callbacks"
	"github.com/gomlx/alignalloc/scope"
)

func init() {
	newCHost = func(instance *alignalloc.Instance) (host, error) {
		table, err := instance.CTable()
		if err != nil {
			return nil, err
		}
		if table == nil {
			return nil, errDisabled
		}
		return &cHost{table}, nil
	}
}

// cHost calls the allocator through the C function pointers of a callbacks.CTable, as a native host would.
type cHost struct {
	*callbacks.CTable
}

func (h *cHost) Name() string { return "C table" }

func (h *cHost) Allocate(size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return h.CallAllocate(size, alignment, s)
}

func (h *cHost) Reallocate(original unsafe.Pointer, size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return h.CallReallocate(original, size, alignment, s)
}

func (h *cHost) Free(original unsafe.Pointer) {
	h.CallFree(original)
}

func (h *cHost) InternalAllocate(size uintptr, internalType scope.InternalType, s scope.Scope) {
	h.CallInternalAllocate(size, internalType, s)
}

func (h *cHost) InternalFree(size uintptr, internalType scope.InternalType, s scope.Scope) {
	h.CallInternalFree(size, internalType, s)
}

func (h *cHost) Close() {
	h.Destroy()
}
