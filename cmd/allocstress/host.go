package main

import (
	"unsafe"

	"github.com/gomlx/alignalloc"
	"github.com/gomlx/alignalloc/callbacks"
	"github.com/gomlx/alignalloc/scope"
	"github.com/pkg/errors"
)

// host plays the host runtime: it only reaches the allocator through a callbacks table.
type host interface {
	Name() string
	Allocate(size, alignment uintptr, s scope.Scope) unsafe.Pointer
	Reallocate(original unsafe.Pointer, size, alignment uintptr, s scope.Scope) unsafe.Pointer
	Free(original unsafe.Pointer)
	InternalAllocate(size uintptr, internalType scope.InternalType, s scope.Scope)
	InternalFree(size uintptr, internalType scope.InternalType, s scope.Scope)
	Close()
}

var errDisabled = errors.Errorf("allocation callbacks are disabled (by %s or by the build tag alignalloc_hostdefault)",
	alignalloc.DisableEnv)

// newCHost is set by host_cgo.go when cgo is available.
var newCHost func(instance *alignalloc.Instance) (host, error)

func newHost(instance *alignalloc.Instance, useCTable bool) (host, error) {
	if useCTable {
		if newCHost == nil {
			return nil, errors.New("-ctable requires a build with cgo enabled")
		}
		return newCHost(instance)
	}
	table := instance.Table()
	if table == nil {
		return nil, errDisabled
	}
	return &goHost{table}, nil
}

// goHost calls the allocator through a Go callbacks.Table.
type goHost struct {
	table *callbacks.Table
}

func (h *goHost) Name() string { return "Go table" }

func (h *goHost) Allocate(size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return h.table.Allocation(h.table.UserData, size, alignment, s)
}

func (h *goHost) Reallocate(original unsafe.Pointer, size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return h.table.Reallocation(h.table.UserData, original, size, alignment, s)
}

func (h *goHost) Free(original unsafe.Pointer) {
	h.table.Free(h.table.UserData, original)
}

func (h *goHost) InternalAllocate(size uintptr, internalType scope.InternalType, s scope.Scope) {
	h.table.InternalAllocation(h.table.UserData, size, internalType, s)
}

func (h *goHost) InternalFree(size uintptr, internalType scope.InternalType, s scope.Scope) {
	h.table.InternalFree(h.table.UserData, size, internalType, s)
}

func (h *goHost) Close() {}
