/*
 *	Copyright 2025 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package callbacks

// Since CGO C types cannot cross boundaries of a package (see issue https://github.com/golang/go/issues/13467)
// We make a copy of chelper.go for every sub-directory that needs it.
//go:generate go run ../cmd/copy_go_code --original=chelper.go

/*
#include "ctable.h"

static void alignalloc_fill_callbacks(alignalloc_callbacks* cb, uintptr_t user_data) {
	cb->pUserData = (void*)user_data;
	cb->pfnAllocation = alignallocAllocation;
	cb->pfnReallocation = alignallocReallocation;
	cb->pfnFree = alignallocFree;
	cb->pfnInternalAllocation = alignallocInternalAllocation;
	cb->pfnInternalFree = alignallocInternalFree;
}

// The call_* functions invoke the table the way a native host does: through the function pointers.

static void* alignalloc_call_allocation(const alignalloc_callbacks* cb, size_t size, size_t alignment, int scope) {
	return cb->pfnAllocation(cb->pUserData, size, alignment, scope);
}

static void* alignalloc_call_reallocation(const alignalloc_callbacks* cb, void* original, size_t size,
		size_t alignment, int scope) {
	return cb->pfnReallocation(cb->pUserData, original, size, alignment, scope);
}

static void alignalloc_call_free(const alignalloc_callbacks* cb, void* memory) {
	cb->pfnFree(cb->pUserData, memory);
}

static void alignalloc_call_internal_allocation(const alignalloc_callbacks* cb, size_t size, int internal_type,
		int scope) {
	cb->pfnInternalAllocation(cb->pUserData, size, internal_type, scope);
}

static void alignalloc_call_internal_free(const alignalloc_callbacks* cb, size_t size, int internal_type, int scope) {
	cb->pfnInternalFree(cb->pUserData, size, internal_type, scope);
}
*/
import "C"
import (
	"runtime"
	"runtime/cgo"
	"unsafe"

	"github.com/gomlx/alignalloc/scope"
	"k8s.io/klog/v2"
)

// CTable is the C version of Table: a C struct with the same layout as VkAllocationCallbacks, whose function
// pointers call back into the Callbacks it was created with. The user data slot holds a cgo.Handle.
//
// The pointers returned by the Callbacks are handed to C, so they must not point to Go memory: use it with the "c"
// or "mmap" backends.
//
// A CTable must be destroyed with Destroy once the host no longer uses it. A nil *CTable stands for "use the host
// default allocator": Pointer and Destroy accept it, while the Call* methods panic on a nil or destroyed table.
type CTable struct {
	wrapper *cTableWrapper
}

type cTableWrapper struct {
	callbacks *C.alignalloc_callbacks
	handle    cgo.Handle
}

// NewCTable returns a CTable dispatching to cb, or nil if the adapter was disabled at build time (see Enabled).
func NewCTable(cb Callbacks) *CTable {
	return NewCTableIf(cb, true)
}

// NewCTableIf returns a CTable dispatching to cb, or nil if enabled is false or the adapter was disabled at build
// time.
func NewCTableIf(cb Callbacks, enabled bool) *CTable {
	if !Enabled || !enabled {
		return nil
	}
	w := &cTableWrapper{
		callbacks: cMalloc[C.alignalloc_callbacks](),
		handle:    cgo.NewHandle(cb),
	}
	C.alignalloc_fill_callbacks(w.callbacks, C.uintptr_t(w.handle))
	t := &CTable{w}
	runtime.AddCleanup(t, func(w *cTableWrapper) {
		if w.callbacks == nil {
			return // Correctly destroyed.
		}
		// It may still be in use by the host, so it is not freed here.
		klog.Errorf("alignalloc: CTable garbage collected without being destroyed, leaking the C table and its callbacks")
	}, w)
	return t
}

// Pointer returns the address of the C table (a `VkAllocationCallbacks*` compatible pointer) to hand over to the
// host. It is nil for a nil table.
func (t *CTable) Pointer() unsafe.Pointer {
	if t == nil || t.wrapper.callbacks == nil {
		return nil
	}
	return unsafe.Pointer(t.wrapper.callbacks)
}

// Destroy frees the C table and releases the handle to the Callbacks. It is a no-op for a nil or destroyed table.
func (t *CTable) Destroy() {
	if t == nil || t.wrapper.callbacks == nil {
		return
	}
	cFree(t.wrapper.callbacks)
	t.wrapper.callbacks = nil
	t.wrapper.handle.Delete()
}

// cCallbacks returns the C table. It panics if t is nil or destroyed.
func (t *CTable) cCallbacks() *C.alignalloc_callbacks {
	if t == nil || t.wrapper.callbacks == nil {
		panic("alignalloc: calling through a nil or destroyed CTable")
	}
	return t.wrapper.callbacks
}

// CallAllocate invokes the allocation entry point through its C function pointer, as a native host would.
func (t *CTable) CallAllocate(size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return C.alignalloc_call_allocation(t.cCallbacks(), C.size_t(size), C.size_t(alignment), C.int(s))
}

// CallReallocate invokes the reallocation entry point through its C function pointer.
func (t *CTable) CallReallocate(original unsafe.Pointer, size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return C.alignalloc_call_reallocation(t.cCallbacks(), original, C.size_t(size), C.size_t(alignment), C.int(s))
}

// CallFree invokes the free entry point through its C function pointer.
func (t *CTable) CallFree(original unsafe.Pointer) {
	C.alignalloc_call_free(t.cCallbacks(), original)
}

// CallInternalAllocate invokes the internal allocation notification through its C function pointer.
func (t *CTable) CallInternalAllocate(size uintptr, internalType scope.InternalType, s scope.Scope) {
	C.alignalloc_call_internal_allocation(t.cCallbacks(), C.size_t(size), C.int(internalType), C.int(s))
}

// CallInternalFree invokes the internal free notification through its C function pointer.
func (t *CTable) CallInternalFree(size uintptr, internalType scope.InternalType, s scope.Scope) {
	C.alignalloc_call_internal_free(t.cCallbacks(), C.size_t(size), C.int(internalType), C.int(s))
}
