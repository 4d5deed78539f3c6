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

// Package callbacks adapts an allocator to the fixed table of allocation callbacks a host runtime expects: five
// entry points plus an opaque user-data slot, as in VkAllocationCallbacks.
//
// Table is the Go version of the table, for hosts written in Go. CTable (cgo builds only) is the C version: a
// struct of C function pointers that can be handed over to a native host.
//
// When the adapter is disabled, at build time with the build tag "alignalloc_hostdefault" or at run time with the
// enabled argument of NewTableIf, the constructors return nil, signaling the host to use its own default allocator.
package callbacks

import (
	"fmt"
	"unsafe"

	"github.com/gomlx/alignalloc/scope"
)

// Callbacks is implemented by the allocator object installed in the table.
type Callbacks interface {
	// Allocate returns a block of size bytes aligned to alignment, or nil on failure.
	Allocate(size, alignment uintptr, s scope.Scope) unsafe.Pointer

	// Reallocate resizes original to size bytes, returning the new block, or nil on failure.
	// A nil original behaves as Allocate, and size 0 as Free.
	Reallocate(original unsafe.Pointer, size, alignment uintptr, s scope.Scope) unsafe.Pointer

	// Free releases a block. Nil is a no-op.
	Free(original unsafe.Pointer)

	// InternalAllocate is a notification of memory allocated by the host on its own.
	InternalAllocate(size uintptr, internalType scope.InternalType, s scope.Scope)

	// InternalFree is a notification of memory freed by the host on its own.
	InternalFree(size uintptr, internalType scope.InternalType, s scope.Scope)
}

// Table is the record of entry points handed to a host written in Go.
//
// Each entry point receives UserData as its first argument, and the host must not interpret it.
type Table struct {
	UserData any

	Allocation         func(userData any, size, alignment uintptr, s scope.Scope) unsafe.Pointer
	Reallocation       func(userData any, original unsafe.Pointer, size, alignment uintptr, s scope.Scope) unsafe.Pointer
	Free               func(userData any, original unsafe.Pointer)
	InternalAllocation func(userData any, size uintptr, internalType scope.InternalType, s scope.Scope)
	InternalFree       func(userData any, size uintptr, internalType scope.InternalType, s scope.Scope)
}

// NewTable returns a Table dispatching to cb, or nil if the adapter was disabled at build time (see Enabled).
func NewTable(cb Callbacks) *Table {
	return NewTableIf(cb, true)
}

// NewTableIf returns a Table dispatching to cb, or nil if enabled is false or the adapter was disabled at build
// time.
func NewTableIf(cb Callbacks, enabled bool) *Table {
	if !Enabled || !enabled {
		return nil
	}
	return &Table{
		UserData:           cb,
		Allocation:         allocation,
		Reallocation:       reallocation,
		Free:               free,
		InternalAllocation: internalAllocation,
		InternalFree:       internalFree,
	}
}

// fromUserData recovers the Callbacks installed in a table.
func fromUserData(userData any) Callbacks {
	cb, ok := userData.(Callbacks)
	if !ok {
		panic(fmt.Sprintf("alignalloc: allocation callback called with user data of type %T, expected a callbacks.Callbacks", userData))
	}
	return cb
}

func allocation(userData any, size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return fromUserData(userData).Allocate(size, alignment, s)
}

func reallocation(userData any, original unsafe.Pointer, size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return fromUserData(userData).Reallocate(original, size, alignment, s)
}

func free(userData any, original unsafe.Pointer) {
	fromUserData(userData).Free(original)
}

func internalAllocation(userData any, size uintptr, internalType scope.InternalType, s scope.Scope) {
	fromUserData(userData).InternalAllocate(size, internalType, s)
}

func internalFree(userData any, size uintptr, internalType scope.InternalType, s scope.Scope) {
	fromUserData(userData).InternalFree(size, internalType, s)
}
