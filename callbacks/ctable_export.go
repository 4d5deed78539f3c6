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

// This file holds the entry points exported to C. Its preamble may only hold declarations, since it uses //export.

/*
#include "ctable.h"
*/
import "C"
import (
	"runtime/cgo"
	"unsafe"

	"github.com/gomlx/alignalloc/scope"
)

// fromCUserData recovers the Callbacks from the cgo.Handle stored in a CTable's user data.
func fromCUserData(userData unsafe.Pointer) Callbacks {
	return fromUserData(cgo.Handle(uintptr(userData)).Value())
}

//export alignallocAllocation
func alignallocAllocation(userData unsafe.Pointer, size, alignment C.size_t, s C.int) unsafe.Pointer {
	return fromCUserData(userData).Allocate(uintptr(size), uintptr(alignment), scope.Scope(s))
}

//export alignallocReallocation
func alignallocReallocation(userData, original unsafe.Pointer, size, alignment C.size_t, s C.int) unsafe.Pointer {
	return fromCUserData(userData).Reallocate(original, uintptr(size), uintptr(alignment), scope.Scope(s))
}

//export alignallocFree
func alignallocFree(userData, original unsafe.Pointer) {
	fromCUserData(userData).Free(original)
}

//export alignallocInternalAllocation
func alignallocInternalAllocation(userData unsafe.Pointer, size C.size_t, internalType, s C.int) {
	fromCUserData(userData).InternalAllocate(uintptr(size), scope.InternalType(internalType), scope.Scope(s))
}

//export alignallocInternalFree
func alignallocInternalFree(userData unsafe.Pointer, size C.size_t, internalType, s C.int) {
	fromCUserData(userData).InternalFree(uintptr(size), scope.InternalType(internalType), scope.Scope(s))
}
