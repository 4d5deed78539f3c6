//go:build !windows

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

package backend

// Since CGO C types cannot cross boundaries of a package (see issue https://github.com/golang/go/issues/13467)
// We make a copy of chelper.go for every sub-directory that needs it.
//go:generate go run ../cmd/copy_go_code --original=chelper.go

/*
#include <stdlib.h>
*/
import "C"
import (
	"unsafe"

	"github.com/pkg/errors"
)

func init() {
	Register("c", func() Backend { return CHeap{} })
}

// cMinAlignment is the smallest alignment accepted by posix_memalign: sizeof(void *).
const cMinAlignment = unsafe.Sizeof(uintptr(0))

// CHeap allocates from the C heap with posix_memalign, and releases with free.
//
// Its memory can be safely handed over to C code, and is not zero initialized.
type CHeap struct{}

// Name implements Backend.
func (CHeap) Name() string { return "c" }

// Alloc implements Backend.
func (CHeap) Alloc(size, alignment uintptr) (unsafe.Pointer, error) {
	alignment = max(alignment, cMinAlignment)
	var ptr unsafe.Pointer
	if rc := C.posix_memalign(&ptr, C.size_t(alignment), C.size_t(size)); rc != 0 || ptr == nil {
		return nil, errors.Wrapf(ErrExhausted, "posix_memalign(alignment=%d, size=%d) failed with code %d",
			alignment, size, int(rc))
	}
	return ptr, nil
}

// Free implements Backend.
func (CHeap) Free(ptr unsafe.Pointer, _, _ uintptr) {
	cFree((*byte)(ptr))
}
