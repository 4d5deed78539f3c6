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

// Package header defines the metadata region prepended to every block handed out by the aligned allocator.
//
// Each block returned to the host looks like this:
//
//	base                                        data (returned pointer, aligned)
//	|<----------------- Size(alignment) ------------>|<------- requested size ------->|
//	| padding ... | Size | Alignment | Base           | user bytes ...                  |
//
// The three metadata words sit immediately below the data pointer: Base at data-1 word, Alignment at data-2 words
// and Size at data-3 words. This is the only package that does arithmetic on raw addresses, everything else
// handles the opaque data pointer and a Record.
package header

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"unsafe"
)

const (
	// WordSize is the size of one metadata word (a machine word).
	WordSize = unsafe.Sizeof(uintptr(0))

	// MetadataBytes is the space needed by a Record: base address, alignment and requested size.
	MetadataBytes = 3 * WordSize
)

// Record holds the bookkeeping stored in front of each live allocation.
type Record struct {
	// Base is the address returned by the underlying backend, needed to release the block.
	Base uintptr

	// Alignment requested when the block was allocated, needed to release the block.
	Alignment uintptr

	// Size requested by the caller, not including the header.
	Size uintptr
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return fmt.Sprintf("Record{base=%#x, alignment=%d, size=%d}", r.Base, r.Alignment, r.Size)
}

// IsPowerOfTwo returns whether a is a power of two. Zero is not.
func IsPowerOfTwo(a uintptr) bool {
	return a != 0 && bits.OnesCount64(uint64(a)) == 1
}

// MustBePowerOfTwo panics if alignment is not a power of two.
// Alignment is a contract with the host, it is never coerced to a valid value.
func MustBePowerOfTwo(alignment uintptr) {
	if !IsPowerOfTwo(alignment) {
		panic(fmt.Sprintf("alignalloc: alignment must be a power of two, got %d", alignment))
	}
}

// Size returns the size of the header region for the given alignment.
//
// The result is a multiple of alignment and is never smaller than MetadataBytes. When the metadata spans more than
// one alignment unit, one extra unit is reserved on top of the truncated count: the division below is approximate,
// and the slack absorbs the truncation.
//
// It panics if alignment is not a power of two.
func Size(alignment uintptr) uintptr {
	MustBePowerOfTwo(alignment)
	units := float64(MetadataBytes) / float64(alignment)
	if units > 1 {
		return (uintptr(math.Floor(units)) + 1) * alignment
	}
	return alignment
}

// DataPointer returns the pointer handed to the caller for a block whose backend allocation starts at base.
func DataPointer(base unsafe.Pointer, alignment uintptr) unsafe.Pointer {
	return unsafe.Add(base, Size(alignment))
}

// word returns the bytes of the i-th metadata word below data, i in [1, 3].
//
// Words are accessed as bytes: for alignments below WordSize the header words are not word aligned.
func word(data unsafe.Pointer, i int) []byte {
	return unsafe.Slice((*byte)(unsafe.Add(data, -i*int(WordSize))), WordSize)
}

func putWord(b []byte, v uintptr) {
	if WordSize == 8 {
		binary.NativeEndian.PutUint64(b, uint64(v))
	} else {
		binary.NativeEndian.PutUint32(b, uint32(v))
	}
}

func getWord(b []byte) uintptr {
	if WordSize == 8 {
		return uintptr(binary.NativeEndian.Uint64(b))
	}
	return uintptr(binary.NativeEndian.Uint32(b))
}

// Write stores the record in the header region right below data.
// The caller must guarantee the header region belongs to a block of Size(r.Alignment) header bytes.
func Write(data unsafe.Pointer, r Record) {
	putWord(word(data, 1), r.Base)
	putWord(word(data, 2), r.Alignment)
	putWord(word(data, 3), r.Size)
}

// Read returns the record stored right below data.
// The data pointer must have been produced by the aligned allocator and still be live.
func Read(data unsafe.Pointer) Record {
	return Record{
		Base:      getWord(word(data, 1)),
		Alignment: getWord(word(data, 2)),
		Size:      getWord(word(data, 3)),
	}
}

// BasePointer returns the backend pointer recorded for the block at data.
func BasePointer(data unsafe.Pointer) unsafe.Pointer {
	// Derived from data, so it remains a valid unsafe.Pointer; it always equals the stored Base.
	r := Read(data)
	return unsafe.Add(data, -int(Size(r.Alignment)))
}

// Region returns the user bytes of the block at data, of length size.
func Region(data unsafe.Pointer, size uintptr) []byte {
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(data), size)
}
