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

// Package alloc implements the aligned block allocator: arbitrary power-of-two alignments served from a backend,
// with the metadata needed to free or resize each block stored in a header right before the returned pointer.
//
// Every successful Allocate and Free is reported to an accounting.Ledger, which keeps the running total of live
// bytes and logs the event. Failures are not reported.
package alloc

import (
	"unsafe"

	"github.com/gomlx/alignalloc/accounting"
	"github.com/gomlx/alignalloc/backend"
	"github.com/gomlx/alignalloc/header"
	"github.com/gomlx/alignalloc/scope"
	"k8s.io/klog/v2"
)

// Allocator serves aligned blocks from a backend.Backend and reports them to an accounting.Ledger.
//
// It is safe for concurrent use, as long as the backend is. The ledger lock is never held while calling the backend.
type Allocator struct {
	backend backend.Backend
	ledger  *accounting.Ledger
}

// New returns an Allocator over the given backend, reporting to ledger.
func New(b backend.Backend, ledger *accounting.Ledger) *Allocator {
	return &Allocator{backend: b, ledger: ledger}
}

// Backend used by the allocator.
func (a *Allocator) Backend() backend.Backend { return a.backend }

// Ledger the allocator reports to.
func (a *Allocator) Ledger() *accounting.Ledger { return a.ledger }

// Allocate returns a block of size bytes aligned to alignment, or nil if the backend can't provide it.
//
// The scope is only used for logging. It panics if alignment is not a power of two.
func (a *Allocator) Allocate(size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	headerSize := header.Size(alignment)
	total := size + headerSize
	if total < size {
		klog.V(2).Infof("alignalloc: allocation of %d bytes (alignment %d) overflows", size, alignment)
		return nil
	}
	base, err := a.backend.Alloc(total, alignment)
	if err != nil {
		klog.V(2).Infof("alignalloc: allocation of %d bytes (alignment %d, scope %s) failed: %v", size, alignment, s, err)
		return nil
	}
	data := unsafe.Add(base, headerSize)
	header.Write(data, header.Record{Base: uintptr(base), Alignment: alignment, Size: size})
	a.ledger.Report(int64(size), accounting.Event{
		Kind:      accounting.EventAllocate,
		Size:      size,
		Alignment: alignment,
		Scope:     s,
		Address:   uintptr(data),
	})
	return data
}

// Free releases a block returned by Allocate or Reallocate. A nil pointer is a no-op.
//
// After Free the pointer and its header are invalid.
func (a *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	record := header.Read(ptr)
	base := header.BasePointer(ptr)
	a.backend.Free(base, record.Size+header.Size(record.Alignment), record.Alignment)
	a.ledger.Report(-int64(record.Size), accounting.Event{
		Kind:      accounting.EventFree,
		Size:      record.Size,
		Alignment: record.Alignment,
		Address:   uintptr(ptr),
	})
}

// Reallocate resizes the block at ptr to size bytes, and returns the new block.
//
//   - If ptr is nil, it is the same as Allocate.
//   - If size is 0, it is the same as Free, and returns nil.
//   - Otherwise, it allocates a new block with the given alignment, copies the contents up to the smaller of the
//     two sizes, and frees the old block. If the new block can't be allocated it returns nil and the old block is
//     left untouched.
//
// The block is always moved. The new block uses the alignment given here, even if the original block was allocated
// with a different one; the original is released with its own recorded alignment.
func (a *Allocator) Reallocate(ptr unsafe.Pointer, size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	if ptr == nil {
		return a.Allocate(size, alignment, s)
	}
	if size == 0 {
		a.Free(ptr)
		return nil
	}
	old := header.Read(ptr)
	if old.Alignment != alignment {
		klog.V(1).Infof("alignalloc: reallocating %p from alignment %d to alignment %d", ptr, old.Alignment, alignment)
	}
	newPtr := a.Allocate(size, alignment, s)
	if newPtr == nil {
		return nil
	}
	copy(header.Region(newPtr, size), header.Region(ptr, min(old.Size, size)))
	a.Free(ptr)
	return newPtr
}

// Lookup returns the metadata stored for the live block at ptr.
func (a *Allocator) Lookup(ptr unsafe.Pointer) header.Record {
	return header.Read(ptr)
}
