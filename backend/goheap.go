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

import (
	"fmt"
	"sync"
	"unsafe"
)

func init() {
	Register("go", func() Backend { return NewGoHeap() })
}

// GoHeap allocates aligned blocks from Go byte slices.
//
// Each block is over-allocated by alignment-1 bytes and the returned pointer is moved up to the first aligned
// address. The slices are kept in a map until freed, so the garbage collector doesn't reclaim them while the host
// holds only the raw pointer.
//
// Memory from GoHeap must not be handed to C code (see the cgo pointer passing rules): use it for pure Go hosts and
// tests. Out-of-memory in the Go runtime is fatal, so GoHeap only reports ErrExhausted on size overflows; wrap it in
// a Limited backend to get a budget.
type GoHeap struct {
	mu   sync.Mutex
	live map[uintptr][]byte
}

// NewGoHeap returns an empty GoHeap.
func NewGoHeap() *GoHeap {
	return &GoHeap{live: make(map[uintptr][]byte)}
}

// Name implements Backend.
func (h *GoHeap) Name() string { return "go" }

// Alloc implements Backend.
func (h *GoHeap) Alloc(size, alignment uintptr) (unsafe.Pointer, error) {
	total, err := paddedSize(max(size, 1), alignment-1)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, total)
	offset := alignOffset(uintptr(unsafe.Pointer(unsafe.SliceData(buf))), alignment)
	ptr := unsafe.Pointer(&buf[offset])

	h.mu.Lock()
	defer h.mu.Unlock()
	h.live[uintptr(ptr)] = buf
	return ptr, nil
}

// Free implements Backend. It panics if ptr was not allocated by this GoHeap, or was already freed.
func (h *GoHeap) Free(ptr unsafe.Pointer, size, alignment uintptr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, found := h.live[uintptr(ptr)]; !found {
		panic(fmt.Sprintf("backend go: freeing unknown pointer %p (size=%d, alignment=%d)", ptr, size, alignment))
	}
	delete(h.live, uintptr(ptr))
}

// Live returns the number of blocks not yet freed.
func (h *GoHeap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}
