//go:build linux || darwin || freebsd || netbsd || openbsd

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
	"os"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func init() {
	Register("mmap", func() Backend { return NewMmap() })
}

// Mmap allocates each block in its own anonymous private memory mapping.
//
// Mappings are page aligned; larger alignments are served by mapping alignment-pageSize extra bytes and moving the
// returned pointer up. It is wasteful for small blocks, and meant for large, long-lived ones.
type Mmap struct {
	pageSize uintptr

	mu sync.Mutex
	// mappings maps the returned pointers to the full mapping, needed by unix.Munmap.
	mappings map[uintptr][]byte
}

// NewMmap returns an Mmap backend with no mappings.
func NewMmap() *Mmap {
	return &Mmap{
		pageSize: uintptr(os.Getpagesize()),
		mappings: make(map[uintptr][]byte),
	}
}

// Name implements Backend.
func (m *Mmap) Name() string { return "mmap" }

// Alloc implements Backend.
func (m *Mmap) Alloc(size, alignment uintptr) (unsafe.Pointer, error) {
	var pad uintptr
	if alignment > m.pageSize {
		pad = alignment - m.pageSize
	}
	length, err := paddedSize(max(size, 1), pad)
	if err != nil {
		return nil, err
	}
	mapping, err := unix.Mmap(-1, 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrapf(ErrExhausted, "mmap of %d bytes failed: %v", length, err)
	}
	offset := alignOffset(uintptr(unsafe.Pointer(unsafe.SliceData(mapping))), alignment)
	ptr := unsafe.Pointer(&mapping[offset])

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[uintptr(ptr)] = mapping
	return ptr, nil
}

// Free implements Backend. It panics if ptr is not a live mapping of this backend, or if munmap fails.
func (m *Mmap) Free(ptr unsafe.Pointer, size, alignment uintptr) {
	m.mu.Lock()
	mapping, found := m.mappings[uintptr(ptr)]
	delete(m.mappings, uintptr(ptr))
	m.mu.Unlock()
	if !found {
		panic(fmt.Sprintf("backend mmap: freeing unknown pointer %p (size=%d, alignment=%d)", ptr, size, alignment))
	}
	if err := unix.Munmap(mapping); err != nil {
		panic(fmt.Sprintf("backend mmap: munmap of %p (%d bytes) failed: %v", ptr, len(mapping), err))
	}
}

// Mappings returns the number of live mappings.
func (m *Mmap) Mappings() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mappings)
}
