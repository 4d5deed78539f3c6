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

// Package backend provides the underlying allocation primitives the aligned allocator delegates to.
//
// A Backend only hands out and takes back raw aligned memory. It keeps no accounting of its own beyond what it needs
// to release a block: headers, totals and logging are the job of the allocator in front of it.
//
// Available backends are registered by name (see New and Names):
//
//   - "c": the C heap, through posix_memalign and free. Requires cgo.
//   - "go": the Go heap. Blocks are kept alive in a map until freed.
//   - "mmap": anonymous private memory mappings. Unix only.
package backend

import (
	"slices"
	"sort"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

// Backend is an underlying allocation primitive.
//
// Implementations must be safe for concurrent use.
type Backend interface {
	// Name of the backend, as used by New.
	Name() string

	// Alloc returns a block of at least size bytes, aligned to alignment, which is always a power of two.
	// If the memory can't be provided, it returns an error wrapping ErrExhausted.
	Alloc(size, alignment uintptr) (unsafe.Pointer, error)

	// Free releases a block returned by Alloc, with the same size and alignment used to allocate it.
	Free(ptr unsafe.Pointer, size, alignment uintptr)
}

// ErrExhausted is returned (wrapped) by backends when they can't satisfy a request.
var ErrExhausted = errors.New("backend memory exhausted")

var (
	// constructors of the backends available in this build, registered during initialization.
	constructors   = make(map[string]func() Backend)
	muConstructors sync.Mutex
)

// Register a backend constructor under name. Used during initialization by each implementation; it can also be used
// to register custom backends.
func Register(name string, constructor func() Backend) {
	muConstructors.Lock()
	defer muConstructors.Unlock()
	constructors[name] = constructor
}

// Names returns the sorted names of the registered backends.
func Names() []string {
	muConstructors.Lock()
	defer muConstructors.Unlock()
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultName returns "c" if cgo is available, "go" otherwise.
func DefaultName() string {
	if slices.Contains(Names(), "c") {
		return "c"
	}
	return "go"
}

// New creates a new backend of the given name. See Names for the available ones.
// An empty name selects DefaultName.
func New(name string) (Backend, error) {
	if name == "" {
		name = DefaultName()
	}
	muConstructors.Lock()
	constructor, found := constructors[name]
	muConstructors.Unlock()
	if !found {
		return nil, errors.Errorf("unknown allocation backend %q, available backends in this build: %v", name, Names())
	}
	return constructor(), nil
}

// Underlying returns the innermost backend of b, unwrapping wrappers like Limited.
func Underlying(b Backend) Backend {
	for {
		w, ok := b.(interface{ Unwrap() Backend })
		if !ok {
			return b
		}
		b = w.Unwrap()
	}
}

// paddedSize returns size + pad, or an error wrapping ErrExhausted if it overflows.
func paddedSize(size, pad uintptr) (uintptr, error) {
	total := size + pad
	if total < size {
		return 0, errors.Wrapf(ErrExhausted, "request of %d bytes (plus %d of padding) overflows", size, pad)
	}
	return total, nil
}

// alignOffset returns the offset to add to addr to make it a multiple of alignment.
func alignOffset(addr, alignment uintptr) uintptr {
	return (alignment - addr%alignment) % alignment
}
