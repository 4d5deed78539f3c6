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
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
)

// Limited wraps a Backend with a budget of bytes. Requests that would take the bytes in use over the budget fail
// with ErrExhausted, without reaching the wrapped backend.
type Limited struct {
	Backend
	limit int64
	used  atomic.Int64
}

// NewLimited returns a Limited backend over b, with limit bytes of budget.
func NewLimited(b Backend, limit int64) *Limited {
	return &Limited{Backend: b, limit: limit}
}

// Name implements Backend.
func (l *Limited) Name() string { return "limited(" + l.Backend.Name() + ")" }

// Alloc implements Backend.
func (l *Limited) Alloc(size, alignment uintptr) (unsafe.Pointer, error) {
	if int64(size) < 0 {
		return nil, errors.Wrapf(ErrExhausted, "request of %d bytes over the limit of %d bytes", size, l.limit)
	}
	if used := l.used.Add(int64(size)); used > l.limit {
		l.used.Add(-int64(size))
		return nil, errors.Wrapf(ErrExhausted, "request of %d bytes over the limit of %d bytes (%d in use)",
			size, l.limit, used-int64(size))
	}
	ptr, err := l.Backend.Alloc(size, alignment)
	if err != nil {
		l.used.Add(-int64(size))
		return nil, err
	}
	return ptr, nil
}

// Free implements Backend.
func (l *Limited) Free(ptr unsafe.Pointer, size, alignment uintptr) {
	l.Backend.Free(ptr, size, alignment)
	l.used.Add(-int64(size))
}

// Unwrap returns the wrapped backend.
func (l *Limited) Unwrap() Backend {
	return l.Backend
}

// Used returns the number of bytes currently allocated through l.
func (l *Limited) Used() int64 {
	return l.used.Load()
}

// Limit returns the budget of l in bytes.
func (l *Limited) Limit() int64 {
	return l.limit
}
