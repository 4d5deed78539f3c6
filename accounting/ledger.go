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

// Package accounting keeps the running total of live bytes of an allocator, and logs every event.
//
// A Ledger serializes the update of the total and the emission of the corresponding log line, so concurrent log
// lines always show a consistent sequence of totals.
package accounting

import (
	"fmt"
	"sync"

	"github.com/gomlx/alignalloc/scope"
	"k8s.io/klog/v2"
)

// MiB is the number of bytes in a mebibyte, used when reporting totals.
const MiB = 1 << 20

// EventKind enumerates the events reported to a Ledger.
type EventKind int

//go:generate go tool enumer -type=EventKind -trimprefix=Event ledger.go

const (
	EventAllocate EventKind = iota
	EventFree
	EventInternalAllocate
	EventInternalFree
)

// Event describes one successful allocator event. Only the fields relevant to Kind are used.
type Event struct {
	Kind         EventKind
	Size         uintptr
	Alignment    uintptr
	Scope        scope.Scope
	InternalType scope.InternalType
	Address      uintptr
}

// String returns the human-readable description used in the log line.
func (ev Event) String() string {
	switch ev.Kind {
	case EventAllocate:
		return fmt.Sprintf("%s: size=%d, alignment=%d, scope=%s, address=%#x",
			ev.Kind, ev.Size, ev.Alignment, ev.Scope, ev.Address)
	case EventFree:
		return fmt.Sprintf("%s: size=%d, alignment=%d, address=%#x", ev.Kind, ev.Size, ev.Alignment, ev.Address)
	default:
		return fmt.Sprintf("%s: size=%d, type=%s, scope=%s", ev.Kind, ev.Size, ev.InternalType, ev.Scope)
	}
}

// Stats is a snapshot of a Ledger.
type Stats struct {
	// Live is the running total of live bytes, including internal allocations reported by the host.
	Live int64

	// Peak is the largest value Live reached.
	Peak int64

	// InternalLive is the part of Live reported through internal events.
	InternalLive int64

	Allocations, Frees                 int64
	InternalAllocations, InternalFrees int64
}

// Events returns the total number of events recorded.
func (s Stats) Events() int64 {
	return s.Allocations + s.Frees + s.InternalAllocations + s.InternalFrees
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return fmt.Sprintf("live=%d bytes (%.2f MiB), peak=%d bytes (%.2f MiB), internal=%d bytes, "+
		"allocations=%d, frees=%d, internal allocations=%d, internal frees=%d",
		s.Live, float64(s.Live)/MiB, s.Peak, float64(s.Peak)/MiB, s.InternalLive,
		s.Allocations, s.Frees, s.InternalAllocations, s.InternalFrees)
}

// Ledger holds the running total of live bytes and serializes its updates.
//
// The zero value is not usable, create it with NewLedger.
type Ledger struct {
	mu    sync.Mutex
	stats Stats
	logf  func(format string, args ...any)
}

// NewLedger returns a Ledger with a zero total that logs events with klog.Infof.
func NewLedger() *Ledger {
	return &Ledger{logf: klog.Infof}
}

// WithLogger sets the function used to emit one line per event. It returns the Ledger itself.
//
// It must be set before the Ledger is shared.
func (l *Ledger) WithLogger(logf func(format string, args ...any)) *Ledger {
	l.logf = logf
	return l
}

// Quiet disables the event log lines. Totals are still maintained. It returns the Ledger itself.
func (l *Ledger) Quiet() *Ledger {
	l.logf = nil
	return l
}

// Report applies delta to the running total and logs ev with the resulting total, as one atomic step.
//
// Positive deltas are allocations, negative ones are frees.
func (l *Ledger) Report(delta int64, ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := &l.stats
	s.Live += delta
	s.Peak = max(s.Peak, s.Live)
	switch ev.Kind {
	case EventAllocate:
		s.Allocations++
	case EventFree:
		s.Frees++
	case EventInternalAllocate:
		s.InternalAllocations++
		s.InternalLive += delta
	case EventInternalFree:
		s.InternalFrees++
		s.InternalLive += delta
	}
	if l.logf != nil {
		l.logf("%s, total: %d bytes (%.2f MiB)", ev, s.Live, float64(s.Live)/MiB)
	}
}

// Total returns the current running total of live bytes.
func (l *Ledger) Total() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.Live
}

// Stats returns a snapshot of the ledger counters.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
