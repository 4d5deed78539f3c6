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

// Package alignalloc provides an instrumented, alignment-aware allocator to plug into the allocation callbacks of a
// host runtime (e.g. VkAllocationCallbacks).
//
// Every block handed to the host carries, right before the returned pointer, the metadata needed to free or resize
// it (see package header). An accounting.Ledger keeps the running total of live bytes and logs one line per event
// (see package accounting). Raw memory comes from a pluggable backend (see package backend).
//
// Typical use:
//
//	cfg, err := alignalloc.ConfigFromEnv()
//	if err != nil { ... }
//	instance, err := alignalloc.New(cfg)
//	if err != nil { ... }
//	table, err := instance.CTable()  // nil if disabled: the host then uses its default allocator.
//	if err != nil { ... }
//	defer table.Destroy()
//	... hand table.Pointer() to the host ...
//	err = instance.Close()  // Reports leaks.
package alignalloc

import (
	"unsafe"

	"github.com/gomlx/alignalloc/accounting"
	"github.com/gomlx/alignalloc/alloc"
	"github.com/gomlx/alignalloc/backend"
	"github.com/gomlx/alignalloc/callbacks"
	"github.com/gomlx/alignalloc/scope"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Instance is one independent allocator: a backend, an aligned block allocator and its ledger.
//
// It implements callbacks.Callbacks, and it is the user data of the tables it creates.
type Instance struct {
	config    Config
	allocator *alloc.Allocator
	ledger    *accounting.Ledger
}

var _ callbacks.Callbacks = (*Instance)(nil)

// New creates an Instance with the given configuration.
func New(cfg Config) (*Instance, error) {
	b, err := backend.New(cfg.Backend)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create allocator with %s", cfg)
	}
	if cfg.LimitBytes > 0 {
		b = backend.NewLimited(b, cfg.LimitBytes)
	}
	ledger := accounting.NewLedger()
	if cfg.Logger != nil {
		ledger.WithLogger(cfg.Logger)
	}
	if cfg.Quiet {
		ledger.Quiet()
	}
	klog.V(1).Infof("alignalloc: created allocator with %s over backend %s", cfg, b.Name())
	return &Instance{
		config:    cfg,
		allocator: alloc.New(b, ledger),
		ledger:    ledger,
	}, nil
}

// Config returns the configuration the Instance was created with.
func (i *Instance) Config() Config { return i.config }

// Backend returns the backend used by the Instance.
func (i *Instance) Backend() backend.Backend { return i.allocator.Backend() }

// Table returns a Go callbacks table dispatching to the Instance, or nil if it is disabled.
func (i *Instance) Table() *callbacks.Table {
	return callbacks.NewTableIf(i, i.config.Enabled)
}

// Allocate implements callbacks.Callbacks.
func (i *Instance) Allocate(size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return i.allocator.Allocate(size, alignment, s)
}

// Reallocate implements callbacks.Callbacks.
func (i *Instance) Reallocate(original unsafe.Pointer, size, alignment uintptr, s scope.Scope) unsafe.Pointer {
	return i.allocator.Reallocate(original, size, alignment, s)
}

// Free implements callbacks.Callbacks.
func (i *Instance) Free(original unsafe.Pointer) {
	i.allocator.Free(original)
}

// InternalAllocate implements callbacks.Callbacks.
func (i *Instance) InternalAllocate(size uintptr, internalType scope.InternalType, s scope.Scope) {
	i.ledger.InternalAllocate(size, internalType, s)
}

// InternalFree implements callbacks.Callbacks.
func (i *Instance) InternalFree(size uintptr, internalType scope.InternalType, s scope.Scope) {
	i.ledger.InternalFree(size, internalType, s)
}

// Total returns the running total of live bytes.
func (i *Instance) Total() int64 { return i.ledger.Total() }

// Stats returns a snapshot of the ledger.
func (i *Instance) Stats() accounting.Stats { return i.ledger.Stats() }

// Close checks that every block allocated through the Instance was freed, and that the host reported freeing
// everything it reported as internally allocated. Otherwise it logs a warning and returns an error.
//
// Close doesn't release leaked blocks: the host may still be using them.
func (i *Instance) Close() error {
	stats := i.ledger.Stats()
	if stats.Live == 0 && stats.Allocations == stats.Frees {
		return nil
	}
	err := errors.Errorf("alignalloc: %d bytes still live at Close: %d blocks not freed (%d bytes), %d bytes of internal allocations",
		stats.Live, stats.Allocations-stats.Frees, stats.Live-stats.InternalLive, stats.InternalLive)
	klog.Warningf("%v", err)
	return err
}
