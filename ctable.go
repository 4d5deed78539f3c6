//go:build cgo && !windows

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

package alignalloc

import (
	"github.com/gomlx/alignalloc/backend"
	"github.com/gomlx/alignalloc/callbacks"
	"github.com/pkg/errors"
)

// CTable returns a C callbacks table (laid out as VkAllocationCallbacks) dispatching to the Instance, or nil if it
// is disabled. It must be destroyed with CTable.Destroy once the host is done with it.
//
// Pointers returned through a CTable are handed to C, so it returns an error if the Instance uses the Go heap
// backend.
func (i *Instance) CTable() (*callbacks.CTable, error) {
	if _, isGoHeap := backend.Underlying(i.Backend()).(*backend.GoHeap); isGoHeap {
		return nil, errors.Errorf("alignalloc: backend %q can't be used with a C callbacks table, use \"c\" or \"mmap\"",
			i.Backend().Name())
	}
	return callbacks.NewCTableIf(i, i.config.Enabled), nil
}
