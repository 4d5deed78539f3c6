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

package accounting

import "github.com/gomlx/alignalloc/scope"

// The host sometimes allocates memory through mechanisms the allocator doesn't control (e.g. driver managed
// executable code) and only notifies it. These notifications change the running total and nothing else.

// InternalAllocate records size bytes allocated by the host on its own.
func (l *Ledger) InternalAllocate(size uintptr, internalType scope.InternalType, s scope.Scope) {
	l.Report(int64(size), Event{Kind: EventInternalAllocate, Size: size, InternalType: internalType, Scope: s})
}

// InternalFree records size bytes released by the host on its own.
func (l *Ledger) InternalFree(size uintptr, internalType scope.InternalType, s scope.Scope) {
	l.Report(-int64(size), Event{Kind: EventInternalFree, Size: size, InternalType: internalType, Scope: s})
}
