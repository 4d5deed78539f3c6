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

// Package scope defines the classification tags the host attaches to allocation requests.
//
// They only affect logging: the allocator behaves the same for every scope.
package scope

// Scope is the lifetime category of an allocation, as reported by the host.
// Values match VkSystemAllocationScope.
type Scope int32

//go:generate go tool enumer -type=Scope -trimprefix=Scope scope.go

const (
	// ScopeCommand allocations live for the duration of one host command.
	ScopeCommand Scope = iota

	// ScopeObject allocations live as long as the host object being created or used.
	ScopeObject

	// ScopeCache allocations back a host cache object.
	ScopeCache

	// ScopeDevice allocations live as long as the device.
	ScopeDevice

	// ScopeInstance allocations live as long as the host instance.
	ScopeInstance
)

// InternalType is the purpose of an allocation made by the host outside of the allocator, and only reported to it.
// Values match VkInternalAllocationType.
type InternalType int32

//go:generate go tool enumer -type=InternalType -trimprefix=InternalType scope.go

const (
	// InternalTypeExecutable is memory for host-managed executable code.
	InternalTypeExecutable InternalType = iota
)
