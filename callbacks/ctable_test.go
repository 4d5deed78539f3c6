//go:build cgo && !windows

package callbacks

import (
	"testing"

	"github.com/gomlx/alignalloc/backend"
	"github.com/gomlx/alignalloc/header"
	"github.com/gomlx/alignalloc/scope"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCTable(t *testing.T) {
	if !Enabled {
		t.Skip("allocation callbacks disabled at build time")
	}
	a := newTestAllocator(backend.CHeap{})
	table := NewCTable(a)
	require.NotNil(t, table)
	require.NotNil(t, table.Pointer())
	defer table.Destroy()

	ptr := table.CallAllocate(24, 32, scope.ScopeCommand)
	require.NotNil(t, ptr)
	require.Zero(t, uintptr(ptr)%32)
	require.Equal(t, int64(24), a.Total())
	copy(header.Region(ptr, 24), "abcdefghijklmnopqrstuvwx")

	ptr = table.CallReallocate(ptr, 48, 32, scope.ScopeCommand)
	require.NotNil(t, ptr)
	require.Equal(t, "abcdefghijklmnopqrstuvwx", string(header.Region(ptr, 24)))
	require.Equal(t, int64(48), a.Total())

	table.CallInternalAllocate(1000, scope.InternalTypeExecutable, scope.ScopeInstance)
	require.Equal(t, int64(1048), a.Total())
	table.CallInternalFree(1000, scope.InternalTypeExecutable, scope.ScopeInstance)

	require.Nil(t, table.CallReallocate(ptr, 0, 32, scope.ScopeCommand))
	require.Zero(t, a.Total())
	table.CallFree(nil)
	require.Zero(t, a.Stats().Live)
}

func TestCTableConcurrent(t *testing.T) {
	if !Enabled {
		t.Skip("allocation callbacks disabled at build time")
	}
	a := newTestAllocator(backend.CHeap{})
	table := NewCTable(a)
	defer table.Destroy()

	var eg errgroup.Group
	for w := range 8 {
		eg.Go(func() error {
			for i := range 500 {
				ptr := table.CallAllocate(uintptr(i+1), uintptr(1)<<(w%8), scope.ScopeObject)
				table.CallFree(ptr)
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	require.Zero(t, a.Total())
}

func TestCTableDisabled(t *testing.T) {
	a := newTestAllocator(backend.CHeap{})
	table := NewCTableIf(a, false)
	require.Nil(t, table)
	require.Nil(t, table.Pointer())
	table.Destroy() // No-op on a nil table.
	require.Panics(t, func() { table.CallAllocate(16, 16, scope.ScopeObject) })
	require.Panics(t, func() { table.CallFree(nil) })
}

func TestCTableDestroyTwice(t *testing.T) {
	if !Enabled {
		t.Skip("allocation callbacks disabled at build time")
	}
	table := NewCTable(newTestAllocator(backend.CHeap{}))
	table.Destroy()
	require.Nil(t, table.Pointer())
	table.Destroy()
	require.Panics(t, func() { table.CallAllocate(16, 16, scope.ScopeObject) })
	require.Panics(t, func() { table.CallInternalFree(16, scope.InternalTypeExecutable, scope.ScopeInstance) })
}
