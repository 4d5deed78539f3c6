package callbacks

import (
	"testing"
	"unsafe"

	"github.com/gomlx/alignalloc/accounting"
	"github.com/gomlx/alignalloc/alloc"
	"github.com/gomlx/alignalloc/backend"
	"github.com/gomlx/alignalloc/header"
	"github.com/gomlx/alignalloc/scope"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

// testAllocator joins an allocator and its ledger into a Callbacks implementation.
type testAllocator struct {
	*alloc.Allocator
	*accounting.Ledger
}

func newTestAllocator(b backend.Backend) *testAllocator {
	ledger := accounting.NewLedger().Quiet()
	return &testAllocator{Allocator: alloc.New(b, ledger), Ledger: ledger}
}

func TestTable(t *testing.T) {
	if !Enabled {
		t.Skip("allocation callbacks disabled at build time")
	}
	heap := backend.NewGoHeap()
	a := newTestAllocator(heap)
	table := NewTable(a)
	require.NotNil(t, table)

	ptr := table.Allocation(table.UserData, 100, 16, scope.ScopeObject)
	require.NotNil(t, ptr)
	require.Zero(t, uintptr(ptr)%16)
	require.Equal(t, int64(100), a.Total())

	copy(header.Region(ptr, 4), []byte{1, 2, 3, 4})
	ptr = table.Reallocation(table.UserData, ptr, 200, 16, scope.ScopeObject)
	require.Equal(t, []byte{1, 2, 3, 4}, header.Region(ptr, 4))
	require.Equal(t, int64(200), a.Total())

	table.Free(table.UserData, ptr)
	table.Free(table.UserData, nil)
	require.Zero(t, a.Total())
	require.Zero(t, heap.Live())
}

func TestTableInternalEvents(t *testing.T) {
	if !Enabled {
		t.Skip("allocation callbacks disabled at build time")
	}
	heap := backend.NewGoHeap()
	a := newTestAllocator(heap)
	table := NewTable(a)

	table.InternalAllocation(table.UserData, 1<<16, scope.InternalTypeExecutable, scope.ScopeDevice)
	require.Equal(t, int64(1<<16), a.Total())
	require.Zero(t, heap.Live(), "internal events must not touch the backend")
	table.InternalFree(table.UserData, 1<<16, scope.InternalTypeExecutable, scope.ScopeDevice)
	require.Zero(t, a.Total())
	require.Zero(t, heap.Live())
}

func TestTableDisabled(t *testing.T) {
	a := newTestAllocator(backend.NewGoHeap())
	require.Nil(t, NewTableIf(a, false))
	if !Enabled {
		require.Nil(t, NewTable(a))
	}
}

func TestTableBadUserData(t *testing.T) {
	if !Enabled {
		t.Skip("allocation callbacks disabled at build time")
	}
	table := NewTable(newTestAllocator(backend.NewGoHeap()))
	require.Panics(t, func() { table.Allocation("not callbacks", 8, 8, scope.ScopeObject) })
	require.Panics(t, func() { table.Free(nil, unsafe.Pointer(nil)) })
}
