package alloc

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/gomlx/alignalloc/accounting"
	"github.com/gomlx/alignalloc/backend"
	"github.com/gomlx/alignalloc/header"
	"github.com/gomlx/alignalloc/scope"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

// eventCounter counts the log lines emitted by a Ledger.
type eventCounter struct {
	lines []string
}

func (c *eventCounter) logf(format string, args ...any) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func newTestAllocator(b backend.Backend) (*Allocator, *eventCounter) {
	c := &eventCounter{}
	return New(b, accounting.NewLedger().WithLogger(c.logf)), c
}

func fill(ptr unsafe.Pointer, size uintptr, seed byte) {
	region := header.Region(ptr, size)
	for i := range region {
		region[i] = seed + byte(i)
	}
}

func TestAllocateFree(t *testing.T) {
	for _, name := range backend.Names() {
		t.Run(name, func(t *testing.T) {
			a, _ := newTestAllocator(must.M1(backend.New(name)))
			baseline := a.Ledger().Total()
			for shift := 0; shift <= 16; shift++ {
				alignment := uintptr(1) << shift
				for _, size := range []uintptr{0, 1, 3, 100, 4097, 1 << 20} {
					ptr := a.Allocate(size, alignment, scope.ScopeObject)
					require.NotNil(t, ptr)
					require.Zero(t, uintptr(ptr)%alignment, "Allocate(%d, %d) returned unaligned %p", size, alignment, ptr)
					require.Equal(t, baseline+int64(size), a.Ledger().Total())

					record := a.Lookup(ptr)
					require.Equal(t, size, record.Size)
					require.Equal(t, alignment, record.Alignment)
					require.Equal(t, uintptr(ptr)-header.Size(alignment), record.Base)

					fill(ptr, size, byte(shift))
					a.Free(ptr)
					require.Equal(t, baseline, a.Ledger().Total())
				}
			}
		})
	}
}

func TestAllocateScenario(t *testing.T) {
	a, events := newTestAllocator(backend.NewGoHeap())
	prior := a.Ledger().Total()

	ptr := a.Allocate(100, 16, scope.ScopeObject)
	require.NotNil(t, ptr)
	require.Zero(t, uintptr(ptr)%16)
	require.Equal(t, prior+100, a.Ledger().Total())
	a.Free(ptr)
	require.Equal(t, prior, a.Ledger().Total())
	require.Len(t, events.lines, 2)
	require.Contains(t, events.lines[0], "Allocate: size=100, alignment=16, scope=Object")
	require.Contains(t, events.lines[0], fmt.Sprintf("address=%#x", uintptr(ptr)))
	require.Contains(t, events.lines[1], "Free: size=100, alignment=16")

	ptr = a.Allocate(24, 32, scope.ScopeCommand)
	require.NotNil(t, ptr)
	fill(ptr, 24, 1)
	original := append([]byte(nil), header.Region(ptr, 24)...)
	newPtr := a.Reallocate(ptr, 48, 32, scope.ScopeCommand)
	require.NotNil(t, newPtr)
	require.Zero(t, uintptr(newPtr)%32)
	require.Equal(t, original, header.Region(newPtr, 24))
	require.Equal(t, prior+48, a.Ledger().Total())
	a.Free(newPtr)
	require.Equal(t, prior, a.Ledger().Total())
}

func TestFreeNil(t *testing.T) {
	a, events := newTestAllocator(backend.NewGoHeap())
	a.Free(nil)
	require.Empty(t, events.lines)
	require.Zero(t, a.Ledger().Total())
}

func TestReallocate(t *testing.T) {
	heap := backend.NewGoHeap()
	a, _ := newTestAllocator(heap)

	t.Run("nil", func(t *testing.T) {
		ptr := a.Reallocate(nil, 64, 8, scope.ScopeObject)
		require.NotNil(t, ptr)
		require.Equal(t, int64(64), a.Ledger().Total())
		a.Free(ptr)
	})

	t.Run("grow", func(t *testing.T) {
		ptr := a.Allocate(10, 64, scope.ScopeObject)
		fill(ptr, 10, 42)
		want := append([]byte(nil), header.Region(ptr, 10)...)
		ptr = a.Reallocate(ptr, 1000, 64, scope.ScopeObject)
		require.Equal(t, want, header.Region(ptr, 10))
		require.Equal(t, uintptr(1000), a.Lookup(ptr).Size)
		require.Equal(t, int64(1000), a.Ledger().Total())
		a.Free(ptr)
	})

	t.Run("shrink", func(t *testing.T) {
		ptr := a.Allocate(100, 4, scope.ScopeCache)
		fill(ptr, 100, 7)
		want := append([]byte(nil), header.Region(ptr, 5)...)
		ptr = a.Reallocate(ptr, 5, 4, scope.ScopeCache)
		require.Equal(t, want, header.Region(ptr, 5))
		require.Equal(t, int64(5), a.Ledger().Total())
		a.Free(ptr)
	})

	t.Run("zero size frees", func(t *testing.T) {
		ptr := a.Allocate(100, 16, scope.ScopeObject)
		require.Equal(t, 1, heap.Live())
		require.Nil(t, a.Reallocate(ptr, 0, 16, scope.ScopeObject))
		require.Zero(t, heap.Live())
		require.Zero(t, a.Ledger().Total())
	})
	require.Zero(t, heap.Live())
	require.Zero(t, a.Ledger().Total())
}

// TestReallocateUsesRequestedAlignment pins down that the alignment passed to Reallocate is used for the new block,
// regardless of the alignment the original block was allocated with.
func TestReallocateUsesRequestedAlignment(t *testing.T) {
	a, _ := newTestAllocator(backend.NewGoHeap())
	ptr := a.Allocate(16, 8, scope.ScopeObject)
	fill(ptr, 16, 3)
	want := append([]byte(nil), header.Region(ptr, 16)...)

	ptr = a.Reallocate(ptr, 32, 4096, scope.ScopeObject)
	require.Zero(t, uintptr(ptr)%4096)
	require.Equal(t, uintptr(4096), a.Lookup(ptr).Alignment)
	require.Equal(t, want, header.Region(ptr, 16))

	ptr = a.Reallocate(ptr, 8, 1, scope.ScopeObject)
	require.Equal(t, uintptr(1), a.Lookup(ptr).Alignment)
	require.Equal(t, want[:8], header.Region(ptr, 8))
	a.Free(ptr)
	require.Zero(t, a.Ledger().Total())
}

func TestExhaustion(t *testing.T) {
	limited := backend.NewLimited(backend.NewGoHeap(), 1024)
	a, events := newTestAllocator(limited)

	ptr := a.Allocate(512, 16, scope.ScopeDevice)
	require.NotNil(t, ptr)
	require.Len(t, events.lines, 1)

	// Over budget: no pointer, no accounting, no log line.
	require.Nil(t, a.Allocate(1024, 16, scope.ScopeDevice))
	require.Equal(t, int64(512), a.Ledger().Total())
	require.Len(t, events.lines, 1)

	// A failed reallocation leaves the original block live and intact.
	fill(ptr, 512, 9)
	want := append([]byte(nil), header.Region(ptr, 512)...)
	require.Nil(t, a.Reallocate(ptr, 2048, 16, scope.ScopeDevice))
	require.Equal(t, want, header.Region(ptr, 512))
	require.Equal(t, uintptr(512), a.Lookup(ptr).Size)
	require.Equal(t, int64(512), a.Ledger().Total())
	require.Len(t, events.lines, 1)

	a.Free(ptr)
	require.Zero(t, limited.Used())
	require.Zero(t, a.Ledger().Total())
	require.Equal(t, int64(1), a.Ledger().Stats().Allocations)
}

func TestOverflowingSize(t *testing.T) {
	a, events := newTestAllocator(backend.NewGoHeap())
	require.Nil(t, a.Allocate(^uintptr(0)-4, 64, scope.ScopeObject))
	require.Empty(t, events.lines)
}

func TestBadAlignmentPanics(t *testing.T) {
	a, events := newTestAllocator(backend.NewGoHeap())
	for _, alignment := range []uintptr{0, 3, 24, 48} {
		require.Panics(t, func() { a.Allocate(8, alignment, scope.ScopeObject) }, "alignment %d", alignment)
	}
	require.Empty(t, events.lines)
	require.Zero(t, a.Ledger().Total())
}

func TestConcurrentRoundTrips(t *testing.T) {
	const numWorkers, numRounds = 8, 1000
	for _, name := range backend.Names() {
		t.Run(name, func(t *testing.T) {
			b := must.M1(backend.New(name))
			a := New(b, accounting.NewLedger().Quiet())
			keep := a.Allocate(33, 8, scope.ScopeInstance)
			baseline := a.Ledger().Total()

			var eg errgroup.Group
			for w := range numWorkers {
				eg.Go(func() error {
					for i := range numRounds {
						size := uintptr((w*numRounds+i)%4096 + 1)
						alignment := uintptr(1) << ((w + i) % 13)
						ptr := a.Allocate(size, alignment, scope.ScopeCommand)
						if ptr == nil {
							return fmt.Errorf("worker %d: Allocate(%d, %d) failed", w, size, alignment)
						}
						fill(ptr, size, byte(w))
						if i%3 == 0 {
							ptr = a.Reallocate(ptr, size*2, alignment, scope.ScopeCommand)
						}
						a.Free(ptr)
					}
					return nil
				})
			}
			require.NoError(t, eg.Wait())
			require.Equal(t, baseline, a.Ledger().Total())
			a.Free(keep)
			require.Zero(t, a.Ledger().Total())
			stats := a.Ledger().Stats()
			require.Equal(t, stats.Allocations, stats.Frees)
		})
	}
}

func BenchmarkAllocateFree(b *testing.B) {
	for _, name := range backend.Names() {
		for _, alignment := range []uintptr{8, 64, 4096} {
			b.Run(fmt.Sprintf("%s/alignment=%d", name, alignment), func(b *testing.B) {
				a := New(must.M1(backend.New(name)), accounting.NewLedger().Quiet())
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					a.Free(a.Allocate(256, alignment, scope.ScopeObject))
				}
			})
		}
	}
}
