package backend

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

func TestNames(t *testing.T) {
	names := Names()
	require.Contains(t, names, "go")
	require.Contains(t, names, DefaultName())

	_, err := New("no-such-backend")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no-such-backend")

	b, err := New("")
	require.NoError(t, err)
	require.Equal(t, DefaultName(), b.Name())
}

// TestBackendsAlignment checks every registered backend returns usable memory aligned as requested.
func TestBackendsAlignment(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			b, err := New(name)
			require.NoError(t, err)
			for shift := 0; shift <= 16; shift++ {
				alignment := uintptr(1) << shift
				for _, size := range []uintptr{1, 7, 100, 4096, 70_000} {
					ptr, err := b.Alloc(size, alignment)
					require.NoError(t, err, "Alloc(size=%d, alignment=%d)", size, alignment)
					require.NotNil(t, ptr)
					require.Zero(t, uintptr(ptr)%alignment, "Alloc(size=%d, alignment=%d) returned %p", size, alignment, ptr)

					// The whole block must be writable.
					block := unsafe.Slice((*byte)(ptr), size)
					for i := range block {
						block[i] = byte(i)
					}
					require.Equal(t, byte((size-1)%256), block[size-1])
					b.Free(ptr, size, alignment)
				}
			}
		})
	}
}

func TestGoHeap(t *testing.T) {
	h := NewGoHeap()
	ptrs := make([]unsafe.Pointer, 10)
	for i := range ptrs {
		ptrs[i] = must1(h.Alloc(uintptr(i*10), 64))
	}
	require.Equal(t, 10, h.Live())
	for i, ptr := range ptrs {
		h.Free(ptr, uintptr(i*10), 64)
	}
	require.Zero(t, h.Live())
	require.Panics(t, func() { h.Free(ptrs[0], 0, 64) }, "double free must panic")
}

func TestOverflow(t *testing.T) {
	h := NewGoHeap()
	_, err := h.Alloc(^uintptr(0), 16)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrExhausted))
}

func TestLimited(t *testing.T) {
	l := NewLimited(NewGoHeap(), 1000)
	require.Equal(t, "limited(go)", l.Name())
	p1 := must1(l.Alloc(600, 8))
	require.Equal(t, int64(600), l.Used())

	_, err := l.Alloc(401, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrExhausted), "got %v", err)
	require.Equal(t, int64(600), l.Used(), "failed request must not consume budget")

	p2 := must1(l.Alloc(400, 8))
	require.Equal(t, int64(1000), l.Used())
	l.Free(p1, 600, 8)
	l.Free(p2, 400, 8)
	require.Zero(t, l.Used())
	fmt.Printf("Limited backend: %s, limit=%d\n", l.Name(), l.Limit())
}

func must1[T any](value T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("Failed: %+v", errors.WithStack(err)))
	}
	return value
}

func TestUnderlying(t *testing.T) {
	h := NewGoHeap()
	require.Equal(t, Backend(h), Underlying(h))
	require.Equal(t, Backend(h), Underlying(NewLimited(NewLimited(h, 10), 20)))
}
