// allocstress drives an alignalloc allocator through its callback table from many goroutines, the way a
// multithreaded host runtime would, and reports the accounting at the end.
//
// Blocks are allocated with random sizes, alignments and scopes, randomly reallocated, checked for alignment,
// metadata fidelity and content preservation, and freed. At the end the running total must be back to zero.
//
// Example:
//
//	go run ./cmd/allocstress -workers=16 -iterations=100000 -backend=c -ctable -quiet
//
// The allocator configuration also honors the ALIGNALLOC_* environment variables; flags take precedence.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"time"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/alignalloc"
	"github.com/gomlx/alignalloc/backend"
	"github.com/gomlx/alignalloc/header"
	"github.com/gomlx/alignalloc/scope"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

var (
	flagWorkers      = flag.Int("workers", 8, "Number of concurrent goroutines playing the host threads.")
	flagIterations   = flag.Int("iterations", 10_000, "Number of allocations per worker.")
	flagLiveBlocks   = flag.Int("live", 64, "Number of blocks each worker keeps alive at any time.")
	flagMaxSize      = flag.String("max_size", "64KiB", "Maximum size of each allocation, e.g. 4KiB or 1MiB.")
	flagMaxAlignment = flag.Int("max_alignment_log2", 12, "Allocations use alignments 2^0 to 2^max_alignment_log2.")
	flagReallocRatio = flag.Float64("realloc", 0.25, "Fraction of operations on live blocks that are reallocations.")
	flagBackend      = flag.String("backend", "", fmt.Sprintf("Allocation backend, one of %v. Default is %q.",
		backend.Names(), backend.DefaultName()))
	flagLimit  = flag.String("limit", "", "Optional budget for the backend, e.g. 256MiB. Failed allocations are counted, not fatal.")
	flagCTable = flag.Bool("ctable", false, "Call the allocator through the C function-pointer table (requires cgo and the c or mmap backends).")
	flagQuiet  = flag.Bool("quiet", true, "Disable the per-event log lines.")
	flagSeed   = flag.Uint64("seed", 42, "Random seed.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if err := run(); err != nil {
		klog.Fatalf("%+v", err)
	}
}

// run stresses the allocator. The host is closed (and a C table destroyed) before it returns, on every path.
func run() error {
	cfg, err := alignalloc.ConfigFromEnv()
	if err != nil {
		return err
	}
	cfg.Quiet = *flagQuiet
	if *flagBackend != "" {
		cfg.Backend = *flagBackend
	}
	if *flagLimit != "" {
		cfg.LimitBytes, err = alignalloc.ParseLimit(*flagLimit)
		if err != nil {
			return errors.WithMessage(err, "invalid -limit")
		}
	}
	maxSize64, err := humanize.ParseBytes(*flagMaxSize)
	if err != nil {
		return errors.Wrapf(err, "invalid -max_size=%q", *flagMaxSize)
	}
	maxSize := uintptr(maxSize64)
	if maxSize == 0 || uint64(maxSize) != maxSize64 || *flagMaxAlignment < 0 || *flagMaxAlignment > 30 || *flagLiveBlocks <= 0 {
		return errors.New("invalid flags: -max_size must be > 0, -max_alignment_log2 in [0, 30] and -live > 0")
	}

	instance, err := alignalloc.New(cfg)
	if err != nil {
		return err
	}
	h, err := newHost(instance, *flagCTable)
	if err != nil {
		return err
	}
	defer h.Close()
	fmt.Printf("Stressing %s with %d workers x %d iterations (host %s)\n", cfg, *flagWorkers, *flagIterations, h.Name())

	start := time.Now()
	results := make([]workerResult, *flagWorkers)
	eg, ctx := errgroup.WithContext(context.Background())
	for w := range *flagWorkers {
		eg.Go(func() error {
			var err error
			results[w], err = runWorker(ctx, h, w, maxSize)
			return errors.WithMessagef(err, "worker #%d", w)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	var total workerResult
	for _, r := range results {
		total.add(r)
	}
	stats := instance.Stats()
	fmt.Printf("Done in %s:\n", elapsed)
	fmt.Printf("\t- operations: %s (%s/op)\n", humanize.Comma(total.ops), elapsed/time.Duration(max(total.ops, 1)))
	fmt.Printf("\t- allocated: %s in %s blocks, %s reallocations, %s failed requests\n",
		humanize.IBytes(total.bytes), humanize.Comma(stats.Allocations), humanize.Comma(total.reallocs),
		humanize.Comma(total.failures))
	fmt.Printf("\t- peak live: %s\n", humanize.IBytes(uint64(stats.Peak)))
	fmt.Printf("\t- ledger: %s\n", stats)
	if err := instance.Close(); err != nil {
		return err
	}
	fmt.Println("Running total back to 0: ok")
	return nil
}

type workerResult struct {
	ops, reallocs, failures int64
	bytes                   uint64
}

func (r *workerResult) add(other workerResult) {
	r.ops += other.ops
	r.reallocs += other.reallocs
	r.failures += other.failures
	r.bytes += other.bytes
}

// block is a live allocation held by a worker: its contents are a pattern derived from seed.
type block struct {
	ptr             unsafe.Pointer
	size, alignment uintptr
	seed            byte
}

func (b *block) fill() {
	region := header.Region(b.ptr, b.size)
	for i := range region {
		region[i] = b.seed + byte(i)
	}
}

// verify checks alignment, metadata and the first n bytes of content of the block.
func (b *block) verify(n uintptr) error {
	if uintptr(b.ptr)%b.alignment != 0 {
		return errors.Errorf("block %p not aligned to %d", b.ptr, b.alignment)
	}
	if r := header.Read(b.ptr); r.Size != b.size || r.Alignment != b.alignment {
		return errors.Errorf("block %p has metadata %s, expected size=%d, alignment=%d", b.ptr, r, b.size, b.alignment)
	}
	region := header.Region(b.ptr, min(n, b.size))
	for i, v := range region {
		if v != b.seed+byte(i) {
			return errors.Errorf("block %p (size=%d) corrupted at byte %d: got %d, wanted %d", b.ptr, b.size, i, v, b.seed+byte(i))
		}
	}
	return nil
}

func runWorker(ctx context.Context, h host, worker int, maxSize uintptr) (result workerResult, err error) {
	rng := rand.New(rand.NewPCG(*flagSeed, uint64(worker)))
	live := make([]*block, *flagLiveBlocks)
	scopes := scope.ScopeValues()
	defer func() {
		for _, b := range live {
			if b != nil {
				h.Free(b.ptr)
			}
		}
	}()

	for i := range *flagIterations {
		if i%1024 == 0 && ctx.Err() != nil {
			return result, ctx.Err()
		}
		idx := rng.IntN(len(live))
		s := scopes[rng.IntN(len(scopes))]
		size := uintptr(rng.Uint64N(uint64(maxSize))) + 1
		result.ops++

		b := live[idx]
		if b != nil && rng.Float64() < *flagReallocRatio {
			// Reallocation, possibly with a different alignment.
			oldSize := b.size
			if err := b.verify(oldSize); err != nil {
				return result, err
			}
			alignment := uintptr(1) << rng.IntN(*flagMaxAlignment+1)
			ptr := h.Reallocate(b.ptr, size, alignment, s)
			if ptr == nil {
				result.failures++
				continue // The old block is still live.
			}
			b.ptr, b.size, b.alignment = ptr, size, alignment
			if err := b.verify(oldSize); err != nil {
				return result, errors.WithMessagef(err, "after reallocation from %d bytes", oldSize)
			}
			b.fill()
			result.reallocs++
			result.bytes += uint64(size)
			continue
		}

		if b != nil {
			if err := b.verify(b.size); err != nil {
				return result, err
			}
			h.Free(b.ptr)
			live[idx] = nil
		}
		alignment := uintptr(1) << rng.IntN(*flagMaxAlignment+1)
		ptr := h.Allocate(size, alignment, s)
		if ptr == nil {
			result.failures++
			continue
		}
		b = &block{ptr: ptr, size: size, alignment: alignment, seed: byte(rng.Uint32())}
		b.fill()
		live[idx] = b
		result.bytes += uint64(size)

		// Occasionally report host internal allocations, as a driver compiling shaders would.
		if rng.IntN(100) == 0 {
			internalSize := uintptr(rng.IntN(1<<16)) + 1
			h.InternalAllocate(internalSize, scope.InternalTypeExecutable, s)
			h.InternalFree(internalSize, scope.InternalTypeExecutable, s)
		}
	}
	return result, nil
}
