package gusort

import (
	"runtime"
	"sync"
)

// PrefixScanner is the device-parallel exclusive prefix-sum collaborator the
// segmented sort driver consumes to turn per-segment lengths into offsets
// and class histograms into dispatch ranges. The sorting core depends on
// the primitive but does not own it; replace it on a Context with
// SetPrefixScanner to supply a different implementation.
type PrefixScanner interface {
	// ExclusiveScan writes the exclusive prefix sums of in to out (which
	// may alias in) and returns the total. out must be at least len(in).
	ExclusiveScan(out, in []uint32) uint32
}

// defaultScanner is a two-phase chunked scan: workers reduce chunk sums,
// the chunk sums are scanned serially, then workers rescan their chunks
// with the carried base.
type defaultScanner struct{}

func (defaultScanner) ExclusiveScan(out, in []uint32) uint32 {
	n := len(in)
	if n == 0 {
		return 0
	}

	workers := runtime.NumCPU()
	const minChunk = 4096
	if n < minChunk*2 || workers < 2 {
		var sum uint32
		for i := 0; i < n; i++ {
			v := in[i]
			out[i] = sum
			sum += v
		}
		return sum
	}

	chunk := (n + workers - 1) / workers
	chunks := (n + chunk - 1) / chunk
	sums := make([]uint32, chunks)

	var wg sync.WaitGroup
	wg.Add(chunks)
	for c := 0; c < chunks; c++ {
		go func(c int) {
			defer wg.Done()
			lo, hi := c*chunk, (c+1)*chunk
			if hi > n {
				hi = n
			}
			var sum uint32
			for i := lo; i < hi; i++ {
				sum += in[i]
			}
			sums[c] = sum
		}(c)
	}
	wg.Wait()

	var total uint32
	for c := 0; c < chunks; c++ {
		v := sums[c]
		sums[c] = total
		total += v
	}

	wg.Add(chunks)
	for c := 0; c < chunks; c++ {
		go func(c int) {
			defer wg.Done()
			lo, hi := c*chunk, (c+1)*chunk
			if hi > n {
				hi = n
			}
			sum := sums[c]
			for i := lo; i < hi; i++ {
				v := in[i]
				out[i] = sum
				sum += v
			}
		}(c)
	}
	wg.Wait()
	return total
}
