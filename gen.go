package gusort

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Segment-length generation for segmented-sort harnesses. Lanes race to
// reserve lengths out of a shared capacity budget with a compare-and-swap
// loop; once the budget is exhausted a cooperative stop condition ends the
// race. A reservation, once granted, is never rolled back; the final total
// is therefore at least the requested capacity, never less, and the last
// reservation may overshoot by at most maxLen-1.

// GenerateSegmentLengths produces segment lengths in [1, maxLen] whose sum
// is >= target. The order of lengths depends on scheduling; only the
// aggregate properties are guaranteed.
func GenerateSegmentLengths(target, maxLen int, seed uint64) []uint32 {
	if target < 1 || maxLen < 1 {
		return nil
	}

	remaining := int64(target)
	workers := runtime.NumCPU()
	locals := make([][]uint32, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			rng := seed + uint64(w)*0x9E3779B97F4A7C15
			var out []uint32
			for {
				rng = rng*6364136223846793005 + 1442695040888963407
				length := uint32(rng>>33)%uint32(maxLen) + 1

				// Reserve: CAS race against every other lane. Observing an
				// exhausted budget is the stop condition; a winning CAS is
				// a committed reservation even if it drives the budget
				// negative.
				for {
					r := atomic.LoadInt64(&remaining)
					if r <= 0 {
						locals[w] = out
						return
					}
					if atomic.CompareAndSwapInt64(&remaining, r, r-int64(length)) {
						out = append(out, length)
						break
					}
				}
			}
		}(w)
	}
	wg.Wait()

	var lengths []uint32
	for _, l := range locals {
		lengths = append(lengths, l...)
	}
	return lengths
}

// OffsetsFromLengths converts segment lengths to start offsets with the
// context's exclusive prefix-sum collaborator, returning the offsets and
// the total length.
func (ctx *Context) OffsetsFromLengths(lengths []uint32) ([]uint32, int) {
	offsets := make([]uint32, len(lengths))
	total := ctx.scanner.ExclusiveScan(offsets, lengths)
	return offsets, int(total)
}
