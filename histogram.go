package gusort

import "sync/atomic"

// Global histogram construction. One launch covers every radix pass at once:
// digit counts are permutation-invariant, so the per-pass global histograms
// can all be taken from the unsorted input before the first binning pass.

// launchGlobalHist histograms n transformed keys into the 1024-entry global
// histogram (RadixPasses rows of Radix digit counts). Each tile accumulates
// a tile-local histogram for its slice and adds it into the global table
// with one atomic add per digit, so tiles may run and finish in any order.
// The last tile clamps its iteration bound to the true element count.
func (s *Sorter) launchGlobalHist(keys []uint32, n int, globalHist []uint32) error {
	tiles := (n + PartSize - 1) / PartSize
	return s.ctx.LaunchTilesStream(tiles, s.stream, func(tile int) {
		base := tile * PartSize
		end := base + PartSize
		if end > n {
			end = n
		}

		var local [RadixPasses][Radix]uint32
		for i := base; i < end; i++ {
			k := keys[i]
			for pass := 0; pass < RadixPasses; pass++ {
				local[pass][extractDigit(k, uint(pass*RadixBits))]++
			}
		}

		for pass := 0; pass < RadixPasses; pass++ {
			row := globalHist[pass*Radix : (pass+1)*Radix]
			for d := 0; d < Radix; d++ {
				if c := local[pass][d]; c != 0 {
					atomic.AddUint32(&row[d], c)
				}
			}
		}
	})
}

// launchInitSweep zeroes the global histogram and resets every pass table
// slot to the not-ready state before a sort begins.
func (s *Sorter) launchInitSweep(sc *Scratch) error {
	globalHist := sc.globalHist.Uint32()
	passHist := sc.passHist.Uint32()

	// One clearing tile per pass table region plus one for the global
	// histogram keeps the launch shape independent of key count.
	regions := RadixPasses + 1
	return s.ctx.LaunchTilesStream(regions, s.stream, func(tile int) {
		if tile == RadixPasses {
			for i := range globalHist {
				globalHist[i] = 0
			}
			return
		}
		stride := (sc.tiles + 1) * Radix
		row := passHist[tile*stride : (tile+1)*stride]
		for i := range row {
			row[i] = flagNotReady
		}
	})
}

// tileDigitCounts computes the digit histogram of one tile's slice of keys
// for a single pass. Used by the upsweep of the reduce-then-scan variant;
// the binning kernel recomputes counts alongside ranks.
func tileDigitCounts(keys []uint32, base, end int, shift uint, out *[Radix]uint32) {
	for i := base; i < end; i++ {
		out[extractDigit(keys[i], shift)]++
	}
}

// launchUpsweep writes, for the current pass, each tile's digit counts into
// the pass table laid out row = digit, column = tile. The table is fully
// overwritten, so no clearing pass is needed between passes.
func (s *Sorter) launchUpsweep(keys []uint32, n, tiles int, shift uint, table []uint32) error {
	return s.ctx.LaunchTilesStream(tiles, s.stream, func(tile int) {
		base := tile * PartSize
		end := base + PartSize
		if end > n {
			end = n
		}
		var local [Radix]uint32
		tileDigitCounts(keys, base, end, shift, &local)
		for d := 0; d < Radix; d++ {
			table[d*tiles+tile] = local[d]
		}
	})
}
