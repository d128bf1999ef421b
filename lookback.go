package gusort

import (
	"runtime"
	"sync/atomic"
)

// Cross-tile pass aggregation, variant two: the decoupled look-back protocol
// of the chained-scan ("OneSweep") path. Each binning tile publishes its
// local digit counts tagged with a status flag, then walks lower-indexed
// tiles' published slots to assemble its exclusive prefix without a grid
// barrier. A slot packs a 30-bit count and a 2-bit status; slot row 0 is the
// virtual tile -1, seeded with the global digit bases by the scan kernel.
//
// Tiles acquire their partition index from a monotonic dispenser, so every
// tile a look-back can reach has already been claimed by some worker, and
// the lowest unfinished tile never waits on anyone. Spinning is wait-free in
// the protocol sense: a tile only ever reads already-committed values and
// yields the processor between polls.

// publishReduction commits a tile's local digit counts to its slot row.
func publishReduction(region []uint32, tile int, tileHist *[Radix]uint32) {
	row := region[(tile+1)*Radix:]
	for d := 0; d < Radix; d++ {
		atomic.StoreUint32(&row[d], flagReduction|tileHist[d])
	}
}

// publishInclusive upgrades a tile's slot row to the inclusive prefix sums
// through this tile, unblocking every later tile's look-back.
func publishInclusive(region []uint32, tile int, inclusive *[Radix]uint32) {
	row := region[(tile+1)*Radix:]
	for d := 0; d < Radix; d++ {
		atomic.StoreUint32(&row[d], flagInclusive|inclusive[d])
	}
}

// lookBack resolves one digit's exclusive prefix for a tile: it sums the
// published reductions of preceding tiles until it reaches an inclusive
// entry, which already folds in everything below it (ultimately the seeded
// global digit base at row 0).
func lookBack(region []uint32, tile, digit int) uint32 {
	var sum uint32
	for t := tile - 1; t >= -1; t-- {
		slot := &region[(t+1)*Radix+digit]
		var v uint32
		for {
			v = atomic.LoadUint32(slot)
			if v&flagMask != flagNotReady {
				break
			}
			runtime.Gosched()
		}
		sum += v & countMask
		if v&flagMask == flagInclusive {
			return sum
		}
	}
	return sum
}

// resolveTileOffsets runs the full protocol for one binning tile: publish
// the reduction, look back per digit for the exclusive offsets, then publish
// the inclusive sums.
func resolveTileOffsets(region []uint32, tile int, tileHist *[Radix]uint32, offsets *[Radix]uint32) {
	publishReduction(region, tile, tileHist)
	var inclusive [Radix]uint32
	for d := 0; d < Radix; d++ {
		offsets[d] = lookBack(region, tile, d)
		inclusive[d] = offsets[d] + tileHist[d]
	}
	publishInclusive(region, tile, &inclusive)
}
