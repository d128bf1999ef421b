package gusort

import "sync/atomic"

// Cross-tile pass aggregation, variant one: deterministic upsweep/scan.
// A scan kernel owns one digit row of the pass table per cooperative group
// and converts the row of tile-local counts into each tile's exclusive
// prefix over all preceding tiles. The result is a pure function of the
// table; no atomics are involved.

// exclusiveScan256 converts a Radix-wide count row into its exclusive prefix
// sum using the tile's wave hierarchy: each wave scans its 32 counts, wave
// totals are scanned by the leader wave, and the broadcast wave offset is
// added back to every lane.
func exclusiveScan256(counts []uint32) uint32 {
	var regs [WavesPerTile]WaveRegs
	var waveTotals WaveRegs

	for w := 0; w < WavesPerTile; w++ {
		for lane := 0; lane < WaveWidth; lane++ {
			regs[w][lane] = counts[w*WaveWidth+lane]
		}
		waveTotals[w] = ExclusiveScan(&regs[w])
	}
	total := ExclusiveScan(&waveTotals)
	for w := 0; w < WavesPerTile; w++ {
		off := Broadcast(&waveTotals, w)
		for lane := 0; lane < WaveWidth; lane++ {
			counts[w*WaveWidth+lane] = regs[w][lane] + off
		}
	}
	return total
}

// launchScanGlobalHist exclusive-scans each pass's Radix global digit counts
// in place, producing the global digit base offsets consumed by every
// binning pass. For the chained (look-back) variant it also seeds each pass
// table's virtual tile -1 row with the base offsets tagged inclusive, which
// terminates every look-back chain.
func (s *Sorter) launchScanGlobalHist(sc *Scratch, seedLookback bool) error {
	globalHist := sc.globalHist.Uint32()
	return s.ctx.LaunchTilesStream(RadixPasses, s.stream, func(pass int) {
		row := globalHist[pass*Radix : (pass+1)*Radix]
		exclusiveScan256(row)
		if seedLookback {
			seed := sc.passRegion(pass)[:Radix]
			for d := 0; d < Radix; d++ {
				atomic.StoreUint32(&seed[d], flagInclusive|row[d])
			}
		}
	})
}

// launchScanPassHist scans the tile axis of the current pass table in place:
// for every (digit, tile) pair the entry becomes the sum of that digit's
// counts over all tiles with a lower index. One cooperative group owns each
// digit row and walks it in WaveWidth-wide windows, carrying the running
// total forward as the leader broadcast; the final window clamps to the
// true remaining tile count.
func (s *Sorter) launchScanPassHist(table []uint32, tiles int) error {
	return s.ctx.LaunchTilesStream(Radix, s.stream, func(digit int) {
		row := table[digit*tiles : (digit+1)*tiles]
		var carry uint32
		for w0 := 0; w0 < tiles; w0 += WaveWidth {
			cnt := tiles - w0
			if cnt > WaveWidth {
				cnt = WaveWidth
			}
			var regs WaveRegs
			for lane := 0; lane < cnt; lane++ {
				regs[lane] = row[w0+lane]
			}
			windowTotal := ExclusiveScan(&regs)
			for lane := 0; lane < cnt; lane++ {
				row[w0+lane] = regs[lane] + carry
			}
			carry += windowTotal
		}
	})
}
