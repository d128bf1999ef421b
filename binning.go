package gusort

// Digit binning / scatter: the downsweep kernel. Each tile ranks its
// PartSize keys by the active digit with a wave-level multisplit, folds the
// wave histograms into tile-relative ranks, resolves the tile's global digit
// offsets (look-back or pre-scanned table), and scatters keys and payloads
// to the alternate buffer. The scatter address for a key is
//
//	globalDigitBase + precedingTileCount + inTileRank
//
// which is injective over all n keys of a pass.

// tileOffsetsFn resolves, for one tile, the per-digit sum of the global
// digit base and all preceding tiles' counts. The tile's own digit counts
// are passed in so the look-back variant can publish them first.
type tileOffsetsFn func(tile int, tileHist *[Radix]uint32) [Radix]uint32

// binningArgs carries one pass's inputs through the kernel launch.
type binningArgs struct {
	src, dst       []uint32
	srcPay, dstPay []uint32
	n, tiles       int
	shift          uint
	offsets        tileOffsetsFn
	reflect        bool // reflect destinations for descending order
}

// launchBinningPass scatters one full radix pass.
func (s *Sorter) launchBinningPass(a binningArgs) error {
	return s.ctx.LaunchTilesStream(a.tiles, s.stream, func(tile int) {
		binTile(&a, tile)
	})
}

// binTile processes one tile of a binning pass. Keys are ranked one 32-wide
// wave group at a time; the last (possibly partial) tile takes the same path
// with the group width clamped to the remaining key count, preserving the
// scatter address formula exactly.
func binTile(a *binningArgs, tile int) {
	base := tile * PartSize
	count := a.n - base
	if count > PartSize {
		count = PartSize
	}

	var digits [PartSize]uint8
	var ranks [PartSize]uint16
	var waveHist [WavesPerTile][Radix]uint32
	var masks WaveRegs

	// Rank phase: wave-level multisplit per 32-key group. A lane's rank is
	// the count of lower lanes in its same-digit mask, offset by the wave
	// histogram as it stood before this group; the lowest lane of each mask
	// then bumps the histogram by the mask population.
	for g0 := 0; g0 < count; g0 += WaveWidth {
		lanes := count - g0
		if lanes > WaveWidth {
			lanes = WaveWidth
		}
		active := FullWaveMask
		if lanes < WaveWidth {
			active = LaneMaskLT(lanes)
		}
		wave := g0 / WaveWidth / KeysPerLane

		var digRegs WaveRegs
		for lane := 0; lane < lanes; lane++ {
			digRegs[lane] = extractDigit(a.src[base+g0+lane], a.shift)
		}

		var bitBallots [RadixBits]uint32
		for bit := uint(0); bit < RadixBits; bit++ {
			bitBallots[bit] = BallotBit(&digRegs, active, bit)
		}

		for lane := 0; lane < lanes; lane++ {
			mask := matchFromBallots(&bitBallots, digRegs[lane], active)
			masks[lane] = mask
			d := digRegs[lane]
			digits[g0+lane] = uint8(d)
			ranks[g0+lane] = uint16(waveHist[wave][d] + Popcount(mask&LaneMaskLT(lane)))
		}
		for lane := 0; lane < lanes; lane++ {
			if IsLowestLane(masks[lane], lane) {
				waveHist[wave][digRegs[lane]] += Popcount(masks[lane])
			}
		}
	}

	// Reduce wave histograms: tile totals per digit, then exclusive wave
	// offsets so every rank becomes unique within the tile.
	var tileHist [Radix]uint32
	for d := 0; d < Radix; d++ {
		var run uint32
		for w := 0; w < WavesPerTile; w++ {
			c := waveHist[w][d]
			waveHist[w][d] = run
			run += c
		}
		tileHist[d] = run
	}

	offsets := a.offsets(tile, &tileHist)

	// Scatter phase: keys and payloads leave through the same address.
	for i := 0; i < count; i++ {
		wave := i / WaveWidth / KeysPerLane
		d := digits[i]
		dest := offsets[d] + waveHist[wave][d] + uint32(ranks[i])
		if a.reflect {
			dest = uint32(a.n) - dest - 1
		}
		a.dst[dest] = a.src[base+i]
		if a.srcPay != nil {
			a.dstPay[dest] = a.srcPay[base+i]
		}
	}
}
