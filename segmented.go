package gusort

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SplitSort driver: independent variable-length segments of one flat key
// buffer are binned by size class, then each class range dispatches to the
// strategy suited to its scale: wave bitonic networks for packed short
// segments, block merge for the mid classes, and the multi-pass radix
// pipeline reused per segment for the largest class.

// SegScratch is the opaque temporary-memory handle of segmented sorts,
// sized by SegmentedScratchSize and never resized during a call.
type SegScratch struct {
	mem         DevicePtr
	maxTotalLen int
	maxSegCount int
	tiles       int
	globalHist  DevicePtr
	passHist    DevicePtr
	altKeys     DevicePtr
	altPayloads DevicePtr
	lengths     DevicePtr
}

// SegmentedScratchSize returns the scratch bytes segmented sorting needs for
// up to maxTotalLen total keys across up to maxSegCount segments. It is a
// pure function of its arguments.
func SegmentedScratchSize(maxTotalLen, maxSegCount int) int {
	tiles := tileCount(maxTotalLen)
	words := RadixPasses*Radix + // global histogram
		RadixPasses*(tiles+1)*Radix + // pass tables
		2*roundUpPart(maxTotalLen) + // alternate key/payload buffers
		maxSegCount // segment lengths
	return words * 4
}

// ReserveSegmented sizes the sorter's segmented scratch. It must be called
// before the first SegmentedSort.
func (s *Sorter) ReserveSegmented(maxTotalLen, maxSegCount int) error {
	if maxTotalLen < 1 || maxSegCount < 1 {
		return NewInvalidArgError("ReserveSegmented", "maxTotalLen and maxSegCount must be at least 1")
	}
	if s.segScratch != nil {
		if s.segScratch.maxTotalLen >= maxTotalLen && s.segScratch.maxSegCount >= maxSegCount {
			return nil
		}
		if err := s.ctx.Free(s.segScratch.mem); err != nil {
			return err
		}
		s.segScratch = nil
	}

	mem, err := s.ctx.Malloc(SegmentedScratchSize(maxTotalLen, maxSegCount))
	if err != nil {
		return errors.Wrap(err, "allocating segmented scratch")
	}
	tiles := tileCount(maxTotalLen)
	sc := &SegScratch{mem: mem, maxTotalLen: maxTotalLen, maxSegCount: maxSegCount, tiles: tiles}

	off := 0
	take := func(words int) DevicePtr {
		p := mem.Slice(off, words*4)
		off += words * 4
		return p
	}
	sc.globalHist = take(RadixPasses * Radix)
	sc.passHist = take(RadixPasses * (tiles + 1) * Radix)
	sc.altKeys = take(roundUpPart(maxTotalLen))
	sc.altPayloads = take(roundUpPart(maxTotalLen))
	sc.lengths = take(maxSegCount)
	s.segScratch = sc
	return nil
}

// SegmentedSort sorts each of segCount segments of dKeys ascending and in
// place, reordering dPayloads in lockstep when non-nil. dSegOffsets holds
// segCount strictly increasing start offsets with offsets[0] == 0 and the
// last offset below totalLen; segment i spans [offsets[i], offsets[i+1])
// and the last segment ends at totalLen. Only the low bitsToSort key bits
// participate in the radix path. Segments never merge or reorder.
func (s *Sorter) SegmentedSort(dKeys, dPayloads, dSegOffsets DevicePtr, segCount, totalLen, bitsToSort int) error {
	if err := s.checkSegmentedArgs(dKeys, dPayloads, dSegOffsets, segCount, totalLen, bitsToSort); err != nil {
		return err
	}
	sc := s.segScratch

	keys := dKeys.Uint32()[:totalLen]
	var pay []uint32
	if !dPayloads.IsNil() {
		pay = dPayloads.Uint32()[:totalLen]
	}
	offsets := dSegOffsets.Uint32()[:segCount]
	lengths := sc.lengths.Uint32()[:segCount]

	// Segment lengths from consecutive offsets; the last segment closes at
	// totalLen.
	tiles := (segCount + TileThreads - 1) / TileThreads
	if err := s.ctx.LaunchTilesStream(tiles, s.stream, func(tile int) {
		lo, hi := tile*TileThreads, (tile+1)*TileThreads
		if hi > segCount {
			hi = segCount
		}
		for i := lo; i < hi; i++ {
			if i == segCount-1 {
				lengths[i] = uint32(totalLen) - offsets[i]
			} else {
				lengths[i] = offsets[i+1] - offsets[i]
			}
		}
	}); err != nil {
		return errors.Wrap(err, "deriving segment lengths")
	}
	s.stream.Synchronize()

	bins := buildSegmentBins(s.ctx, s.stream, lengths, s.ctx.scanner)

	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"segments": segCount,
			"totalLen": totalLen,
			"bins":     len(bins.binSegStart),
			"bits":     bitsToSort,
		}).Debug("segmented sort dispatch")
	}

	if err := s.dispatchPackedBins(&bins, keys, pay, offsets, lengths); err != nil {
		return err
	}
	if err := s.dispatchMergeBins(&bins, keys, pay, offsets, lengths); err != nil {
		return err
	}
	if err := s.dispatchRadixBins(&bins, keys, pay, offsets, lengths, bitsToSort); err != nil {
		return err
	}

	s.stream.Synchronize()
	return nil
}

// checkSegmentedArgs rejects invalid descriptors and capacity violations
// before anything is launched.
func (s *Sorter) checkSegmentedArgs(dKeys, dPayloads, dSegOffsets DevicePtr, segCount, totalLen, bitsToSort int) error {
	if segCount < 1 {
		return NewInvalidArgError("SegmentedSort", "segment count must be at least 1")
	}
	if totalLen < 1 {
		return NewInvalidArgError("SegmentedSort", "total length must be at least 1")
	}
	if bitsToSort < 1 || bitsToSort > KeyBits {
		return NewInvalidArgError("SegmentedSort", "bitsToSort out of range")
	}
	if s.segScratch == nil || s.segScratch.maxTotalLen < totalLen || s.segScratch.maxSegCount < segCount {
		return NewCapacityError("SegmentedSort", "segmented scratch not reserved for this call; call ReserveSegmented first")
	}
	if dKeys.IsNil() || dKeys.Size() < totalLen*4 {
		return NewCapacityError("SegmentedSort", "key buffer smaller than total length")
	}
	if !dPayloads.IsNil() && dPayloads.Size() < totalLen*4 {
		return NewCapacityError("SegmentedSort", "payload buffer smaller than total length")
	}
	if dSegOffsets.IsNil() || dSegOffsets.Size() < segCount*4 {
		return NewCapacityError("SegmentedSort", "segment descriptor buffer smaller than segment count")
	}
	offsets := dSegOffsets.Uint32()[:segCount]
	if offsets[0] != 0 {
		return NewInvalidArgError("SegmentedSort", "first segment offset must be 0")
	}
	for i := 1; i < segCount; i++ {
		if offsets[i] <= offsets[i-1] {
			return NewInvalidArgError("SegmentedSort", "segment offsets must be strictly increasing")
		}
	}
	if int(offsets[segCount-1]) >= totalLen {
		return NewInvalidArgError("SegmentedSort", "last segment offset must be below total length")
	}
	return nil
}

// dispatchPackedBins sorts class 0: each bin's packed run of short segments
// is handled by one wave, one bitonic network launch per segment.
func (s *Sorter) dispatchPackedBins(b *segmentBins, keys, pay, offsets, lengths []uint32) error {
	lo, hi := b.classOffsets[0], b.classOffsets[1]
	if lo == hi {
		return nil
	}
	order := b.order[lo:hi]
	return s.ctx.LaunchTilesStream(len(order), s.stream, func(i int) {
		bin := order[i]
		first := b.binSegStart[bin]
		for seg := first; seg < first+b.binSegCount[bin]; seg++ {
			a := offsets[seg]
			z := a + lengths[seg]
			var vs []uint32
			if pay != nil {
				vs = pay[a:z]
			}
			waveBitonicSort(keys[a:z], vs)
		}
	})
}

// dispatchMergeBins sorts classes 1 through 8: one tile per bin, block merge
// in tile-local memory.
func (s *Sorter) dispatchMergeBins(b *segmentBins, keys, pay, offsets, lengths []uint32) error {
	lo, hi := b.classOffsets[1], b.classOffsets[SegmentClasses-1]
	if lo == hi {
		return nil
	}
	order := b.order[lo:hi]
	return s.ctx.LaunchTilesStream(len(order), s.stream, func(i int) {
		bin := order[i]
		seg := b.binSegStart[bin]
		a := offsets[seg]
		z := a + lengths[seg]
		var vs, tmpV []uint32
		tmpK := make([]uint32, z-a)
		if pay != nil {
			vs = pay[a:z]
			tmpV = make([]uint32, z-a)
		}
		blockMergeSort(keys[a:z], vs, tmpK, tmpV)
	})
}

// dispatchRadixBins sorts the open-ended top class by reusing the radix
// pipeline per segment. Bins run one after another because they share the
// pass tables and alternate buffers of the segmented scratch.
func (s *Sorter) dispatchRadixBins(b *segmentBins, keys, pay, offsets, lengths []uint32, bitsToSort int) error {
	lo, hi := b.classOffsets[SegmentClasses-1], b.classOffsets[SegmentClasses]
	for i := lo; i < hi; i++ {
		bin := b.order[i]
		seg := b.binSegStart[bin]
		a := offsets[seg]
		z := a + lengths[seg]
		var vs []uint32
		if pay != nil {
			vs = pay[a:z]
		}
		if err := s.sortRangeRadix(keys[a:z], vs, bitsToSort); err != nil {
			return errors.Wrapf(err, "radix bin of segment %d", seg)
		}
	}
	return nil
}

// sortRangeRadix sorts one key range ascending with ceil(bitsToSort/8)
// upsweep/scan radix passes, using the segmented scratch for histograms and
// the ping-pong buffer. An odd pass count leaves the result in the
// alternate buffer, so it is copied back.
func (s *Sorter) sortRangeRadix(keys, pay []uint32, bitsToSort int) error {
	sc := s.segScratch
	n := len(keys)
	tiles := tileCount(n)
	passes := (bitsToSort + RadixBits - 1) / RadixBits

	globalHist := sc.globalHist.Uint32()
	s.ctx.LaunchTilesStream(1, s.stream, func(int) {
		for i := range globalHist {
			globalHist[i] = 0
		}
	})
	if err := s.launchSegGlobalHist(keys, n, passes, globalHist); err != nil {
		return err
	}
	if err := s.ctx.LaunchTilesStream(passes, s.stream, func(pass int) {
		exclusiveScan256(globalHist[pass*Radix : (pass+1)*Radix])
	}); err != nil {
		return err
	}

	altKeys := sc.altKeys.Uint32()[:roundUpPart(n)]
	var altPay []uint32
	if pay != nil {
		altPay = sc.altPayloads.Uint32()[:roundUpPart(n)]
	}
	src, dst := keys, altKeys
	srcPay, dstPay := pay, altPay

	for pass := 0; pass < passes; pass++ {
		shift := uint(pass * RadixBits)
		stride := (sc.tiles + 1) * Radix
		table := sc.passHist.Uint32()[pass*stride : pass*stride+Radix*tiles]
		if err := s.launchUpsweep(src, n, tiles, shift, table); err != nil {
			return err
		}
		if err := s.launchScanPassHist(table, tiles); err != nil {
			return err
		}
		base := globalHist[pass*Radix : (pass+1)*Radix]
		err := s.launchBinningPass(binningArgs{
			src: src, dst: dst,
			srcPay: srcPay, dstPay: dstPay,
			n: n, tiles: tiles, shift: shift,
			offsets: func(tile int, _ *[Radix]uint32) [Radix]uint32 {
				var out [Radix]uint32
				for d := 0; d < Radix; d++ {
					out[d] = base[d] + table[d*tiles+tile]
				}
				return out
			},
		})
		if err != nil {
			return err
		}
		src, dst = dst, src
		srcPay, dstPay = dstPay, srcPay
	}

	if passes%2 == 1 {
		if err := s.ctx.LaunchTilesStream(tiles, s.stream, func(tile int) {
			lo, hi := tile*PartSize, (tile+1)*PartSize
			if hi > n {
				hi = n
			}
			copy(keys[lo:hi], altKeys[lo:hi])
			if pay != nil {
				copy(pay[lo:hi], altPay[lo:hi])
			}
		}); err != nil {
			return err
		}
	}
	s.stream.Synchronize()
	return nil
}

// launchSegGlobalHist histograms a segment's keys for only the passes its
// bit budget needs.
func (s *Sorter) launchSegGlobalHist(keys []uint32, n, passes int, globalHist []uint32) error {
	tiles := tileCount(n)
	return s.ctx.LaunchTilesStream(tiles, s.stream, func(tile int) {
		base := tile * PartSize
		end := base + PartSize
		if end > n {
			end = n
		}
		var local [RadixPasses][Radix]uint32
		for i := base; i < end; i++ {
			k := keys[i]
			for pass := 0; pass < passes; pass++ {
				local[pass][extractDigit(k, uint(pass*RadixBits))]++
			}
		}
		for pass := 0; pass < passes; pass++ {
			row := globalHist[pass*Radix : (pass+1)*Radix]
			for d := 0; d < Radix; d++ {
				if c := local[pass][d]; c != 0 {
					atomic.AddUint32(&row[d], c)
				}
			}
		}
	})
}
