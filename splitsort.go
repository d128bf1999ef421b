package gusort

import "sync/atomic"

// Segment binning for SplitSort. Segments are grouped into fixed-capacity
// execution bins: runs of very short segments are packed many-to-a-bin so a
// single wave sorts several segments in one dispatch, while longer segments
// get one bin each in a doubling ladder of size classes. The per-class bin
// counts become dispatch ranges, one range per sort strategy.

// segClassOf returns the size class of a segment length: class 0 holds
// packing candidates (length <= PackedBinCapacity); class k in 1..8 holds
// lengths in the open-closed interval (PackedBinCapacity<<(k-1),
// PackedBinCapacity<<k]; class 9 is open-ended above MergeClassLimit.
func segClassOf(length uint32) int {
	if length <= PackedBinCapacity {
		return 0
	}
	for k := 1; k < SegmentClasses-1; k++ {
		if length <= PackedBinCapacity<<uint(k) {
			return k
		}
	}
	return SegmentClasses - 1
}

// segmentBins is the bin layout produced by the binning engine for one
// segmented-sort invocation. Bin i covers binSegCount[i] consecutive
// segments starting at binSegStart[i]; binSegCount[i] > 1 only for packed
// bins. order lists bin indices grouped by class: class c's bins are
// order[classOffsets[c]:classOffsets[c+1]].
type segmentBins struct {
	binSegStart  []uint32
	binSegCount  []uint32
	binClass     []uint8
	classHist    [SegmentClasses]uint32
	classOffsets [SegmentClasses + 1]uint32
	order        []uint32
}

// buildSegmentBins runs the binning engine over the segment lengths.
//
// Packing is greedy next-fit over consecutive segments: the current packed
// bin accumulates short segments while the running total stays within
// PackedBinCapacity, and closes when the next short segment would overflow
// it or a longer segment breaks the run. The consecutive-run rule keeps a
// packed bin's segments contiguous in the descriptor array, which is what
// lets a wave walk them with one base index.
func buildSegmentBins(ctx *Context, stream *Stream, lengths []uint32, scanner PrefixScanner) segmentBins {
	var b segmentBins

	// Ordered pass: emit bin records in segment order. Next-fit packing is
	// a serial recurrence, so this pass is not tiled.
	var packedLen uint32
	packedOpen := false
	for i, length := range lengths {
		class := segClassOf(length)
		if class == 0 {
			if packedOpen && packedLen+length <= PackedBinCapacity {
				packedLen += length
				b.binSegCount[len(b.binSegCount)-1]++
				continue
			}
			b.binSegStart = append(b.binSegStart, uint32(i))
			b.binSegCount = append(b.binSegCount, 1)
			b.binClass = append(b.binClass, 0)
			packedLen = length
			packedOpen = true
			continue
		}
		packedOpen = false
		b.binSegStart = append(b.binSegStart, uint32(i))
		b.binSegCount = append(b.binSegCount, 1)
		b.binClass = append(b.binClass, uint8(class))
	}

	bins := len(b.binSegStart)
	b.order = make([]uint32, bins)

	// Class histogram over bins, accumulated with atomic adds so the
	// counting tiles can run in any order.
	hist := make([]uint32, SegmentClasses)
	tiles := (bins + TileThreads - 1) / TileThreads
	binClass := b.binClass
	ctx.LaunchTilesStream(tiles, stream, func(tile int) {
		lo, hi := tile*TileThreads, (tile+1)*TileThreads
		if hi > bins {
			hi = bins
		}
		var local [SegmentClasses]uint32
		for i := lo; i < hi; i++ {
			local[binClass[i]]++
		}
		for c := 0; c < SegmentClasses; c++ {
			if local[c] != 0 {
				atomic.AddUint32(&hist[c], local[c])
			}
		}
	})
	stream.Synchronize()
	copy(b.classHist[:], hist)

	// Dispatch ranges from the exclusive scan of the class histogram.
	total := scanner.ExclusiveScan(b.classOffsets[:SegmentClasses], b.classHist[:])
	b.classOffsets[SegmentClasses] = total

	// Stable scatter of bin indices into class-grouped order.
	var cursors [SegmentClasses]uint32
	copy(cursors[:], b.classOffsets[:SegmentClasses])
	for i := 0; i < bins; i++ {
		c := b.binClass[i]
		b.order[cursors[c]] = uint32(i)
		cursors[c]++
	}

	return b
}

// binLength returns the total key count covered by a bin.
func (b *segmentBins) binLength(bin int, lengths []uint32) uint32 {
	var sum uint32
	first := b.binSegStart[bin]
	for s := first; s < first+b.binSegCount[bin]; s++ {
		sum += lengths[s]
	}
	return sum
}
