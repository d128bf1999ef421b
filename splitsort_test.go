package gusort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegClassBoundaries(t *testing.T) {
	cases := []struct {
		length uint32
		class  int
	}{
		{1, 0},
		{PackedBinCapacity, 0},
		{PackedBinCapacity + 1, 1},
		{64, 1},
		{65, 2},
		{128, 2},
		{4096, 7},
		{4097, 8},
		{MergeClassLimit, 8},
		{MergeClassLimit + 1, 9},
		{1 << 20, 9},
	}
	for _, c := range cases {
		assert.Equal(t, c.class, segClassOf(c.length), "length %d", c.length)
	}
}

func buildBinsForTest(t *testing.T, lengths []uint32) segmentBins {
	t.Helper()
	ctx := NewContext()
	defer ctx.Destroy()
	return buildSegmentBins(ctx, ctx.DefaultStream(), lengths, ctx.scanner)
}

func TestPackingNextFit(t *testing.T) {
	// 10+10+10 fits one bin; the next 10 overflows and opens a second.
	b := buildBinsForTest(t, []uint32{10, 10, 10, 10})
	require.Len(t, b.binSegStart, 2)
	assert.Equal(t, uint32(3), b.binSegCount[0])
	assert.Equal(t, uint32(1), b.binSegCount[1])
	assert.Equal(t, uint32(3), b.binSegStart[1])
}

// A long segment breaks a packed run even when capacity remains: the two
// short neighbors land in separate bins.
func TestPackingBrokenByLongSegment(t *testing.T) {
	b := buildBinsForTest(t, []uint32{5, 100, 5})
	require.Len(t, b.binSegStart, 3)
	assert.Equal(t, uint8(0), b.binClass[0])
	assert.Equal(t, uint8(2), b.binClass[1])
	assert.Equal(t, uint8(0), b.binClass[2])
	for _, c := range b.binSegCount {
		assert.Equal(t, uint32(1), c)
	}
}

func TestClassOffsetsPartitionOrder(t *testing.T) {
	lengths, _ := GenerateSegmentLayout(1<<16, 20000, 80, 42)
	b := buildBinsForTest(t, lengths)

	bins := len(b.binSegStart)
	require.Equal(t, uint32(bins), b.classOffsets[SegmentClasses])
	require.Len(t, b.order, bins)

	// order is a permutation, grouped by class, stable inside each class.
	seen := make([]bool, bins)
	for c := 0; c < SegmentClasses; c++ {
		lo, hi := b.classOffsets[c], b.classOffsets[c+1]
		assert.Equal(t, b.classHist[c], hi-lo, "class %d size", c)
		prev := -1
		for i := lo; i < hi; i++ {
			bin := int(b.order[i])
			require.False(t, seen[bin], "bin %d listed twice", bin)
			seen[bin] = true
			assert.Equal(t, uint8(c), b.binClass[bin])
			assert.Greater(t, bin, prev, "class %d order not stable", c)
			prev = bin
		}
	}
}

func TestBinInvariantsOverRandomLayouts(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		lengths, _ := GenerateSegmentLayout(1<<15, 10000, 60, seed)
		b := buildBinsForTest(t, lengths)
		assert.Zero(t, checkBinInvariants(&b, lengths), "seed %d", seed)
	}
}

func TestBinLength(t *testing.T) {
	lengths := []uint32{10, 10, 10, 500}
	b := buildBinsForTest(t, lengths)
	require.Len(t, b.binSegStart, 2)
	assert.Equal(t, uint32(30), b.binLength(0, lengths))
	assert.Equal(t, uint32(500), b.binLength(1, lengths))
}

func TestBinsCoverEverySegmentOnce(t *testing.T) {
	lengths, _ := GenerateUniformSegmentLayout(1<<14, 3000, 17)
	b := buildBinsForTest(t, lengths)

	covered := make([]bool, len(lengths))
	for bin := range b.binSegStart {
		first := b.binSegStart[bin]
		for seg := first; seg < first+b.binSegCount[bin]; seg++ {
			require.False(t, covered[seg], "segment %d in two bins", seg)
			covered[seg] = true
		}
	}
	for seg, ok := range covered {
		require.True(t, ok, "segment %d unbinned", seg)
	}
}
