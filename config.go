// Package gusort configuration constants
package gusort

// SIMT geometry. A tile is a cooperative group of lanes executing with shared
// on-chip state; a wave is the fixed-width sub-group with collective ops.
const (
	// WaveWidth is the number of lanes in one wave
	WaveWidth = 32

	// TileThreads is the number of lanes in one tile
	TileThreads = 256

	// WavesPerTile is the number of waves in one tile
	WavesPerTile = TileThreads / WaveWidth

	// KeysPerLane is the number of keys each lane holds in registers
	// during a binning pass
	KeysPerLane = 15

	// PartSize is the number of keys one tile processes per binning pass
	PartSize = TileThreads * KeysPerLane
)

// Radix sort parameters
const (
	// RadixBits is the digit width of one LSD pass
	RadixBits = 8

	// Radix is the number of distinct digit values per pass
	Radix = 1 << RadixBits

	// RadixMask extracts the active digit after shifting
	RadixMask = Radix - 1

	// KeyBits is the bit width of sortable keys
	KeyBits = 32

	// RadixPasses is the number of LSD passes covering a full key
	RadixPasses = KeyBits / RadixBits
)

// Decoupled look-back slot encoding. A pass-histogram slot packs a 30-bit
// count with a 2-bit status in the high bits.
const (
	flagNotReady  uint32 = 0
	flagReduction uint32 = 1 << 30
	flagInclusive uint32 = 2 << 30
	flagMask      uint32 = 3 << 30
	countMask     uint32 = 1<<30 - 1
)

// MaxSortKeys is the largest key count the look-back slot encoding supports.
const MaxSortKeys = int(countMask)

// SplitSort binning parameters
const (
	// PackedBinCapacity is the element capacity of a packed bin; segments no
	// longer than this are candidates for multi-segment packing
	PackedBinCapacity = 32

	// SegmentClasses is the number of segment size classes: packed, eight
	// doubling classes (32,64] .. (4096,8192], and the open-ended top class
	SegmentClasses = 10

	// MergeClassLimit is the largest segment length handled by the block
	// merge path; longer segments go through the radix pipeline
	MergeClassLimit = 8192
)

// Memory pool parameters
const (
	// MemoryAlignment for device allocations, matching cache line size
	MemoryAlignment = 64
)
