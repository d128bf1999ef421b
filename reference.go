// Package gusort reference implementations for verification
package gusort

import (
	"math"
	"sort"
)

// Reference contains simple, correct implementations of the sorting
// operations. These are used for testing and verification of the tiled
// kernels, never on the production path.
type Reference struct{}

// SortKeys sorts raw keys under a numeric interpretation and direction.
func (Reference) SortKeys(keys []uint32, kt KeyType, order Order) {
	sort.SliceStable(keys, func(i, j int) bool {
		if order == Descending {
			return keyLess(keys[j], keys[i], kt)
		}
		return keyLess(keys[i], keys[j], kt)
	})
}

// SortPairs stably sorts keys ascending, carrying values.
func (Reference) SortPairs(keys, vals []uint32, kt KeyType, order Order) {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if order == Descending {
			return keyLess(keys[j], keys[i], kt)
		}
		return keyLess(keys[i], keys[j], kt)
	})
	outK := make([]uint32, len(keys))
	outV := make([]uint32, len(vals))
	for p, i := range idx {
		outK[p] = keys[i]
		if vals != nil {
			outV[p] = vals[i]
		}
	}
	copy(keys, outK)
	if vals != nil {
		copy(vals, outV)
	}
}

// SortSegments sorts each segment of keys ascending in place.
func (Reference) SortSegments(keys []uint32, offsets []uint32, totalLen int) {
	for i := range offsets {
		a := int(offsets[i])
		z := totalLen
		if i+1 < len(offsets) {
			z = int(offsets[i+1])
		}
		seg := keys[a:z]
		sort.Slice(seg, func(x, y int) bool { return seg[x] < seg[y] })
	}
}

// DigitHistogram counts digits of one pass over raw keys after the
// order-preserving transform, the reference for the histogram kernel.
func (Reference) DigitHistogram(keys []uint32, kt KeyType, shift uint) [Radix]uint32 {
	var hist [Radix]uint32
	for _, k := range keys {
		hist[extractDigit(toBits(k, kt), shift)]++
	}
	return hist
}

// ExclusiveScan is the serial reference for prefix-sum primitives.
func (Reference) ExclusiveScan(in []uint32) ([]uint32, uint32) {
	out := make([]uint32, len(in))
	var sum uint32
	for i, v := range in {
		out[i] = sum
		sum += v
	}
	return out, sum
}

// FloatOrdered reports whether a precedes-or-equals b in native float order,
// treating -0 and +0 as ties.
func (Reference) FloatOrdered(a, b uint32) bool {
	fa, fb := math.Float32frombits(a), math.Float32frombits(b)
	return fa <= fb
}
