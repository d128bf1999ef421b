package gusort

// Block-level merge sort for mid-range SplitSort size classes. One tile owns
// the whole segment: leaf runs of WaveWidth keys are sorted with the wave
// bitonic network, then runs are merged pairwise with doubling width through
// a tile-local ("on-chip") double buffer.

// blockMergeSort sorts keys ascending, carrying vals when non-nil. tmpK and
// tmpV must be at least len(keys) long; tmpV may be nil when vals is nil.
func blockMergeSort(keys, vals, tmpK, tmpV []uint32) {
	n := len(keys)
	if n <= 1 {
		return
	}

	// Leaf phase: sorted runs of WaveWidth. The ragged tail run takes the
	// scalar path instead of padding out a full wave.
	for lo := 0; lo < n; lo += WaveWidth {
		hi := lo + WaveWidth
		if hi > n {
			hi = n
		}
		var vs []uint32
		if vals != nil {
			vs = vals[lo:hi]
		}
		if hi-lo < WaveWidth {
			insertionSort(keys[lo:hi], vs)
		} else {
			waveBitonicSort(keys[lo:hi], vs)
		}
	}

	srcK, srcV := keys, vals
	dstK, dstV := tmpK[:n], tmpV
	if vals != nil {
		dstV = tmpV[:n]
	}

	for width := WaveWidth; width < n; width <<= 1 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := lo + width
			hi := lo + 2*width
			if mid > n {
				mid = n
			}
			if hi > n {
				hi = n
			}
			mergeRuns(srcK, srcV, dstK, dstV, lo, mid, hi)
		}
		srcK, dstK = dstK, srcK
		srcV, dstV = dstV, srcV
	}

	if &srcK[0] != &keys[0] {
		copy(keys, srcK)
		if vals != nil {
			copy(vals, srcV)
		}
	}
}

// mergeRuns merges src[lo:mid] and src[mid:hi] into dst[lo:hi], taking from
// the left run on ties so the merge is stable.
func mergeRuns(srcK, srcV, dstK, dstV []uint32, lo, mid, hi int) {
	i, j := lo, mid
	for k := lo; k < hi; k++ {
		if i < mid && (j >= hi || srcK[i] <= srcK[j]) {
			dstK[k] = srcK[i]
			if srcV != nil {
				dstV[k] = srcV[i]
			}
			i++
		} else {
			dstK[k] = srcK[j]
			if srcV != nil {
				dstV[k] = srcV[j]
			}
			j++
		}
	}
}
