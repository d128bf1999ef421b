package gusort

// Wave-level sorting for the smallest SplitSort size classes. A segment of
// at most WaveWidth keys is padded into a full 32-slot wave register file
// and run through a bitonic sorting network: compare-exchange distances are
// the classic power-of-two schedule, so the network is identical for every
// segment and maps one lane per slot on real hardware.

const padItem = ^uint64(0)

// waveBitonicSort sorts keys[:n] ascending (n <= WaveWidth), carrying vals
// along when non-nil. Each slot packs key and original lane so the network
// is stable and padding (all-ones items) sinks cleanly past real keys even
// when a key equals the maximum value.
func waveBitonicSort(keys, vals []uint32) {
	n := len(keys)
	var items [WaveWidth]uint64
	for lane := 0; lane < WaveWidth; lane++ {
		if lane < n {
			items[lane] = uint64(keys[lane])<<32 | uint64(lane)
		} else {
			items[lane] = padItem
		}
	}

	for size := 2; size <= WaveWidth; size <<= 1 {
		for stride := size >> 1; stride > 0; stride >>= 1 {
			for lane := 0; lane < WaveWidth; lane++ {
				partner := lane ^ stride
				if partner <= lane {
					continue
				}
				ascending := lane&size == 0
				if (items[lane] > items[partner]) == ascending {
					items[lane], items[partner] = items[partner], items[lane]
				}
			}
		}
	}

	var sortedVals [WaveWidth]uint32
	if vals != nil {
		for lane := 0; lane < n; lane++ {
			sortedVals[lane] = vals[items[lane]&0xFFFFFFFF]
		}
	}
	for lane := 0; lane < n; lane++ {
		keys[lane] = uint32(items[lane] >> 32)
	}
	if vals != nil {
		copy(vals, sortedVals[:n])
	}
}

// insertionSort is the scalar fallback used while forming sorted leaf runs
// for the block merge path.
func insertionSort(keys, vals []uint32) {
	for i := 1; i < len(keys); i++ {
		k := keys[i]
		var v uint32
		if vals != nil {
			v = vals[i]
		}
		j := i - 1
		for j >= 0 && keys[j] > k {
			keys[j+1] = keys[j]
			if vals != nil {
				vals[j+1] = vals[j]
			}
			j--
		}
		keys[j+1] = k
		if vals != nil {
			vals[j+1] = v
		}
	}
}
