package gusort

// KeyType selects the numeric interpretation of 32-bit keys.
type KeyType int

const (
	// KeyUint32 sorts keys as unsigned integers
	KeyUint32 KeyType = iota
	// KeyInt32 sorts keys as two's-complement signed integers
	KeyInt32
	// KeyFloat32 sorts keys as IEEE-754 single-precision floats. NaN keys
	// have no defined relative order.
	KeyFloat32
)

// String returns the key type as a string
func (k KeyType) String() string {
	switch k {
	case KeyUint32:
		return "uint32"
	case KeyInt32:
		return "int32"
	case KeyFloat32:
		return "float32"
	default:
		return "unknown"
	}
}

// Order selects the direction of a device-wide sort.
type Order int

const (
	// Ascending sorts smallest key first
	Ascending Order = iota
	// Descending sorts largest key first
	Descending
)

// String returns the order as a string
func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// toBits maps a raw key to an unsigned bit pattern whose digit order equals
// the numeric order of the original key:
//
//   - uint32: identity
//   - int32: flip the sign bit, so two's-complement order becomes unsigned
//     order
//   - float32: flip the sign bit for non-negative values; flip every bit for
//     negative values. IEEE-754 magnitudes already order monotonically below
//     the sign bit, so the transformed patterns order as the floats do,
//     including -0.0 before +0.0 ties.
func toBits(key uint32, kt KeyType) uint32 {
	switch kt {
	case KeyInt32:
		return key ^ 0x80000000
	case KeyFloat32:
		mask := uint32(0x80000000)
		if key&0x80000000 != 0 {
			mask = 0xFFFFFFFF
		}
		return key ^ mask
	default:
		return key
	}
}

// fromBits inverts toBits.
func fromBits(bits uint32, kt KeyType) uint32 {
	switch kt {
	case KeyInt32:
		return bits ^ 0x80000000
	case KeyFloat32:
		mask := uint32(0x80000000)
		if bits&0x80000000 == 0 {
			mask = 0xFFFFFFFF
		}
		return bits ^ mask
	default:
		return bits
	}
}

// extractDigit returns the active RadixBits-wide digit of a transformed key.
func extractDigit(bits uint32, shift uint) uint32 {
	return bits >> shift & RadixMask
}
