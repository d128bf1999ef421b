package gusort

import (
	"math"
	"testing"
)

// The bit transform must be an order isomorphism: transformed unsigned
// comparison agrees with native comparison for every pair.
func TestTransformPreservesOrder(t *testing.T) {
	int32Cases := []int32{math.MinInt32, math.MinInt32 + 1, -2, -1, 0, 1, 2, math.MaxInt32 - 1, math.MaxInt32}
	for i := 0; i < len(int32Cases); i++ {
		for j := 0; j < len(int32Cases); j++ {
			a, b := int32Cases[i], int32Cases[j]
			ta := toBits(uint32(a), KeyInt32)
			tb := toBits(uint32(b), KeyInt32)
			if (a < b) != (ta < tb) {
				t.Errorf("int32 order broken: %d vs %d maps to %08x vs %08x", a, b, ta, tb)
			}
		}
	}

	floatCases := []float32{
		float32(math.Inf(-1)), -math.MaxFloat32, -1e10, -1, -math.SmallestNonzeroFloat32,
		math.SmallestNonzeroFloat32, 1, 1e10, math.MaxFloat32, float32(math.Inf(1)),
	}
	for i := 0; i < len(floatCases); i++ {
		for j := 0; j < len(floatCases); j++ {
			a, b := floatCases[i], floatCases[j]
			ta := toBits(math.Float32bits(a), KeyFloat32)
			tb := toBits(math.Float32bits(b), KeyFloat32)
			if (a < b) != (ta < tb) {
				t.Errorf("float32 order broken: %v vs %v maps to %08x vs %08x", a, b, ta, tb)
			}
		}
	}
}

func TestTransformNegativeZeroBelowPositiveZero(t *testing.T) {
	neg := toBits(math.Float32bits(float32(math.Copysign(0, -1))), KeyFloat32)
	pos := toBits(math.Float32bits(0), KeyFloat32)
	if neg >= pos {
		t.Errorf("-0 (%08x) must transform below +0 (%08x)", neg, pos)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	patterns := []uint32{0, 1, 0x7FFFFFFF, 0x80000000, 0x80000001, 0xFFFFFFFF, 0xDEADBEEF}
	patterns = append(patterns, GenerateUint32(1000, 4)...)
	for _, kt := range []KeyType{KeyUint32, KeyInt32, KeyFloat32} {
		for _, p := range patterns {
			if got := fromBits(toBits(p, kt), kt); got != p {
				t.Fatalf("%v: %08x round-trips to %08x", kt, p, got)
			}
		}
	}
}

func TestTransformUint32Identity(t *testing.T) {
	for _, p := range []uint32{0, 42, 0x80000000, 0xFFFFFFFF} {
		if toBits(p, KeyUint32) != p {
			t.Errorf("uint32 transform must be identity, changed %08x", p)
		}
	}
}

func TestExtractDigit(t *testing.T) {
	k := uint32(0xA1B2C3D4)
	cases := []struct {
		shift uint
		want  uint32
	}{
		{0, 0xD4},
		{8, 0xC3},
		{16, 0xB2},
		{24, 0xA1},
	}
	for _, c := range cases {
		if got := extractDigit(k, c.shift); got != c.want {
			t.Errorf("extractDigit(%08x, %d) = %02x, want %02x", k, c.shift, got, c.want)
		}
	}
}

func TestKeyTypeStrings(t *testing.T) {
	if KeyUint32.String() != "uint32" || KeyInt32.String() != "int32" || KeyFloat32.String() != "float32" {
		t.Errorf("key type names wrong: %s %s %s", KeyUint32, KeyInt32, KeyFloat32)
	}
	if Ascending.String() != "ascending" || Descending.String() != "descending" {
		t.Errorf("order names wrong: %s %s", Ascending, Descending)
	}
}
