package gusort

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateUint32 generates deterministic uint32 test keys using a linear
// congruential generator (LCG). This ensures reproducible tests across runs.
//
// Parameters:
//   - size: Number of keys to generate
//   - seed: Random seed for reproducibility
func GenerateUint32(size int, seed uint64) []uint32 {
	data := make([]uint32, size)
	rng := seed
	for i := range data {
		rng = rng*1103515245 + 12345 // LCG parameters from Numerical Recipes
		data[i] = uint32(rng >> 16)
	}
	return data
}

// GenerateInt32 generates deterministic int32 keys spanning negative and
// positive values.
func GenerateInt32(size int, seed uint64) []int32 {
	raw := GenerateUint32(size, seed)
	data := make([]int32, size)
	for i, v := range raw {
		data[i] = int32(v)
	}
	return data
}

// GenerateFloat32 generates deterministic float32 keys in (-scale, scale),
// including negative values so the sign-aware digit transform is exercised.
func GenerateFloat32(size int, seed uint64, scale float32) []float32 {
	raw := GenerateUint32(size, seed)
	data := make([]float32, size)
	for i, v := range raw {
		data[i] = (float32(v)/float32(1<<32) - 0.5) * 2 * scale
	}
	return data
}

// Float32EdgeCases returns keys exercising sign, zero and extreme handling
// of the float digit transform. NaN is excluded: its relative order is
// undefined by contract.
func Float32EdgeCases() []float32 {
	return []float32{
		0.0,
		float32(math.Copysign(0, -1)),
		1.0,
		-1.0,
		math.SmallestNonzeroFloat32,
		-math.SmallestNonzeroFloat32,
		math.MaxFloat32,
		-math.MaxFloat32,
		float32(math.Inf(1)),
		float32(math.Inf(-1)),
		1e-38,
		-1e-38,
		1e38,
		-1e38,
	}
}

// GenerateSegmentLayout draws segment lengths from an exponential
// distribution, rounded up to at least 1 and clamped to maxLen, until the
// running total reaches target. Exponential lengths reproduce the skew that
// makes bin packing worthwhile: most segments tiny, a heavy tail of large
// ones.
func GenerateSegmentLayout(target, maxLen int, mean float64, seed uint64) (lengths []uint32, total int) {
	dist := distuv.Exponential{
		Rate: 1 / mean,
		Src:  rand.NewSource(seed),
	}
	for total < target {
		l := int(dist.Rand()) + 1
		if l > maxLen {
			l = maxLen
		}
		if total+l > target {
			l = target - total
		}
		lengths = append(lengths, uint32(l))
		total += l
	}
	return lengths, total
}

// GenerateUniformSegmentLayout draws segment lengths uniformly from
// [1, maxLen] until the running total reaches target, truncating the last
// segment so the total is exact.
func GenerateUniformSegmentLayout(target, maxLen int, seed uint64) (lengths []uint32, total int) {
	dist := distuv.Uniform{
		Min: 1,
		Max: float64(maxLen + 1),
		Src: rand.NewSource(seed),
	}
	for total < target {
		l := int(dist.Rand())
		if l < 1 {
			l = 1
		}
		if l > maxLen {
			l = maxLen
		}
		if total+l > target {
			l = target - total
		}
		lengths = append(lengths, uint32(l))
		total += l
	}
	return lengths, total
}
