package gusort

import "testing"

func TestGenerateUint32Deterministic(t *testing.T) {
	a := GenerateUint32(1000, 42)
	b := GenerateUint32(1000, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
	c := GenerateUint32(1000, 43)
	same := 0
	for i := range a {
		if a[i] == c[i] {
			same++
		}
	}
	if same == len(a) {
		t.Errorf("different seeds produced identical data")
	}
}

func TestGenerateFloat32SignCoverage(t *testing.T) {
	data := GenerateFloat32(10000, 7, 100)
	var neg, pos int
	for _, v := range data {
		if v < 0 {
			neg++
		} else if v > 0 {
			pos++
		}
		if v < -100 || v > 100 {
			t.Fatalf("value %v outside scale", v)
		}
	}
	if neg == 0 || pos == 0 {
		t.Errorf("signs not covered: %d negative, %d positive", neg, pos)
	}
}

func TestSegmentLayoutsHitTarget(t *testing.T) {
	for _, target := range []int{100, 1 << 14, 1 << 17} {
		lengths, total := GenerateSegmentLayout(target, 5000, 50, 3)
		if total != target {
			t.Errorf("exponential layout total %d, want %d", total, target)
		}
		for _, l := range lengths {
			if l < 1 || l > 5000 {
				t.Fatalf("exponential length %d out of range", l)
			}
		}

		lengths, total = GenerateUniformSegmentLayout(target, 999, 5)
		if total != target {
			t.Errorf("uniform layout total %d, want %d", total, target)
		}
		for _, l := range lengths {
			if l < 1 || l > 999 {
				t.Fatalf("uniform length %d out of range", l)
			}
		}
	}
}
