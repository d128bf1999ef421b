package gusort

import "testing"

func TestGenerateSegmentLengthsMeetsTarget(t *testing.T) {
	cases := []struct {
		target, maxLen int
	}{
		{1, 1},
		{100, 10},
		{1 << 16, 500},
		{1 << 20, 20000},
	}
	for _, c := range cases {
		lengths := GenerateSegmentLengths(c.target, c.maxLen, 42)
		var total int
		for _, l := range lengths {
			if l < 1 || int(l) > c.maxLen {
				t.Fatalf("target=%d maxLen=%d: length %d out of range", c.target, c.maxLen, l)
			}
			total += int(l)
		}
		if total < c.target {
			t.Errorf("target=%d: generated total %d fell short", c.target, total)
		}
		// Committed reservations never roll back, so the overshoot is
		// bounded by one reservation per racing lane.
		if total >= c.target+c.maxLen*64 {
			t.Errorf("target=%d: total %d overshoots implausibly", c.target, total)
		}
	}
}

func TestGenerateSegmentLengthsRejectsBadArgs(t *testing.T) {
	if GenerateSegmentLengths(0, 10, 1) != nil {
		t.Errorf("zero target should yield nil")
	}
	if GenerateSegmentLengths(10, 0, 1) != nil {
		t.Errorf("zero maxLen should yield nil")
	}
}

func TestOffsetsFromLengths(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()

	lengths := []uint32{5, 3, 3, 8, 1}
	offsets, total := ctx.OffsetsFromLengths(lengths)
	want := []uint32{0, 5, 8, 11, 19}
	if total != 20 {
		t.Fatalf("total = %d, want 20", total)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offset %d = %d, want %d", i, offsets[i], want[i])
		}
	}
}
