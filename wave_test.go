package gusort

import "testing"

func TestLaneMasks(t *testing.T) {
	if LaneMaskLT(0) != 0 {
		t.Errorf("LaneMaskLT(0) = %08x", LaneMaskLT(0))
	}
	if LaneMaskLT(5) != 0x1F {
		t.Errorf("LaneMaskLT(5) = %08x", LaneMaskLT(5))
	}
	if LaneMaskLT(32) != FullWaveMask {
		t.Errorf("LaneMaskLT(32) = %08x", LaneMaskLT(32))
	}
	if LaneMaskLE(0) != 1 {
		t.Errorf("LaneMaskLE(0) = %08x", LaneMaskLE(0))
	}
	if LaneMaskLE(31) != FullWaveMask {
		t.Errorf("LaneMaskLE(31) = %08x", LaneMaskLE(31))
	}
}

func TestBallot(t *testing.T) {
	got := Ballot(FullWaveMask, func(lane int) bool { return lane%2 == 0 })
	if got != 0x55555555 {
		t.Errorf("even-lane ballot = %08x", got)
	}
	// Inactive lanes never vote.
	got = Ballot(0x0000FFFF, func(lane int) bool { return true })
	if got != 0x0000FFFF {
		t.Errorf("half-active ballot = %08x", got)
	}
}

func TestBallotBit(t *testing.T) {
	var regs WaveRegs
	for lane := range regs {
		regs[lane] = uint32(lane)
	}
	// Bit 0 of the lane index is set on odd lanes.
	if got := BallotBit(&regs, FullWaveMask, 0); got != 0xAAAAAAAA {
		t.Errorf("bit-0 ballot = %08x", got)
	}
	if got := BallotBit(&regs, FullWaveMask, 4); got != 0xFFFF0000 {
		t.Errorf("bit-4 ballot = %08x", got)
	}
}

func TestScans(t *testing.T) {
	var regs WaveRegs
	for lane := range regs {
		regs[lane] = uint32(lane + 1)
	}
	excl := regs
	total := ExclusiveScan(&excl)
	if total != 32*33/2 {
		t.Errorf("exclusive scan total = %d", total)
	}
	var sum uint32
	for lane := 0; lane < WaveWidth; lane++ {
		if excl[lane] != sum {
			t.Errorf("exclusive scan lane %d = %d, want %d", lane, excl[lane], sum)
		}
		sum += regs[lane]
	}

	incl := regs
	if InclusiveScan(&incl) != total {
		t.Errorf("inclusive scan total disagrees with exclusive")
	}
	for lane := 0; lane < WaveWidth; lane++ {
		if incl[lane] != excl[lane]+regs[lane] {
			t.Errorf("inclusive scan lane %d = %d", lane, incl[lane])
		}
	}
}

func TestReduceSumRespectsActiveMask(t *testing.T) {
	var regs WaveRegs
	for lane := range regs {
		regs[lane] = 1
	}
	if got := ReduceSum(&regs, FullWaveMask); got != WaveWidth {
		t.Errorf("full reduce = %d", got)
	}
	if got := ReduceSum(&regs, 0x0F); got != 4 {
		t.Errorf("partial reduce = %d", got)
	}
}

// The multisplit match mask partitions the active lanes: every lane belongs
// to exactly one mask, all lanes of a mask share a digit, and in-mask ranks
// are dense from zero.
func TestMatchDigitPartitions(t *testing.T) {
	var digits WaveRegs
	seeds := GenerateUint32(WaveWidth, 8)
	for lane := range digits {
		digits[lane] = seeds[lane] % 7 // few distinct digits, guaranteed ties
	}

	for _, active := range []uint32{FullWaveMask, LaneMaskLT(20), 0xF0F0F0F0} {
		var covered uint32
		for lane := 0; lane < WaveWidth; lane++ {
			if active&(1<<uint(lane)) == 0 {
				continue
			}
			mask := MatchDigit(&digits, active, lane)
			if mask&(1<<uint(lane)) == 0 {
				t.Fatalf("lane %d missing from its own mask %08x", lane, mask)
			}
			if mask&^active != 0 {
				t.Fatalf("lane %d mask %08x includes inactive lanes", lane, mask)
			}
			for other := 0; other < WaveWidth; other++ {
				if mask&(1<<uint(other)) != 0 && digits[other]&RadixMask != digits[lane]&RadixMask {
					t.Fatalf("lane %d mask includes lane %d with digit %d != %d",
						lane, other, digits[other], digits[lane])
				}
			}
			if IsLowestLane(mask, lane) {
				covered |= mask
			}
		}
		if covered != active {
			t.Fatalf("leader masks cover %08x, want %08x", covered, active)
		}
	}
}

// Hoisting the per-bit ballots once and intersecting per lane must produce
// the same masks as the per-lane collective.
func TestMatchDigitFromHoistedBallots(t *testing.T) {
	var digits WaveRegs
	seeds := GenerateUint32(WaveWidth, 21)
	for lane := range digits {
		digits[lane] = seeds[lane] % 11
	}

	for _, active := range []uint32{FullWaveMask, LaneMaskLT(13)} {
		var ballots [RadixBits]uint32
		for bit := uint(0); bit < RadixBits; bit++ {
			ballots[bit] = BallotBit(&digits, active, bit)
		}
		for lane := 0; lane < WaveWidth; lane++ {
			if active&(1<<uint(lane)) == 0 {
				continue
			}
			want := MatchDigit(&digits, active, lane)
			got := matchFromBallots(&ballots, digits[lane], active)
			if got != want {
				t.Fatalf("lane %d: hoisted mask %08x, collective %08x", lane, got, want)
			}
		}
	}
}

func TestIsLowestLane(t *testing.T) {
	mask := uint32(0b10110)
	expect := map[int]bool{1: true, 2: false, 4: false}
	for lane, want := range expect {
		if got := IsLowestLane(mask, lane); got != want {
			t.Errorf("IsLowestLane(%05b, %d) = %v", mask, lane, got)
		}
	}
}
