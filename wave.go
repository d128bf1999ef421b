package gusort

import "math/bits"

// Wave collectives. A wave is a group of WaveWidth lanes executing in
// lock-step; these helpers emulate the hardware ballot, prefix-sum and
// broadcast instructions over per-lane register arrays. The emulation is
// exact: Ballot returns the same lane bit set a width-32 hardware ballot
// would, and scan results match lane-order prefix semantics, so kernel code
// written against these collectives transcribes directly to GPU intrinsics.

// WaveRegs holds one register per lane of a wave.
type WaveRegs [WaveWidth]uint32

// FullWaveMask has every lane bit set.
const FullWaveMask uint32 = 0xFFFFFFFF

// LaneMaskLT returns the set of lanes strictly below lane.
func LaneMaskLT(lane int) uint32 {
	return (uint32(1) << uint(lane)) - 1
}

// LaneMaskLE returns the set of lanes at or below lane.
func LaneMaskLE(lane int) uint32 {
	if lane >= WaveWidth-1 {
		return FullWaveMask
	}
	return (uint32(1) << uint(lane+1)) - 1
}

// Ballot returns the set of active lanes for which pred holds.
func Ballot(active uint32, pred func(lane int) bool) uint32 {
	var m uint32
	for lane := 0; lane < WaveWidth; lane++ {
		if active&(1<<uint(lane)) != 0 && pred(lane) {
			m |= 1 << uint(lane)
		}
	}
	return m
}

// BallotBit returns the set of active lanes whose register has the given
// bit set. This is the building block of the multisplit digit match.
func BallotBit(regs *WaveRegs, active uint32, bit uint) uint32 {
	var m uint32
	for lane := 0; lane < WaveWidth; lane++ {
		if active&(1<<uint(lane)) != 0 && regs[lane]>>bit&1 != 0 {
			m |= 1 << uint(lane)
		}
	}
	return m
}

// Popcount returns the number of set lanes in a mask.
func Popcount(mask uint32) uint32 {
	return uint32(bits.OnesCount32(mask))
}

// IsLowestLane reports whether lane is the lowest set lane of mask.
func IsLowestLane(mask uint32, lane int) bool {
	return mask&LaneMaskLT(lane) == 0
}

// ExclusiveScan computes, in place, the exclusive prefix sum of one register
// per lane and returns the wave total.
func ExclusiveScan(regs *WaveRegs) uint32 {
	var sum uint32
	for lane := 0; lane < WaveWidth; lane++ {
		v := regs[lane]
		regs[lane] = sum
		sum += v
	}
	return sum
}

// InclusiveScan computes, in place, the inclusive prefix sum of one register
// per lane and returns the wave total.
func InclusiveScan(regs *WaveRegs) uint32 {
	var sum uint32
	for lane := 0; lane < WaveWidth; lane++ {
		sum += regs[lane]
		regs[lane] = sum
	}
	return sum
}

// Broadcast returns the register of the source lane, as observed by every
// lane of the wave.
func Broadcast(regs *WaveRegs, srcLane int) uint32 {
	return regs[srcLane]
}

// ReduceSum returns the sum of one register per active lane.
func ReduceSum(regs *WaveRegs, active uint32) uint32 {
	var sum uint32
	for lane := 0; lane < WaveWidth; lane++ {
		if active&(1<<uint(lane)) != 0 {
			sum += regs[lane]
		}
	}
	return sum
}

// MatchDigit returns, for the given lane, the set of active lanes whose
// register equals that lane's register under RadixBits low bits. It is built
// from RadixBits single-bit ballots intersected per lane, exactly the
// wave-level multisplit construction.
func MatchDigit(digits *WaveRegs, active uint32, lane int) uint32 {
	var ballots [RadixBits]uint32
	for bit := uint(0); bit < RadixBits; bit++ {
		ballots[bit] = BallotBit(digits, active, bit)
	}
	return matchFromBallots(&ballots, digits[lane], active)
}

// matchFromBallots intersects per-bit ballots into the same-digit lane mask
// for one digit value. Kernels ranking a whole wave hoist the RadixBits
// ballots once and call this per lane.
func matchFromBallots(ballots *[RadixBits]uint32, digit, active uint32) uint32 {
	mask := active
	for bit := uint(0); bit < RadixBits; bit++ {
		if digit>>bit&1 != 0 {
			mask &= ballots[bit]
		} else {
			mask &= ^ballots[bit]
		}
	}
	return mask
}
