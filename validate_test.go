package gusort

import (
	"math"
	"testing"
)

func TestCheckMonotonic(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()

	n := 2*PartSize + 100
	d := MallocOrFail(t, n*4)
	defer Free(d)

	ctx.FillIota(d, n)
	if errs := ctx.CheckMonotonic(d, n, KeyUint32, Ascending); errs != 0 {
		t.Errorf("iota reported %d violations", errs)
	}
	if errs := ctx.CheckMonotonic(d, n, KeyUint32, Descending); errs == 0 {
		t.Errorf("iota passed a descending check")
	}

	// Break the order exactly at the tile boundary; the violating pair
	// straddles two checking tiles.
	d.Uint32()[PartSize] = 0
	if errs := ctx.CheckMonotonic(d, n, KeyUint32, Ascending); errs != 1 {
		t.Errorf("boundary break reported %d violations, want 1", errs)
	}
}

func TestCheckMonotonicTypedOrder(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()

	// Signed order: -1 then 1 is sorted as int32, wildly unsorted as uint32.
	d := MallocOrFail(t, 2*4)
	defer Free(d)
	d.Uint32()[0] = ^uint32(0)
	d.Uint32()[1] = 1

	if errs := ctx.CheckMonotonic(d, 2, KeyInt32, Ascending); errs != 0 {
		t.Errorf("signed pair reported %d violations", errs)
	}
	if errs := ctx.CheckMonotonic(d, 2, KeyUint32, Ascending); errs != 1 {
		t.Errorf("unsigned view reported %d violations, want 1", errs)
	}

	d.Uint32()[0] = math.Float32bits(-2.5)
	d.Uint32()[1] = math.Float32bits(1.5)
	if errs := ctx.CheckMonotonic(d, 2, KeyFloat32, Ascending); errs != 0 {
		t.Errorf("float pair reported %d violations", errs)
	}
}

func TestCheckSegmentsIgnoresBoundaries(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()

	// Each segment sorted, but keys drop across both boundaries.
	keys := []uint32{3, 3, 5, 1, 1, 8, 0, 9}
	offsets := []uint32{0, 3, 6}

	dKeys := MallocOrFail(t, len(keys)*4)
	defer Free(dKeys)
	MemcpyOrFail(t, dKeys, keys, len(keys)*4, MemcpyHostToDevice)
	dOff := MallocOrFail(t, len(offsets)*4)
	defer Free(dOff)
	MemcpyOrFail(t, dOff, offsets, len(offsets)*4, MemcpyHostToDevice)

	if errs := ctx.CheckSegments(dKeys, dOff, len(offsets), len(keys)); errs != 0 {
		t.Errorf("per-segment sorted input reported %d violations", errs)
	}

	// One inversion inside segment 1.
	dKeys.Uint32()[4] = 0
	if errs := ctx.CheckSegments(dKeys, dOff, len(offsets), len(keys)); errs != 1 {
		t.Errorf("reported %d violations, want 1", errs)
	}
}

func TestFillHelpers(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()

	n := PartSize + 3
	d := MallocOrFail(t, n*4)
	defer Free(d)

	ctx.FillIota(d, n)
	buf := d.Uint32()
	for i := 0; i < n; i++ {
		if buf[i] != uint32(i) {
			t.Fatalf("iota wrong at %d: %d", i, buf[i])
		}
	}

	ctx.FillConstant(d, n, 7)
	for i := 0; i < n; i++ {
		if buf[i] != 7 {
			t.Fatalf("constant fill wrong at %d: %d", i, buf[i])
		}
	}
}
