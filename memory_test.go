package gusort

import "testing"

func TestMemoryPoolReuseZeroes(t *testing.T) {
	pool := NewMemoryPool()

	a, err := pool.Allocate(1024)
	if err != nil {
		t.Fatal(err)
	}
	buf := a.Uint32()
	for i := range buf {
		buf[i] = 0xDEADBEEF
	}
	if err := pool.Free(a); err != nil {
		t.Fatal(err)
	}

	// The freed block is large enough, so it comes back zeroed.
	b, err := pool.Allocate(512)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range b.Uint32() {
		if v != 0 {
			t.Fatalf("reused block dirty at %d: %08x", i, v)
		}
	}
}

func TestMemoryPoolStats(t *testing.T) {
	pool := NewMemoryPool()

	a, _ := pool.Allocate(1 << 20)
	b, _ := pool.Allocate(1 << 20)
	alloc, peak := pool.GetStats()
	if alloc < 2<<20 || peak < 2<<20 {
		t.Errorf("stats after two allocations: alloc=%d peak=%d", alloc, peak)
	}

	pool.Free(a)
	pool.Free(b)
	alloc, peak = pool.GetStats()
	if alloc != 0 {
		t.Errorf("allocated bytes after freeing everything: %d", alloc)
	}
	if peak < 2<<20 {
		t.Errorf("peak forgot the high-water mark: %d", peak)
	}
}

func TestMemoryPoolUnknownPointer(t *testing.T) {
	pool := NewMemoryPool()
	other, _ := NewMemoryPool().Allocate(64)
	if err := pool.Free(other); err == nil {
		t.Errorf("freeing a foreign pointer should fail")
	}
	if err := pool.Free(DevicePtr{}); err != nil {
		t.Errorf("freeing the nil pointer is a no-op, got %v", err)
	}
}

// Scratch layout: the carved regions tile the single allocation without
// overlap and their sizes add up to SortScratchSize.
func TestScratchLayout(t *testing.T) {
	ctx := NewContext()
	defer ctx.Destroy()

	maxN := 2*PartSize + 5
	sc, err := ctx.AllocSortScratch(maxN)
	if err != nil {
		t.Fatal(err)
	}
	defer sc.Free(ctx)

	total := sc.globalHist.Size() + sc.passHist.Size() + sc.altKeys.Size() + sc.altPayloads.Size()
	if total != SortScratchSize(maxN) {
		t.Errorf("carved regions cover %d bytes, scratch size is %d", total, SortScratchSize(maxN))
	}
	if sc.tiles != tileCount(maxN) {
		t.Errorf("tiles = %d, want %d", sc.tiles, tileCount(maxN))
	}

	// Writing through one region must not show up in another.
	sc.globalHist.Uint32()[0] = 42
	if sc.passHist.Uint32()[0] == 42 {
		t.Errorf("regions overlap")
	}
}

func TestScratchSizesArePure(t *testing.T) {
	for _, n := range []int{1, PartSize, PartSize + 1, 1 << 20} {
		a, b := SortScratchSize(n), SortScratchSize(n)
		if a != b || a <= 0 {
			t.Errorf("SortScratchSize(%d) unstable or empty: %d vs %d", n, a, b)
		}
	}
	for _, c := range []struct{ total, segs int }{{100, 1}, {1 << 20, 1 << 12}} {
		a := SegmentedScratchSize(c.total, c.segs)
		b := SegmentedScratchSize(c.total, c.segs)
		if a != b || a <= 0 {
			t.Errorf("SegmentedScratchSize(%d,%d) unstable or empty", c.total, c.segs)
		}
	}
	if SortBufferSize(1) != PartSize*4 {
		t.Errorf("SortBufferSize(1) = %d, want one full partition", SortBufferSize(1))
	}
	if SortBufferSize(PartSize) != PartSize*4 {
		t.Errorf("SortBufferSize(PartSize) = %d", SortBufferSize(PartSize))
	}
	if SortBufferSize(PartSize+1) != 2*PartSize*4 {
		t.Errorf("SortBufferSize(PartSize+1) = %d", SortBufferSize(PartSize+1))
	}
}
