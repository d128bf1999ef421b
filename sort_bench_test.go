package gusort

import (
	"fmt"
	"testing"
)

func benchmarkSort(b *testing.B, n int, alg Algorithm, withPayloads bool) {
	ctx := NewContext()
	defer ctx.Destroy()

	keys := GenerateUint32(n, 1)
	dKeys := MallocOrFail(b, SortBufferSize(n))
	defer Free(dKeys)
	var dPay DevicePtr
	if withPayloads {
		dPay = MallocOrFail(b, SortBufferSize(n))
		defer Free(dPay)
	}

	s := SorterOrFail(b, ctx, n, WithAlgorithm(alg))
	defer s.Release()

	b.SetBytes(int64(n) * 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		MemcpyOrFail(b, dKeys, keys, n*4, MemcpyHostToDevice)
		if withPayloads {
			ctx.FillIota(dPay, n)
		}
		b.StartTimer()
		if err := s.Sort(dKeys, dPay, n); err != nil {
			b.Fatalf("Sort failed: %v", err)
		}
	}
}

func BenchmarkSort(b *testing.B) {
	for _, alg := range []Algorithm{AlgOneSweep, AlgUpsweepScan} {
		for _, n := range []int{1 << 16, 1 << 20, 1 << 22} {
			b.Run(fmt.Sprintf("%v/n=%d", alg, n), func(b *testing.B) {
				benchmarkSort(b, n, alg, false)
			})
		}
	}
}

func BenchmarkSortPairs(b *testing.B) {
	b.Run("n=1048576", func(b *testing.B) {
		benchmarkSort(b, 1<<20, AlgOneSweep, true)
	})
}

func BenchmarkSegmentedSort(b *testing.B) {
	ctx := NewContext()
	defer ctx.Destroy()

	lengths, total := GenerateSegmentLayout(1<<20, 16000, 120, 2)
	offsets := make([]uint32, len(lengths))
	var run uint32
	for i, l := range lengths {
		offsets[i] = run
		run += l
	}
	keys := GenerateUint32(total, 9)

	dKeys := MallocOrFail(b, total*4)
	defer Free(dKeys)
	dOff := MallocOrFail(b, len(offsets)*4)
	defer Free(dOff)
	MemcpyOrFail(b, dOff, offsets, len(offsets)*4, MemcpyHostToDevice)

	s, err := NewSorter(ctx)
	if err != nil {
		b.Fatal(err)
	}
	defer s.Release()
	if err := s.ReserveSegmented(total, len(offsets)); err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(total) * 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		MemcpyOrFail(b, dKeys, keys, total*4, MemcpyHostToDevice)
		b.StartTimer()
		if err := s.SegmentedSort(dKeys, DevicePtr{}, dOff, len(offsets), total, KeyBits); err != nil {
			b.Fatalf("SegmentedSort failed: %v", err)
		}
	}
}
