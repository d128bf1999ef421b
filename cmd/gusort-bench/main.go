// Command gusort-bench exercises the sorting pipelines end to end: it
// generates keys, runs device-wide and segmented sorts across algorithms and
// key types, validates every result with the monotonicity oracle, and logs
// throughput to a benchmark session file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gusort/gusort"
)

func main() {
	var (
		n        = flag.Int("n", 1<<22, "keys per device-wide sort")
		segTotal = flag.Int("seg-total", 1<<20, "total keys per segmented sort")
		maxSeg   = flag.Int("max-seg-len", 4096, "maximum generated segment length")
		seed     = flag.Uint64("seed", 0xC0FFEE, "data generation seed")
		session  = flag.String("session", "gusort", "benchmark session name")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := gusort.InitBenchmarkLogger(*session); err != nil {
		log.WithError(err).Fatal("benchmark logger init failed")
	}

	dev := gusort.GetDevice()
	log.WithFields(logrus.Fields{
		"device": dev.Name,
		"cores":  dev.NumCores,
	}).Info("starting benchmark session")

	if err := run(log, *n, *segTotal, *maxSeg, *seed); err != nil {
		log.WithError(err).Error("benchmark run failed")
		gusort.FlushBenchmarkLog()
		os.Exit(1)
	}
	if err := gusort.FlushBenchmarkLog(); err != nil {
		log.WithError(err).Fatal("flushing benchmark log")
	}
	log.Info("benchmark session complete")
}

func run(log *logrus.Logger, n, segTotal, maxSegLen int, seed uint64) error {
	ctx := gusort.NewContext()
	defer ctx.Destroy()

	// Device-wide sorts: every algorithm and key type combination runs on
	// its own sorter; combinations validate concurrently.
	var g errgroup.Group
	for _, alg := range []gusort.Algorithm{gusort.AlgOneSweep, gusort.AlgUpsweepScan} {
		for _, kt := range []gusort.KeyType{gusort.KeyUint32, gusort.KeyInt32, gusort.KeyFloat32} {
			alg, kt := alg, kt
			g.Go(func() error {
				return benchSort(log, ctx, n, seed, alg, kt)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return benchSegmented(log, ctx, segTotal, maxSegLen, seed)
}

func benchSort(log *logrus.Logger, ctx *gusort.Context, n int, seed uint64, alg gusort.Algorithm, kt gusort.KeyType) error {
	s, err := gusort.NewSorter(ctx,
		gusort.WithAlgorithm(alg),
		gusort.WithKeyType(kt),
		gusort.WithStream(ctx.CreateStream()),
		gusort.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer s.Release()
	if err := s.Reserve(n); err != nil {
		return err
	}

	dKeys, err := ctx.Malloc(gusort.SortBufferSize(n))
	if err != nil {
		return err
	}
	defer ctx.Free(dKeys)

	keys := gusort.GenerateUint32(n, seed)
	if err := ctx.Memcpy(dKeys, keys, n*4, gusort.MemcpyHostToDevice); err != nil {
		return err
	}

	name := fmt.Sprintf("sort/%s/%s/n=%d", alg, kt, n)
	pc, err := gusort.MeasureSort(int64(n), func() error {
		return s.Sort(dKeys, gusort.DevicePtr{}, n)
	})
	result := gusort.BenchmarkResult{
		Name:       name,
		Status:     "pass",
		Keys:       int64(n),
		KeysPerSec: pc.KeysPerSec,
		MBPerSec:   pc.KeysPerSec * 4 / (1 << 20),
		Passes:     gusort.RadixPasses,
		Algorithm:  alg.String(),
		KeyType:    kt.String(),
		Duration:   pc.Duration,
	}
	if err == nil {
		if bad := ctx.CheckMonotonic(dKeys, n, kt, gusort.Ascending); bad != 0 {
			err = fmt.Errorf("%s: %d order violations", name, bad)
		}
	}
	if err != nil {
		result.Status = "fail"
		result.Error = err.Error()
	}
	gusort.LogBenchmarkResult(result)

	log.WithFields(logrus.Fields{
		"bench":    name,
		"keys/sec": fmt.Sprintf("%.0f", pc.KeysPerSec),
		"ipc":      fmt.Sprintf("%.2f", pc.IPC),
		"status":   result.Status,
	}).Info("device-wide sort")
	return err
}

func benchSegmented(log *logrus.Logger, ctx *gusort.Context, totalTarget, maxSegLen int, seed uint64) error {
	lengths := gusort.GenerateSegmentLengths(totalTarget, maxSegLen, seed)
	offsets, total := ctx.OffsetsFromLengths(lengths)
	segCount := len(lengths)

	s, err := gusort.NewSorter(ctx, gusort.WithLogger(log))
	if err != nil {
		return err
	}
	defer s.Release()
	if err := s.ReserveSegmented(total, segCount); err != nil {
		return err
	}

	dKeys, err := ctx.Malloc(gusort.SortBufferSize(total))
	if err != nil {
		return err
	}
	defer ctx.Free(dKeys)
	dOffs, err := ctx.Malloc(segCount * 4)
	if err != nil {
		return err
	}
	defer ctx.Free(dOffs)

	keys := gusort.GenerateUint32(total, seed+1)
	if err := ctx.Memcpy(dKeys, keys, total*4, gusort.MemcpyHostToDevice); err != nil {
		return err
	}
	if err := ctx.Memcpy(dOffs, offsets, segCount*4, gusort.MemcpyHostToDevice); err != nil {
		return err
	}

	name := fmt.Sprintf("segmented/segs=%d/total=%d", segCount, total)
	pc, err := gusort.MeasureSort(int64(total), func() error {
		return s.SegmentedSort(dKeys, gusort.DevicePtr{}, dOffs, segCount, total, gusort.KeyBits)
	})
	result := gusort.BenchmarkResult{
		Name:       name,
		Status:     "pass",
		Keys:       int64(total),
		KeysPerSec: pc.KeysPerSec,
		Duration:   pc.Duration,
	}
	if err == nil {
		if bad := ctx.CheckSegments(dKeys, dOffs, segCount, total); bad != 0 {
			err = fmt.Errorf("%s: %d in-segment order violations", name, bad)
		}
	}
	if err != nil {
		result.Status = "fail"
		result.Error = err.Error()
	}
	gusort.LogBenchmarkResult(result)

	log.WithFields(logrus.Fields{
		"bench":    name,
		"keys/sec": fmt.Sprintf("%.0f", pc.KeysPerSec),
		"status":   result.Status,
	}).Info("segmented sort")
	return err
}
