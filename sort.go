package gusort

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Algorithm selects the cross-tile aggregation strategy of the radix
// pipeline. Both produce identical output for identical input.
type Algorithm int

const (
	// AlgOneSweep uses the chained-scan decoupled look-back protocol: one
	// binning launch per pass, tiles resolving their offsets on the fly.
	AlgOneSweep Algorithm = iota
	// AlgUpsweepScan runs a deterministic upsweep and cross-tile scan
	// before each binning pass.
	AlgUpsweepScan
)

// String returns the algorithm as a string
func (a Algorithm) String() string {
	if a == AlgUpsweepScan {
		return "upsweep-scan"
	}
	return "onesweep"
}

// Scratch is the opaque temporary-memory handle of a Sorter. It is carved
// from a single device allocation sized by SortScratchSize and is never
// resized during a call.
type Scratch struct {
	mem         DevicePtr
	maxN        int
	tiles       int
	globalHist  DevicePtr // RadixPasses * Radix counts
	passHist    DevicePtr // RadixPasses regions of (tiles+1) * Radix slots
	altKeys     DevicePtr
	altPayloads DevicePtr
}

// passRegion returns pass p's slot region: row 0 is the virtual tile -1
// seed row, row t+1 belongs to binning tile t. The upsweep/scan variant
// reuses the same region past the seed row as its digit-by-tile table.
func (sc *Scratch) passRegion(pass int) []uint32 {
	stride := (sc.tiles + 1) * Radix
	return sc.passHist.Uint32()[pass*stride : (pass+1)*stride]
}

// passTable returns pass p's digit-by-tile table for the upsweep/scan
// variant, laid out row = digit, column = tile.
func (sc *Scratch) passTable(pass int) []uint32 {
	return sc.passRegion(pass)[Radix:]
}

// tileCount returns the number of binning tiles covering n keys.
func tileCount(n int) int {
	return (n + PartSize - 1) / PartSize
}

// roundUpPart rounds n up to a whole number of tile partitions.
func roundUpPart(n int) int {
	return tileCount(n) * PartSize
}

// SortBufferSize returns the byte capacity a key or payload buffer must have
// to sort n elements: n rounded up to the tile partition size, so the last
// tile's loads stay in bounds.
func SortBufferSize(n int) int {
	return roundUpPart(n) * 4
}

// SortScratchSize returns the scratch bytes a Sorter needs to sort up to
// maxN keys with payloads. It is a pure function of maxN.
func SortScratchSize(maxN int) int {
	tiles := tileCount(maxN)
	slots := RadixPasses * (tiles + 1) * Radix
	hist := RadixPasses * Radix
	alt := 2 * roundUpPart(maxN)
	return (slots + hist + alt) * 4
}

// AllocSortScratch allocates and lays out sort scratch for up to maxN keys.
func (ctx *Context) AllocSortScratch(maxN int) (*Scratch, error) {
	if maxN < 1 {
		return nil, NewInvalidArgError("AllocSortScratch", "maxN must be at least 1")
	}
	mem, err := ctx.Malloc(SortScratchSize(maxN))
	if err != nil {
		return nil, errors.Wrap(err, "allocating sort scratch")
	}
	tiles := tileCount(maxN)
	sc := &Scratch{mem: mem, maxN: maxN, tiles: tiles}

	off := 0
	take := func(words int) DevicePtr {
		p := mem.Slice(off, words*4)
		off += words * 4
		return p
	}
	sc.globalHist = take(RadixPasses * Radix)
	sc.passHist = take(RadixPasses * (tiles + 1) * Radix)
	sc.altKeys = take(roundUpPart(maxN))
	sc.altPayloads = take(roundUpPart(maxN))
	return sc, nil
}

// Free releases the scratch allocation.
func (sc *Scratch) Free(ctx *Context) error {
	return ctx.Free(sc.mem)
}

// Sorter runs the multi-pass radix pipeline on a context.
type Sorter struct {
	ctx        *Context
	stream     *Stream
	keyType    KeyType
	order      Order
	alg        Algorithm
	scratch    *Scratch
	segScratch *SegScratch
	log        logrus.FieldLogger
}

// SorterOption configures a Sorter.
type SorterOption func(*Sorter)

// WithKeyType sets the numeric interpretation of keys.
func WithKeyType(kt KeyType) SorterOption {
	return func(s *Sorter) { s.keyType = kt }
}

// WithOrder sets the sort direction.
func WithOrder(o Order) SorterOption {
	return func(s *Sorter) { s.order = o }
}

// WithAlgorithm sets the cross-tile aggregation strategy.
func WithAlgorithm(a Algorithm) SorterOption {
	return func(s *Sorter) { s.alg = a }
}

// WithStream runs the sorter's kernels on a specific stream.
func WithStream(st *Stream) SorterOption {
	return func(s *Sorter) { s.stream = st }
}

// WithLogger attaches a structured logger for per-pass debug logging.
func WithLogger(log logrus.FieldLogger) SorterOption {
	return func(s *Sorter) { s.log = log }
}

// NewSorter creates a Sorter on the given context.
func NewSorter(ctx *Context, opts ...SorterOption) (*Sorter, error) {
	if ctx == nil {
		return nil, NewInvalidArgError("NewSorter", "nil context")
	}
	s := &Sorter{ctx: ctx, stream: ctx.defaultStream}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Reserve sizes the sorter's scratch for up to maxN keys. It must be called
// before the first Sort; calls with n beyond the reservation are rejected
// before any kernel launch.
func (s *Sorter) Reserve(maxN int) error {
	if s.scratch != nil {
		if s.scratch.maxN >= maxN {
			return nil
		}
		if err := s.scratch.Free(s.ctx); err != nil {
			return err
		}
		s.scratch = nil
	}
	sc, err := s.ctx.AllocSortScratch(maxN)
	if err != nil {
		return err
	}
	s.scratch = sc
	return nil
}

// Release frees the sorter's scratch allocations.
func (s *Sorter) Release() error {
	if s.scratch != nil {
		if err := s.scratch.Free(s.ctx); err != nil {
			return err
		}
		s.scratch = nil
	}
	if s.segScratch != nil {
		if err := s.ctx.Free(s.segScratch.mem); err != nil {
			return err
		}
		s.segScratch = nil
	}
	return nil
}

// Sort sorts n keys in dKeys in place through RadixPasses LSD passes,
// reordering dPayloads in lockstep when it is non-nil. Both buffers must
// have capacity for n rounded up to the tile partition size. The call is
// synchronous: when it returns without error the primary buffer holds the
// final order.
func (s *Sorter) Sort(dKeys, dPayloads DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	if err := s.checkSortArgs(dKeys, dPayloads, n); err != nil {
		return err
	}
	sc := s.scratch

	padded := roundUpPart(n)
	keys := dKeys.Uint32()[:padded]
	var pay, altPay []uint32
	if !dPayloads.IsNil() {
		pay = dPayloads.Uint32()[:padded]
		altPay = sc.altPayloads.Uint32()[:padded]
	}
	altKeys := sc.altKeys.Uint32()[:padded]

	if s.log != nil {
		s.log.WithFields(logrus.Fields{
			"n":        n,
			"keyType":  s.keyType.String(),
			"order":    s.order.String(),
			"alg":      s.alg.String(),
			"tiles":    tileCount(n),
			"payloads": pay != nil,
		}).Debug("sort dispatch")
	}

	if err := s.launchTransformKeys(keys, n, false); err != nil {
		return errors.Wrap(err, "transforming keys")
	}
	if err := s.launchInitSweep(sc); err != nil {
		return errors.Wrap(err, "clearing histograms")
	}
	if err := s.launchGlobalHist(keys, n, sc.globalHist.Uint32()); err != nil {
		return errors.Wrap(err, "building global histogram")
	}
	if err := s.launchScanGlobalHist(sc, s.alg == AlgOneSweep); err != nil {
		return errors.Wrap(err, "scanning global histogram")
	}

	tiles := tileCount(n)
	globalHist := sc.globalHist.Uint32()
	src, dst := keys, altKeys
	srcPay, dstPay := pay, altPay

	for pass := 0; pass < RadixPasses; pass++ {
		shift := uint(pass * RadixBits)
		// The last pass is the one whose digit covers the top key bits;
		// descending order reflects destinations on that pass only.
		last := shift == KeyBits-RadixBits
		reflect := last && s.order == Descending

		var offs tileOffsetsFn
		switch s.alg {
		case AlgUpsweepScan:
			table := sc.passTable(pass)[:Radix*tiles]
			if err := s.launchUpsweep(src, n, tiles, shift, table); err != nil {
				return errors.Wrapf(err, "upsweep pass %d", pass)
			}
			if err := s.launchScanPassHist(table, tiles); err != nil {
				return errors.Wrapf(err, "scanning pass %d table", pass)
			}
			base := globalHist[pass*Radix : (pass+1)*Radix]
			offs = func(tile int, _ *[Radix]uint32) [Radix]uint32 {
				var out [Radix]uint32
				for d := 0; d < Radix; d++ {
					out[d] = base[d] + table[d*tiles+tile]
				}
				return out
			}
		default:
			region := sc.passRegion(pass)
			offs = func(tile int, tileHist *[Radix]uint32) [Radix]uint32 {
				var out [Radix]uint32
				resolveTileOffsets(region, tile, tileHist, &out)
				return out
			}
		}

		err := s.launchBinningPass(binningArgs{
			src: src, dst: dst,
			srcPay: srcPay, dstPay: dstPay,
			n: n, tiles: tiles, shift: shift,
			offsets: offs, reflect: reflect,
		})
		if err != nil {
			return errors.Wrapf(err, "binning pass %d", pass)
		}

		src, dst = dst, src
		srcPay, dstPay = dstPay, srcPay
	}

	// RadixPasses is even, so the final order landed back in the caller's
	// buffers; undo the order-preserving bit transform.
	if err := s.launchTransformKeys(keys, n, true); err != nil {
		return errors.Wrap(err, "restoring keys")
	}

	s.stream.Synchronize()
	return nil
}

// checkSortArgs rejects capacity violations before anything is launched.
func (s *Sorter) checkSortArgs(dKeys, dPayloads DevicePtr, n int) error {
	if n < 1 {
		return NewInvalidArgError("Sort", "count must be at least 1")
	}
	if n > MaxSortKeys {
		return NewCapacityError("Sort", "count exceeds look-back slot capacity")
	}
	if s.scratch == nil || s.scratch.maxN < n {
		return NewCapacityError("Sort", "scratch not reserved for this count; call Reserve first")
	}
	need := SortBufferSize(n)
	if dKeys.IsNil() || dKeys.Size() < need {
		return NewCapacityError("Sort", "key buffer smaller than padded count")
	}
	if !dPayloads.IsNil() && dPayloads.Size() < need {
		return NewCapacityError("Sort", "payload buffer smaller than padded count")
	}
	return nil
}

// launchTransformKeys applies (or inverts) the order-preserving bit
// transform for the sorter's key type. Unsigned keys pass through.
func (s *Sorter) launchTransformKeys(keys []uint32, n int, inverse bool) error {
	if s.keyType == KeyUint32 {
		return nil
	}
	kt := s.keyType
	tiles := tileCount(n)
	return s.ctx.LaunchTilesStream(tiles, s.stream, func(tile int) {
		base := tile * PartSize
		end := base + PartSize
		if end > n {
			end = n
		}
		if inverse {
			for i := base; i < end; i++ {
				keys[i] = fromBits(keys[i], kt)
			}
		} else {
			for i := base; i < end; i++ {
				keys[i] = toBits(keys[i], kt)
			}
		}
	})
}
