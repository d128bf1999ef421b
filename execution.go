package gusort

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// launchInternal implements per-lane kernel execution: the grid is split
// across worker goroutines, and every lane of a tile runs sequentially inside
// its worker to maximize cache reuse.
func (ctx *Context) launchInternal(
	kernelFunc func(ThreadID, ...interface{}),
	grid, block Dim3,
	stream *Stream,
	args ...interface{},
) error {
	gridSize := grid.Size()
	blockSize := block.Size()

	if gridSize == 0 {
		// Submit an empty task to maintain stream ordering
		stream.Submit(func() {})
		return nil
	}

	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			startBlock := workerID * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}

			go func(start, end int) {
				defer wg.Done()
				for blockID := start; blockID < end; blockID++ {
					blockIdx := linearTo3D(blockID, grid)
					for threadID := 0; threadID < blockSize; threadID++ {
						tid := ThreadID{
							BlockIdx:  blockIdx,
							ThreadIdx: linearTo3D(threadID, block),
							BlockDim:  block,
							GridDim:   grid,
						}
						kernelFunc(tid, args...)
					}
				}
			}(startBlock, endBlock)
		}

		wg.Wait()
	})

	return nil
}

// LaunchTilesStream executes a tile kernel over a 1D grid on a specific
// stream. Tiles are claimed through a shared dispenser rather than being
// pre-partitioned: kernels that use the decoupled look-back protocol rely on
// every lower-indexed tile having already been claimed by some worker, which
// the monotonic dispenser guarantees. A worker never holds more than one
// unfinished tile, so the lowest unfinished tile can always run to
// completion and the look-back chain makes progress.
func (ctx *Context) LaunchTilesStream(tiles int, stream *Stream, fn TileKernel) error {
	if tiles == 0 {
		stream.Submit(func() {})
		return nil
	}

	numWorkers := runtime.NumCPU()
	if tiles < numWorkers {
		numWorkers = tiles
	}

	stream.Submit(func() {
		var next int64
		var wg sync.WaitGroup
		wg.Add(numWorkers)
		for w := 0; w < numWorkers; w++ {
			go func() {
				defer wg.Done()
				for {
					tile := int(atomic.AddInt64(&next, 1)) - 1
					if tile >= tiles {
						return
					}
					fn(tile)
				}
			}()
		}
		wg.Wait()
	})

	return nil
}

// linearTo3D converts a linear index to 3D coordinates. Unset dimensions
// are treated as width 1.
func linearTo3D(linear int, dim Dim3) Dim3 {
	dx, dy := dim.X, dim.Y
	if dx == 0 {
		dx = 1
	}
	if dy == 0 {
		dy = 1
	}
	rem := linear / dx
	return Dim3{X: linear % dx, Y: rem % dy, Z: rem / dy}
}
