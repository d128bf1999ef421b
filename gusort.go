// Package gusort provides a CUDA-style execution substrate for the sorting
// kernels: a device abstraction, ordered streams, device memory, and grid/tile
// kernel launches over worker goroutines.
package gusort

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Device represents a compute device. In gusort, this is the CPU with its
// cores and available memory. Each device has a unique ID and capabilities.
type Device struct {
	ID         int    // Unique device identifier
	Name       string // Human-readable device name
	TotalMem   uint64 // Total available memory in bytes
	NumCores   int    // Number of CPU cores
	MaxThreads int    // Maximum concurrent threads
}

// Context represents an execution context for gusort operations.
// It manages device resources, memory allocation, and stream execution.
// A Context must be created before any operations and should be
// destroyed when no longer needed.
type Context struct {
	device        *Device
	mu            sync.Mutex
	streams       map[int]*Stream
	streamID      int32
	memory        *MemoryPool
	defaultStream *Stream
	scanner       PrefixScanner
}

// Stream represents an ordered sequence of operations that execute
// asynchronously. Operations within a stream execute in order, but
// operations in different streams may execute concurrently. The in-order
// guarantee is what separates dependent kernel launches: a kernel submitted
// after another on the same stream observes all of its writes.
type Stream struct {
	id    int
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
}

// Dim3 represents 3D dimensions for grid and block configurations.
type Dim3 struct {
	X, Y, Z int
}

// ThreadID identifies a lane's position within the execution hierarchy,
// matching CUDA's blockIdx, threadIdx, blockDim, and gridDim.
type ThreadID struct {
	BlockIdx  Dim3 // Tile index within the grid
	ThreadIdx Dim3 // Lane index within the tile
	BlockDim  Dim3 // Dimensions of the tile
	GridDim   Dim3 // Dimensions of the grid
}

// Kernel represents a compute kernel executed once per lane.
// Implementations must be safe for concurrent execution.
type Kernel interface {
	Execute(tid ThreadID, args ...interface{})
}

// KernelFunc is a function that can be launched as a per-lane kernel.
type KernelFunc func(tid ThreadID, args ...interface{})

// TileKernel is a kernel executed once per cooperative tile. The whole tile
// runs inside one goroutine, so the kernel may use tile-local ("on-chip")
// state freely and emulate lock-step waves with the wave collectives.
type TileKernel func(tile int)

// DevicePtr represents a pointer to device memory. It provides type-safe
// access through the slice view methods (Uint32, Float32, ...) and pointer
// arithmetic through Offset.
type DevicePtr struct {
	ptr    unsafe.Pointer
	size   int
	offset int
}

// Global runtime state
var (
	defaultDevice  *Device
	defaultContext *Context
	initOnce       sync.Once
)

func init() {
	initOnce.Do(func() {
		defaultDevice = &Device{
			ID:         0,
			Name:       deviceName(),
			TotalMem:   getSystemMemory(),
			NumCores:   runtime.NumCPU(),
			MaxThreads: runtime.NumCPU() * 2,
		}
		defaultContext = newContext(defaultDevice)
	})
}

func newContext(dev *Device) *Context {
	ctx := &Context{
		device:  dev,
		streams: make(map[int]*Stream),
		memory:  NewMemoryPool(),
	}
	ctx.defaultStream = ctx.CreateStream()
	ctx.scanner = defaultScanner{}
	return ctx
}

// NewContext creates a fresh execution context on the default device.
func NewContext() *Context {
	return newContext(defaultDevice)
}

// Destroy releases the context's streams. Memory allocated from the context
// becomes unreachable once the context is dropped.
func (ctx *Context) Destroy() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	for id, s := range ctx.streams {
		s.Synchronize()
		close(s.tasks)
		<-s.done
		delete(ctx.streams, id)
	}
}

// Malloc allocates device memory of the specified size in bytes from the
// default context.
func Malloc(size int) (DevicePtr, error) {
	return defaultContext.Malloc(size)
}

// Free releases device memory allocated by Malloc on the default context.
func Free(ptr DevicePtr) error {
	return defaultContext.Free(ptr)
}

// Memcpy copies memory between host and device on the default context.
func Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	return defaultContext.Memcpy(dst, src, size, kind)
}

// Launch executes a per-lane kernel on the default context and stream.
func Launch(kernel Kernel, grid, block Dim3, args ...interface{}) error {
	return defaultContext.Launch(kernel, grid, block, args...)
}

// LaunchFunc executes a kernel function on the default context and stream.
func LaunchFunc(fn KernelFunc, grid, block Dim3, args ...interface{}) error {
	return defaultContext.LaunchFunc(fn, grid, block, args...)
}

// Synchronize waits for all operations on all streams of the default context.
func Synchronize() error {
	return defaultContext.Synchronize()
}

// GetDevice returns the current device information.
func GetDevice() *Device {
	return defaultDevice
}

// SetDevice sets the active device (no-op for CPU)
func SetDevice(id int) error {
	if id != 0 {
		return ErrInvalidDevice
	}
	return nil
}

// GetDeviceCount returns the number of available devices. Always 1.
func GetDeviceCount() int {
	return 1
}

// GetDeviceProperties returns device properties
func GetDeviceProperties(id int) (*Device, error) {
	if id != 0 {
		return nil, NewInvalidArgError("GetDeviceProperties", fmt.Sprintf("invalid device ID: %d", id))
	}
	return defaultDevice, nil
}

// Context methods

// CreateStream creates a new execution stream
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		id:    id,
		tasks: make(chan func(), 1024),
		done:  make(chan struct{}),
	}
	go stream.worker()

	ctx.mu.Lock()
	ctx.streams[id] = stream
	ctx.mu.Unlock()
	return stream
}

// DefaultStream returns the context's default stream.
func (ctx *Context) DefaultStream() *Stream {
	return ctx.defaultStream
}

// SetPrefixScanner replaces the device-parallel exclusive prefix-sum
// collaborator consumed by the segmented sort driver.
func (ctx *Context) SetPrefixScanner(s PrefixScanner) {
	ctx.scanner = s
}

// Launch executes a per-lane kernel on the default stream
func (ctx *Context) Launch(kernel Kernel, grid, block Dim3, args ...interface{}) error {
	return ctx.LaunchStream(kernel, grid, block, ctx.defaultStream, args...)
}

// LaunchFunc executes a kernel function on the default stream
func (ctx *Context) LaunchFunc(fn KernelFunc, grid, block Dim3, args ...interface{}) error {
	return ctx.LaunchFuncStream(fn, grid, block, ctx.defaultStream, args...)
}

// LaunchStream executes a per-lane kernel on a specific stream
func (ctx *Context) LaunchStream(kernel Kernel, grid, block Dim3, stream *Stream, args ...interface{}) error {
	return ctx.launchInternal(kernel.Execute, grid, block, stream, args...)
}

// LaunchFuncStream executes a kernel function on a specific stream
func (ctx *Context) LaunchFuncStream(fn KernelFunc, grid, block Dim3, stream *Stream, args ...interface{}) error {
	return ctx.launchInternal(fn, grid, block, stream, args...)
}

// LaunchTiles executes a tile kernel over a 1D grid of cooperative tiles on
// the default stream.
func (ctx *Context) LaunchTiles(tiles int, fn TileKernel) error {
	return ctx.LaunchTilesStream(tiles, ctx.defaultStream, fn)
}

// Synchronize waits for all streams to complete
func (ctx *Context) Synchronize() error {
	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()
	for _, s := range streams {
		s.Synchronize()
	}
	return nil
}

// Stream methods

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// Synchronize waits for all tasks in the stream to complete
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// Submit adds a task to the stream
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

// Helper functions

// Global returns the global lane index
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// Size returns the total number of elements. Unset dimensions count as
// width 1, matching how linear indices are mapped back to coordinates.
func (d Dim3) Size() int {
	return dimOr1(d.X) * dimOr1(d.Y) * dimOr1(d.Z)
}

func dimOr1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// Execute implements Kernel for KernelFunc
func (fn KernelFunc) Execute(tid ThreadID, args ...interface{}) {
	fn(tid, args...)
}
