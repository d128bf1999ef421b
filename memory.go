package gusort

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of memory transfer. In the unified
// memory model these are kept for API familiarity; all memory is
// CPU-accessible and every transfer is a plain copy.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
	MemcpyDefault                          // Default transfer (infer direction)
)

// MemoryPool manages device memory allocation with efficient reuse.
// It maintains a free list of previously allocated blocks to reduce
// allocation overhead and memory fragmentation.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	buffers    map[uintptr][]byte
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	ptr  unsafe.Pointer
	size int
	used bool
}

// NewMemoryPool creates a new memory pool for efficient memory management.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
		buffers:   make(map[uintptr][]byte),
	}
}

// Malloc allocates device memory of the specified size in bytes.
// The memory is zeroed and aligned to MemoryAlignment.
func (ctx *Context) Malloc(size int) (DevicePtr, error) {
	return ctx.memory.Allocate(size)
}

// Free releases device memory allocated by Malloc.
func (ctx *Context) Free(ptr DevicePtr) error {
	return ctx.memory.Free(ptr)
}

// Memcpy copies memory between host and device. Supports DevicePtr and the
// slice types the sorting kernels traffic in.
func (ctx *Context) Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	dstPtr, err := rawPointer("Memcpy", dst)
	if err != nil {
		return err
	}
	srcPtr, err := rawPointer("Memcpy", src)
	if err != nil {
		return err
	}
	if dstPtr != nil && srcPtr != nil && size > 0 {
		copy((*[1 << 30]byte)(dstPtr)[:size:size], (*[1 << 30]byte)(srcPtr)[:size:size])
	}
	return nil
}

func rawPointer(op string, v interface{}) (unsafe.Pointer, error) {
	switch d := v.(type) {
	case DevicePtr:
		return d.ptr, nil
	case unsafe.Pointer:
		return d, nil
	case []byte:
		if len(d) > 0 {
			return unsafe.Pointer(&d[0]), nil
		}
	case []uint32:
		if len(d) > 0 {
			return unsafe.Pointer(&d[0]), nil
		}
	case []int32:
		if len(d) > 0 {
			return unsafe.Pointer(&d[0]), nil
		}
	case []float32:
		if len(d) > 0 {
			return unsafe.Pointer(&d[0]), nil
		}
	default:
		return nil, NewInvalidArgError(op, fmt.Sprintf("unsupported type: %T", v))
	}
	return nil, nil
}

// MemoryPool methods

// Allocate allocates memory from the pool
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if size <= 0 {
		return DevicePtr{}, NewInvalidArgError("Malloc", fmt.Sprintf("invalid allocation size: %d", size))
	}

	alignedSize := (size + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if alloc.size >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true

			// Reused blocks are zeroed so histograms start clean
			buf := (*[1 << 30]byte)(alloc.ptr)[:alloc.size:alloc.size]
			for j := range buf {
				buf[j] = 0
			}

			mp.totalAlloc += int64(alloc.size)
			if mp.totalAlloc > mp.peakAlloc {
				mp.peakAlloc = mp.totalAlloc
			}
			return DevicePtr{ptr: alloc.ptr, size: size}, nil
		}
	}

	// Allocate new memory; the pool keeps a reference so that device
	// pointers derived from the buffer stay live across GC cycles.
	buf := make([]byte, alignedSize)
	ptr := unsafe.Pointer(&buf[0])
	runtime.KeepAlive(buf)

	alloc := &allocation{ptr: ptr, size: alignedSize, used: true}
	mp.allocated[uintptr(ptr)] = alloc
	mp.buffers[uintptr(ptr)] = buf

	mp.totalAlloc += int64(alignedSize)
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}

	return DevicePtr{ptr: ptr, size: size}, nil
}

// Free returns memory to the pool
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	if ptr.ptr == nil {
		return nil
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewMemoryError("Free", "pointer not found in allocation pool", nil)
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(alloc.size)
	return nil
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// DevicePtr methods

// IsNil reports whether the pointer refers to no memory.
func (d DevicePtr) IsNil() bool {
	return d.ptr == nil
}

// Uint32 returns a uint32 slice view of the device memory. This is the
// native view of radix sort keys, digit histograms, and look-back slots.
func (d DevicePtr) Uint32() []uint32 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 28]uint32)(d.ptr)[: d.size/4 : d.size/4]
}

// Int32 returns an int32 slice view of the device memory.
func (d DevicePtr) Int32() []int32 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 28]int32)(d.ptr)[: d.size/4 : d.size/4]
}

// Float32 returns a float32 slice view of the device memory.
func (d DevicePtr) Float32() []float32 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 28]float32)(d.ptr)[: d.size/4 : d.size/4]
}

// Byte returns a byte slice view of the entire memory region.
func (d DevicePtr) Byte() []byte {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 30]byte)(d.ptr)[:d.size:d.size]
}

// Offset returns a new DevicePtr offset by the given number of bytes.
// The returned DevicePtr shares the same underlying memory.
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Pointer(uintptr(d.ptr) + uintptr(bytes)),
		size:   d.size - bytes,
		offset: d.offset + bytes,
	}
}

// Slice returns a new DevicePtr covering bytes [off, off+length) of d.
func (d DevicePtr) Slice(off, length int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Pointer(uintptr(d.ptr) + uintptr(off)),
		size:   length,
		offset: d.offset + off,
	}
}

// Size returns the size in bytes of the memory region
func (d DevicePtr) Size() int {
	return d.size
}
