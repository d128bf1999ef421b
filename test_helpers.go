package gusort

import (
	"testing"
)

// MallocOrFail allocates device memory and fails the test if unsuccessful
func MallocOrFail(t testing.TB, size int) DevicePtr {
	t.Helper()
	ptr, err := Malloc(size)
	if err != nil {
		t.Fatalf("Failed to allocate %d bytes: %v", size, err)
	}
	return ptr
}

// MemcpyOrFail copies data and fails the test if unsuccessful
func MemcpyOrFail(t testing.TB, dst DevicePtr, src interface{}, size int, direction MemcpyKind) {
	t.Helper()
	err := Memcpy(dst, src, size, direction)
	if err != nil {
		t.Fatalf("Memcpy failed: %v", err)
	}
}

// SorterOrFail builds a sorter with scratch reserved for maxN keys and fails
// the test if either step is unsuccessful.
func SorterOrFail(t testing.TB, ctx *Context, maxN int, opts ...SorterOption) *Sorter {
	t.Helper()
	s, err := NewSorter(ctx, opts...)
	if err != nil {
		t.Fatalf("NewSorter failed: %v", err)
	}
	if err := s.Reserve(maxN); err != nil {
		t.Fatalf("Reserve(%d) failed: %v", maxN, err)
	}
	return s
}

// SynchronizeOrFail synchronizes and fails the test if unsuccessful
func SynchronizeOrFail(t testing.TB) {
	t.Helper()
	err := Synchronize()
	if err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}
}
