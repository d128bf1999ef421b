// Copyright ©2024 The GUSORT Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gusort provides GPU-style device-wide and segmented sorting with a
// CUDA-like execution model on CPU.
//
// The library implements an LSD radix sort over 8-bit digits (the "OneSweep"
// chained-scan variant with decoupled look-back, plus a deterministic
// upsweep/scan variant) and a hybrid radix/merge segmented sort ("SplitSort")
// that bin-packs variable-length segments into fixed-capacity execution units.
//
// Kernels run on an emulated SIMT substrate: a grid of cooperative tiles, each
// tile 256 lanes wide and subdivided into 32-lane waves with ballot, prefix-sum
// and broadcast collectives. Tiles are scheduled over worker goroutines;
// cross-tile coordination uses atomics and the decoupled look-back protocol,
// never a grid-wide barrier.
//
// Example:
//
//	ctx := gusort.NewContext()
//	defer ctx.Destroy()
//
//	d_keys, _ := ctx.Malloc(gusort.SortBufferSize(n))
//	ctx.Memcpy(d_keys, keys, n*4, gusort.MemcpyHostToDevice)
//
//	s, _ := gusort.NewSorter(ctx, gusort.WithKeyType(gusort.KeyUint32))
//	defer s.Release()
//	err := s.Sort(d_keys, gusort.DevicePtr{}, n)
package gusort
