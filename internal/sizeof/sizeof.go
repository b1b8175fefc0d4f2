// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package sizeof provides primitives for computing the retained memory
// footprint of in-memory data structures. Footprints are approximate: they
// account for slice headers and backing arrays but not for allocator
// rounding.
package sizeof

import "unsafe"

// SliceHeader is the in-memory size of a slice header.
const SliceHeader = int64(unsafe.Sizeof([]byte(nil)))

// Slice returns the retained footprint of s: the slice header plus the full
// capacity of its backing array. Memory referenced by the elements themselves
// is not included; aggregating that portion is the caller's concern because
// elements may alias memory retained elsewhere.
func Slice[T any](s []T) int64 {
	var elem T
	return SliceHeader + int64(cap(s))*int64(unsafe.Sizeof(elem))
}
