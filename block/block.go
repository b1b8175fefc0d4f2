// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package block implements the columnar value containers a vectorized
// execution engine reads one column at a time.
//
// Blocks are immutable once constructed. Every operation that looks like a
// mutation returns a new block. A derived block may share its backing arrays
// with the block it was derived from (see Region), in which case the shared
// arrays must never be mutated by any holder; the package exposes no
// mutators, and producers hand their arrays to a constructor exactly once.
//
// Blocks distinguish two size measures. The logical size is the payload the
// block represents: the sum of the valid byte lengths across its positions.
// The retained size is the physical memory the block keeps alive, counting
// each distinct backing buffer once even when several positions reference
// it, plus the footprint of the block's index arrays and the instance
// itself.
package block

// Block is the read-only contract the execution engine consumes. Each
// concrete block type additionally provides the derivation operations —
// Region, CopyRegion, CopyPositions, SingleValueBlock, CopyWithAppendedNull
// — returning its own type; the engine dispatches those on the concrete
// type.
type Block interface {
	// PositionCount returns the number of logical rows in the block.
	PositionCount() int

	// SizeInBytes returns the logical payload size of the block.
	SizeInBytes() int64

	// RegionSizeInBytes returns the logical size of the region
	// [positionOffset, positionOffset+length) plus the per-position
	// bookkeeping overhead, without materializing the region.
	RegionSizeInBytes(positionOffset, length int) (int64, error)

	// PositionsSizeInBytes returns the logical size of the positions marked
	// true in selected, plus per-position overhead for each marked position.
	// selectedCount is the caller's count of marked positions; the mask is
	// authoritative.
	PositionsSizeInBytes(selected []bool, selectedCount int) (int64, error)

	// RetainedSizeInBytes returns the physical memory footprint held by the
	// block, de-duplicated across shared buffers. O(1).
	RetainedSizeInBytes() int64

	// EstimatedDataSizeForStats returns the payload length of the position,
	// or 0 if it is null. Intended only for statistics estimation.
	EstimatedDataSizeForStats(position int) (int64, error)

	// IsNull reports whether the position is null.
	IsNull(position int) (bool, error)

	// MayHaveNull reports whether any position in the block is null.
	MayHaveNull() bool

	// EncodingName identifies the block's wire encoding to the external
	// serialization layer.
	EncodingName() string

	// RetainedBytesPerPart invokes consumer once per distinct internal array
	// and once for the block instance itself, each paired with its retained
	// byte size, so an external memory tracker can aggregate footprint
	// without double-counting shared buffers.
	RetainedBytesPerPart(consumer func(part any, size int64))

	// IsLoaded reports whether the block is fully materialized in memory.
	IsLoaded() bool

	// Loaded returns the fully materialized form of the block.
	Loaded() Block
}
