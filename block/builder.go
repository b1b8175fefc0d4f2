// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package block

import "slices"

// VariableWidthBlockBuilder accumulates values row by row and produces an
// immutable VariableWidthBlock. The zero value is ready for use.
//
// Finish hands the builder's arrays to the block, which takes shared
// ownership of them. A finished builder must be Reset (or discarded) before
// reuse; appending to it after Finish would mutate arrays the block shares.
type VariableWidthBlockBuilder struct {
	values      [][]byte
	offsets     []int32
	lengths     []int32
	valueIsNull []bool
	hasNull     bool
}

// Reset prepares the builder for reuse. The backing arrays are abandoned
// rather than truncated because a previously finished block shares them.
func (b *VariableWidthBlockBuilder) Reset() {
	*b = VariableWidthBlockBuilder{}
}

// Put appends a copy of v as the next position. The builder owns the copy,
// so the caller is free to reuse v.
func (b *VariableWidthBlockBuilder) Put(v []byte) {
	b.values = append(b.values, slices.Clone(v))
	b.offsets = append(b.offsets, 0)
	b.lengths = append(b.lengths, int32(len(v)))
	b.valueIsNull = append(b.valueIsNull, false)
}

// PutNull appends a null position.
func (b *VariableWidthBlockBuilder) PutNull() {
	b.values = append(b.values, nil)
	b.offsets = append(b.offsets, 0)
	b.lengths = append(b.lengths, 0)
	b.valueIsNull = append(b.valueIsNull, true)
	b.hasNull = true
}

// PutShared appends a zero-copy reference to the payload [offset,
// offset+length) of an externally owned buffer. This is the vector-recycling
// producer path: the same buffer may back many positions. buf must not be
// mutated afterward. Returns an error marked ErrInvalidArgument if the
// payload range exceeds the buffer.
func (b *VariableWidthBlockBuilder) PutShared(buf []byte, offset, length int32) error {
	if offset < 0 || length < 0 || int(offset)+int(length) > len(buf) {
		return invalidArgumentf("payload [%d, %d+%d) exceeds the %d-byte shared buffer",
			offset, offset, length, len(buf))
	}
	b.values = append(b.values, buf)
	b.offsets = append(b.offsets, offset)
	b.lengths = append(b.lengths, length)
	b.valueIsNull = append(b.valueIsNull, false)
	return nil
}

// Rows returns the number of positions added since the last Reset.
func (b *VariableWidthBlockBuilder) Rows() int {
	return len(b.values)
}

// Finish constructs the block over the builder's arrays. The block takes
// shared ownership; see the type comment.
func (b *VariableWidthBlockBuilder) Finish() (*VariableWidthBlock, error) {
	values, offsets, lengths, valueIsNull := b.values, b.offsets, b.lengths, b.valueIsNull
	if values == nil {
		// An empty builder still produces a valid empty block; the
		// constructor rejects absent arrays.
		values = [][]byte{}
		offsets = []int32{}
		lengths = []int32{}
		valueIsNull = []bool{}
	}
	return NewVariableWidthBlock(len(values), values, offsets, lengths, b.hasNull, valueIsNull)
}
