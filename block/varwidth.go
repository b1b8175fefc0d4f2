// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package block

import (
	"slices"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/swiss"
	"github.com/terndb/columnar/internal/sizeof"
)

// VariableWidthEncodingName identifies the wire encoding for variable-width
// blocks. The byte layout of that encoding is owned by the external
// serializer; NewVariableWidthBlock is its deserialization target.
const VariableWidthEncodingName = "VARCHAR_ARRAY"

// perPositionOverhead is the bookkeeping cost the engine pays per position
// when slicing or filtering a variable-width block: a start offset, a
// length, and a null flag.
const perPositionOverhead = 2*4 + 1

var variableWidthInstanceSize = int64(unsafe.Sizeof(VariableWidthBlock{}))

// VariableWidthBlock holds one column's worth of variable-length byte
// sequences without concatenating them into a single contiguous buffer.
// Each position references an entire raw buffer; the valid payload within
// values[i] is the sub-range [offsets[i], offsets[i]+lengths[i]). Buffers
// may be shared across positions and across blocks.
//
// The stored offset and length of a null position are untrusted: upstream
// producers recycle their vectors, so those slots may hold leftovers from
// unrelated rows. Every accessor masks them to zero/empty.
type VariableWidthBlock struct {
	// arrayOffset is the index of this view's first position within the
	// backing arrays. Regions share arrays with their parent and advance
	// the offset instead of copying.
	arrayOffset   int
	positionCount int
	values        [][]byte
	offsets       []int32
	lengths       []int32
	// valueIsNull is always at least arrayOffset+positionCount long, even
	// when hasNull is false.
	valueIsNull []bool
	// hasNull is a cached summary of the view's range. A position is null
	// iff hasNull && valueIsNull[arrayOffset+position].
	hasNull bool

	sizeInBytes          int64
	retainedSizeOfValues int64
	retainedSizeInBytes  int64
}

var _ Block = (*VariableWidthBlock)(nil)
var _ redact.SafeFormatter = (*VariableWidthBlock)(nil)

// NewVariableWidthBlock constructs a block over the provided backing arrays.
// The block takes shared ownership of the arrays: they must not be mutated
// after the call. Each array must be at least positionCount long. Returns an
// error marked ErrInvalidArgument if any array is absent or undersized, or
// if a non-null position's payload range exceeds its buffer.
func NewVariableWidthBlock(
	positionCount int,
	values [][]byte,
	offsets, lengths []int32,
	hasNull bool,
	valueIsNull []bool,
) (*VariableWidthBlock, error) {
	return newVariableWidthBlock(0, positionCount, values, offsets, lengths, hasNull, valueIsNull)
}

func newVariableWidthBlock(
	arrayOffset, positionCount int,
	values [][]byte,
	offsets, lengths []int32,
	hasNull bool,
	valueIsNull []bool,
) (*VariableWidthBlock, error) {
	if arrayOffset < 0 {
		return nil, invalidArgumentf("arrayOffset %d is negative", arrayOffset)
	}
	if positionCount < 0 {
		return nil, invalidArgumentf("positionCount %d is negative", positionCount)
	}
	if values == nil || len(values)-arrayOffset < positionCount {
		return nil, invalidArgumentf("values is absent or shorter than %d positions at offset %d",
			positionCount, arrayOffset)
	}
	if offsets == nil || len(offsets)-arrayOffset < positionCount {
		return nil, invalidArgumentf("offsets is absent or shorter than %d positions at offset %d",
			positionCount, arrayOffset)
	}
	if lengths == nil || len(lengths)-arrayOffset < positionCount {
		return nil, invalidArgumentf("lengths is absent or shorter than %d positions at offset %d",
			positionCount, arrayOffset)
	}
	// The null bitmap is present unconditionally, even when hasNull is
	// false.
	if valueIsNull == nil || len(valueIsNull)-arrayOffset < positionCount {
		return nil, invalidArgumentf("valueIsNull is absent or shorter than %d positions at offset %d",
			positionCount, arrayOffset)
	}

	b := &VariableWidthBlock{
		arrayOffset:   arrayOffset,
		positionCount: positionCount,
		values:        values,
		offsets:       offsets,
		lengths:       lengths,
		valueIsNull:   valueIsNull,
		hasNull:       hasNull,
	}

	// A single pass over the view's range establishes the payload-range
	// invariant for non-null positions and precomputes both size summaries.
	// Buffers shared by multiple positions count once toward the retained
	// size; sameness is identity of the backing array, not content.
	var seen swiss.Map[*byte, struct{}]
	seen.Init(positionCount)
	var size, retained int64
	for i := 0; i < positionCount; i++ {
		j := arrayOffset + i
		if hasNull && valueIsNull[j] {
			continue
		}
		if offsets[j] < 0 || lengths[j] < 0 || int(offsets[j])+int(lengths[j]) > len(values[j]) {
			return nil, invalidArgumentf("position %d payload [%d, %d+%d) exceeds its %d-byte buffer",
				i, offsets[j], offsets[j], lengths[j], len(values[j]))
		}
		size += int64(lengths[j])
		if len(values[j]) == 0 {
			continue
		}
		ptr := unsafe.SliceData(values[j])
		if _, ok := seen.Get(ptr); !ok {
			seen.Put(ptr, struct{}{})
			retained += int64(len(values[j]))
		}
	}
	b.sizeInBytes = size
	b.retainedSizeOfValues = retained + sizeof.Slice(values)
	b.retainedSizeInBytes = variableWidthInstanceSize + b.retainedSizeOfValues +
		sizeof.Slice(offsets) + sizeof.Slice(lengths) + sizeof.Slice(valueIsNull)
	return b, nil
}

// PositionCount returns the number of logical rows in the block.
func (b *VariableWidthBlock) PositionCount() int {
	return b.positionCount
}

// SizeInBytes returns the logical payload size: the sum of the valid payload
// lengths across the block's positions. Null positions contribute zero. O(1).
func (b *VariableWidthBlock) SizeInBytes() int64 {
	return b.sizeInBytes
}

// RetainedSizeInBytes returns the physical memory footprint held by the
// block, counting each distinct backing buffer once. O(1).
func (b *VariableWidthBlock) RetainedSizeInBytes() int64 {
	return b.retainedSizeInBytes
}

// MayHaveNull reports whether any position in the block is null.
func (b *VariableWidthBlock) MayHaveNull() bool {
	return b.hasNull
}

// payloadLength returns the valid payload length at absolute index j. Null
// positions read as zero regardless of the stored length.
func (b *VariableWidthBlock) payloadLength(j int) int32 {
	if b.hasNull && b.valueIsNull[j] {
		return 0
	}
	return b.lengths[j]
}

// RegionSizeInBytes returns the logical size of Region(positionOffset,
// length) plus per-position bookkeeping overhead, without materializing the
// region.
func (b *VariableWidthBlock) RegionSizeInBytes(positionOffset, length int) (int64, error) {
	if err := checkValidRegion(b.positionCount, positionOffset, length); err != nil {
		return 0, err
	}
	size := int64(length) * perPositionOverhead
	for i := 0; i < length; i++ {
		size += int64(b.payloadLength(b.arrayOffset + positionOffset + i))
	}
	return size, nil
}

// PositionsSizeInBytes returns the logical size of the positions marked true
// in selected, plus per-position overhead for each marked position. The mask
// must cover every position of the block. selectedCount is advisory; the
// mask is recounted.
func (b *VariableWidthBlock) PositionsSizeInBytes(selected []bool, selectedCount int) (int64, error) {
	if len(selected) != b.positionCount {
		return 0, invalidArgumentf("selected mask has %d entries, block has %d positions",
			len(selected), b.positionCount)
	}
	_ = selectedCount
	var size int64
	used := 0
	for i, sel := range selected {
		if sel {
			used++
			size += int64(b.payloadLength(b.arrayOffset + i))
		}
	}
	return size + int64(used)*perPositionOverhead, nil
}

// EstimatedDataSizeForStats returns the payload length of the position, or 0
// if it is null.
func (b *VariableWidthBlock) EstimatedDataSizeForStats(position int) (int64, error) {
	if err := checkValidPosition(position, b.positionCount); err != nil {
		return 0, err
	}
	return int64(b.payloadLength(b.arrayOffset + position)), nil
}

// IsNull reports whether the position is null.
func (b *VariableWidthBlock) IsNull(position int) (bool, error) {
	if err := checkValidPosition(position, b.positionCount); err != nil {
		return false, err
	}
	return b.hasNull && b.valueIsNull[b.arrayOffset+position], nil
}

// RawValue returns the valid payload at the position as a zero-copy view
// into the backing buffer, or nil if the position is null. The returned
// slice is borrowed and must not be mutated.
func (b *VariableWidthBlock) RawValue(position int) ([]byte, error) {
	if err := checkValidPosition(position, b.positionCount); err != nil {
		return nil, err
	}
	j := b.arrayOffset + position
	if b.hasNull && b.valueIsNull[j] {
		return nil, nil
	}
	return b.values[j][b.offsets[j] : b.offsets[j]+b.lengths[j]], nil
}

// Region returns a view of the sub-range [positionOffset,
// positionOffset+length). The view shares this block's backing arrays; its
// lifetime keeps them alive. The null summary is recomputed by scanning only
// the sub-range, since the parent's flag does not transfer to an arbitrary
// sub-range.
func (b *VariableWidthBlock) Region(positionOffset, length int) (*VariableWidthBlock, error) {
	if err := checkValidRegion(b.positionCount, positionOffset, length); err != nil {
		return nil, err
	}
	newHasNull := false
	if b.hasNull {
		for i := 0; i < length; i++ {
			if b.valueIsNull[b.arrayOffset+positionOffset+i] {
				newHasNull = true
				break
			}
		}
	}
	return newVariableWidthBlock(b.arrayOffset+positionOffset, length,
		b.values, b.offsets, b.lengths, newHasNull, b.valueIsNull)
}

// CopyRegion returns a compact copy of the sub-range [positionOffset,
// positionOffset+length). The result owns freshly allocated backing arrays
// holding exactly the valid payload bytes, so holders can drop the parent
// without retaining its slack.
func (b *VariableWidthBlock) CopyRegion(positionOffset, length int) (*VariableWidthBlock, error) {
	if err := checkValidRegion(b.positionCount, positionOffset, length); err != nil {
		return nil, err
	}
	from := b.arrayOffset + positionOffset
	newValues := make([][]byte, length)
	newOffsets := make([]int32, length)
	newLengths := make([]int32, length)
	newValueIsNull := make([]bool, length)
	newHasNull := false
	for i := 0; i < length; i++ {
		j := from + i
		if b.hasNull && b.valueIsNull[j] {
			newValueIsNull[i] = true
			newHasNull = true
			continue
		}
		// Copy only the valid payload, never the buffer's slack.
		newLengths[i] = b.lengths[j]
		newValues[i] = slices.Clone(b.values[j][b.offsets[j] : b.offsets[j]+b.lengths[j]])
	}
	return newVariableWidthBlock(0, length, newValues, newOffsets, newLengths, newHasNull, newValueIsNull)
}

// CopyPositions returns a compact copy of the positions stored in
// positions[offset:offset+length], in that order. Positions may repeat and
// need not be sorted; each must be valid for this block. Used by filter and
// permute operators.
func (b *VariableWidthBlock) CopyPositions(positions []int32, offset, length int) (*VariableWidthBlock, error) {
	if offset < 0 || length < 0 || offset+length > len(positions) {
		return nil, outOfRangef("range [%d, %d+%d) is not valid for positions slice with %d entries",
			offset, offset, length, len(positions))
	}
	newValues := make([][]byte, length)
	newOffsets := make([]int32, length)
	newLengths := make([]int32, length)
	newValueIsNull := make([]bool, length)
	newHasNull := false
	for i := 0; i < length; i++ {
		position := int(positions[offset+i])
		if err := checkValidPosition(position, b.positionCount); err != nil {
			return nil, err
		}
		j := b.arrayOffset + position
		if b.hasNull && b.valueIsNull[j] {
			newValueIsNull[i] = true
			newHasNull = true
			continue
		}
		newLengths[i] = b.lengths[j]
		newValues[i] = slices.Clone(b.values[j][b.offsets[j] : b.offsets[j]+b.lengths[j]])
	}
	return newVariableWidthBlock(0, length, newValues, newOffsets, newLengths, newHasNull, newValueIsNull)
}

// SingleValueBlock returns a 1-position compact copy of the value at the
// position, for operators that must retain one value independent of the
// source block's lifetime.
func (b *VariableWidthBlock) SingleValueBlock(position int) (*VariableWidthBlock, error) {
	if err := checkValidPosition(position, b.positionCount); err != nil {
		return nil, err
	}
	j := b.arrayOffset + position
	if b.hasNull && b.valueIsNull[j] {
		return newVariableWidthBlock(0, 1, make([][]byte, 1),
			make([]int32, 1), make([]int32, 1), true, []bool{true})
	}
	payload := slices.Clone(b.values[j][b.offsets[j] : b.offsets[j]+b.lengths[j]])
	return newVariableWidthBlock(0, 1, [][]byte{payload},
		[]int32{0}, []int32{b.lengths[j]}, false, []bool{false})
}

// CopyWithAppendedNull returns a block with one extra trailing null position
// after copies of the current null/offset/length arrays. The values array is
// shared when it already has room for the placeholder slot; the payload
// buffers are shared either way, since the appended slot has no payload.
// Used to build nullable wrapper dictionaries.
func (b *VariableWidthBlock) CopyWithAppendedNull() *VariableWidthBlock {
	limit := b.arrayOffset + b.positionCount
	newValueIsNull := make([]bool, limit+1)
	copy(newValueIsNull, b.valueIsNull[:limit])
	newValueIsNull[limit] = true
	newOffsets := make([]int32, limit+1)
	copy(newOffsets, b.offsets[:limit])
	newLengths := make([]int32, limit+1)
	copy(newLengths, b.lengths[:limit])
	newValues := b.values
	if len(newValues) < limit+1 {
		newValues = make([][]byte, limit+1)
		copy(newValues, b.values)
	}
	nb, err := newVariableWidthBlock(b.arrayOffset, b.positionCount+1,
		newValues, newOffsets, newLengths, true, newValueIsNull)
	if err != nil {
		panic(errors.AssertionFailedf("appended-null copy of a valid block failed: %v", err))
	}
	return nb
}

// EncodingName identifies the block's wire encoding to the external
// serialization layer.
func (b *VariableWidthBlock) EncodingName() string {
	return VariableWidthEncodingName
}

// IsLoaded reports that the block is fully materialized; variable-width
// blocks have no lazy-loading state.
func (b *VariableWidthBlock) IsLoaded() bool {
	return true
}

// Loaded returns the block itself; it is always fully materialized.
func (b *VariableWidthBlock) Loaded() Block {
	return b
}

// RetainedBytesPerPart invokes consumer once per internal array and once for
// the block instance itself, each paired with its retained byte size. The
// values footprint is the de-duplicated physical size computed at
// construction; summing the buffers' lengths here would double-count shared
// buffers.
func (b *VariableWidthBlock) RetainedBytesPerPart(consumer func(part any, size int64)) {
	consumer(b.values, b.retainedSizeOfValues)
	consumer(b.offsets, sizeof.Slice(b.offsets))
	consumer(b.lengths, sizeof.Slice(b.lengths))
	consumer(b.valueIsNull, sizeof.Slice(b.valueIsNull))
	consumer(b, variableWidthInstanceSize)
}

// String implements fmt.Stringer.
func (b *VariableWidthBlock) String() string {
	return redact.StringWithoutMarkers(b)
}

// SafeFormat implements redact.SafeFormatter.
func (b *VariableWidthBlock) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("VariableWidthBlock{positionCount=%d, size=%d, retainedSize=%d}",
		redact.Safe(b.positionCount), redact.Safe(b.sizeInBytes), redact.Safe(b.retainedSizeInBytes))
}
