// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package block

import "github.com/cockroachdb/errors"

// ErrInvalidArgument marks errors returned when a constructor or builder is
// given inputs that cannot form a valid block: negative offsets or counts,
// absent or undersized backing arrays, or payload ranges that exceed their
// buffer.
var ErrInvalidArgument = errors.New("columnar: invalid argument")

// ErrOutOfRange marks errors returned when a position or region argument
// falls outside a block's valid bounds. These are contract violations by the
// caller, never transient conditions.
var ErrOutOfRange = errors.New("columnar: position out of range")

func invalidArgumentf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}

func outOfRangef(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrOutOfRange)
}

func checkValidPosition(position, positionCount int) error {
	if position < 0 || position >= positionCount {
		return outOfRangef("position %d is not valid for block with %d positions",
			position, positionCount)
	}
	return nil
}

func checkValidRegion(positionCount, positionOffset, length int) error {
	if positionOffset < 0 || length < 0 || positionOffset+length > positionCount {
		return outOfRangef("region [%d, %d+%d) is not valid for block with %d positions",
			positionOffset, positionOffset, length, positionCount)
	}
	return nil
}
