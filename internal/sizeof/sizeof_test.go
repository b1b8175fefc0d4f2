// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sizeof

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	require.Equal(t, SliceHeader, Slice([]byte(nil)))
	require.Equal(t, SliceHeader+16, Slice(make([]int32, 4)))
	// Capacity, not length, is what the backing array retains.
	require.Equal(t, SliceHeader+8, Slice(make([]bool, 3, 8)))
	require.Equal(t, SliceHeader+4*SliceHeader, Slice(make([][]byte, 4)))
}
