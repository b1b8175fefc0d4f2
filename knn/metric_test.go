// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package knn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricByName(t *testing.T) {
	for _, m := range []Metric{Euclidean, Cosine, DotProduct} {
		got, err := MetricByName(m.String())
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
	_, err := MetricByName("manhattan")
	require.Error(t, err)
}

func TestEuclideanDistance(t *testing.T) {
	d, err := Euclidean.Distance([]float64{0, 0}, []float64{3, 4})
	require.NoError(t, err)
	require.Equal(t, 5.0, d)

	d, err = Euclidean.Distance([]float64{1, 1}, []float64{1, 1})
	require.NoError(t, err)
	require.Zero(t, d)
}

func TestCosineDistance(t *testing.T) {
	d, err := Cosine.Distance([]float64{1, 0}, []float64{2, 0})
	require.NoError(t, err)
	require.InDelta(t, 0.0, d, 1e-12)

	d, err = Cosine.Distance([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	require.InDelta(t, 1.0, d, 1e-12)

	d, err = Cosine.Distance([]float64{1, 0}, []float64{-1, 0})
	require.NoError(t, err)
	require.InDelta(t, 2.0, d, 1e-12)

	_, err = Cosine.Distance([]float64{0, 0}, []float64{1, 0})
	require.Error(t, err)
}

func TestDotProductDistance(t *testing.T) {
	// Larger inner product means closer, so the distance is negated.
	near, err := DotProduct.Distance([]float64{1, 2}, []float64{3, 4})
	require.NoError(t, err)
	require.Equal(t, -11.0, near)

	far, err := DotProduct.Distance([]float64{1, 2}, []float64{-3, -4})
	require.NoError(t, err)
	require.Less(t, near, far)
}

func TestDistanceDimensionMismatch(t *testing.T) {
	for _, m := range []Metric{Euclidean, Cosine, DotProduct} {
		_, err := m.Distance([]float64{1, 2}, []float64{1})
		require.Error(t, err)
	}
}
