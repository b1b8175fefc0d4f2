// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package knn

import (
	"math/rand/v2"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestCollectorTopK(t *testing.T) {
	c, err := NewCollector([]float64{0, 0}, Euclidean, 3)
	require.NoError(t, err)

	// Vectors at distances 5, 3, 1, 4, 2 from the origin, offered out of
	// order.
	vecs := [][]float64{{5, 0}, {0, 3}, {1, 0}, {4, 0}, {0, 2}}
	for _, v := range vecs {
		require.NoError(t, c.Update(v))
	}
	require.Equal(t, 3, c.Len())

	result := c.Result()
	require.Equal(t, [][]float64{{1, 0}, {0, 2}, {0, 3}}, result)
}

func TestCollectorFewerThanK(t *testing.T) {
	c, err := NewCollector([]float64{0}, Euclidean, 10)
	require.NoError(t, err)
	require.NoError(t, c.Update([]float64{2}))
	require.NoError(t, c.Update([]float64{1}))
	require.Equal(t, [][]float64{{1}, {2}}, c.Result())
}

func TestCollectorUpdateCopies(t *testing.T) {
	c, err := NewCollector([]float64{0, 0}, Euclidean, 1)
	require.NoError(t, err)
	v := []float64{1, 1}
	require.NoError(t, c.Update(v))
	v[0] = 99
	require.Equal(t, [][]float64{{1, 1}}, c.Result())
}

func TestCollectorCombine(t *testing.T) {
	query := []float64{0, 0}
	merged, err := NewCollector(query, Euclidean, 2)
	require.NoError(t, err)
	other, err := NewCollector(query, Euclidean, 2)
	require.NoError(t, err)
	single, err := NewCollector(query, Euclidean, 2)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(0, 7))
	for i := 0; i < 50; i++ {
		v := []float64{rng.Float64() * 10, rng.Float64() * 10}
		require.NoError(t, single.Update(v))
		if i%2 == 0 {
			require.NoError(t, merged.Update(v))
		} else {
			require.NoError(t, other.Update(v))
		}
	}
	require.NoError(t, merged.Combine(other))
	require.Equal(t, single.Result(), merged.Result())

	require.NoError(t, merged.Combine(nil))
	require.Equal(t, single.Result(), merged.Result())
}

func TestCollectorCombineMismatch(t *testing.T) {
	a, err := NewCollector([]float64{0, 0}, Euclidean, 2)
	require.NoError(t, err)
	b, err := NewCollector([]float64{0, 0}, Euclidean, 3)
	require.NoError(t, err)
	require.Error(t, a.Combine(b))

	c, err := NewCollector([]float64{0, 0}, Cosine, 2)
	require.NoError(t, err)
	require.Error(t, a.Combine(c))

	d, err := NewCollector([]float64{1, 0}, Euclidean, 2)
	require.NoError(t, err)
	require.Error(t, a.Combine(d))
}

func TestCollectorArguments(t *testing.T) {
	_, err := NewCollector([]float64{1}, Euclidean, 0)
	require.Error(t, err)
	_, err = NewCollector(nil, Euclidean, 1)
	require.Error(t, err)
	_, err = NewCollector([]float64{1}, Metric(42), 1)
	require.Error(t, err)

	c, err := NewCollector([]float64{1, 2}, Euclidean, 1)
	require.NoError(t, err)
	require.Error(t, c.Update([]float64{1}))
}

func TestCollectorMarshalResult(t *testing.T) {
	c, err := NewCollector([]float64{0, 0}, Euclidean, 2)
	require.NoError(t, err)
	require.NoError(t, c.Update([]float64{3, 0}))
	require.NoError(t, c.Update([]float64{1, 0}))
	require.NoError(t, c.Update([]float64{2, 0}))

	out, err := c.MarshalResult()
	require.NoError(t, err)
	var decoded [][]float64
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, [][]float64{{1, 0}, {2, 0}}, decoded)
}
