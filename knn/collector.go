// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package knn implements an exact nearest-neighbor top-k collector, the
// aggregation state behind an exact_nns aggregate function. Each worker
// feeds its rows into a Collector, partial collectors are merged with
// Combine, and the final state emits the k vectors nearest to the query
// vector as JSON.
package knn

import (
	"container/heap"
	"slices"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

type candidate struct {
	vec      []float64
	distance float64
}

// candidateHeap is a max-heap over distance: the root is the farthest
// retained candidate, the one evicted when a closer candidate arrives.
type candidateHeap []candidate

var _ heap.Interface = (*candidateHeap)(nil)

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return h[i].distance > h[j].distance }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)        { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = candidate{}
	*h = old[:n-1]
	return c
}

// Collector accumulates the k vectors nearest to a query vector. It is a
// bounded priority queue: at most k candidates are retained, and a new
// candidate replaces the current farthest when it is closer. Collectors are
// not safe for concurrent use; the engine gives each worker its own and
// merges them with Combine.
type Collector struct {
	query  []float64
	metric Metric
	k      int
	cands  candidateHeap
}

// NewCollector returns a collector for the k vectors nearest to query under
// the metric.
func NewCollector(query []float64, metric Metric, k int) (*Collector, error) {
	if k <= 0 {
		return nil, errors.Newf("knn: k must be positive, got %d", k)
	}
	if len(query) == 0 {
		return nil, errors.Newf("knn: query vector is empty")
	}
	if metric >= numMetrics {
		return nil, errors.Newf("knn: unknown distance metric %d", metric)
	}
	return &Collector{
		query:  slices.Clone(query),
		metric: metric,
		k:      k,
		cands:  make(candidateHeap, 0, k),
	}, nil
}

// K returns the collector's candidate bound.
func (c *Collector) K() int { return c.k }

// Metric returns the collector's distance metric.
func (c *Collector) Metric() Metric { return c.metric }

// Len returns the number of candidates currently retained, at most K.
func (c *Collector) Len() int { return len(c.cands) }

// Update offers one row's vector to the collector. The vector is copied;
// the engine is free to recycle the row's buffer afterward.
func (c *Collector) Update(vec []float64) error {
	dist, err := c.metric.Distance(c.query, vec)
	if err != nil {
		return err
	}
	if len(c.cands) == c.k && dist >= c.cands[0].distance {
		return nil
	}
	c.offer(candidate{vec: slices.Clone(vec), distance: dist})
	return nil
}

func (c *Collector) offer(cand candidate) {
	if len(c.cands) < c.k {
		heap.Push(&c.cands, cand)
		return
	}
	if cand.distance < c.cands[0].distance {
		c.cands[0] = cand
		heap.Fix(&c.cands, 0)
	}
}

// Combine merges another partial collector into this one. Both collectors
// must have been created with the same query vector, metric, and k.
func (c *Collector) Combine(other *Collector) error {
	if other == nil {
		return nil
	}
	if other.metric != c.metric || other.k != c.k || !slices.Equal(other.query, c.query) {
		return errors.Newf("knn: cannot combine collectors with different query parameters")
	}
	for _, cand := range other.cands {
		c.offer(cand)
	}
	return nil
}

// Result returns the retained vectors ordered from nearest to farthest. The
// collector remains usable afterward.
func (c *Collector) Result() [][]float64 {
	ordered := make([]candidate, len(c.cands))
	copy(ordered, c.cands)
	slices.SortFunc(ordered, func(a, b candidate) int {
		switch {
		case a.distance < b.distance:
			return -1
		case a.distance > b.distance:
			return 1
		default:
			return 0
		}
	})
	vecs := make([][]float64, len(ordered))
	for i := range ordered {
		vecs[i] = ordered[i].vec
	}
	return vecs
}

// MarshalResult encodes Result as a JSON array of vectors, the output shape
// of the aggregate function.
func (c *Collector) MarshalResult() ([]byte, error) {
	return json.Marshal(c.Result())
}
