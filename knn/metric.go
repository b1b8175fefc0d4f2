// Copyright 2026 The Columnar Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package knn

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Metric selects the distance function used to rank candidate vectors.
// Smaller distances are closer under every metric; dot product is negated so
// a single ordering applies throughout the package.
type Metric uint8

const (
	// Euclidean ranks by L2 distance.
	Euclidean Metric = iota
	// Cosine ranks by 1 - cosine similarity.
	Cosine
	// DotProduct ranks by negated inner product.
	DotProduct

	numMetrics
)

var metricNames = [numMetrics]string{
	Euclidean:  "euclidean",
	Cosine:     "cosine",
	DotProduct: "dot_product",
}

// String returns the metric's stable name, the same name MetricByName
// accepts.
func (m Metric) String() string {
	if m >= numMetrics {
		return "unknown"
	}
	return metricNames[m]
}

// MetricByName returns the metric with the given stable name. Aggregation
// calls carry the metric as a string argument, so the name set is part of
// the query-facing contract.
func MetricByName(name string) (Metric, error) {
	for m, n := range metricNames {
		if n == name {
			return Metric(m), nil
		}
	}
	return 0, errors.Newf("knn: unknown distance metric %q", name)
}

// Distance returns the distance between a and b under the metric. The
// vectors must have the same dimension.
func (m Metric) Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Newf("knn: dimension mismatch: %d != %d", len(a), len(b))
	}
	switch m {
	case Euclidean:
		var sum float64
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return math.Sqrt(sum), nil
	case Cosine:
		var dot, na, nb float64
		for i := range a {
			dot += a[i] * b[i]
			na += a[i] * a[i]
			nb += b[i] * b[i]
		}
		if na == 0 || nb == 0 {
			return 0, errors.Newf("knn: cosine distance is undefined for a zero vector")
		}
		return 1 - dot/math.Sqrt(na*nb), nil
	case DotProduct:
		var dot float64
		for i := range a {
			dot += a[i] * b[i]
		}
		return -dot, nil
	default:
		return 0, errors.Newf("knn: unknown distance metric %d", m)
	}
}
