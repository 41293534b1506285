// Package testutil holds shared assertions for rendered audio.
package testutil

import (
	"math"
	"testing"
)

// RequireFinite fails t if any sample is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite sample %v", i, v)
		}
	}
}

// RequireWithin fails t if any sample lies outside [lo, hi].
func RequireWithin(t *testing.T, data []float64, lo, hi float64) {
	t.Helper()

	for i, v := range data {
		if v < lo || v > hi {
			t.Fatalf("index %d: sample %v outside [%v, %v]", i, v, lo, hi)
		}
	}
}

// RequireNear fails t if got differs from want by more than eps.
func RequireNear(t *testing.T, what string, got, want, eps float64) {
	t.Helper()

	if diff := math.Abs(got - want); diff > eps {
		t.Fatalf("%s: got %v, want %v (diff %v > eps %v)", what, got, want, diff, eps)
	}
}

// RequireSilent fails t if any sample exceeds eps in magnitude.
func RequireSilent(t *testing.T, data []float64, eps float64) {
	t.Helper()

	for i, v := range data {
		if math.Abs(v) > eps {
			t.Fatalf("index %d: expected silence, got %v", i, v)
		}
	}
}
