// Package model implements the four inference models served by the
// registry: vulnerability classification, quality regression, pattern
// detection and anomaly scoring. All models are deterministic given the
// same training corpus and serialize to JSON artifact payloads.
package model

import (
	"errors"
	"hash/fnv"
	"math/rand/v2"
)

// ErrUnavailable reports a model slot with no loaded model. Callers record
// the slot as unavailable instead of failing the whole file.
var ErrUnavailable = errors.New("model unavailable")

// newRNG returns a deterministic generator for one model fit. The stream
// depends only on the model name and version, so retraining the same corpus
// reproduces the same model bit for bit.
func newRNG(name string, version int) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return rand.New(rand.NewPCG(h.Sum64(), uint64(version)))
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
