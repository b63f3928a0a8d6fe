package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/codiehq/codesight/schema"
)

// ErrSchemaMismatch reports a vector whose dimensionality or schema version
// does not match the scaler or model consuming it. Mismatches are never
// repaired by padding or truncation.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// ScalerParams holds the standard-scaling parameters fit on a training
// corpus. Applying them is pure and bit-for-bit reproducible.
type ScalerParams struct {
	SchemaVersion int       `json:"schema_version"`
	Center        []float64 `json:"center"`
	Scale         []float64 `json:"scale"`
}

// FitScaler computes per-feature mean and population standard deviation
// over the given vectors. Features with zero variance get scale 1 so that
// applying the scaler never divides by zero. Fitting happens only inside
// the training pipeline, never at inference time.
func FitScaler(vectors []schema.FeatureVector) (*ScalerParams, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty corpus")
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d: %w", i, len(v), dim, ErrSchemaMismatch)
		}
	}

	p := &ScalerParams{
		SchemaVersion: SchemaVersion,
		Center:        make([]float64, dim),
		Scale:         make([]float64, dim),
	}
	n := float64(len(vectors))

	for j := range dim {
		sum := 0.0
		for _, v := range vectors {
			sum += v[j]
		}
		p.Center[j] = sum / n
	}
	for j := range dim {
		variance := 0.0
		for _, v := range vectors {
			d := v[j] - p.Center[j]
			variance += d * d
		}
		std := math.Sqrt(variance / n)
		if std == 0 {
			std = 1
		}
		p.Scale[j] = std
	}
	return p, nil
}

// Apply normalizes one vector with the fitted parameters. The input is not
// modified. A dimensionality mismatch returns ErrSchemaMismatch.
func (p *ScalerParams) Apply(vec schema.FeatureVector) (schema.FeatureVector, error) {
	if len(vec) != len(p.Center) {
		return nil, fmt.Errorf("vector has dimension %d, scaler expects %d: %w", len(vec), len(p.Center), ErrSchemaMismatch)
	}
	out := make(schema.FeatureVector, len(vec))
	for j := range vec {
		out[j] = (vec[j] - p.Center[j]) / p.Scale[j]
	}
	return out, nil
}

// ApplyAll normalizes a batch of vectors, stopping at the first mismatch.
func (p *ScalerParams) ApplyAll(vectors []schema.FeatureVector) ([]schema.FeatureVector, error) {
	out := make([]schema.FeatureVector, len(vectors))
	for i, v := range vectors {
		scaled, err := p.Apply(v)
		if err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}
