package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync/atomic"
	"time"

	"github.com/codiehq/codesight/core/feature"
	"github.com/codiehq/codesight/schema"
)

// Generation is one immutable bundle of fitted models plus the scaler that
// normalized their training corpus. A nil model pointer means the kind has
// no usable model in this generation and its slot reports unavailable.
// Generations are never mutated after install; training builds a fresh one.
type Generation struct {
	Seq           int64
	ID            string
	CreatedAt     time.Time
	SchemaVersion int
	Scaler        *feature.ScalerParams

	Vulnerability *VulnerabilityModel
	Quality       *QualityModel
	Pattern       *PatternModel
	Anomaly       *AnomalyModel

	// Scalers pairs each kind with the scaler of the run that fitted it. A
	// model carried over from an earlier generation keeps that generation's
	// scaler here; kinds promoted by this run share Scaler.
	Scalers map[schema.ModelName]*feature.ScalerParams

	Records map[schema.ModelName]schema.ModelRecord
}

// ScalerFor returns the scaler the named model was trained against. Models
// must only see vectors normalized by their own training run's parameters,
// so a carried model never inherits a newer scaler.
func (g *Generation) ScalerFor(name schema.ModelName) *feature.ScalerParams {
	if s, ok := g.Scalers[name]; ok && s != nil {
		return s
	}
	return g.Scaler
}

// Record returns the registry record for one model kind.
func (g *Generation) Record(name schema.ModelName) (schema.ModelRecord, bool) {
	rec, ok := g.Records[name]
	return rec, ok
}

// Has reports whether the generation carries a usable model of this kind.
func (g *Generation) Has(name schema.ModelName) bool {
	switch name {
	case schema.ModelVulnerability:
		return g.Vulnerability != nil
	case schema.ModelQuality:
		return g.Quality != nil
	case schema.ModelPattern:
		return g.Pattern != nil
	case schema.ModelAnomaly:
		return g.Anomaly != nil
	default:
		return false
	}
}

// EncodeScaler serializes the generation's scaler parameters.
func (g *Generation) EncodeScaler() ([]byte, error) {
	return json.Marshal(g.Scaler)
}

// artifactEnvelope is the persisted form of one model: the model itself
// plus the scaler its training run fitted. Rebuilding a generation re-pairs
// every model with the normalization it was validated under, even when the
// generation row carries a newer scaler.
type artifactEnvelope struct {
	Scaler *feature.ScalerParams `json:"scaler"`
	Model  json.RawMessage       `json:"model"`
}

// EncodeArtifact serializes one model to its persistable payload.
func (g *Generation) EncodeArtifact(name schema.ModelName) ([]byte, error) {
	if !g.Has(name) {
		return nil, fmt.Errorf("encode %s: %w", name, ErrUnavailable)
	}
	var m any
	switch name {
	case schema.ModelVulnerability:
		m = g.Vulnerability
	case schema.ModelQuality:
		m = g.Quality
	case schema.ModelPattern:
		m = g.Pattern
	default:
		m = g.Anomaly
	}
	return EncodeArtifactPayload(g.ScalerFor(name), m)
}

// EncodeArtifactPayload wraps a model and the scaler it was trained against
// into the persisted artifact form.
func EncodeArtifactPayload(scaler *feature.ScalerParams, m any) ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(artifactEnvelope{Scaler: scaler, Model: raw})
}

// DecodeGeneration rebuilds a generation from its stored rows. Every
// artifact must decode; a corrupt payload fails the whole load rather than
// silently serving a partial generation.
func DecodeGeneration(rec schema.GenerationRecord, artifacts []schema.ModelArtifactRecord) (*Generation, error) {
	var scaler feature.ScalerParams
	if err := json.Unmarshal(rec.ScalerPayload, &scaler); err != nil {
		return nil, fmt.Errorf("decode scaler for generation %s: %w", rec.GenerationID, err)
	}
	g := &Generation{
		Seq:           rec.Seq,
		ID:            rec.GenerationID,
		CreatedAt:     rec.CreatedAt,
		SchemaVersion: rec.SchemaVersion,
		Scaler:        &scaler,
		Scalers:       make(map[schema.ModelName]*feature.ScalerParams, len(artifacts)),
		Records:       make(map[schema.ModelName]schema.ModelRecord, len(artifacts)),
	}
	for _, a := range artifacts {
		if err := g.decodeModel(a.Name, a.Payload); err != nil {
			return nil, err
		}
		g.Records[a.Name] = schema.ModelRecord{
			Name:      a.Name,
			Version:   a.Version,
			Accuracy:  a.Accuracy,
			Status:    schema.StatusActive,
			TrainedAt: a.TrainedAt,
		}
	}
	return g, nil
}

func (g *Generation) decodeModel(name schema.ModelName, payload []byte) error {
	var env artifactEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("decode %s artifact: %w", name, err)
	}
	var err error
	switch name {
	case schema.ModelVulnerability:
		m := &VulnerabilityModel{}
		if err = json.Unmarshal(env.Model, m); err == nil {
			g.Vulnerability = m
		}
	case schema.ModelQuality:
		m := &QualityModel{}
		if err = json.Unmarshal(env.Model, m); err == nil {
			g.Quality = m
		}
	case schema.ModelPattern:
		m := &PatternModel{}
		if err = json.Unmarshal(env.Model, m); err == nil {
			g.Pattern = m
		}
	case schema.ModelAnomaly:
		m := &AnomalyModel{}
		if err = json.Unmarshal(env.Model, m); err == nil {
			g.Anomaly = m
		}
	default:
		return fmt.Errorf("unknown model kind %q in generation %s", name, g.ID)
	}
	if err != nil {
		return fmt.Errorf("decode %s artifact: %w", name, err)
	}
	if env.Scaler != nil {
		g.Scalers[name] = env.Scaler
	}
	return nil
}

// Registry publishes the active generation. The training pipeline is the
// only writer; any number of readers snapshot once per inference call and
// finish on that snapshot even if a newer generation lands mid-flight.
type Registry struct {
	active atomic.Pointer[Generation]
}

// NewRegistry returns an empty registry. Every inference against it reports
// all slots unavailable until a generation is installed.
func NewRegistry() *Registry {
	return &Registry{}
}

// Snapshot returns the active generation, or nil before the first install.
func (r *Registry) Snapshot() *Generation {
	return r.active.Load()
}

// Install atomically publishes gen as the active generation.
func (r *Registry) Install(gen *Generation) {
	r.active.Store(gen)
}

// Status reports the active generation for operators.
func (r *Registry) Status() schema.RegistryStatus {
	g := r.Snapshot()
	if g == nil {
		return schema.RegistryStatus{Records: map[schema.ModelName]schema.ModelRecord{}}
	}
	return schema.RegistryStatus{
		GenerationID:  g.ID,
		GenerationSeq: g.Seq,
		CreatedAt:     g.CreatedAt,
		SchemaVersion: g.SchemaVersion,
		Records:       maps.Clone(g.Records),
	}
}
