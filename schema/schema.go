// Package schema has configs, models and constants for all parts of codesight.
package schema

// CodeSample represents one unit of source text submitted for analysis.
// It is immutable for the duration of a request.
type CodeSample struct {
	Path     string   // Relative or display path of the sample
	Content  string   // Raw source text
	Language Language // Source language; LangGeneric when unknown
}

// FeatureVector is a fixed-order numeric representation of a code sample.
// Its layout is defined by the feature schema version that produced it, and
// must match the scaler and models of the generation that consumes it.
type FeatureVector []float64

// Clone returns an independent copy of the vector.
func (v FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(v))
	copy(out, v)
	return out
}

// FeatureMeta records how a feature vector was produced.
type FeatureMeta struct {
	SchemaVersion int  `json:"schema_version"` // Feature schema version of the vector layout
	RawBytes      int  `json:"raw_bytes"`      // Content size before any truncation
	Truncated     bool `json:"truncated"`      // True if content exceeded the byte cap
}

// StructuralMetrics holds parser-derived metrics for the structural feature
// slots. They come from an optional external provider, never from the
// extractor itself.
type StructuralMetrics struct {
	MaxNesting  float64 `json:"max_nesting"`
	BranchCount float64 `json:"branch_count"`
	CallCount   float64 `json:"call_count"`
}

// FeatureField describes one slot of the feature vector layout.
type FeatureField struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Group       string `json:"group"`
	Description string `json:"description"`
}

// FeatureSchemaDescription is the displayable layout of one feature schema
// version, in vector order.
type FeatureSchemaDescription struct {
	Version int            `json:"version"`
	Fields  []FeatureField `json:"fields"`
}

// FeatureExtraction is a standalone extraction result for one sample,
// produced without running any model over it.
type FeatureExtraction struct {
	Path     string        `json:"path"`
	Language Language      `json:"language"`
	Vector   FeatureVector `json:"vector"`
	Meta     FeatureMeta   `json:"meta"`
}
