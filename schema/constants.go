package schema

// Custom string types for type safety.
type (
	// Language represents the source language of a code sample.
	Language string

	// ModelName represents one of the inference model kinds.
	ModelName string

	// ModelStatus represents the lifecycle status of a model record.
	ModelStatus string

	// SlotState explains how a model slot ended up in a file insight.
	SlotState string

	// PatternType represents the category of a detected pattern.
	PatternType string

	// Severity represents the severity of a detected pattern.
	Severity string

	// VulnCategory represents a vulnerability category label.
	VulnCategory string

	// QualityKey represents keys in the quality score blend.
	QualityKey string

	// TrainingState represents the phase of the training pipeline.
	TrainingState string

	// ErrorKind classifies a per-file analysis failure.
	ErrorKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for model storage.
	DatabaseBackend string
)

// All languages supported by the feature extractor. Unknown extensions
// fall back to LangGeneric, which carries no language-specific tokens.
const (
	LangPython     Language = "python" // default
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
	LangRuby       Language = "ruby"
	LangGeneric    Language = "generic"
)

// All model kinds served by the registry.
const (
	ModelVulnerability ModelName = "vulnerability"
	ModelQuality       ModelName = "quality"
	ModelPattern       ModelName = "pattern"
	ModelAnomaly       ModelName = "anomaly"
)

// All model record statuses. Retired only appears in store history, never
// on a record served by the registry.
const (
	StatusActive   ModelStatus = "active"
	StatusTraining ModelStatus = "training"
	StatusError    ModelStatus = "error"
	StatusRetired  ModelStatus = "retired"
)

// All slot states for a file insight.
const (
	SlotAvailable   SlotState = "available"   // model ran, value present (pattern list may be empty)
	SlotFiltered    SlotState = "filtered"    // model ran, output dropped by the confidence filter
	SlotUnavailable SlotState = "unavailable" // model missing from the active generation
)

// All pattern types supported.
const (
	PatternSecurity     PatternType = "security"
	PatternPerformance  PatternType = "performance"
	PatternStyle        PatternType = "style"
	PatternArchitecture PatternType = "architecture"
)

// All pattern severities supported.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// All vulnerability categories emitted by the classifier rule table.
const (
	CategoryCodeInjection        VulnCategory = "code-injection"
	CategoryCommandInjection     VulnCategory = "command-injection"
	CategoryProcessInjection     VulnCategory = "process-injection"
	CategoryDeserialization      VulnCategory = "unsafe-deserialization"
	CategoryHardcodedCredentials VulnCategory = "hardcoded-credentials"
)

// Quality blend keys used in the scoring logic.
const (
	QualityMaintainability QualityKey = "maintainability"
	QualityComplexity      QualityKey = "complexity"
	QualityDuplication     QualityKey = "duplication"
	QualityCoverage        QualityKey = "coverage"
	QualityDocumentation   QualityKey = "documentation"
)

// All training pipeline states.
const (
	TrainIdle       TrainingState = "idle" // default
	TrainFitting    TrainingState = "training"
	TrainValidating TrainingState = "validating"
	TrainPromoted   TrainingState = "promoted"
	TrainRejected   TrainingState = "rejected"
)

// All per-file error kinds.
const (
	ErrKindExtraction ErrorKind = "extraction"
	ErrKindSchema     ErrorKind = "schema"
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindModel      ErrorKind = "model"
	ErrKindInternal   ErrorKind = "internal"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All model store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// HighRiskThreshold marks a file as high risk in batch summaries.
const HighRiskThreshold = 0.7

// AllModelNames returns all model kinds in reporting order.
var AllModelNames = []ModelName{ModelVulnerability, ModelQuality, ModelPattern, ModelAnomaly}

// AllLanguages returns all supported languages.
var AllLanguages = []Language{LangPython, LangGo, LangJavaScript, LangTypeScript, LangJava, LangRuby, LangGeneric}

// ValidLanguages lists all valid languages.
var ValidLanguages = map[Language]struct{}{
	LangPython:     {},
	LangGo:         {},
	LangJavaScript: {},
	LangTypeScript: {},
	LangJava:       {},
	LangRuby:       {},
	LangGeneric:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidModelNames lists all valid model kinds.
var ValidModelNames = map[ModelName]struct{}{
	ModelVulnerability: {},
	ModelQuality:       {},
	ModelPattern:       {},
	ModelAnomaly:       {},
}

// ValidStoreBackends lists all valid model store backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetQualityWeights returns the fixed blend weights for the overall quality
// score. Complexity and duplication are inverted before blending, so every
// term rewards higher values.
func GetQualityWeights() map[QualityKey]float64 {
	return map[QualityKey]float64{
		QualityMaintainability: 0.30,
		QualityComplexity:      0.20,
		QualityDuplication:     0.20,
		QualityCoverage:        0.20,
		QualityDocumentation:   0.10,
	}
}

// GetSeverityWeight returns the hotspot contribution of one pattern severity.
func GetSeverityWeight(s Severity) float64 {
	switch s {
	case SeverityCritical:
		return 8
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 2
	default: // SeverityLow
		return 1
	}
}

// DetectLanguage maps a file extension to a supported language.
func DetectLanguage(path string) Language {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			break
		}
		if path[i] != '.' {
			continue
		}
		switch path[i:] {
		case ".py":
			return LangPython
		case ".go":
			return LangGo
		case ".js", ".jsx", ".mjs":
			return LangJavaScript
		case ".ts", ".tsx":
			return LangTypeScript
		case ".java":
			return LangJava
		case ".rb":
			return LangRuby
		}
		break
	}
	return LangGeneric
}
