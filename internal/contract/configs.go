package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/codiehq/codesight/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit     = 25
	MaxResultLimit         = 1000
	DefaultPrecision       = 1
	DefaultMaxContentBytes = 1 << 20 // 1 MiB truncation cap per sample
	DefaultFileTimeout     = 30 * time.Second
	DefaultContamination   = 0.1

	// Confidence thresholds applied after inference. Quality and anomaly
	// outputs carry no confidence of their own and pass unfiltered.
	DefaultVulnConfidence    = 0.5
	DefaultPatternConfidence = 0.5

	// DefaultReportRisk is the risk cutoff for the project vulnerability list.
	DefaultReportRisk = 0.5
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ThresholdsRawInput holds confidence threshold overrides from the YAML
// config file. Use float64 pointers so absent fields keep their defaults.
type ThresholdsRawInput struct {
	Vulnerability *float64 `mapstructure:"vulnerability"`
	Pattern       *float64 `mapstructure:"pattern"`
	ReportRisk    *float64 `mapstructure:"report_risk"`
}

// Config holds the runtime configuration for the engine.
// This struct remains the "final, validated" config.
type Config struct {
	Paths       []string        // Files or directories to analyze
	Language    schema.Language // Forced language; empty = detect per file
	ResultLimit int
	Workers     int
	Excludes    []string
	Detail      bool // If true, print per-file slot states and metadata
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	MaxContentBytes int           // Truncation cap for sample content
	FileTimeout     time.Duration // Per-file budget inside a batch

	VulnConfidence    float64 // Confidence filter threshold for vulnerability predictions
	PatternConfidence float64 // Confidence filter threshold for detected patterns
	ReportRisk        float64 // Risk cutoff for the project vulnerability list

	ProjectID string // Key handed to the coverage provider; empty = no lookup

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	CorpusPath    string  // Training corpus file (parquet or json)
	Contamination float64 // Expected outlier share for anomaly training

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	PathArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Language       string `mapstructure:"language"`
	Limit          int    `mapstructure:"limit"`
	Workers        int    `mapstructure:"workers"`
	Exclude        string `mapstructure:"exclude"`
	Detail         bool   `mapstructure:"detail"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	MaxBytes       int    `mapstructure:"max-bytes"`
	FileTimeout    string `mapstructure:"file-timeout"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`

	// --- Fields from projectCmd.Flags() ---
	ProjectID string `mapstructure:"project-id"`

	// --- Fields from trainCmd.Flags() ---
	Corpus        string  `mapstructure:"corpus"`
	Contamination float64 `mapstructure:"contamination"`

	// --- Confidence thresholds from flags or config file ---
	VulnConfidence    float64 `mapstructure:"vuln-confidence"`
	PatternConfidence float64 `mapstructure:"pattern-confidence"`
	ReportRisk        float64 `mapstructure:"report-risk"`

	// --- Threshold overrides from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Paths != nil {
		clone.Paths = make([]string, len(c.Paths))
		copy(clone.Paths, c.Paths)
	}
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	if err := processTrainingInputs(cfg, input); err != nil {
		return err
	}
	if err := resolvePaths(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Detail = input.Detail
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.ProjectID = input.ProjectID

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Language Validation ---
	if input.Language != "" {
		lang := schema.Language(strings.ToLower(input.Language))
		if _, ok := schema.ValidLanguages[lang]; !ok {
			return fmt.Errorf("invalid language '%s'. must be python, go, javascript, typescript, java, ruby, generic", input.Language)
		}
		cfg.Language = lang
	}

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	// --- 5. Content Cap and Timeout Validation ---
	if input.MaxBytes <= 0 {
		return fmt.Errorf("max-bytes must be greater than 0 (received %d)", input.MaxBytes)
	}
	cfg.MaxContentBytes = input.MaxBytes

	cfg.FileTimeout = DefaultFileTimeout
	if input.FileTimeout != "" {
		d, err := time.ParseDuration(input.FileTimeout)
		if err != nil {
			return fmt.Errorf("invalid file-timeout '%s': %w", input.FileTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("file-timeout must be positive (received %s)", d)
		}
		cfg.FileTimeout = d
	}

	// --- 6. Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidStoreBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- 7. Excludes Processing ---
	defaults := []string{
		"vendor/", "node_modules/", ".git/",
		"dist/", "build/", "out/", "target/", "bin/",
		".min.js", ".min.css",
		"Cargo.lock", "go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml", "composer.lock", "uv.lock",
	}
	cfg.Excludes = defaults // Set defaults first

	if input.Exclude != "" {
		parts := strings.SplitSeq(input.Exclude, ",")
		for p := range parts {
			trimmedP := strings.TrimSpace(p)
			if trimmedP != "" {
				cfg.Excludes = append(cfg.Excludes, trimmedP)
			}
		}
	}

	return nil
}

// processThresholds resolves confidence thresholds from flags and the config
// file. Flags take precedence over config file values.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	cfg.VulnConfidence = input.VulnConfidence
	cfg.PatternConfidence = input.PatternConfidence
	cfg.ReportRisk = input.ReportRisk

	// Config file overrides only apply when the flag kept its default.
	if input.Thresholds.Vulnerability != nil && cfg.VulnConfidence == DefaultVulnConfidence {
		cfg.VulnConfidence = *input.Thresholds.Vulnerability
	}
	if input.Thresholds.Pattern != nil && cfg.PatternConfidence == DefaultPatternConfidence {
		cfg.PatternConfidence = *input.Thresholds.Pattern
	}
	if input.Thresholds.ReportRisk != nil && cfg.ReportRisk == DefaultReportRisk {
		cfg.ReportRisk = *input.Thresholds.ReportRisk
	}

	for name, v := range map[string]float64{
		"vuln-confidence":    cfg.VulnConfidence,
		"pattern-confidence": cfg.PatternConfidence,
		"report-risk":        cfg.ReportRisk,
	} {
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("%s must be between 0.0 and 1.0 (received %.2f)", name, v)
		}
	}
	return nil
}

// processTrainingInputs validates the corpus path and contamination share.
func processTrainingInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.CorpusPath = strings.TrimSpace(input.Corpus)

	cfg.Contamination = input.Contamination
	if cfg.Contamination <= 0.0 || cfg.Contamination >= 0.5 {
		return fmt.Errorf("contamination must be in (0.0, 0.5) (received %.2f)", cfg.Contamination)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolvePaths cleans the positional path arguments and verifies they exist.
// Commands without positional inputs (train, models, mcp) pass none through.
func resolvePaths(cfg *Config, input *ConfigRawInput) error {
	cfg.Paths = cfg.Paths[:0]
	for _, p := range input.PathArgs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		abs = filepath.Clean(abs)
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("path %q is not accessible: %w", p, err)
		}
		cfg.Paths = append(cfg.Paths, abs)
	}
	return nil
}
