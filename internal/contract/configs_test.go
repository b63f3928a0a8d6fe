package contract

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codiehq/codesight/schema"
)

// validInput returns a minimal raw input that passes validation, so each
// case only has to state what it changes.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Limit:             10,
		Workers:           4,
		Precision:         1,
		Output:            "text",
		MaxBytes:          DefaultMaxContentBytes,
		StoreBackend:      string(schema.SQLiteBackend),
		Emoji:             "yes",
		Color:             "no",
		Contamination:     DefaultContamination,
		VulnConfidence:    DefaultVulnConfidence,
		PatternConfidence: DefaultPatternConfidence,
		ReportRisk:        DefaultReportRisk,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{
			name:        "valid minimal config",
			mutate:      func(*ConfigRawInput) {},
			expectError: false,
		},
		{
			name:        "forced language normalized",
			mutate:      func(in *ConfigRawInput) { in.Language = "Python" },
			expectError: false,
		},
		{
			name:        "invalid language",
			mutate:      func(in *ConfigRawInput) { in.Language = "fortran" },
			expectError: true,
		},
		{
			name:        "invalid limit (zero)",
			mutate:      func(in *ConfigRawInput) { in.Limit = 0 },
			expectError: true,
		},
		{
			name:        "invalid limit (negative)",
			mutate:      func(in *ConfigRawInput) { in.Limit = -1 },
			expectError: true,
		},
		{
			name:        "invalid limit (too large)",
			mutate:      func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 },
			expectError: true,
		},
		{
			name:        "invalid workers (zero)",
			mutate:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: true,
		},
		{
			name:        "invalid workers (negative)",
			mutate:      func(in *ConfigRawInput) { in.Workers = -1 },
			expectError: true,
		},
		{
			name:        "invalid precision (zero)",
			mutate:      func(in *ConfigRawInput) { in.Precision = 0 },
			expectError: true,
		},
		{
			name:        "invalid precision (too high)",
			mutate:      func(in *ConfigRawInput) { in.Precision = 3 },
			expectError: true,
		},
		{
			name:        "invalid output format",
			mutate:      func(in *ConfigRawInput) { in.Output = "invalid_format" },
			expectError: true,
		},
		{
			name:        "invalid max bytes",
			mutate:      func(in *ConfigRawInput) { in.MaxBytes = 0 },
			expectError: true,
		},
		{
			name:        "valid file timeout",
			mutate:      func(in *ConfigRawInput) { in.FileTimeout = "45s" },
			expectError: false,
		},
		{
			name:        "invalid file timeout",
			mutate:      func(in *ConfigRawInput) { in.FileTimeout = "not-a-duration" },
			expectError: true,
		},
		{
			name:        "negative file timeout",
			mutate:      func(in *ConfigRawInput) { in.FileTimeout = "-5s" },
			expectError: true,
		},
		{
			name:        "invalid emoji value",
			mutate:      func(in *ConfigRawInput) { in.Emoji = "maybe" },
			expectError: true,
		},
		{
			name:        "invalid store backend",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = "invalid_backend" },
			expectError: true,
		},
		{
			name:        "mysql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = string(schema.MySQLBackend) },
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = string(schema.MySQLBackend)
				in.StoreDBConnect = "user:pass@tcp(localhost:3306)/codesight"
			},
			expectError: false,
		},
		{
			name:        "postgresql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = string(schema.PostgreSQLBackend) },
			expectError: true,
		},
		{
			name: "postgresql backend with connection string",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = string(schema.PostgreSQLBackend)
				in.StoreDBConnect = "host=localhost port=5432 user=postgres dbname=codesight"
			},
			expectError: false,
		},
		{
			name:        "none backend",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = string(schema.NoneBackend) },
			expectError: false,
		},
		{
			name:        "vuln confidence out of range",
			mutate:      func(in *ConfigRawInput) { in.VulnConfidence = 1.5 },
			expectError: true,
		},
		{
			name:        "report risk negative",
			mutate:      func(in *ConfigRawInput) { in.ReportRisk = -0.1 },
			expectError: true,
		},
		{
			name:        "contamination at upper bound",
			mutate:      func(in *ConfigRawInput) { in.Contamination = 0.5 },
			expectError: true,
		},
		{
			name:        "contamination negative",
			mutate:      func(in *ConfigRawInput) { in.Contamination = -0.1 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)

			if tt.expectError {
				assert.Error(t, err, "contract.ProcessAndValidate should return an error for %s", tt.name)
			} else {
				assert.NoError(t, err, "contract.ProcessAndValidate should not return an error for %s", tt.name)
				// Basic validation that config was populated
				assert.Equal(t, input.Limit, cfg.ResultLimit)
				assert.Equal(t, schema.DatabaseBackend(input.StoreBackend), cfg.StoreBackend)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, DefaultFileTimeout, cfg.FileTimeout)
	assert.True(t, cfg.UseEmojis)
	assert.False(t, cfg.UseColors)
	assert.Empty(t, cfg.Paths)
	assert.Equal(t, schema.Language(""), cfg.Language)

	// Built-in excludes always apply.
	assert.Contains(t, cfg.Excludes, "vendor/")
	assert.Contains(t, cfg.Excludes, "node_modules/")
	assert.Contains(t, cfg.Excludes, ".min.js")
}

func TestProcessAndValidateExcludes(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Exclude = "tmp/, *.bak ,"
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Contains(t, cfg.Excludes, "tmp/")
	assert.Contains(t, cfg.Excludes, "*.bak")
	assert.Contains(t, cfg.Excludes, "vendor/")
	assert.NotContains(t, cfg.Excludes, "")
}

func TestProcessAndValidateLanguage(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Language = "Python"
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.LangPython, cfg.Language)
}

func TestProcessThresholdOverrides(t *testing.T) {
	t.Run("config file value applies when flag at default", func(t *testing.T) {
		cfg := &Config{}
		input := validInput()
		override := 0.8
		input.Thresholds.Vulnerability = &override
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, 0.8, cfg.VulnConfidence)
	})

	t.Run("explicit flag wins over config file", func(t *testing.T) {
		cfg := &Config{}
		input := validInput()
		override := 0.8
		input.VulnConfidence = 0.7
		input.Thresholds.Vulnerability = &override
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, 0.7, cfg.VulnConfidence)
	})
}

func TestResolvePaths(t *testing.T) {
	t.Run("existing paths become absolute", func(t *testing.T) {
		dir := t.TempDir()
		cfg := &Config{}
		input := validInput()
		input.PathArgs = []string{dir, " "}
		require.NoError(t, ProcessAndValidate(cfg, input))

		require.Len(t, cfg.Paths, 1)
		assert.True(t, filepath.IsAbs(cfg.Paths[0]))
	})

	t.Run("missing path errors", func(t *testing.T) {
		cfg := &Config{}
		input := validInput()
		input.PathArgs = []string{filepath.Join(t.TempDir(), "does-not-exist")}
		err := ProcessAndValidate(cfg, input)
		assert.ErrorContains(t, err, "not accessible")
	})
}
