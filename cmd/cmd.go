// Package cmd defines the command-line interface for codesight.
package cmd

import (
	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the models subcommands to the parent models command
	modelsCmd.AddCommand(modelsStatusCmd)
	modelsCmd.AddCommand(modelsClearCmd)
	modelsCmd.AddCommand(modelsExportCmd)
	modelsCmd.AddCommand(modelsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("language", "", "Force source language: python, go, javascript, typescript, java, ruby or generic (default: detect per file)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-file slot states and content size")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().Int("max-bytes", contract.DefaultMaxContentBytes, "Content truncation cap per file in bytes")
	rootCmd.PersistentFlags().String("file-timeout", contract.DefaultFileTimeout.String(), "Per-file analysis budget (e.g. 30s, 2m)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Model store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().Float64("vuln-confidence", contract.DefaultVulnConfidence, "Confidence threshold for vulnerability predictions")
	rootCmd.PersistentFlags().Float64("pattern-confidence", contract.DefaultPatternConfidence, "Confidence threshold for detected patterns")
	rootCmd.PersistentFlags().Float64("report-risk", contract.DefaultReportRisk, "Risk cutoff for the project vulnerability list")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of projectCmd to Viper
	projectCmd.Flags().String("project-id", "", "Coverage provider key for this project")
	if err := viper.BindPFlags(projectCmd.Flags()); err != nil {
		contract.LogFatal("Error binding project flags", err)
	}

	// Bind all flags of trainCmd to Viper
	trainCmd.Flags().String("corpus", "", "Labeled training corpus file (.json or .parquet)")
	trainCmd.Flags().Float64("contamination", contract.DefaultContamination, "Expected outlier share for anomaly training")
	if err := viper.BindPFlags(trainCmd.Flags()); err != nil {
		contract.LogFatal("Error binding train flags", err)
	}

	// Bind all flags of modelsMigrateCmd to Viper
	modelsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(modelsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding models migrate flags", err)
	}
}
