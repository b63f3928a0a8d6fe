package cmd

import (
	"fmt"

	"github.com/codiehq/codesight/core"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/internal/modelstore"
	"github.com/codiehq/codesight/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// modelsSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func modelsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	// Handle empty backend as the SQLite default
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.SQLiteBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// Initialize the store with the loaded config
	if err := modelstore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize model store: %w", err)
	}
	storeManager = modelstore.Manager

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// modelsSetupWrapper wraps modelsSetup to provide PreRunE for models commands.
func modelsSetupWrapper(_ *cobra.Command, _ []string) error {
	return modelsSetup()
}

// modelsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func modelsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backendStr := viper.GetString("store-backend")
	connStr := viper.GetString("store-db-connect")

	// Handle empty backend as the SQLite default
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.SQLiteBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// modelsMigrateSetupWrapper wraps modelsMigrateSetup to provide PreRunE for migrate command.
func modelsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return modelsMigrateSetup()
}

// modelsCmd focused on model store management.
//
// Note: Models subcommands use minimal initialization (modelsSetup) instead of
// the full sharedSetup used by analysis commands. This avoids path resolution
// and complex config processing for simple store operations.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage trained model generations and their store",
	Long: `Manage the persisted model generations behind analysis.

Every training run persists its promoted models, scaler parameters and run
metadata, keyed by generation. These subcommands inspect and maintain that
store without running any analysis.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show registry and store statistics
  export  - Export store contents to Parquet for analytics
  clear   - Remove all generations and training runs
  migrate - Run database schema migrations

Examples:
  # Check which generation is active
  codesight models status

  # Export artifacts and runs for analysis in pandas/DuckDB
  codesight models export --output-file model-data.parquet`,
}

// modelsStatusCmd shows registry and store status.
var modelsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display model registry and store statistics",
	Long: `Show the active model generation and the state of the backing store.

Displays:
- Active generation with per-model versions and validation accuracy
- Store backend type and connection status
- Artifact, active model and training run counts
- Last training timestamp and database table sizes

Use this to:
- Verify a training run promoted the models you expected
- Check which generation serves inference right now
- Monitor store growth over repeated training runs
- Check database connection health

Examples:
  # Check model status
  codesight models status`,
	PreRunE: modelsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		svc, err := core.NewServiceFromManager(cfg, storeManager)
		if err != nil {
			contract.LogFatal("Failed to load model registry", err)
		}

		registry := svc.RegistryStatus()
		if registry.GenerationID == "" {
			fmt.Println("No model generation loaded. Run train to produce one.")
		} else {
			modelstore.PrintRegistryStatus(registry)
		}
		fmt.Println()

		status, err := svc.StoreStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		modelstore.PrintStoreStatus(status)
	},
}

// modelsClearCmd clears the model store.
var modelsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all model generations and training runs",
	Long: `Delete all stored generations, model artifacts and training run history.

This removes:
- Every generation and its scaler parameters
- All serialized model artifacts, active and retired
- All training run metadata

WARNING: This action cannot be undone. Consider exporting data first.
The next analysis run starts with no generation and reports every model
slot as unavailable until a new training run promotes one.

Examples:
  # Export before clearing
  codesight models export --output-file backup.parquet
  codesight models clear

  # Clear and retrain from scratch
  codesight models clear
  codesight train --corpus corpus.json`,
	PreRunE: modelsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := modelstore.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear model store", err)
		}
		fmt.Println("Model store cleared successfully.")
	},
}

// modelsExportCmd exports store contents to Parquet files.
var modelsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export model store contents to Parquet for analytics",
	Long: `Export all stored model data to Parquet format for use with analytics tools.

Exports two datasets:
- Model artifacts - every trained model with version, accuracy and status
- Training runs - metadata about each training execution

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools for model accuracy tracking

Requires: --output-file parameter

Examples:
  # Export all data
  codesight models export --output-file model-data.parquet

  # Use with DuckDB for accuracy trends
  codesight models export --output-file data.parquet
  duckdb -c "SELECT * FROM read_parquet('data.parquet/artifacts.parquet') LIMIT 10"`,
	PreRunE: modelsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := modelstore.ExecuteModelExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export model store data", err)
		}
	},
}

// modelsMigrateCmd runs database migrations for the model store.
var modelsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the model store.

Migrations allow:
- Upgrading to new schema versions when CodeSight is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed
- Testing new features on specific schema versions

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  codesight models migrate

  # Migrate to specific version
  codesight models migrate --target-version 2

  # Rollback to previous version
  codesight models migrate --target-version 0`,
	PreRunE: modelsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := modelstore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
