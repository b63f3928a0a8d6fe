package modelstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for model persistence.
const (
	generationsTable = "codesight_generations"
	artifactsTable   = "codesight_model_artifacts"
	runsTable        = "codesight_training_runs"
)

// ModelStoreImpl implements the ModelStore interface over SQL backends.
type ModelStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.ModelStore = &ModelStoreImpl{} // Compile-time check

// NewModelStore initializes and returns a new ModelStore for the backend.
func NewModelStore(backend schema.DatabaseBackend, connStr string) (contract.ModelStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &ModelStoreImpl{
			db:         nil,
			backend:    backend,
			driverName: "",
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createModelTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create model tables: %w", err)
	}

	return &ModelStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createModelTables creates the model persistence tables.
func createModelTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{generationsTable, getCreateGenerationsQuery(backend)},
		{artifactsTable, getCreateArtifactsQuery(backend)},
		{runsTable, getCreateRunsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateGenerationsQuery returns the CREATE TABLE query for codesight_generations.
// Seq is assigned by the training pipeline, not the database, so installs
// and saves agree on the ordering.
func getCreateGenerationsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(generationsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq BIGINT PRIMARY KEY,
				generation_id VARCHAR(64) NOT NULL,
				created_at DATETIME(6) NOT NULL,
				schema_version INT NOT NULL,
				scaler_payload MEDIUMBLOB NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq BIGINT PRIMARY KEY,
				generation_id TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				schema_version INT NOT NULL,
				scaler_payload BYTEA NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq INTEGER PRIMARY KEY,
				generation_id TEXT NOT NULL,
				created_at TEXT NOT NULL,
				schema_version INTEGER NOT NULL,
				scaler_payload BLOB NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateArtifactsQuery returns the CREATE TABLE query for codesight_model_artifacts.
func getCreateArtifactsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(artifactsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name VARCHAR(32) NOT NULL,
				version INT NOT NULL,
				accuracy DOUBLE NOT NULL,
				status VARCHAR(16) NOT NULL,
				trained_at DATETIME(6) NOT NULL,
				payload MEDIUMBLOB NOT NULL,
				PRIMARY KEY (name, version)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name TEXT NOT NULL,
				version INT NOT NULL,
				accuracy DOUBLE PRECISION NOT NULL,
				status TEXT NOT NULL,
				trained_at TIMESTAMPTZ NOT NULL,
				payload BYTEA NOT NULL,
				PRIMARY KEY (name, version)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				name TEXT NOT NULL,
				version INTEGER NOT NULL,
				accuracy REAL NOT NULL,
				status TEXT NOT NULL,
				trained_at TEXT NOT NULL,
				payload BLOB NOT NULL,
				PRIMARY KEY (name, version)
			);
		`, quotedTableName)
	}
}

// getCreateRunsQuery returns the CREATE TABLE query for codesight_training_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(64) PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				example_count INT NOT NULL,
				promoted INT NOT NULL DEFAULT 0,
				rejected INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				example_count INT NOT NULL,
				promoted INT NOT NULL DEFAULT 0,
				rejected INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				start_time TEXT NOT NULL,
				end_time TEXT,
				example_count INTEGER NOT NULL,
				promoted INTEGER NOT NULL DEFAULT 0,
				rejected INTEGER NOT NULL DEFAULT 0
			);
		`, quotedTableName)
	}
}

// SaveGeneration persists generation metadata and scaler parameters.
func (ms *ModelStoreImpl) SaveGeneration(rec schema.GenerationRecord) error {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(generationsTable, ms.backend)

	var query string
	switch ms.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (seq, generation_id, created_at, schema_version, scaler_payload) VALUES ($1, $2, $3, $4, $5)`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (seq, generation_id, created_at, schema_version, scaler_payload) VALUES (?, ?, ?, ?, ?)`, quotedTableName)
	}

	_, err := ms.db.Exec(query, rec.Seq, rec.GenerationID, formatTime(rec.CreatedAt, ms.backend), rec.SchemaVersion, rec.ScalerPayload)
	if err != nil {
		return fmt.Errorf("failed to insert generation %s: %w", rec.GenerationID, err)
	}

	return nil
}

// LoadLatestGeneration returns the newest generation, or nil when the store
// holds none.
func (ms *ModelStoreImpl) LoadLatestGeneration() (*schema.GenerationRecord, error) {
	// Nothing persisted for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(generationsTable, ms.backend)
	query := fmt.Sprintf(`SELECT seq, generation_id, created_at, schema_version, scaler_payload FROM %s ORDER BY seq DESC LIMIT 1`, quotedTableName)
	row := ms.db.QueryRow(query)

	var rec schema.GenerationRecord

	// Handle different time storage formats per backend
	switch ms.backend {
	case schema.SQLiteBackend:
		var createdAtStr string
		if err := row.Scan(&rec.Seq, &rec.GenerationID, &createdAtStr, &rec.SchemaVersion, &rec.ScalerPayload); err != nil {
			if err == sql.ErrNoRows {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to load latest generation: %w", err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		rec.CreatedAt = createdAt
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&rec.Seq, &rec.GenerationID, &rec.CreatedAt, &rec.SchemaVersion, &rec.ScalerPayload); err != nil {
			if err == sql.ErrNoRows {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to load latest generation: %w", err)
		}
	}

	return &rec, nil
}

// SaveArtifact persists one model artifact. Saving an active artifact
// retires any previously active artifact of the same name, so at most one
// version per name serves at a time. Saving over an existing (name, version)
// pair replaces it; a rejected retrain may reuse the version slot of an
// earlier failed candidate.
func (ms *ModelStoreImpl) SaveArtifact(rec schema.ModelArtifactRecord) error {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil
	}

	tx, err := ms.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin artifact transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	quotedTableName := quoteTableName(artifactsTable, ms.backend)

	// Retire the currently active artifact of this name first
	if rec.Status == schema.StatusActive {
		var retireQuery string
		switch ms.backend {
		case schema.PostgreSQLBackend:
			retireQuery = fmt.Sprintf(`UPDATE %s SET status = $1 WHERE name = $2 AND status = $3`, quotedTableName)
		default: // SQLite and MySQL
			retireQuery = fmt.Sprintf(`UPDATE %s SET status = ? WHERE name = ? AND status = ?`, quotedTableName)
		}
		if _, err := tx.Exec(retireQuery, schema.StatusRetired, rec.Name, schema.StatusActive); err != nil {
			return fmt.Errorf("failed to retire active %s artifact: %w", rec.Name, err)
		}
	}

	var upsertQuery string
	switch ms.backend {
	case schema.MySQLBackend:
		upsertQuery = fmt.Sprintf(`INSERT INTO %s (name, version, accuracy, status, trained_at, payload) VALUES (?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE accuracy = new.accuracy, status = new.status, trained_at = new.trained_at, payload = new.payload`, quotedTableName)

	case schema.PostgreSQLBackend:
		upsertQuery = fmt.Sprintf(`INSERT INTO %s (name, version, accuracy, status, trained_at, payload) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name, version) DO UPDATE SET accuracy = EXCLUDED.accuracy, status = EXCLUDED.status, trained_at = EXCLUDED.trained_at, payload = EXCLUDED.payload`, quotedTableName)

	default: // SQLite
		upsertQuery = fmt.Sprintf(`INSERT OR REPLACE INTO %s (name, version, accuracy, status, trained_at, payload) VALUES (?, ?, ?, ?, ?, ?)`, quotedTableName)
	}

	_, err = tx.Exec(upsertQuery, rec.Name, rec.Version, rec.Accuracy, rec.Status, formatTime(rec.TrainedAt, ms.backend), rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to save %s artifact v%d: %w", rec.Name, rec.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit artifact transaction: %w", err)
	}

	return nil
}

// LoadActiveArtifacts returns the active artifact of every model name.
func (ms *ModelStoreImpl) LoadActiveArtifacts() ([]schema.ModelArtifactRecord, error) {
	return ms.queryArtifacts(true)
}

// GetAllArtifacts retrieves every stored artifact from the store.
func (ms *ModelStoreImpl) GetAllArtifacts() ([]schema.ModelArtifactRecord, error) {
	return ms.queryArtifacts(false)
}

// queryArtifacts retrieves artifacts, optionally restricted to active ones.
func (ms *ModelStoreImpl) queryArtifacts(activeOnly bool) ([]schema.ModelArtifactRecord, error) {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(artifactsTable, ms.backend)
	query := fmt.Sprintf(`SELECT name, version, accuracy, status, trained_at, payload FROM %s ORDER BY name, version`, quotedTableName)
	var args []any
	if activeOnly {
		switch ms.backend {
		case schema.PostgreSQLBackend:
			query = fmt.Sprintf(`SELECT name, version, accuracy, status, trained_at, payload FROM %s WHERE status = $1 ORDER BY name, version`, quotedTableName)
		default: // SQLite and MySQL
			query = fmt.Sprintf(`SELECT name, version, accuracy, status, trained_at, payload FROM %s WHERE status = ? ORDER BY name, version`, quotedTableName)
		}
		args = append(args, schema.StatusActive)
	}

	rows, err := ms.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ModelArtifactRecord

	for rows.Next() {
		var rec schema.ModelArtifactRecord

		switch ms.backend {
		case schema.SQLiteBackend:
			var trainedAtStr string
			if err := rows.Scan(&rec.Name, &rec.Version, &rec.Accuracy, &rec.Status, &trainedAtStr, &rec.Payload); err != nil {
				return nil, fmt.Errorf("failed to scan artifact: %w", err)
			}
			trainedAt, err := time.Parse(time.RFC3339Nano, trainedAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse trained_at: %w", err)
			}
			rec.TrainedAt = trainedAt
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&rec.Name, &rec.Version, &rec.Accuracy, &rec.Status, &rec.TrainedAt, &rec.Payload); err != nil {
				return nil, fmt.Errorf("failed to scan artifact: %w", err)
			}
		}

		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artifacts: %w", err)
	}

	return results, nil
}

// MarkArtifactStatus updates the status of one stored artifact.
func (ms *ModelStoreImpl) MarkArtifactStatus(name schema.ModelName, version int, status schema.ModelStatus) error {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(artifactsTable, ms.backend)

	var query string
	switch ms.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`UPDATE %s SET status = $1 WHERE name = $2 AND version = $3`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`UPDATE %s SET status = ? WHERE name = ? AND version = ?`, quotedTableName)
	}

	result, err := ms.db.Exec(query, status, name, version)
	if err != nil {
		return fmt.Errorf("failed to mark %s v%d as %s: %w", name, version, status, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check artifact update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("artifact %s v%d not found", name, version)
	}

	return nil
}

// BeginRun records the start of a training run.
func (ms *ModelStoreImpl) BeginRun(rec schema.TrainingRunRecord) error {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, ms.backend)

	var query string
	switch ms.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (run_id, start_time, example_count) VALUES ($1, $2, $3)`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (run_id, start_time, example_count) VALUES (?, ?, ?)`, quotedTableName)
	}

	_, err := ms.db.Exec(query, rec.RunID, formatTime(rec.StartTime, ms.backend), rec.ExampleCount)
	if err != nil {
		return fmt.Errorf("failed to insert training run %s: %w", rec.RunID, err)
	}

	return nil
}

// EndRun records the completion of a training run.
func (ms *ModelStoreImpl) EndRun(runID string, endTime time.Time, promoted, rejected int) error {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, ms.backend)

	var query string
	switch ms.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`UPDATE %s SET end_time = $1, promoted = $2, rejected = $3 WHERE run_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`UPDATE %s SET end_time = ?, promoted = ?, rejected = ? WHERE run_id = ?`, quotedTableName)
	}

	_, err := ms.db.Exec(query, formatTime(endTime, ms.backend), promoted, rejected, runID)
	if err != nil {
		return fmt.Errorf("failed to update training run %s: %w", runID, err)
	}

	return nil
}

// GetAllRuns retrieves every recorded training run from the store.
func (ms *ModelStoreImpl) GetAllRuns() ([]schema.TrainingRunRecord, error) {
	// Skip for NoneBackend
	if ms.backend == schema.NoneBackend || ms.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runsTable, ms.backend)
	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, example_count, promoted, rejected FROM %s ORDER BY start_time, run_id`, quotedTableName)

	rows, err := ms.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TrainingRunRecord

	for rows.Next() {
		var rec schema.TrainingRunRecord

		switch ms.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&rec.RunID, &startTimeStr, &endTimeStr, &rec.ExampleCount, &rec.Promoted, &rec.Rejected); err != nil {
				return nil, fmt.Errorf("failed to scan training run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			rec.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				rec.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			var endTime sql.NullTime
			if err := rows.Scan(&rec.RunID, &rec.StartTime, &endTime, &rec.ExampleCount, &rec.Promoted, &rec.Rejected); err != nil {
				return nil, fmt.Errorf("failed to scan training run: %w", err)
			}
			if endTime.Valid {
				t := endTime.Time
				rec.EndTime = &t
			}
		}

		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training runs: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the model store.
func (ms *ModelStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(ms.backend),
		Connected:  ms.db != nil,
		TableSizes: make(map[string]int64),
	}

	if ms.backend == schema.NoneBackend || ms.db == nil {
		return status, nil
	}

	// Get total artifacts
	artifactsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(artifactsTable, ms.backend))
	row := ms.db.QueryRow(artifactsQuery)
	if err := row.Scan(&status.TotalArtifacts); err != nil {
		return status, fmt.Errorf("failed to get total artifacts: %w", err)
	}

	// Get active model count
	var activeQuery string
	switch ms.backend {
	case schema.PostgreSQLBackend:
		activeQuery = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = $1", quoteTableName(artifactsTable, ms.backend))
	default: // SQLite and MySQL
		activeQuery = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = ?", quoteTableName(artifactsTable, ms.backend))
	}
	row = ms.db.QueryRow(activeQuery, schema.StatusActive)
	if err := row.Scan(&status.ActiveModels); err != nil {
		return status, fmt.Errorf("failed to get active models: %w", err)
	}

	// Get last trained time
	if status.TotalArtifacts > 0 {
		lastQuery := fmt.Sprintf("SELECT MAX(trained_at) FROM %s", quoteTableName(artifactsTable, ms.backend))
		row = ms.db.QueryRow(lastQuery)

		switch ms.backend {
		case schema.SQLiteBackend:
			var lastTrainedStr sql.NullString
			if err := row.Scan(&lastTrainedStr); err != nil {
				return status, fmt.Errorf("failed to get last trained time: %w", err)
			}
			if lastTrainedStr.Valid {
				lastTrained, err := time.Parse(time.RFC3339Nano, lastTrainedStr.String)
				if err != nil {
					return status, fmt.Errorf("failed to parse last trained time: %w", err)
				}
				status.LastTrainedAt = lastTrained
			}
		default: // MySQL and PostgreSQL store as native datetime
			var lastTrained sql.NullTime
			if err := row.Scan(&lastTrained); err != nil {
				return status, fmt.Errorf("failed to get last trained time: %w", err)
			}
			if lastTrained.Valid {
				status.LastTrainedAt = lastTrained.Time
			}
		}
	}

	// Get total runs
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, ms.backend))
	row = ms.db.QueryRow(runsQuery)
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	// Get table sizes
	tables := []string{generationsTable, artifactsTable, runsTable}
	for _, table := range tables {
		quotedTable := quoteTableName(table, ms.backend)
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTable)
		row = ms.db.QueryRow(countQuery)
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// Close closes the underlying connection.
func (ms *ModelStoreImpl) Close() error {
	if ms.db != nil {
		return ms.db.Close()
	}
	return nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}
