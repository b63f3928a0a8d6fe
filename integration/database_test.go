//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCodesightWithMySQL tests the codesight CLI with a MySQL model store.
func TestCodesightWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "codesight",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/codesight?parseTime=true", host, port.Port())

	// Set environment variables
	_ = os.Setenv("CODESIGHT_STORE_BACKEND", "mysql")
	_ = os.Setenv("CODESIGHT_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("CODESIGHT_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("CODESIGHT_STORE_DB_CONNECT") }()

	runStoreLifecycle(t)
}

// TestCodesightWithPostgres tests the codesight CLI with a PostgreSQL model store.
func TestCodesightWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	// Set environment variables
	_ = os.Setenv("CODESIGHT_STORE_BACKEND", "postgresql")
	_ = os.Setenv("CODESIGHT_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("CODESIGHT_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("CODESIGHT_STORE_DB_CONNECT") }()

	runStoreLifecycle(t)
}

// runStoreLifecycle drives the CLI through a full train and analyze round
// against whatever store backend the environment selects.
func runStoreLifecycle(t *testing.T) {
	scratch := t.TempDir()
	corpusPath := writeTrainingCorpus(t, scratch)

	srcDir := filepath.Join(scratch, "src")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "risky.py"),
		[]byte("import os\n\ndef run(cmd):\n    os.system(cmd)\n    return eval(cmd)\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "clean.py"),
		[]byte("def mul(a, b):\n    return a * b\n"), 0o644))

	// Run codesight models clear
	err := runCodesightCommand(t, "models", "clear")
	require.NoError(t, err)

	// Run codesight train
	err = runCodesightCommand(t, "train", "--corpus", corpusPath)
	require.NoError(t, err)

	// Run codesight analyze (on the fixture dir)
	err = runCodesightCommand(t, "analyze", srcDir, "--limit", "5")
	require.NoError(t, err)

	// Run codesight models status
	err = runCodesightCommand(t, "models", "status")
	require.NoError(t, err)

	// Run codesight models export
	exportBase := filepath.Join(scratch, "export")
	err = runCodesightCommand(t, "models", "export", "--output-file", exportBase)
	require.NoError(t, err)
	_, err = os.Stat(exportBase + ".model_artifacts.parquet")
	require.NoError(t, err)
	_, err = os.Stat(exportBase + ".training_runs.parquet")
	require.NoError(t, err)
}

func runCodesightCommand(t *testing.T, args ...string) error {
	binaryPath := getCodesightBinary()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
