package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeJSONConfigAcceptsScalars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"app_port":"9000","queue_workers":8,"debug":true,"nested":{"x":1}}`), 0o600))

	out := map[string]string{}
	require.NoError(t, mergeJSONConfig(path, out))

	assert.Equal(t, "9000", out["APP_PORT"])
	assert.Equal(t, "8", out["QUEUE_WORKERS"])
	assert.Equal(t, "true", out["DEBUG"])
	assert.NotContains(t, out, "NESTED")
}

func TestMergeDotEnvStripsQuotesAndComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "# comment\nJWT_SECRET=\"s3cret\"\ndb_driver = postgres\nBROKEN\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out := map[string]string{}
	require.NoError(t, mergeDotEnv(path, out))

	assert.Equal(t, "s3cret", out["JWT_SECRET"])
	assert.Equal(t, "postgres", out["DB_DRIVER"])
	assert.NotContains(t, out, "BROKEN")
}

func TestLoadFromFilesProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("APP_PORT=7000\n"), 0o600))
	t.Setenv("APP_PORT", "7100")

	require.NoError(t, loadFromFiles(filepath.Join(dir, "missing.json"), envPath))
	assert.Equal(t, "7100", get("APP_PORT", ""))
}

func TestQueueDriverFallsBackToMemory(t *testing.T) {
	Set("QUEUE_DRIVER", "kafka")
	assert.Equal(t, "memory", QueueDriver())

	Set("QUEUE_DRIVER", "REDIS")
	assert.Equal(t, "redis", QueueDriver())
	Set("QUEUE_DRIVER", "memory")
}
