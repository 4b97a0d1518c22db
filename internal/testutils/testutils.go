package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/nfrund/topictracker/internal/config"
)

// ConfigForTests returns a configuration backed by a private in-memory SQLite
// database. Values from an optional .env.test at the project root are applied
// first, so integration runs can point at other backends.
func ConfigForTests(t *testing.T) *config.Config {
	t.Helper()

	if root, ok := projectRoot(); ok {
		if env, err := godotenv.Read(filepath.Join(root, ".env.test")); err == nil {
			for key, value := range env {
				t.Setenv(key, value)
			}
		}
	}

	cfg := config.FromEnv()
	cfg.DBDriver = config.DriverSQLite
	cfg.DBDSN = "file:" + sanitize(t.Name()) + "?mode=memory&cache=shared"
	cfg.DBMaxOpenConns = 1
	cfg.DBMaxIdleConns = 1
	cfg.DBConnMaxIdleTime = time.Minute
	cfg.DBQueryTimeout = 5 * time.Second
	cfg.DBExecuteTimeout = 5 * time.Second
	cfg.StaticDir = t.TempDir()
	return cfg
}

// SurrealConfigForTests returns a SurrealDB configuration from the environment,
// skipping the test when no SurrealDB instance is configured or -short is set.
func SurrealConfigForTests(t *testing.T) *config.Config {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping SurrealDB integration test in short mode")
	}
	cfg := ConfigForTests(t)
	cfg.DBDriver = config.DriverSurreal
	if cfg.SurrealURL == "" || cfg.SurrealNs == "" || cfg.SurrealDb == "" {
		t.Skip("SURREAL_URL, SURREAL_NS and SURREAL_DB must be set for SurrealDB integration tests")
	}
	return cfg
}

func projectRoot() (string, bool) {
	path, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path, true
		}
		if path == filepath.Dir(path) {
			return "", false
		}
		path = filepath.Dir(path)
	}
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
