package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookshelf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":3000", cfg.HTTP.Address())
	assert.Equal(t, "http://localhost:3000", cfg.HTTP.FullURL())
	assert.Equal(t, "localhost:3001", cfg.GRPC.DialAddress())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  host: 127.0.0.1
  port: 8081
  shutdown_timeout: 2s
grpc:
  enabled: true
  port: 9091
storage:
  driver: sqlite
reviews:
  sanitize: strict
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8081", cfg.HTTP.Address())
	assert.Equal(t, 2*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.GRPC.Enabled)
	assert.Equal(t, 9091, cfg.GRPC.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "strict", cfg.Reviews.Sanitize)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 8081\n")
	t.Setenv("BOOKSHELF_HTTP_PORT", "8082")
	t.Setenv("BOOKSHELF_RATELIMIT_RPS", "2.5")
	t.Setenv("BOOKSHELF_CLIENT_BASE_URL", "http://example.test:8082")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8082, cfg.HTTP.Port)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, "http://example.test:8082", cfg.Client.BaseURL)
}

// Variable names follow the YAML keys: BOOKSHELF_<SECTION>_<KEY>.
func TestLoad_EnvironmentNamesMatchYAMLKeys(t *testing.T) {
	t.Setenv("BOOKSHELF_RATELIMIT_BURST", "7")
	t.Setenv("BOOKSHELF_HTTP_SHUTDOWN_TIMEOUT", "9s")
	t.Setenv("BOOKSHELF_STORAGE_DRIVER", "sqlite")
	t.Setenv("BOOKSHELF_REVIEWS_SANITIZE", "ugc")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.Equal(t, 9*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "ugc", cfg.Reviews.Sanitize)
}

func TestConfig_ServerURL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:3000", cfg.ServerURL())

	cfg.Client.BaseURL = ""
	cfg.HTTP.Host = "10.1.2.3"
	cfg.HTTP.Port = 8080
	assert.Equal(t, "http://10.1.2.3:8080", cfg.ServerURL())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "http: [\n"},
		{"bad port", "http:\n  port: 70000\n"},
		{"bad driver", "storage:\n  driver: postgres\n"},
		{"empty sqlite dsn", "storage:\n  driver: sqlite\n  dsn: \"\"\n"},
		{"bad sanitize", "reviews:\n  sanitize: loose\n"},
		{"negative rps", "ratelimit:\n  rps: -1\n"},
		{"shared port", "grpc:\n  enabled: true\n  port: 3000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
