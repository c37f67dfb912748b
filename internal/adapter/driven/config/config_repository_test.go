package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFileFormats(t *testing.T) {
	files := map[string]string{
		"config.toml": `
http_addr = ":9090"

[storage]
backend = "s3"
bucket = "exports"

[state]
backend = "redis"
redis_db = 2
`,
		"config.yaml": `
http_addr: ":9090"
storage:
  backend: s3
  bucket: exports
state:
  backend: redis
  redis_db: 2
`,
		"config.json": `{"http_addr":":9090","storage":{"backend":"s3","bucket":"exports"},"state":{"backend":"redis","redis_db":2}}`,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := NewConfigRepository().LoadConfigFile(writeFile(t, name, content))
			require.NoError(t, err)
			assert.Equal(t, ":9090", cfg.HTTPAddr)
			assert.Equal(t, "s3", cfg.Storage.Backend)
			assert.Equal(t, "exports", cfg.Storage.Bucket)
			assert.Equal(t, "redis", cfg.State.Backend)
			assert.Equal(t, 2, cfg.State.RedisDB)

			// valores ausentes no arquivo mantêm o padrão
			assert.Equal(t, 90, cfg.HistoryDays)
			assert.Equal(t, "us-east-1", cfg.Storage.Region)
			assert.Equal(t, "localhost:6379", cfg.State.RedisAddr)
			assert.Equal(t, 587, cfg.Mail.Port)
		})
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	repo := NewConfigRepository()

	_, err := repo.LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = repo.LoadConfigFile(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = repo.LoadConfigFile(writeFile(t, "config.ini", "a=b"))
	assert.ErrorContains(t, err, "unsupported config file format")

	_, err = repo.LoadConfigFile(writeFile(t, "config.json", "{"))
	assert.ErrorContains(t, err, "JSON")
}

func TestLoadAppliesEnvironment(t *testing.T) {
	repo := NewConfigRepositoryWithEnv(map[string]string{
		"BILLING_HTTP_ADDR":             ":7070",
		"BILLING_STORAGE_BUCKET":        "from-env",
		"BILLING_STATE_BACKEND":         "sqlite",
		"BILLING_MAIL_FALLBACK_ADDRESS": "ops@example.com",
		"BILLING_HISTORY_DAYS":          "30",
		"UNRELATED_STORAGE_BUCKET":      "ignored",
	})

	cfg, err := repo.Load(writeFile(t, "config.yaml", "storage:\n  backend: s3\n  bucket: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "from-env", cfg.Storage.Bucket)
	assert.Equal(t, "sqlite", cfg.State.Backend)
	assert.Equal(t, "ops@example.com", cfg.Mail.FallbackAddress)
	assert.Equal(t, 30, cfg.HistoryDays)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := NewConfigRepositoryWithEnv(nil).Load("")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), *cfg)

	_, err = NewConfigRepositoryWithEnv(map[string]string{"BILLING_HISTORY_DAYS": "many"}).Load("")
	assert.Error(t, err)
}
