package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, k := range []string{"PORT", "DB_DSN", "MEDIA_DIR", "LOG_FILE", "REDIS_URL", "TEMPLATES_DIR"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "avecplaisir.db", cfg.DBDSN)
	assert.Equal(t, "./web/media", cfg.MediaDir)
	assert.Equal(t, "./web/templates", cfg.TemplatesDir)
	assert.Empty(t, cfg.RedisURL)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9999\nMEDIA_DIR=/srv/media\n"), 0o600))
	t.Setenv("PORT", "7000")
	t.Setenv("MEDIA_DIR", "")
	os.Unsetenv("MEDIA_DIR")

	cfg := Load()
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "/srv/media", cfg.MediaDir)
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "***@db:5432/shop", redactDSN("postgres://u:secret@db:5432/shop"))
	assert.Equal(t, "avecplaisir.db", redactDSN("avecplaisir.db"))
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
