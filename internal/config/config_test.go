package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(vars map[string]string) (*Config, error) {
	return Parse(env.Options{Prefix: prefix, Environment: vars})
}

func TestDefaults(t *testing.T) {
	cfg, err := parse(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "data/chronicle.db", cfg.DBPath)
	assert.Equal(t, 8, cfg.Realms)
	assert.Equal(t, 400, cfg.Years)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.DataDir)
}

func TestOverrides(t *testing.T) {
	cfg, err := parse(map[string]string{
		"BACKSTORY_SEED":       "-7",
		"BACKSTORY_DATA_DIR":   "/srv/catalog",
		"BACKSTORY_REALMS":     "3",
		"BACKSTORY_LOG_FORMAT": "json",
		"SEED":                 "99",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-7), cfg.Seed)
	assert.Equal(t, "/srv/catalog", cfg.DataDir)
	assert.Equal(t, 3, cfg.Realms)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"seed not a number", map[string]string{"BACKSTORY_SEED": "many"}},
		{"no realms", map[string]string{"BACKSTORY_REALMS": "0"}},
		{"too few years", map[string]string{"BACKSTORY_YEARS": "1"}},
		{"unknown format", map[string]string{"BACKSTORY_LOG_FORMAT": "xml"}},
		{"empty db path", map[string]string{"BACKSTORY_DB_PATH": " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BACKSTORY_YEARS=120\n"), 0o644))
	// godotenv never overrides a variable that is already set.
	t.Setenv("BACKSTORY_YEARS", "")
	os.Unsetenv("BACKSTORY_YEARS")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Years)
}

func TestLoadMissingDotenvIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
