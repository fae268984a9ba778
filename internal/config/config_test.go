package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdwit/spec2admin/internal/logging"
	"github.com/mdwit/spec2admin/internal/parser"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output != "./admin" {
		t.Errorf("expected output ./admin, got %s", cfg.Output)
	}
	if cfg.SessionDir == "" {
		t.Error("expected default session dir")
	}
	if err := cfg.Validate(); !errors.Is(err, ErrSourceRequired) {
		t.Errorf("expected ErrSourceRequired, got %v", err)
	}
}

func TestSourceRequiredMatchesLoader(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.Validate()
	if !errors.Is(err, parser.ErrSourceRequired) {
		t.Errorf("config error must match parser.ErrSourceRequired, got %v", err)
	}

	_, err = parser.LoadSource(context.Background(), "", nil)
	if !errors.Is(err, ErrSourceRequired) {
		t.Errorf("loader error must match config.ErrSourceRequired, got %v", err)
	}
}

func TestLoadFromFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec2admin.json")
	data := `{"source": "openapi.yaml", "baseUrl": "https://api.example.com", "logging": {"level": "debug"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "openapi.yaml", cfg.Source)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "./admin", cfg.Output)
	assert.Equal(t, logging.LevelDebug, cfg.Logging.Level)
	assert.Equal(t, logging.FormatText, cfg.Logging.Format)
}

func TestLoadFromFileTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec2admin.toml")
	data := `
source = "https://example.com/openapi.json"
output = "out"
max_document_size = "2MB"
drop_nested_refs = true

[logging]
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, "out", cfg.Output)
	assert.True(t, cfg.DropNestedRefs)
	assert.Equal(t, logging.FormatJSON, cfg.Logging.Format)

	n, err := cfg.MaxDocumentBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), n)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("source = "), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestFinalizeEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvSource, "env.yaml")
	t.Setenv(EnvSessionDir, dir)
	t.Setenv(EnvLogLevel, "error")

	cfg := &Config{}
	require.NoError(t, cfg.Finalize())
	assert.Equal(t, "env.yaml", cfg.Source)
	assert.Equal(t, dir, cfg.SessionDir)
	assert.Equal(t, "./admin", cfg.Output)
	assert.Equal(t, logging.LevelError, cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestFinalizeInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		msg  string
	}{
		{"base url", Config{BaseURL: "not a url"}, "BaseURL"},
		{"document size", Config{MaxDocumentSize: "huge"}, "max document size"},
		{"log level", Config{Logging: logging.Config{Level: "loud"}}, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
