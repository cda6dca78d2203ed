package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(Dir(), "unikit.db"), cfg.Storage.Path)
	assert.Equal(t, 30*time.Second, cfg.Notes.Timeout)
	assert.Equal(t, 4, cfg.Notes.Concurrency)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "local", cfg.Share.Driver)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
storage:
  path: /tmp/other.db
notes:
  base_url: https://notes.example.com
  timeout: 5s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unikit.yaml"), []byte(yaml), 0644))
	t.Setenv("UNIKIT_LOG_LEVEL", "warn")
	t.Setenv("UNIKIT_SERVER_ADDR", ":9090")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Storage.Path)
	assert.Equal(t, "https://notes.example.com", cfg.Notes.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Notes.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: debug\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Server.Mode)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("UNIKIT_SHARE_DIR=/srv/shared\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("UNIKIT_SHARE_DIR") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/shared", cfg.Share.Dir)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage: StorageConfig{Driver: "sqlite", Path: "x.db"},
			Notes:   NotesConfig{Rate: 1, Concurrency: 1},
			Share:   ShareConfig{Driver: "local"},
		}
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: true},
		{name: "minio without endpoint", mutate: func(c *Config) { c.Share.Driver = "minio" }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Notes.Concurrency = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
