package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	req.NoError(err)
	req.Equal("release", cfg.Mode)
	req.Equal(5002, cfg.Port)
	req.Equal("http://localhost:5001", cfg.MatcherURL)
	req.Equal(10*time.Second, cfg.MatchTimeout)
	req.Equal(int64(32768), cfg.ReadLimit)
	req.Equal(5*time.Second, cfg.WriteTimeout)
	req.Equal(32, cfg.SendBuffer)
}

func TestLoad_ReadsEnvSpecificFile(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "test")

	req.NoError(os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	yaml := "mode: debug\nport: 9999\nmatcher_url: http://matcher:5001\nsecret: s3cret\n"
	req.NoError(os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	req.NoError(err)
	req.Equal("debug", cfg.Mode)
	req.Equal(9999, cfg.Port)
	req.Equal("http://matcher:5001", cfg.MatcherURL)
	req.Equal("s3cret", cfg.Secret)
	// Unset keys still fall back to defaults.
	req.Equal(10*time.Second, cfg.MatchTimeout)
}
