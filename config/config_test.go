// ABOUTME: Tests for configuration layering and backend selection
// ABOUTME: Uses temp dirs for config and .env files and t.Setenv for the environment
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points xdg and the working .env at an empty temp dir and clears
// every variable Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	origConfig, origData := xdg.ConfigHome, xdg.DataHome
	xdg.ConfigHome = filepath.Join(dir, "config")
	xdg.DataHome = filepath.Join(dir, "data")
	t.Cleanup(func() { xdg.ConfigHome, xdg.DataHome = origConfig, origData })

	for _, key := range []string{
		"CRMDESK_PROJECT_ID", "CRMDESK_PUBLIC_KEY", "VITE_APPER_PROJECT_ID", "VITE_APPER_PUBLIC_KEY",
		"CRMDESK_BASE_URL", "CRMDESK_BACKEND", "CRMDESK_DB_PATH", "CRMDESK_LOG_LEVEL",
		"CRMDESK_HTTP_TIMEOUT", "CRMDESK_PAGE_SIZE", "CRMDESK_LISTEN_ADDR",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, BackendAuto, cfg.Backend)
	assert.Equal(t, BackendSQLite, cfg.Mode())
	assert.Equal(t, filepath.Join(dir, "data", "crmdesk", "crmdesk.db"), cfg.DBPath)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.File)
}

func TestCredentialsFallBackToBrowserNames(t *testing.T) {
	dir := isolate(t)
	t.Setenv("VITE_APPER_PROJECT_ID", "proj")
	t.Setenv("VITE_APPER_PUBLIC_KEY", "pk")

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, BackendRemote, cfg.Mode())

	t.Setenv("CRMDESK_PROJECT_ID", "override")
	cfg, err = Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.ProjectID)
}

func TestConfigFileAndDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(Dir(), "config.yaml"), []byte(
		"page_size: 25\nhttp_timeout: 3s\nbase_url: https://backend.test/\nlog_level: warn\n"), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CRMDESK_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CRMDESK_LOG_LEVEL") })

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "https://backend.test", cfg.BaseURL)
	assert.Equal(t, "debug", cfg.LogLevel, ".env beats the config file")
	assert.Equal(t, filepath.Join(Dir(), "config.yaml"), cfg.File)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	dir := isolate(t)
	_, err := Load(Options{ConfigFile: filepath.Join(dir, "nope.yaml"), EnvFile: filepath.Join(dir, "missing.env")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, "missing.env")

	t.Setenv("CRMDESK_BACKEND", "carrier-pigeon")
	_, err := Load(Options{EnvFile: envFile})
	assert.ErrorContains(t, err, "unknown backend")

	t.Setenv("CRMDESK_BACKEND", "remote")
	_, err = Load(Options{EnvFile: envFile})
	assert.ErrorContains(t, err, "CRMDESK_PROJECT_ID")

	t.Setenv("CRMDESK_BACKEND", "memory")
	t.Setenv("CRMDESK_PAGE_SIZE", "0")
	_, err = Load(Options{EnvFile: envFile})
	assert.ErrorContains(t, err, "page size")
}
