package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "upload", cfg.Profile)
	require.Equal(t, "./imgfit_out", cfg.Output)
	require.Equal(t, "uploadedfile", cfg.Upload.Field)
	require.Equal(t, 5*time.Second, cfg.Upload.ConnectTimeout)
	require.Equal(t, 30*time.Second, cfg.Upload.ReadTimeout)
	require.Nil(t, cfg.Upload.MaxRetries)
	require.Nil(t, cfg.Fit.BaseSize)
	require.Zero(t, cfg.Fit.CeilingKB)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
profile: avatar
workers: 3
fit:
  ceiling_kb: 48
  step: 5
upload:
  url: http://example.test/upload
  read_timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "avatar", cfg.Profile)
	require.Equal(t, 3, cfg.Workers)
	require.Equal(t, 48, cfg.Fit.CeilingKB)
	require.Equal(t, 5, cfg.Fit.Step)
	require.Equal(t, "http://example.test/upload", cfg.Upload.URL)
	require.Equal(t, 10*time.Second, cfg.Upload.ReadTimeout)
	require.Equal(t, 5*time.Second, cfg.Upload.ConnectTimeout)
}

func TestLoad_ExplicitZeroes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.yaml")
	yaml := `
fit:
  base_size: 0
upload:
  max_retries: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Fit.BaseSize)
	require.Equal(t, 0, *cfg.Fit.BaseSize)
	require.NotNil(t, cfg.Upload.MaxRetries)
	require.Equal(t, 0, *cfg.Upload.MaxRetries)
}

func TestLoad_DiscoversFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("profile: preview\n"), 0o644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "preview", cfg.Profile)
}

func TestLoad_Env(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("IMGFIT_PROFILE", "original")
	t.Setenv("IMGFIT_UPLOAD_URL", "http://env.test/up")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "original", cfg.Profile)
	require.Equal(t, "http://env.test/up", cfg.Upload.URL)
}

func TestLoad_ExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
