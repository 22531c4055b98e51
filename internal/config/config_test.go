package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, SourceRandomUser, cfg.Source.Kind)
	assert.Equal(t, "https://randomuser.me/api/", cfg.Source.URL)
	assert.Equal(t, 10*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "", cfg.Redis.URL)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	chdir(t, t.TempDir())
	t.Setenv("SOURCE_KIND", "seed")
	t.Setenv("SOURCE_SEED", "7")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("HTTP_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceSeed, cfg.Source.Kind)
	assert.EqualValues(t, 7, cfg.Source.Seed)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, `
env: prod
http:
  port: "8181"
source:
  kind: seed
  seed: 3
sessions:
  ttl: 5m
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "8181", cfg.HTTP.Port)
	assert.Equal(t, SourceSeed, cfg.Source.Kind)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Request, "defaults fill unset fields")
}

func TestLoadConfigPathEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeFile(t, "source:\n  kind: seed\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceSeed, cfg.Source.Kind)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "source:\n  kind: ftp\n"))
	assert.ErrorContains(t, err, "source.kind")

	_, err = Load(writeFile(t, "sessions:\n  ttl: -1s\n"))
	assert.ErrorContains(t, err, "sessions.ttl")
}

func TestMustLoadPanics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir for Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
