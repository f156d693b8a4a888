package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dyluth/commviz/pkg/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
root: /srv/plots
views:
  individual: /srv/static/plots/individual
server:
  addr: ":9000"
  read_timeout: 5s
  write_timeout: 1m
sessions:
  backend: redis
  redis_url: redis://localhost:6379/0
  namespace: research
  ttl: 2h
logging:
  level: debug
  format: json
watch:
  debounce: 1s
`)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/srv/plots", config.Root)
	assert.Equal(t, ":9000", config.Server.Addr)
	assert.Equal(t, 5*time.Second, config.ReadTimeout())
	assert.Equal(t, time.Minute, config.WriteTimeout())
	assert.Equal(t, BackendRedis, config.Sessions.Backend)
	assert.Equal(t, 2*time.Hour, config.SessionTTL())
	assert.Equal(t, time.Second, config.Debounce())

	assert.Equal(t, artifact.Layout{
		Platforms:    filepath.Join("/srv/plots", "platforms"),
		Polarization: filepath.Join("/srv/plots", "polarization"),
		Cohesion:     filepath.Join("/srv/plots", "cohesion"),
		Individual:   "/srv/static/plots/individual",
	}, config.Layout())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
	assert.Equal(t, artifact.DefaultLayout(artifact.DefaultRoot), config.Layout())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	config, err := Load(writeConfig(t, "version: \"1.0\"\nroot: data\n"))
	require.NoError(t, err)
	assert.Equal(t, "data", config.Root)
	assert.Equal(t, ":8501", config.Server.Addr)
	assert.Equal(t, BackendMemory, config.Sessions.Backend)
}

func TestLoad_InvalidYAML(t *testing.T) {
	config, err := Load(writeConfig(t, "version: \"1.0\"\nroot:\n  - this is invalid\n    yaml syntax\n"))
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvRoot, "/env/plots")
	t.Setenv(EnvAddr, "127.0.0.1:7000")
	t.Setenv(EnvRedisURL, "redis://cache:6379")
	t.Setenv(EnvLogLevel, "warn")

	config, err := Load(writeConfig(t, "version: \"1.0\"\nroot: /file/plots\n"))
	require.NoError(t, err)
	assert.Equal(t, "/env/plots", config.Root)
	assert.Equal(t, "127.0.0.1:7000", config.Server.Addr)
	assert.Equal(t, BackendRedis, config.Sessions.Backend)
	assert.Equal(t, "redis://cache:6379", config.Sessions.RedisURL)
	assert.Equal(t, "warn", config.Logging.Level)
}

func TestOverrideRoot_DiscardsViews(t *testing.T) {
	path := writeConfig(t, `version: "1.0"
root: /srv/plots
views:
  individual: /srv/users
  cohesion: /srv/cohesion
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/users", cfg.Layout().Individual)

	cfg.OverrideRoot("/tmp/other")

	assert.Equal(t, artifact.DefaultLayout("/tmp/other"), cfg.Layout())
	assert.Equal(t, ViewsConfig{}, cfg.Views)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "unsupported version", mutate: func(c *Config) { c.Version = "2.0" }, wantErr: "unsupported version: 2.0"},
		{name: "empty root", mutate: func(c *Config) { c.Root = "" }, wantErr: "root is required"},
		{name: "bad read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = "soon" }, wantErr: "server.read_timeout"},
		{name: "zero write timeout", mutate: func(c *Config) { c.Server.WriteTimeout = "0s" }, wantErr: "must be positive"},
		{name: "unknown backend", mutate: func(c *Config) { c.Sessions.Backend = "etcd" }, wantErr: "invalid sessions.backend"},
		{name: "redis without url", mutate: func(c *Config) { c.Sessions.Backend = BackendRedis }, wantErr: "sessions.redis_url is required"},
		{
			name: "redis with http url",
			mutate: func(c *Config) {
				c.Sessions.Backend = BackendRedis
				c.Sessions.RedisURL = "http://localhost:6379"
			},
			wantErr: "redis:// or rediss://",
		},
		{name: "namespace with colon", mutate: func(c *Config) { c.Sessions.Namespace = "a:b" }, wantErr: "invalid sessions.namespace"},
		{name: "ttl zero allowed", mutate: func(c *Config) { c.Sessions.TTL = "0" }},
		{name: "negative ttl", mutate: func(c *Config) { c.Sessions.TTL = "-1h" }, wantErr: "must be positive"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "invalid logging.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "invalid logging.format"},
		{name: "bad debounce", mutate: func(c *Config) { c.Watch.Debounce = "fast" }, wantErr: "watch.debounce"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := Default()
			tc.mutate(config)

			err := config.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)

	original := Default()
	original.Views.Individual = "static/plots/individual"
	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}
