package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(PathEnv, "")
	t.Setenv("AUDITFEED_ACCESS_TOKEN", "token")
	t.Setenv("AUDITFEED_REQUEST_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://manage.office.com/api/v1.0", cfg.API.ServiceURL)
	assert.Equal(t, "token", cfg.API.AccessToken)
	assert.Equal(t, 5*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auditfeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  service_url: http://localhost:9090/api/v1.0
  access_token: from-file
  tenant_id: contoso
server:
  addr: ":9000"
  environment: production
`), 0o600))

	t.Setenv(PathEnv, path)
	t.Setenv("AUDITFEED_TENANT_ID", "fabrikam")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9090/api/v1.0", cfg.API.ServiceURL)
	assert.Equal(t, "from-file", cfg.API.AccessToken)
	assert.Equal(t, "fabrikam", cfg.API.TenantID, "environment overrides the file")
	assert.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.IsProduction())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(PathEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API: API{
				ServiceURL:     "https://manage.office.com/api/v1.0",
				AccessToken:    "token",
				RequestTimeout: 30 * time.Second,
			},
			Server: Server{Addr: ":8080", Environment: "development", ShutdownTimeout: 10 * time.Second},
		}
	}
	require.NoError(t, valid().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.API.AccessToken = "" }, "api.access_token is required"},
		{"relative service url", func(c *Config) { c.API.ServiceURL = "manage.office.com" }, "api.service_url must be an absolute URL"},
		{"zero timeout", func(c *Config) { c.API.RequestTimeout = 0 }, "api.request_timeout must be greater than 0"},
		{"unknown environment", func(c *Config) { c.Server.Environment = "qa" }, "server.environment must be one of [development staging production]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.EqualError(t, cfg.Validate(), tc.want)
		})
	}
}
