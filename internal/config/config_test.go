package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func missing(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Sources{})
	require.NoError(t, err)

	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "storefront.db", cfg.Store.Path)
	assert.Equal(t, 2*time.Second, cfg.Payment.Latency)
	assert.Equal(t, uint32(5), cfg.Payment.CircuitBreaker.ConsecutiveFailures)
}

func TestLoad_Layering(t *testing.T) {
	yamlFile := writeFile(t, "storefront.yaml", `
store:
  driver: file
  path: /var/lib/storefront
log:
  level: debug
payment:
  latency: 10ms
  timeout: 5s
user:
  id: user_1
  email: jo@example.com
`)
	envFile := writeFile(t, ".env", `
STOREFRONT_LOG_LEVEL=warn
STOREFRONT_PAYMENT_TIMEOUT=7s
UNRELATED_SETTING=1
`)
	t.Setenv("STOREFRONT_PAYMENT_TIMEOUT", "9s")
	t.Setenv("STOREFRONT_PAYMENT_CIRCUITBREAKER_CONSECUTIVEFAILURES", "2")

	cfg, err := Load(Sources{File: yamlFile, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "/var/lib/storefront", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Log.Level, ".env overrides yaml")
	assert.Equal(t, 9*time.Second, cfg.Payment.Timeout, "environment overrides .env")
	assert.Equal(t, 10*time.Millisecond, cfg.Payment.Latency)
	assert.Equal(t, uint32(2), cfg.Payment.CircuitBreaker.ConsecutiveFailures)
	assert.Equal(t, 30*time.Second, cfg.Payment.CircuitBreaker.OpenTimeout)
	assert.Equal(t, "user_1", cfg.User.ID)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(Sources{File: missing(t)})
	assert.ErrorContains(t, err, "error loading config file")
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	_, err := Load(Sources{EnvFile: missing(t)})
	assert.NoError(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("STOREFRONT_STORE_DRIVER", "postgres")

	_, err := Load(Sources{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
	assert.Contains(t, err.Error(), `store.driver "postgres"`)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"memory needs no path", func(c *Config) { c.Store.Driver = DriverMemory; c.Store.Path = "" }, ""},
		{"sqlite needs path", func(c *Config) { c.Store.Path = "" }, "store.path is required"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"negative flush", func(c *Config) { c.Persistence.FlushInterval = -time.Second }, "flushinterval"},
		{"negative timeout", func(c *Config) { c.Payment.Timeout = -1 }, "payment.timeout"},
		{"user without email", func(c *Config) { c.User.ID = "u1" }, "user.email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestString(t *testing.T) {
	cfg := Defaults()
	s := cfg.String()

	assert.Contains(t, s, "store.driver: sqlite")
	assert.Contains(t, s, "catalog.path: <embedded>")
	assert.Contains(t, s, "user.id: <not configured>")
}
