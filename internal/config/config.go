// Package config loads storefront settings from defaults, a YAML file, a
// .env file and STOREFRONT_* environment variables, in rising priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

type Config struct {
	Store       StoreConfig       `koanf:"store"`
	Catalog     CatalogConfig     `koanf:"catalog"`
	Log         LogConfig         `koanf:"log"`
	Persistence PersistenceConfig `koanf:"persistence"`
	Payment     PaymentConfig     `koanf:"payment"`
	User        UserConfig        `koanf:"user"`
}

type StoreConfig struct {
	// Driver is one of sqlite, file or memory.
	Driver string `koanf:"driver"`
	// Path is the database file (sqlite) or fragment directory (file).
	Path string `koanf:"path"`
}

type CatalogConfig struct {
	// Path to a .yaml, .json or .cue catalog. Empty uses the embedded one.
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type PersistenceConfig struct {
	FlushInterval time.Duration `koanf:"flushinterval"`
}

type PaymentConfig struct {
	Latency        time.Duration        `koanf:"latency"`
	Timeout        time.Duration        `koanf:"timeout"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

// UserConfig stands in for the identity provider when driving the store
// from the command line. An empty ID means nobody is signed in.
type UserConfig struct {
	ID    string `koanf:"id"`
	Email string `koanf:"email"`
	Name  string `koanf:"name"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Store:       StoreConfig{Driver: DriverSQLite, Path: "storefront.db"},
		Log:         LogConfig{Level: "info"},
		Persistence: PersistenceConfig{FlushInterval: 0},
		Payment: PaymentConfig{
			Latency: 2 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				ConsecutiveFailures: 5,
				OpenTimeout:         30 * time.Second,
			},
		},
	}
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverSQLite, DriverFile:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for driver %q", c.Store.Driver))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q must be one of sqlite, file, memory", c.Store.Driver))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}

	if c.Persistence.FlushInterval < 0 {
		errs = append(errs, errors.New("persistence.flushinterval must not be negative"))
	}
	if c.Payment.Latency < 0 {
		errs = append(errs, errors.New("payment.latency must not be negative"))
	}
	if c.Payment.Timeout < 0 {
		errs = append(errs, errors.New("payment.timeout must not be negative"))
	}
	if c.Payment.CircuitBreaker.OpenTimeout < 0 {
		errs = append(errs, errors.New("payment.circuitbreaker.opentimeout must not be negative"))
	}
	if c.User.ID != "" && c.User.Email == "" {
		errs = append(errs, errors.New("user.email is required when user.id is set"))
	}

	return errors.Join(errs...)
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  store.driver: %s\n", c.Store.Driver))
	b.WriteString(fmt.Sprintf("  store.path: %s\n", orNone(c.Store.Path)))
	b.WriteString(fmt.Sprintf("  persistence.flushinterval: %s\n", c.Persistence.FlushInterval))

	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  catalog.path: %s\n", orDefault(c.Catalog.Path, "<embedded>")))

	b.WriteString("\n--- Payment ---\n")
	b.WriteString(fmt.Sprintf("  payment.latency: %s\n", c.Payment.Latency))
	b.WriteString(fmt.Sprintf("  payment.timeout: %s\n", c.Payment.Timeout))
	b.WriteString(fmt.Sprintf("  payment.circuitbreaker.consecutivefailures: %d\n", c.Payment.CircuitBreaker.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  payment.circuitbreaker.opentimeout: %s\n", c.Payment.CircuitBreaker.OpenTimeout))

	b.WriteString("\n--- Identity ---\n")
	b.WriteString(fmt.Sprintf("  user.id: %s\n", orNone(c.User.ID)))
	b.WriteString(fmt.Sprintf("  user.email: %s\n", orNone(c.User.Email)))

	b.WriteString("\n--- Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))

	return b.String()
}

func orNone(s string) string {
	return orDefault(s, "<not configured>")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
