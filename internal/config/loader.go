package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
// STOREFRONT_STORE_PATH sets store.path.
const EnvPrefix = "STOREFRONT_"

// Default file locations, relative to the working directory.
const (
	DefaultFile    = "storefront.yaml"
	DefaultEnvFile = ".env"
)

// Sources names the files Load reads. Missing files are skipped unless the
// path was set explicitly.
type Sources struct {
	File    string
	EnvFile string
}

// Load builds the configuration from, in rising priority: Defaults, the
// YAML file, the .env file and the process environment.
func Load(src Sources) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return cfg, fmt.Errorf("error loading defaults: %w", err)
	}

	// 2. YAML file
	configFile, explicitFile := src.File, src.File != ""
	if !explicitFile {
		configFile = DefaultFile
	}
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if explicitFile || !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("error loading config file %q: %w", configFile, err)
		}
	}

	// 3. .env file
	envFile, explicitEnv := src.EnvFile, src.EnvFile != ""
	if !explicitEnv {
		envFile = DefaultEnvFile
	}
	if envFileMap, err := godotenv.Read(envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if strings.HasPrefix(key, EnvPrefix) {
				envMap[envKey(key)] = value
			}
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading .env config: %w", err)
		}
	} else if explicitEnv || !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading .env file", "path", envFile, "error", err)
	}

	// 4. Process environment, the highest priority
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return cfg, fmt.Errorf("error loading environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps STOREFRONT_PAYMENT_TIMEOUT to payment.timeout.
func envKey(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", ".")
}

func defaultsMap() map[string]any {
	d := Defaults()
	return map[string]any{
		"store.driver":                               d.Store.Driver,
		"store.path":                                 d.Store.Path,
		"catalog.path":                               d.Catalog.Path,
		"log.level":                                  d.Log.Level,
		"persistence.flushinterval":                  d.Persistence.FlushInterval,
		"payment.latency":                            d.Payment.Latency,
		"payment.timeout":                            d.Payment.Timeout,
		"payment.circuitbreaker.consecutivefailures": d.Payment.CircuitBreaker.ConsecutiveFailures,
		"payment.circuitbreaker.opentimeout":         d.Payment.CircuitBreaker.OpenTimeout,
	}
}
