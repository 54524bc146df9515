// Package config holds the registry server configuration and its loading
// from flags and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LOOKUP"

// Config is the registry server configuration.
type Config struct {
	// ListenAddr is the address the lookup HTTP API listens on.
	ListenAddr string `mapstructure:"listen-addr" validate:"required"`
	// MetricsAddr is the address the Prometheus endpoint listens on.
	MetricsAddr string `mapstructure:"metrics-addr" validate:"required"`
	// RPCEndpoint is the JSON-RPC node endpoint registries are read from.
	RPCEndpoint string `mapstructure:"rpc-endpoint" validate:"required,url"`
	// CacheTTL bounds how long cached registry snapshots stay usable.
	CacheTTL time.Duration `mapstructure:"cache-ttl" validate:"gt=0"`
	// RequestTimeout bounds each outgoing JSON-RPC request.
	RequestTimeout time.Duration `mapstructure:"request-timeout" validate:"gt=0"`
	// LogLevel is the zerolog level the server logs at.
	LogLevel string `mapstructure:"log-level" validate:"oneof=trace debug info warn error"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:     ":8080",
		MetricsAddr:    ":9090",
		RPCEndpoint:    "http://localhost:8899",
		CacheTTL:       time.Hour,
		RequestTimeout: 30 * time.Second,
		LogLevel:       "info",
	}
}

// BindFlags registers all configuration flags, defaulted from DefaultConfig.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()
	flags.String("listen-addr", defaults.ListenAddr, "address the lookup API listens on")
	flags.String("metrics-addr", defaults.MetricsAddr, "address the metrics endpoint listens on")
	flags.String("rpc-endpoint", defaults.RPCEndpoint, "JSON-RPC node endpoint")
	flags.Duration("cache-ttl", defaults.CacheTTL, "registry snapshot cache TTL")
	flags.Duration("request-timeout", defaults.RequestTimeout, "timeout of outgoing JSON-RPC requests")
	flags.String("log-level", defaults.LogLevel, "log level (trace, debug, info, warn, error)")
}

// Load resolves the configuration from the bound flags and the environment,
// with flags taking precedence. Environment variables use the LOOKUP prefix,
// e.g. LOOKUP_RPC_ENDPOINT.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("could not bind flags: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
