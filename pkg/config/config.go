// Package config loads client settings from a YAML file or the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/germanamz/aix/pkg/compose"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvAPIKey  = "AIX_API_KEY"
	EnvBaseURL = "AIX_BASE_URL"
	EnvVariant = "AIX_VARIANT"
)

// Config holds resolved client settings.
type Config struct {
	APIKey   string
	BaseURL  string // Empty means compose.DefaultBaseURL.
	Variant  compose.Variant
	Headers  map[string]string
	Defaults []compose.Option // Parameters applied to every call.
	Timeout  time.Duration    // Per-call deadline (0 = none).
}

// fileConfig mirrors the YAML layout. api_key and defaults are kept as nodes
// so their types can be checked before decoding.
type fileConfig struct {
	APIKey   yaml.Node         `yaml:"api_key"`
	BaseURL  string            `yaml:"base_url"`
	Variant  string            `yaml:"variant"`
	Headers  map[string]string `yaml:"headers"`
	Defaults yaml.Node         `yaml:"defaults"`
	Timeout  string            `yaml:"timeout"`
}

// Load reads a YAML file and returns a Config.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing, so the API key can live in the environment (e.g. loaded
// from a .env file). Quote the reference (api_key: "${AIX_API_KEY}") so a
// numeric-looking key still parses as a string.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("config: load: %w", err)
	}

	return Parse(data)
}

// Parse is Load for YAML already in memory.
func Parse(data []byte) (Config, error) {
	expanded := os.ExpandEnv(string(data))

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	return fc.resolve()
}

// FromEnv builds a Config from AIX_API_KEY, AIX_BASE_URL, and AIX_VARIANT.
func FromEnv() (Config, error) {
	v, err := compose.ParseVariant(os.Getenv(EnvVariant))
	if err != nil {
		return Config{}, &compose.ConfigurationError{Field: EnvVariant, Reason: err.Error()}
	}

	return Config{
		APIKey:  os.Getenv(EnvAPIKey),
		BaseURL: os.Getenv(EnvBaseURL),
		Variant: v,
	}, nil
}

func (fc *fileConfig) resolve() (Config, error) {
	cfg := Config{
		BaseURL: fc.BaseURL,
		Headers: fc.Headers,
	}

	// A missing api_key is left empty; compose.New reports it.
	if fc.APIKey.Kind != 0 {
		if fc.APIKey.Kind != yaml.ScalarNode || fc.APIKey.ShortTag() != "!!str" {
			return Config{}, &compose.ConfigurationError{Field: "api_key", Reason: "must be a string"}
		}
		cfg.APIKey = fc.APIKey.Value
	}

	v, err := compose.ParseVariant(fc.Variant)
	if err != nil {
		return Config{}, &compose.ConfigurationError{Field: "variant", Reason: err.Error()}
	}
	cfg.Variant = v

	params, err := compose.DecodeParamsNode(&fc.Defaults)
	if err != nil {
		return Config{}, fmt.Errorf("config: defaults: %w", err)
	}
	if params.HasPrompt {
		return Config{}, &compose.ConfigurationError{Field: "defaults", Reason: "may not set prompt"}
	}
	cfg.Defaults = params.Options

	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return Config{}, &compose.ConfigurationError{Field: "timeout", Reason: fmt.Sprintf("invalid duration %q", fc.Timeout)}
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// NewClient creates a compose.Client from the configuration. Extra options
// are applied after the configured ones. An empty APIKey is a
// *compose.ConfigurationError, since neither the file nor the environment
// supplied one.
func (c Config) NewClient(opts ...compose.ClientOption) (*compose.Client, error) {
	if c.APIKey == "" {
		return nil, &compose.ConfigurationError{Field: "api_key", Reason: "is not set (config api_key or " + EnvAPIKey + ")"}
	}

	base := []compose.ClientOption{
		compose.WithVariant(c.Variant),
		compose.WithDefaults(c.Defaults...),
	}
	if len(c.Headers) > 0 {
		base = append(base, compose.WithHeaders(c.Headers))
	}
	if c.BaseURL != "" {
		base = append(base, compose.WithBaseURL(c.BaseURL))
	}

	return compose.New(c.APIKey, append(base, opts...)...)
}
