package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TSAPI_CONFIG is set
//  3. env (prefix TSAPI_)
//
// The legacy variable names TBA_AUTH_KEY and TRUESKILL_DATA_PATH are still
// honored when the prefixed forms are absent, so deployments of the
// original service keep working unchanged.
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TSAPI_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: TSAPI_ADDR, TSAPI_TBA_AUTH_KEY, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("TSAPI_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "tsapi_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Legacy fallbacks.
	if cfg.TBAAuthKey == "" {
		cfg.TBAAuthKey = os.Getenv("TBA_AUTH_KEY")
	}
	if v := os.Getenv("TRUESKILL_DATA_PATH"); v != "" && !k.Exists("data_path") {
		cfg.DataPath = v
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DataPath == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	}
	if err := cfg.SkillEnv().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
