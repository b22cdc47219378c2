// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/Silverfoe/trueskill-public/internal/domain/rating"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// DataPath is the snapshot file the persistence manager reads/writes.
	DataPath string `koanf:"data_path"`

	// TBABaseURL and TBAAuthKey configure the Blue Alliance client.
	TBABaseURL string `koanf:"tba_base_url"`
	TBAAuthKey string `koanf:"tba_auth_key"`

	// TBATimeoutMS bounds each history request; TBAMaxRetries bounds
	// transient-failure retries.
	TBATimeoutMS  int `koanf:"tba_timeout_ms"`
	TBAMaxRetries int `koanf:"tba_max_retries"`

	// Skill model constants. Zero values fall back to the conventional
	// defaults at SkillEnv time.
	SkillMu              float64 `koanf:"skill_mu"`
	SkillSigma           float64 `koanf:"skill_sigma"`
	SkillBeta            float64 `koanf:"skill_beta"`
	SkillTau             float64 `koanf:"skill_tau"`
	SkillDrawProbability float64 `koanf:"skill_draw_probability"`
}

// New creates a Config with defaults.
func New() *Config {
	env := rating.DefaultEnv()
	return &Config{
		LogLevel:             "info",
		Addr:                 ":5000",
		DataPath:             "trueskill_data.json",
		TBABaseURL:           "https://www.thebluealliance.com/api/v3",
		TBATimeoutMS:         15_000,
		TBAMaxRetries:        3,
		SkillMu:              env.Mu0,
		SkillSigma:           env.Sigma0,
		SkillBeta:            env.Beta,
		SkillTau:             env.Tau,
		SkillDrawProbability: env.DrawProbability,
	}
}

// SkillEnv converts the configured constants into a rating environment.
func (c *Config) SkillEnv() rating.Env {
	return rating.Env{
		Mu0:             c.SkillMu,
		Sigma0:          c.SkillSigma,
		Beta:            c.SkillBeta,
		Tau:             c.SkillTau,
		DrawProbability: c.SkillDrawProbability,
	}
}
