package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Rating policy names accepted by CABAL_RATING_POLICY.
const (
	PolicyDiscrete   = "discrete"
	PolicyContinuous = "continuous"
)

type Config struct {
	Addr          string `env:"CABAL_API_ADDR" envDefault:":8080"`
	Port          string `env:"PORT"`
	DatabaseURL   string `env:"DATABASE_URL"`
	AdminToken    string `env:"CABAL_ADMIN_TOKEN"`
	InitialRating int    `env:"CABAL_INITIAL_RATING" envDefault:"3000"`
	MaxBlue       int    `env:"CABAL_MAX_BLUE" envDefault:"6"`
	RatingPolicy  string `env:"CABAL_RATING_POLICY" envDefault:"discrete"`
	Migrate       bool   `env:"CABAL_STARTUP_MIGRATE" envDefault:"true"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if p := strings.TrimSpace(cfg.Port); p != "" {
		if !strings.HasPrefix(p, ":") {
			p = ":" + p
		}
		cfg.Addr = p
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.RatingPolicy)) {
	case PolicyDiscrete, "":
		cfg.RatingPolicy = PolicyDiscrete
	case PolicyContinuous:
		cfg.RatingPolicy = PolicyContinuous
	default:
		return cfg, fmt.Errorf("CABAL_RATING_POLICY must be %q or %q", PolicyDiscrete, PolicyContinuous)
	}
	if cfg.InitialRating <= 0 {
		return cfg, fmt.Errorf("CABAL_INITIAL_RATING must be > 0")
	}
	if cfg.MaxBlue <= 0 {
		return cfg, fmt.Errorf("CABAL_MAX_BLUE must be > 0")
	}
	return cfg, nil
}
