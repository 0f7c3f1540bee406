package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/go-faster/errors"

	"github.com/meenmo/bondamm/cfmm"
	"github.com/meenmo/bondamm/curve"
	"github.com/meenmo/bondamm/wad"
)

// Config is the process configuration of the oracle binaries.
type Config struct {
	App struct {
		LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
		MetricsFile string `env:"CFMM_METRICS_FILE"`
		Workers     int    `env:"CFMM_WORKERS" envDefault:"8"`
	}
	Pool struct {
		Kappa       float64 `env:"CFMM_KAPPA" envDefault:"0.5"`
		CurveFile   string  `env:"CFMM_CURVE_FILE"`
		WadDecimals int     `env:"CFMM_WAD_DECIMALS" envDefault:"18"`
	}
}

// Load parses the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	if c.App.Workers <= 0 {
		return Config{}, errors.Errorf("CFMM_WORKERS must be positive, got %d", c.App.Workers)
	}
	return c, nil
}

// Solver returns the pool configuration: κ from the environment and the anchor
// curve from CFMM_CURVE_FILE, or the default curve when unset.
func (c Config) Solver() (cfmm.Config, error) {
	params := curve.DefaultParams
	if c.Pool.CurveFile != "" {
		p, err := curve.LoadParams(c.Pool.CurveFile)
		if err != nil {
			return cfmm.Config{}, err
		}
		params = p
	}
	sc := cfmm.Config{Kappa: c.Pool.Kappa, Curve: params}
	if err := sc.Validate(); err != nil {
		return cfmm.Config{}, err
	}
	return sc, nil
}

// Codec returns the fixed-point codec for CFMM_WAD_DECIMALS.
func (c Config) Codec() (wad.Codec, error) {
	return wad.NewCodec(c.Pool.WadDecimals)
}
