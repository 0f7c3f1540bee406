package cfmm

import (
	"math"

	"github.com/go-faster/errors"

	"github.com/meenmo/bondamm/curve"
)

// Config holds the pool-level constants the invariant depends on.
type Config struct {
	// Kappa is the rate-sensitivity coefficient κ (per year). It links the reserve
	// ratio to the total rate (rtot = κ·ln ψ + r*) and sets the invariant exponent
	// α(τ) = 1/(1 + κ·τ).
	Kappa float64

	// Curve holds the Nelson-Siegel parameters of the anchor rate r*(τ).
	// Curve.Lambda must be in years, the unit of TradeRequest.Tau.
	Curve curve.Params
}

// DefaultConfig is the reference pool configuration: κ = 0.5 and the default
// anchor curve (β0 = 5%, β1 = −2%, β2 = 1%, λ = 2Y).
var DefaultConfig = Config{
	Kappa: 0.5,
	Curve: curve.DefaultParams,
}

// Validate reports whether the configuration can drive a solver.
func (c Config) Validate() error {
	if math.IsNaN(c.Kappa) || math.IsInf(c.Kappa, 0) || c.Kappa <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "kappa must be finite and positive, got %v", c.Kappa)
	}
	if err := c.Curve.Validate(); err != nil {
		return errors.Wrap(ErrInvalidParameter, err.Error())
	}
	return nil
}
