// Package solvency aggregates weighted exposures into the pool's risk metrics.
//
// Bond claims are discounted and liabilities marked up by a weight that grows with
// maturity through φ(τ) = 1 − e^(−τ/λ):
//
//	w_b(τ) = 1 − η_b·φ(τ)
//	w_l(τ) = 1 + η_l·φ(τ)
//
// At τ = 0 both weights are exactly 1; as τ → ∞ they approach 1 − η_b and 1 + η_l.
package solvency

import (
	"math"

	"github.com/go-faster/errors"
)

// ErrInvalidParameter is returned for a non-positive λ, a negative maturity, or
// non-finite inputs.
var ErrInvalidParameter = errors.New("solvency: invalid parameter")

// Params are the haircut parameters of the weighted net exposure.
type Params struct {
	// Lambda is the maturity scale of φ, in the unit of τ.
	Lambda float64 `json:"lambda"`
	// EtaB is the maximum haircut applied to bond claims.
	EtaB float64 `json:"etaB"`
	// EtaL is the maximum markup applied to liabilities.
	EtaL float64 `json:"etaL"`
}

func (p Params) validate() error {
	for _, v := range []float64{p.Lambda, p.EtaB, p.EtaL} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidParameter, "non-finite parameter in %+v", p)
		}
	}
	if p.Lambda <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "lambda must be positive, got %v", p.Lambda)
	}
	return nil
}

// Phi returns φ(τ) = 1 − e^(−τ/λ), exactly 0 at τ = 0.
func Phi(tau, lambda float64) (float64, error) {
	if math.IsNaN(tau) || math.IsInf(tau, 0) || tau < 0 {
		return 0, errors.Wrapf(ErrInvalidParameter, "maturity must be finite and non-negative, got %v", tau)
	}
	if math.IsNaN(lambda) || lambda <= 0 {
		return 0, errors.Wrapf(ErrInvalidParameter, "lambda must be positive, got %v", lambda)
	}
	if tau == 0 {
		return 0, nil
	}
	return -math.Expm1(-tau / lambda), nil
}

// Weights returns (w_b, w_l) at maturity tau.
func (p Params) Weights(tau float64) (float64, float64, error) {
	if err := p.validate(); err != nil {
		return 0, 0, err
	}
	phi, err := Phi(tau, p.Lambda)
	if err != nil {
		return 0, 0, err
	}
	return 1 - p.EtaB*phi, 1 + p.EtaL*phi, nil
}

// WeightedNet returns w_b(τ)·b − w_l(τ)·l. At τ = 0 it is exactly b − l.
func (p Params) WeightedNet(tau, b, l float64) (float64, error) {
	if tau == 0 {
		if err := p.validate(); err != nil {
			return 0, err
		}
		return b - l, nil
	}
	wb, wl, err := p.Weights(tau)
	if err != nil {
		return 0, err
	}
	return wb*b - wl*l, nil
}

// Equity are the components of the pool's base equity.
type Equity struct {
	YLiq   float64 `json:"yLiq"`
	YPnl   float64 `json:"yPnl"`
	YVault float64 `json:"yVault"`
	WVault float64 `json:"wVault"`
	SPast  float64 `json:"sPast"`
}

// Base returns yLiq + yPnl + w_vault·yVault + sPast.
func (e Equity) Base() float64 {
	return e.YLiq + e.YPnl + e.WVault*e.YVault + e.SPast
}
