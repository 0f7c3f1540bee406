package cfmm

import (
	"math"

	"github.com/go-faster/errors"
)

// Terms are the per-call quantities derived from the maturity and current reserves.
// They depend on the latest reserves, so they must never be cached across trades.
type Terms struct {
	Tau float64

	// Psi is X/y, the current rate indicator.
	Psi float64
	// RStar is the anchor rate r*(τ).
	RStar float64
	// RTot is κ·ln(ψ) + r*(τ).
	RTot float64
	// Price is the discount factor exp(−rtot·τ); 1 at τ = 0.
	Price float64
	// XDeflated is X/p(τ), the spot-equivalent bond reserve.
	XDeflated float64
	// Alpha is 1/(1 + κ·τ); 1 at τ = 0.
	Alpha float64
	// K is exp(−τ·r*·α); 1 at τ = 0.
	K float64
	// C is the invariant constant K·x^α + y^α of the pre-trade state.
	C float64
}

// Invariant evaluates K·x^α + y^α for a deflated bond reserve x and cash reserve y.
func (t Terms) Invariant(x, y float64) float64 {
	return t.K*math.Pow(x, t.Alpha) + math.Pow(y, t.Alpha)
}

// Derive computes the invariant terms for maturity tau (years) and reserves X, y.
func (s *Solver) Derive(tau, X, y float64) (Terms, error) {
	if err := validateMaturity(tau); err != nil {
		return Terms{}, err
	}
	if err := validateReserve("X", X); err != nil {
		return Terms{}, err
	}
	if err := validateReserve("y", y); err != nil {
		return Terms{}, err
	}
	return s.derive(tau, X, y)
}

// derive assumes validated trade inputs. It still fails on a solver whose curve was
// never validated, such as the zero value.
func (s *Solver) derive(tau, X, y float64) (Terms, error) {
	psi := X / y
	rstar, err := s.cfg.Curve.Rate(tau)
	if err != nil {
		return Terms{}, errors.Wrap(ErrInvalidParameter, err.Error())
	}
	t := Terms{
		Tau:   tau,
		Psi:   psi,
		RStar: rstar,
		RTot:  s.cfg.Kappa*math.Log(psi) + rstar,
	}

	if tau == 0 {
		t.Price = 1
		t.XDeflated = X
		t.Alpha = 1
		t.K = 1
		t.C = X + y
		return t, nil
	}

	t.Price = math.Exp(-t.RTot * tau)
	t.XDeflated = X / t.Price
	t.Alpha = 1 / (1 + s.cfg.Kappa*tau)
	t.K = math.Exp(-tau * rstar * t.Alpha)
	t.C = t.K*math.Pow(t.XDeflated, t.Alpha) + math.Pow(y, t.Alpha)
	return t, nil
}
