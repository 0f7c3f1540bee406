package cfmm

import (
	"math"

	"github.com/go-faster/errors"
)

// Solver prices trades against the time-dependent power-sum invariant
//
//	K(τ)·x^α(τ) + y^α(τ) = C
//
// A Solver holds only immutable configuration; it is safe for concurrent use and
// never mutates caller state. Callers commit the returned reserves atomically and
// pass fresh reserves on every call.
type Solver struct {
	cfg Config
}

// NewSolver validates cfg and returns a solver bound to it.
func NewSolver(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Solver{cfg: cfg}, nil
}

// Config returns the solver's configuration.
func (s *Solver) Config() Config {
	return s.cfg
}

// Swap computes the new reserves of a single-reserve pool after req.
//
// Expected rejections are reported in Outcome.Failure, checked in the order
// invariant feasibility, then rate corridor. The error return is reserved for
// malformed input and wraps ErrInvalidParameter.
func (s *Solver) Swap(pool Pool, req TradeRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	if err := validateReserve("X", pool.X); err != nil {
		return Outcome{}, err
	}
	if err := validateReserve("y", pool.Y); err != nil {
		return Outcome{}, err
	}

	sol, err := s.solve(pool.X, pool.Y, req)
	if err != nil {
		return Outcome{}, err
	}
	if sol.failure != FailureNone {
		return Outcome{Failure: sol.failure}, nil
	}
	return Outcome{
		XNew:         sol.XNew,
		YNew:         sol.yNew,
		PsiNew:       sol.psiNew,
		XDeflatedNew: sol.xNew,
	}, nil
}

type solution struct {
	xNew    float64
	yNew    float64
	psiNew  float64
	XNew    float64
	failure Failure
}

// solve runs the invariant and corridor checks shared by both pool variants.
// y is the reserve that enters the invariant (y or yPrin).
func (s *Solver) solve(X, y float64, req TradeRequest) (solution, error) {
	t, err := s.derive(req.Tau, X, y)
	if err != nil {
		return solution{}, err
	}
	delta := req.BondAmount

	if req.Tau == 0 {
		// Settlement: α = K = p = 1 and the invariant is linear.
		xNew := X + delta
		yNew := y - delta
		if xNew <= 0 || yNew <= 0 {
			return solution{failure: FailureInvariantViolated}, nil
		}
		psiNew := (y/yNew)*(t.Psi+1) - 1
		if psiNew <= 0 || !req.Corridor.Contains(psiNew) {
			return solution{failure: FailureRateOutOfBounds}, nil
		}
		return solution{xNew: xNew, yNew: yNew, psiNew: psiNew, XNew: xNew}, nil
	}

	xNew := t.XDeflated + delta
	if xNew <= 0 {
		return solution{failure: FailureInvariantViolated}, nil
	}
	yAlphaNew := t.C - t.K*math.Pow(xNew, t.Alpha)
	if yAlphaNew <= 0 {
		return solution{failure: FailureInvariantViolated}, nil
	}
	// 1/α = 1 + κτ, so a small positive yAlphaNew underflows to zero at long maturities.
	yNew := math.Pow(yAlphaNew, 1/t.Alpha)
	if !(yNew > 0) || math.IsInf(yNew, 0) {
		return solution{failure: FailureInvariantViolated}, nil
	}

	// ψNew is rebuilt from the relative compression of the cash reserve rather
	// than from a separately derived X.
	ratio := y / yNew
	psiNew := math.Pow(ratio, t.Alpha)*(t.Psi+1) - 1
	XNew := psiNew * yNew
	if !finite(psiNew) || !finite(XNew) {
		return solution{failure: FailureInvariantViolated}, nil
	}

	if psiNew <= 0 || !req.Corridor.Contains(psiNew) {
		return solution{failure: FailureRateOutOfBounds}, nil
	}
	if !(XNew > 0) {
		return solution{failure: FailureInvariantViolated}, nil
	}
	return solution{xNew: xNew, yNew: yNew, psiNew: psiNew, XNew: XNew}, nil
}

// ---------------------------------------------------------------------------
// validation
// ---------------------------------------------------------------------------

func validateRequest(req TradeRequest) error {
	if err := validateMaturity(req.Tau); err != nil {
		return err
	}
	if math.IsNaN(req.BondAmount) || math.IsInf(req.BondAmount, 0) {
		return errors.Wrapf(ErrInvalidParameter, "bond amount must be finite, got %v", req.BondAmount)
	}
	return req.Corridor.validate()
}

func validateMaturity(tau float64) error {
	if math.IsNaN(tau) || math.IsInf(tau, 0) || tau < 0 {
		return errors.Wrapf(ErrInvalidParameter, "maturity must be finite and non-negative, got %v", tau)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validateReserve(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "reserve %s must be finite and positive, got %v", name, v)
	}
	return nil
}
