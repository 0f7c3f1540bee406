package cfmm

import (
	"math"

	"github.com/go-faster/errors"
)

var (
	// ErrInvalidParameter marks a caller contract violation: non-positive reserves,
	// a negative maturity, an inverted corridor, or NaN/infinite inputs.
	ErrInvalidParameter = errors.New("cfmm: invalid parameter")

	// ErrInvariantViolated is the error form of FailureInvariantViolated.
	ErrInvariantViolated = errors.New("cfmm: invariant violated")
	// ErrRateOutOfBounds is the error form of FailureRateOutOfBounds.
	ErrRateOutOfBounds = errors.New("cfmm: rate out of bounds")
	// ErrInsufficientLiquidity is the error form of FailureInsufficientLiquidity.
	ErrInsufficientLiquidity = errors.New("cfmm: insufficient liquidity")
)

// Failure tags a trade the solver rejected. Values match the wire error codes.
type Failure uint8

const (
	// FailureNone marks a successful outcome.
	FailureNone Failure = iota
	// FailureInvariantViolated: a reserve would become non-positive under the invariant.
	FailureInvariantViolated
	// FailureRateOutOfBounds: the post-trade rate indicator leaves the corridor.
	FailureRateOutOfBounds
	// FailureInsufficientLiquidity: the cash outflow exceeds free liquidity (dual-reserve only).
	FailureInsufficientLiquidity
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "ok"
	case FailureInvariantViolated:
		return "invariant_violated"
	case FailureRateOutOfBounds:
		return "rate_out_of_bounds"
	case FailureInsufficientLiquidity:
		return "insufficient_liquidity"
	default:
		return "unknown"
	}
}

// Code returns the wire error code (0 for success).
func (f Failure) Code() uint64 {
	return uint64(f)
}

// Err returns the sentinel error for f, or nil for FailureNone.
func (f Failure) Err() error {
	switch f {
	case FailureNone:
		return nil
	case FailureInvariantViolated:
		return ErrInvariantViolated
	case FailureRateOutOfBounds:
		return ErrRateOutOfBounds
	case FailureInsufficientLiquidity:
		return ErrInsufficientLiquidity
	default:
		return errors.Errorf("cfmm: unknown failure %d", uint8(f))
	}
}

// FailureFromCode maps a wire error code back to a Failure.
func FailureFromCode(code uint64) (Failure, error) {
	if code > uint64(FailureInsufficientLiquidity) {
		return FailureNone, errors.Errorf("cfmm: unknown error code %d", code)
	}
	return Failure(code), nil
}

// Corridor bounds the post-trade rate indicator ψ. Both ends are inclusive.
type Corridor struct {
	PsiMin float64
	PsiMax float64
}

// Contains reports whether psiMin ≤ psi ≤ psiMax.
func (c Corridor) Contains(psi float64) bool {
	return psi >= c.PsiMin && psi <= c.PsiMax
}

func (c Corridor) validate() error {
	if math.IsNaN(c.PsiMin) || math.IsNaN(c.PsiMax) || math.IsInf(c.PsiMin, 0) {
		return errors.Wrapf(ErrInvalidParameter, "corridor bounds must be numbers, got [%v, %v]", c.PsiMin, c.PsiMax)
	}
	if c.PsiMin < 0 || c.PsiMin > c.PsiMax {
		return errors.Wrapf(ErrInvalidParameter, "corridor must satisfy 0 <= psiMin <= psiMax, got [%v, %v]", c.PsiMin, c.PsiMax)
	}
	return nil
}

// Pool is the single-reserve pool state: bond-side reserve X and cash-side reserve Y.
type Pool struct {
	X float64
	Y float64
}

// DualPool splits the cash side into the principal reserve YPrin, which enters the
// invariant, and the free liquidity YLiq available to pay out.
type DualPool struct {
	X     float64
	YPrin float64
	YLiq  float64
}

// TradeRequest is a signed trade against a pool.
type TradeRequest struct {
	// Tau is the time to maturity in years; 0 is instantaneous settlement.
	Tau float64
	// BondAmount is δ: positive borrows (increases X), negative lends (decreases X).
	BondAmount float64
	// Corridor bounds the post-trade ψ.
	Corridor Corridor
}

// Outcome is the result of a single-reserve swap. On failure only Failure is set.
type Outcome struct {
	XNew float64
	YNew float64

	// PsiNew is the post-trade rate indicator reconstructed from the reserve compression.
	PsiNew float64
	// XDeflatedNew is the maturity-adjusted bond reserve x + δ that entered the invariant.
	XDeflatedNew float64

	Failure Failure
}

// OK reports whether the trade succeeded.
func (o Outcome) OK() bool {
	return o.Failure == FailureNone
}

// DualOutcome is the result of a dual-reserve swap. On failure only Failure is set.
type DualOutcome struct {
	XNew     float64
	YPrinNew float64

	// CashAmount is yPrinNew − yPrin: negative when cash flows out of the pool.
	CashAmount float64

	PsiNew       float64
	XDeflatedNew float64

	Failure Failure
}

// OK reports whether the trade succeeded.
func (o DualOutcome) OK() bool {
	return o.Failure == FailureNone
}
