package cfmm

import (
	"math"

	"github.com/go-faster/errors"
)

// Range is an interval of bond amounts δ. An end set by a corridor bound is
// inclusive; an end set by the feasibility boundary (a reserve reaching zero) is
// exclusive and flagged Open.
type Range struct {
	Min     float64
	Max     float64
	MinOpen bool
	MaxOpen bool
}

// Contains reports whether delta lies in r.
func (r Range) Contains(delta float64) bool {
	if delta < r.Min || (r.MinOpen && delta == r.Min) {
		return false
	}
	if delta > r.Max || (r.MaxOpen && delta == r.Max) {
		return false
	}
	return true
}

// TradableRange returns the bond amounts that are feasible under the invariant and
// keep ψNew inside corridor, for a pool at maturity tau.
//
// ψNew is monotone in δ, so each corridor bound maps to one δ in closed form:
//
//	y_b^α = y^α·(ψ + 1)/(ψ_b + 1)
//	δ_b   = ((C − y_b^α)/K)^(1/α) − x
//
// It returns an error wrapping ErrRateOutOfBounds when no feasible δ reaches the corridor.
func (s *Solver) TradableRange(pool Pool, tau float64, corridor Corridor) (Range, error) {
	if err := validateMaturity(tau); err != nil {
		return Range{}, err
	}
	if err := corridor.validate(); err != nil {
		return Range{}, err
	}
	if err := validateReserve("X", pool.X); err != nil {
		return Range{}, err
	}
	if err := validateReserve("y", pool.Y); err != nil {
		return Range{}, err
	}

	t, err := s.derive(tau, pool.X, pool.Y)
	if err != nil {
		return Range{}, err
	}
	yAlpha := math.Pow(pool.Y, t.Alpha)

	// Feasible domain: x + δ > 0 and C − K·(x + δ)^α > 0.
	r := Range{
		Min:     -t.XDeflated,
		Max:     math.Pow(t.C/t.K, 1/t.Alpha) - t.XDeflated,
		MinOpen: true,
		MaxOpen: true,
	}

	deltaAt := func(psiBound float64) (float64, bool) {
		yAlphaBound := yAlpha * (t.Psi + 1) / (psiBound + 1)
		rem := t.C - yAlphaBound
		if rem <= 0 {
			return 0, false
		}
		return math.Pow(rem/t.K, 1/t.Alpha) - t.XDeflated, true
	}

	// ψNew = 0 is rejected even when psiMin is 0, so that end stays open.
	if d, ok := deltaAt(corridor.PsiMin); ok && d > r.Min {
		r.Min, r.MinOpen = d, corridor.PsiMin == 0
	}
	if !math.IsInf(corridor.PsiMax, 1) {
		d, ok := deltaAt(corridor.PsiMax)
		if !ok {
			return Range{}, errors.Wrapf(ErrRateOutOfBounds, "psiMax %v is below every feasible trade", corridor.PsiMax)
		}
		if d < r.Max {
			r.Max, r.MaxOpen = d, false
		}
	}

	if r.Min > r.Max || (r.Min == r.Max && (r.MinOpen || r.MaxOpen)) {
		return Range{}, errors.Wrapf(ErrRateOutOfBounds, "corridor [%v, %v] is unreachable", corridor.PsiMin, corridor.PsiMax)
	}
	return r, nil
}
