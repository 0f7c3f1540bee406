package cfmm_test

import (
	"math"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/bondamm/cfmm"
	"github.com/meenmo/bondamm/curve"
)

var wide = cfmm.Corridor{PsiMin: 0.1, PsiMax: 10}

func newSolver(t *testing.T) *cfmm.Solver {
	t.Helper()
	s, err := cfmm.NewSolver(cfmm.DefaultConfig)
	require.NoError(t, err)
	return s
}

func TestSwap_SettlementIsLinear(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	out, err := s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{Tau: 0, BondAmount: 100, Corridor: wide})
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Equal(t, 1100.0, out.XNew)
	require.Equal(t, 900.0, out.YNew)
	require.InDelta(t, 11.0/9.0, out.PsiNew, 1e-15)

	for _, delta := range []float64{-999.5, -123.25, 0, 0.001, 77, 999} {
		out, err := s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{BondAmount: delta, Corridor: cfmm.Corridor{PsiMin: 0, PsiMax: math.Inf(1)}})
		require.NoError(t, err)
		require.True(t, out.OK(), "delta=%v failure=%v", delta, out.Failure)
		require.Equal(t, 1000+delta, out.XNew)
		require.Equal(t, 1000-delta, out.YNew)
	}
}

func TestSwap_SettlementExhaustsReserve(t *testing.T) {
	t.Parallel()
	s := newSolver(t)
	open := cfmm.Corridor{PsiMin: 0, PsiMax: math.Inf(1)}

	out, err := s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{BondAmount: 1000, Corridor: open})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureInvariantViolated, out.Failure)

	out, err = s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{BondAmount: -1000, Corridor: open})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureInvariantViolated, out.Failure)
}

func TestSwap_OneYearReference(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	out, err := s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{Tau: 1, BondAmount: 100, Corridor: wide})
	require.NoError(t, err)
	require.True(t, out.OK())

	// Reference oracle values.
	require.InDelta(t, 1029.1020184465444, out.XNew, 1e-8)
	require.InDelta(t, 906.5494585438335, out.YNew, 1e-8)
	require.InDelta(t, 1.1351857405547006, out.PsiNew, 1e-11)
	require.InDelta(t, 1136.7235491673407, out.XDeflatedNew, 1e-8)
	require.InDelta(t, out.PsiNew*out.YNew, out.XNew, 1e-9)
}

func TestSwap_InvariantPreserved(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	pools := []cfmm.Pool{{X: 1000, Y: 1000}, {X: 2000, Y: 1500}, {X: 350, Y: 900}}
	taus := []float64{1.0 / 365, 0.25, 1, 5, 10}
	deltas := []float64{-200, -10, 0.5, 40, 150}
	open := cfmm.Corridor{PsiMin: 0, PsiMax: math.Inf(1)}

	for _, pool := range pools {
		for _, tau := range taus {
			terms, err := s.Derive(tau, pool.X, pool.Y)
			require.NoError(t, err)
			for _, delta := range deltas {
				out, err := s.Swap(pool, cfmm.TradeRequest{Tau: tau, BondAmount: delta, Corridor: open})
				require.NoError(t, err)
				if !out.OK() {
					continue
				}
				require.Greater(t, out.XNew, 0.0)
				require.Greater(t, out.YNew, 0.0)
				require.InDelta(t, terms.XDeflated+delta, out.XDeflatedNew, 1e-9)

				after := terms.Invariant(out.XDeflatedNew, out.YNew)
				require.InEpsilon(t, terms.C, after, 1e-9, "pool=%+v tau=%v delta=%v", pool, tau, delta)
			}
		}
	}
}

func TestSwap_Monotonic(t *testing.T) {
	t.Parallel()
	s := newSolver(t)
	open := cfmm.Corridor{PsiMin: 0, PsiMax: math.Inf(1)}

	prevX, prevY := math.Inf(-1), math.Inf(1)
	for delta := -300.0; delta <= 300; delta += 25 {
		out, err := s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{Tau: 1, BondAmount: delta, Corridor: open})
		require.NoError(t, err)
		require.True(t, out.OK(), "delta=%v", delta)
		require.Greater(t, out.XNew, prevX, "delta=%v", delta)
		require.Less(t, out.YNew, prevY, "delta=%v", delta)
		prevX, prevY = out.XNew, out.YNew
	}
}

func TestSwap_TightCorridorRejects(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	out, err := s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{
		Tau:        1,
		BondAmount: 400,
		Corridor:   cfmm.Corridor{PsiMin: 0.9, PsiMax: 1.1},
	})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureRateOutOfBounds, out.Failure)
	require.Zero(t, out.XNew)
	require.Zero(t, out.YNew)
	require.ErrorIs(t, out.Failure.Err(), cfmm.ErrRateOutOfBounds)
}

func TestSwap_CorridorBoundsAreInclusive(t *testing.T) {
	t.Parallel()
	s := newSolver(t)
	pool := cfmm.Pool{X: 1000, Y: 1000}

	ref, err := s.Swap(pool, cfmm.TradeRequest{Tau: 1, BondAmount: 100, Corridor: wide})
	require.NoError(t, err)
	require.True(t, ref.OK())
	psi := ref.PsiNew

	out, err := s.Swap(pool, cfmm.TradeRequest{Tau: 1, BondAmount: 100, Corridor: cfmm.Corridor{PsiMin: psi, PsiMax: psi}})
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Equal(t, ref, out)

	out, err = s.Swap(pool, cfmm.TradeRequest{Tau: 1, BondAmount: 100, Corridor: cfmm.Corridor{PsiMin: 0, PsiMax: math.Nextafter(psi, 0)}})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureRateOutOfBounds, out.Failure)

	out, err = s.Swap(pool, cfmm.TradeRequest{Tau: 1, BondAmount: 100, Corridor: cfmm.Corridor{PsiMin: math.Nextafter(psi, 2), PsiMax: 2}})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureRateOutOfBounds, out.Failure)
}

func TestSwap_InvariantViolated(t *testing.T) {
	t.Parallel()
	s := newSolver(t)
	open := cfmm.Corridor{PsiMin: 0, PsiMax: math.Inf(1)}

	// Lending more than the deflated bond reserve.
	out, err := s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{Tau: 1, BondAmount: -1100, Corridor: open})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureInvariantViolated, out.Failure)

	// Borrowing past the cash-side capacity of the invariant.
	out, err = s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{Tau: 1, BondAmount: 2000, Corridor: open})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureInvariantViolated, out.Failure)

	// Feasibility is checked before the corridor.
	out, err = s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{Tau: 1, BondAmount: 2000, Corridor: cfmm.Corridor{PsiMin: 0.99, PsiMax: 1.01}})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureInvariantViolated, out.Failure)
}

func TestSwap_LongMaturityUnderflowIsInvariantViolation(t *testing.T) {
	t.Parallel()
	s := newSolver(t)
	pool := cfmm.Pool{X: 1000, Y: 1000}
	open := cfmm.Corridor{PsiMin: 0, PsiMax: math.Inf(1)}
	const tau = 100

	rng, err := s.TradableRange(pool, tau, open)
	require.NoError(t, err)

	// Just inside the feasible edge the cash reserve rounds to zero under y^(1+κτ).
	delta := rng.Max
	for i := 0; i < 64; i++ {
		delta = math.Nextafter(delta, math.Inf(-1))
		req := cfmm.TradeRequest{Tau: tau, BondAmount: delta, Corridor: open}

		out, err := s.Swap(pool, req)
		require.NoError(t, err)
		require.Equal(t, cfmm.FailureInvariantViolated, out.Failure, "delta=%v XNew=%v YNew=%v", delta, out.XNew, out.YNew)

		dual, err := s.SwapDual(cfmm.DualPool{X: pool.X, YPrin: pool.Y, YLiq: math.MaxFloat64}, req)
		require.NoError(t, err)
		require.Equal(t, cfmm.FailureInvariantViolated, dual.Failure, "delta=%v", delta)
	}

	for _, delta := range []float64{-100, 100, 1e5} {
		out, err := s.Swap(pool, cfmm.TradeRequest{Tau: tau, BondAmount: delta, Corridor: open})
		require.NoError(t, err)
		require.True(t, out.OK(), "delta=%v failure=%v", delta, out.Failure)
		for _, v := range []float64{out.XNew, out.YNew, out.PsiNew} {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "delta=%v", delta)
			require.Greater(t, v, 0.0)
		}
	}
}

func TestSwap_InvalidParameter(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	tests := []struct {
		name string
		pool cfmm.Pool
		req  cfmm.TradeRequest
	}{
		{"zero X", cfmm.Pool{X: 0, Y: 1}, cfmm.TradeRequest{Tau: 1, Corridor: wide}},
		{"negative y", cfmm.Pool{X: 1, Y: -1}, cfmm.TradeRequest{Tau: 1, Corridor: wide}},
		{"nan X", cfmm.Pool{X: math.NaN(), Y: 1}, cfmm.TradeRequest{Tau: 1, Corridor: wide}},
		{"negative tau", cfmm.Pool{X: 1, Y: 1}, cfmm.TradeRequest{Tau: -1, Corridor: wide}},
		{"infinite delta", cfmm.Pool{X: 1, Y: 1}, cfmm.TradeRequest{Tau: 1, BondAmount: math.Inf(1), Corridor: wide}},
		{"inverted corridor", cfmm.Pool{X: 1, Y: 1}, cfmm.TradeRequest{Tau: 1, Corridor: cfmm.Corridor{PsiMin: 2, PsiMax: 1}}},
		{"negative psiMin", cfmm.Pool{X: 1, Y: 1}, cfmm.TradeRequest{Tau: 1, Corridor: cfmm.Corridor{PsiMin: -1, PsiMax: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Swap(tt.pool, tt.req)
			require.Error(t, err)
			require.True(t, errors.Is(err, cfmm.ErrInvalidParameter))
		})
	}
}

func TestNewSolver_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := cfmm.NewSolver(cfmm.Config{Kappa: 0, Curve: curve.DefaultParams})
	require.ErrorIs(t, err, cfmm.ErrInvalidParameter)

	_, err = cfmm.NewSolver(cfmm.Config{Kappa: 0.5, Curve: curve.Params{Beta0: 0.05, Lambda: -2}})
	require.ErrorIs(t, err, cfmm.ErrInvalidParameter)
}

func TestSolver_ZeroValueRejectsTrades(t *testing.T) {
	t.Parallel()
	var s cfmm.Solver
	pool := cfmm.Pool{X: 1000, Y: 1000}

	_, err := s.Swap(pool, cfmm.TradeRequest{Tau: 1, BondAmount: 10, Corridor: wide})
	require.ErrorIs(t, err, cfmm.ErrInvalidParameter)

	_, err = s.SwapDual(cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 10}, cfmm.TradeRequest{Tau: 1, Corridor: wide})
	require.ErrorIs(t, err, cfmm.ErrInvalidParameter)

	_, err = s.Derive(1, 1000, 1000)
	require.ErrorIs(t, err, cfmm.ErrInvalidParameter)

	_, err = s.TradableRange(pool, 1, wide)
	require.ErrorIs(t, err, cfmm.ErrInvalidParameter)
}

func TestDerive_SettlementTerms(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	terms, err := s.Derive(0, 1200, 800)
	require.NoError(t, err)
	require.Equal(t, 1.0, terms.Price)
	require.Equal(t, 1.0, terms.Alpha)
	require.Equal(t, 1.0, terms.K)
	require.Equal(t, 1200.0, terms.XDeflated)
	require.Equal(t, 2000.0, terms.C)
	require.Equal(t, curve.DefaultParams.Beta0+curve.DefaultParams.Beta1, terms.RStar)
	require.InDelta(t, 0.5*math.Log(1.5)+0.03, terms.RTot, 1e-15)
}

func TestDerive_OneYearTerms(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	terms, err := s.Derive(1, 1000, 1000)
	require.NoError(t, err)
	require.InDelta(t, 2.0/3.0, terms.Alpha, 1e-15)
	require.InDelta(t, 0.976243205418169, terms.K, 1e-12)
	require.InDelta(t, 1036.7235491673407, terms.XDeflated, 1e-9)
	require.InDelta(t, 200.0, terms.C, 1e-9)
	require.Equal(t, terms.RStar, terms.RTot)
}

func TestFailureCodes(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint64(1), cfmm.FailureInvariantViolated.Code())
	require.Equal(t, uint64(2), cfmm.FailureRateOutOfBounds.Code())
	require.Equal(t, uint64(3), cfmm.FailureInsufficientLiquidity.Code())
	require.NoError(t, cfmm.FailureNone.Err())

	for code := uint64(0); code <= 3; code++ {
		f, err := cfmm.FailureFromCode(code)
		require.NoError(t, err)
		require.Equal(t, code, f.Code())
	}
	_, err := cfmm.FailureFromCode(4)
	require.Error(t, err)
}
