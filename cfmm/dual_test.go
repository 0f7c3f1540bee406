package cfmm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/bondamm/cfmm"
)

func TestSwapDual_InsufficientLiquidity(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	// Borrowing 400 compresses yPrin from 1000 to ~658.6: ~341 must leave the pool.
	pool := cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 50}
	out, err := s.SwapDual(pool, cfmm.TradeRequest{Tau: 1, BondAmount: 400, Corridor: wide})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureInsufficientLiquidity, out.Failure)
	require.Zero(t, out.CashAmount)
	require.ErrorIs(t, out.Failure.Err(), cfmm.ErrInsufficientLiquidity)

	// The same trade passes on the single-reserve pool.
	single, err := s.Swap(cfmm.Pool{X: 1000, Y: 1000}, cfmm.TradeRequest{Tau: 1, BondAmount: 400, Corridor: wide})
	require.NoError(t, err)
	require.True(t, single.OK())
	require.InDelta(t, 658.6246549092145, single.YNew, 1e-8)
}

func TestSwapDual_CorridorReportedBeforeLiquidity(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	pool := cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 50}
	out, err := s.SwapDual(pool, cfmm.TradeRequest{
		Tau:        1,
		BondAmount: 400,
		Corridor:   cfmm.Corridor{PsiMin: 0.9, PsiMax: 1.1},
	})
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureRateOutOfBounds, out.Failure)
}

func TestSwapDual_InflowNeedsNoLiquidity(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	pool := cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 0}
	out, err := s.SwapDual(pool, cfmm.TradeRequest{Tau: 1, BondAmount: -400, Corridor: wide})
	require.NoError(t, err)
	require.True(t, out.OK())
	require.InDelta(t, 1443.855505344686, out.YPrinNew, 1e-8)
	require.InDelta(t, 443.855505344686, out.CashAmount, 1e-8)
	require.InDelta(t, 816.64481740594, out.XNew, 1e-8)
	require.Equal(t, out.YPrinNew-pool.YPrin, out.CashAmount)
}

func TestSwapDual_OutflowWithinLiquidity(t *testing.T) {
	t.Parallel()
	s := newSolver(t)
	req := cfmm.TradeRequest{Tau: 1, BondAmount: 100, Corridor: wide}

	out, err := s.SwapDual(cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 100}, req)
	require.NoError(t, err)
	require.True(t, out.OK())
	require.InDelta(t, -93.4505414561665, out.CashAmount, 1e-8)

	single, err := s.Swap(cfmm.Pool{X: 1000, Y: 1000}, req)
	require.NoError(t, err)
	require.Equal(t, single.XNew, out.XNew)
	require.Equal(t, single.YNew, out.YPrinNew)
	require.Equal(t, single.PsiNew, out.PsiNew)

	out, err = s.SwapDual(cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 93}, req)
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureInsufficientLiquidity, out.Failure)
}

func TestSwapDual_Settlement(t *testing.T) {
	t.Parallel()
	s := newSolver(t)
	req := cfmm.TradeRequest{Tau: 0, BondAmount: 100, Corridor: wide}

	out, err := s.SwapDual(cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 100}, req)
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Equal(t, 1100.0, out.XNew)
	require.Equal(t, 900.0, out.YPrinNew)
	require.Equal(t, -100.0, out.CashAmount)

	out, err = s.SwapDual(cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 99.99}, req)
	require.NoError(t, err)
	require.Equal(t, cfmm.FailureInsufficientLiquidity, out.Failure)

	out, err = s.SwapDual(cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: 0}, cfmm.TradeRequest{BondAmount: -250, Corridor: wide})
	require.NoError(t, err)
	require.True(t, out.OK())
	require.Equal(t, 250.0, out.CashAmount)
}

func TestSwapDual_InvalidLiquidity(t *testing.T) {
	t.Parallel()
	s := newSolver(t)

	for _, liq := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := s.SwapDual(cfmm.DualPool{X: 1000, YPrin: 1000, YLiq: liq}, cfmm.TradeRequest{Tau: 1, Corridor: wide})
		require.ErrorIs(t, err, cfmm.ErrInvalidParameter)
	}
}
