package cfmm

import (
	"math"

	"github.com/go-faster/errors"
)

// SwapDual computes a trade against a pool whose cash side is split into principal
// and free liquidity. The invariant runs on YPrin exactly as Swap runs on Y.
//
// Checks run in the fixed order invariant feasibility, rate corridor, liquidity;
// the first violated check is the reported Failure. A trade that shrinks YPrin pays
// the difference out of YLiq and is rejected if YLiq cannot cover it. No cash amount
// is produced for a rejected trade.
func (s *Solver) SwapDual(pool DualPool, req TradeRequest) (DualOutcome, error) {
	if err := validateRequest(req); err != nil {
		return DualOutcome{}, err
	}
	if err := validateReserve("X", pool.X); err != nil {
		return DualOutcome{}, err
	}
	if err := validateReserve("yPrin", pool.YPrin); err != nil {
		return DualOutcome{}, err
	}
	if math.IsNaN(pool.YLiq) || math.IsInf(pool.YLiq, 0) || pool.YLiq < 0 {
		return DualOutcome{}, errors.Wrapf(ErrInvalidParameter, "yLiq must be finite and non-negative, got %v", pool.YLiq)
	}

	sol, err := s.solve(pool.X, pool.YPrin, req)
	if err != nil {
		return DualOutcome{}, err
	}
	if sol.failure != FailureNone {
		return DualOutcome{Failure: sol.failure}, nil
	}

	if sol.yNew < pool.YPrin {
		outflow := pool.YPrin - sol.yNew
		if pool.YLiq < outflow {
			return DualOutcome{Failure: FailureInsufficientLiquidity}, nil
		}
	}

	cash := sol.yNew - pool.YPrin
	if req.Tau == 0 {
		cash = -req.BondAmount
	}
	return DualOutcome{
		XNew:         sol.XNew,
		YPrinNew:     sol.yNew,
		CashAmount:   cash,
		PsiNew:       sol.psiNew,
		XDeflatedNew: sol.xNew,
	}, nil
}
