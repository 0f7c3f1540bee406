package batch

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/holiman/uint256"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/bondamm/cfmm"
	"github.com/meenmo/bondamm/metrics"
	"github.com/meenmo/bondamm/solvency"
	"github.com/meenmo/bondamm/wad"
)

const defaultWorkers = 8

// Runner evaluates batches of independent vectors. Vectors share nothing, so they
// are evaluated in parallel; results keep input order.
type Runner struct {
	solver  *cfmm.Solver
	log     *zap.Logger
	metrics *metrics.Metrics
	workers int
	codec   wad.Codec
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithMetrics records outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithCodec sets the fixed-point scale of vector inputs and results. The default is
// wad.Default.
func WithCodec(c wad.Codec) Option {
	return func(r *Runner) { r.codec = c }
}

// WithWorkers bounds the number of concurrent evaluations.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func NewRunner(solver *cfmm.Solver, opts ...Option) *Runner {
	r := &Runner{
		solver:  solver,
		log:     zap.NewNop(),
		workers: defaultWorkers,
		codec:   wad.Default,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Swaps evaluates single-reserve vectors and returns their (XNew, yNew) tuples.
// Malformed vectors abort the batch with an error naming the vector index.
func (r *Runner) Swaps(ctx context.Context, vectors []SwapVector) ([]wad.Pair, error) {
	return run(ctx, r, metrics.VariantSingle, vectors, func(v SwapVector) (wad.Pair, cfmm.Failure, error) {
		pool, req, err := v.Request(r.codec)
		if err != nil {
			return wad.Pair{}, 0, err
		}
		out, err := r.solver.Swap(pool, req)
		if err != nil {
			return wad.Pair{}, 0, err
		}
		p, err := r.codec.EncodeOutcome(out)
		return p, out.Failure, err
	})
}

// Duals evaluates dual-reserve vectors and returns their (XNew, cashAmountSigned) tuples.
func (r *Runner) Duals(ctx context.Context, vectors []DualVector) ([]wad.Pair, error) {
	return run(ctx, r, metrics.VariantDual, vectors, func(v DualVector) (wad.Pair, cfmm.Failure, error) {
		pool, req, err := v.Request(r.codec)
		if err != nil {
			return wad.Pair{}, 0, err
		}
		out, err := r.solver.SwapDual(pool, req)
		if err != nil {
			return wad.Pair{}, 0, err
		}
		p, err := r.codec.EncodeDualOutcome(out)
		return p, out.Failure, err
	})
}

func run[T any](
	ctx context.Context,
	r *Runner,
	variant string,
	vectors []T,
	eval func(T) (wad.Pair, cfmm.Failure, error),
) ([]wad.Pair, error) {
	start := time.Now()
	out := make([]wad.Pair, len(vectors))
	failures := make([]cfmm.Failure, len(vectors))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range vectors {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, f, err := eval(vectors[i])
			if err != nil {
				return errors.Wrapf(err, "vector %d", i)
			}
			out[i], failures[i] = p, f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Error("batch aborted", zap.String("variant", variant), zap.Error(err))
		return nil, err
	}

	rejected := 0
	for i, f := range failures {
		r.metrics.ObserveOutcome(variant, f)
		if f != cfmm.FailureNone {
			rejected++
			r.log.Debug("trade rejected",
				zap.String("variant", variant),
				zap.Int("index", i),
				zap.Stringer("failure", f))
		}
	}
	r.metrics.ObserveBatch(variant, time.Since(start))
	r.log.Info("batch evaluated",
		zap.String("variant", variant),
		zap.Int("vectors", len(vectors)),
		zap.Int("rejected", rejected),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// Rates evaluates anchor-rate vectors and returns r* as int256 WAD words.
func (r *Runner) Rates(ctx context.Context, vectors []RateVector) ([]uint256.Int, error) {
	start := time.Now()
	out := make([]uint256.Int, len(vectors))
	errs := make([]error, len(vectors))

	it := iter.Iterator[RateVector]{MaxGoroutines: r.workers}
	it.ForEachIdx(vectors, func(i int, v *RateVector) {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			return
		}
		w, err := rateWord(r.codec, *v)
		if err != nil {
			errs[i] = errors.Wrapf(err, "vector %d", i)
			return
		}
		out[i] = *w
	})
	for _, err := range errs {
		if err != nil {
			r.log.Error("batch aborted", zap.String("variant", metrics.VariantRate), zap.Error(err))
			return nil, err
		}
	}

	r.metrics.ObserveRates(len(vectors))
	r.metrics.ObserveBatch(metrics.VariantRate, time.Since(start))
	r.log.Info("batch evaluated",
		zap.String("variant", metrics.VariantRate),
		zap.Int("vectors", len(vectors)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func rateWord(c wad.Codec, v RateVector) (*uint256.Int, error) {
	params, tau, err := v.Params(c)
	if err != nil {
		return nil, err
	}
	rate, err := params.Rate(tau)
	if err != nil {
		return nil, err
	}
	scaled, err := c.FromFloat(rate)
	if err != nil {
		return nil, err
	}
	return wad.Int256(scaled)
}

// SolvencyResult is the value of one SolvencyVector.
type SolvencyResult struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// Solvency evaluates solvency vectors sequentially.
func (r *Runner) Solvency(vectors []SolvencyVector) ([]SolvencyResult, error) {
	out := make([]SolvencyResult, len(vectors))
	for i, v := range vectors {
		res, err := evalSolvency(v)
		if err != nil {
			return nil, errors.Wrapf(err, "vector %d", i)
		}
		out[i] = res
	}
	r.log.Info("batch evaluated", zap.String("variant", "solvency"), zap.Int("vectors", len(vectors)))
	return out, nil
}

func evalSolvency(v SolvencyVector) (SolvencyResult, error) {
	switch v.Kind {
	case "", SolvencyWeightedNet:
		if !finite(v.B) || !finite(v.L) {
			return SolvencyResult{}, errors.New("exposures must be finite")
		}
		p := solvency.Params{Lambda: v.Lambda, EtaB: v.EtaB, EtaL: v.EtaL}
		net, err := p.WeightedNet(v.Tau, v.B, v.L)
		if err != nil {
			return SolvencyResult{}, err
		}
		return SolvencyResult{Kind: SolvencyWeightedNet, Value: net}, nil
	case SolvencyBaseEquity:
		e := v.Equity
		for _, f := range []float64{e.YLiq, e.YPnl, e.YVault, e.WVault, e.SPast} {
			if !finite(f) {
				return SolvencyResult{}, errors.New("equity components must be finite")
			}
		}
		return SolvencyResult{Kind: SolvencyBaseEquity, Value: e.Base()}, nil
	default:
		return SolvencyResult{}, errors.Errorf("unknown solvency kind %q", v.Kind)
	}
}
