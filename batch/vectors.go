package batch

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/meenmo/bondamm/cfmm"
	"github.com/meenmo/bondamm/curve"
	"github.com/meenmo/bondamm/solvency"
	"github.com/meenmo/bondamm/utils"
	"github.com/meenmo/bondamm/wad"
)

// SwapVector is one single-reserve test vector. Tau is in seconds; every other
// field is a WAD integer. Numbers may be bare or quoted.
type SwapVector struct {
	Tau              decimal.Decimal `json:"tau"`
	BondAmountSigned decimal.Decimal `json:"bondAmountSigned"`
	X                decimal.Decimal `json:"X"`
	Y                decimal.Decimal `json:"y"`
	PsiMin           decimal.Decimal `json:"psiMin"`
	PsiMax           decimal.Decimal `json:"psiMax"`
}

// DualVector is one dual-reserve test vector.
type DualVector struct {
	Tau              decimal.Decimal `json:"tau"`
	BondAmountSigned decimal.Decimal `json:"bondAmountSigned"`
	X                decimal.Decimal `json:"X"`
	YPrin            decimal.Decimal `json:"yPrin"`
	YLiq             decimal.Decimal `json:"yLiq"`
	PsiMin           decimal.Decimal `json:"psiMin"`
	PsiMax           decimal.Decimal `json:"psiMax"`
}

// RateVector is one anchor-rate test vector. Tau and Lambda are in seconds; the
// betas are WAD integers.
type RateVector struct {
	Tau    decimal.Decimal `json:"tau"`
	Beta0  decimal.Decimal `json:"beta0"`
	Beta1  decimal.Decimal `json:"beta1"`
	Beta2  decimal.Decimal `json:"beta2"`
	Lambda decimal.Decimal `json:"lambda"`
}

// Solvency vector kinds.
const (
	SolvencyWeightedNet = "weightedNet"
	SolvencyBaseEquity  = "baseEquity"
)

// SolvencyVector is one solvency test case in plain reals. Kind selects the
// formula; an empty Kind is SolvencyWeightedNet. Weighted-net cases read Tau
// through EtaL, base-equity cases read the Equity fields.
type SolvencyVector struct {
	Kind string `json:"kind,omitempty"`

	Tau    float64 `json:"tau"`
	B      float64 `json:"b"`
	L      float64 `json:"l"`
	Lambda float64 `json:"lambda"`
	EtaB   float64 `json:"etaB"`
	EtaL   float64 `json:"etaL"`

	solvency.Equity
}

// Request converts v to solver inputs, reading reserves and bounds at c's scale.
func (v SwapVector) Request(c wad.Codec) (cfmm.Pool, cfmm.TradeRequest, error) {
	var fs [5]float64
	for i, d := range []decimal.Decimal{v.X, v.Y, v.BondAmountSigned, v.PsiMin, v.PsiMax} {
		f, err := c.DecimalToFloat(d)
		if err != nil {
			return cfmm.Pool{}, cfmm.TradeRequest{}, err
		}
		fs[i] = f
	}
	tau, err := years(v.Tau)
	if err != nil {
		return cfmm.Pool{}, cfmm.TradeRequest{}, errors.Wrap(err, "tau")
	}
	return cfmm.Pool{X: fs[0], Y: fs[1]}, cfmm.TradeRequest{
		Tau:        tau,
		BondAmount: fs[2],
		Corridor:   cfmm.Corridor{PsiMin: fs[3], PsiMax: fs[4]},
	}, nil
}

// Request converts v to solver inputs, reading reserves and bounds at c's scale.
func (v DualVector) Request(c wad.Codec) (cfmm.DualPool, cfmm.TradeRequest, error) {
	var fs [6]float64
	for i, d := range []decimal.Decimal{v.X, v.YPrin, v.YLiq, v.BondAmountSigned, v.PsiMin, v.PsiMax} {
		f, err := c.DecimalToFloat(d)
		if err != nil {
			return cfmm.DualPool{}, cfmm.TradeRequest{}, err
		}
		fs[i] = f
	}
	tau, err := years(v.Tau)
	if err != nil {
		return cfmm.DualPool{}, cfmm.TradeRequest{}, errors.Wrap(err, "tau")
	}
	return cfmm.DualPool{X: fs[0], YPrin: fs[1], YLiq: fs[2]}, cfmm.TradeRequest{
		Tau:        tau,
		BondAmount: fs[3],
		Corridor:   cfmm.Corridor{PsiMin: fs[4], PsiMax: fs[5]},
	}, nil
}

// Params converts v to curve parameters and a maturity in years.
func (v RateVector) Params(c wad.Codec) (curve.Params, float64, error) {
	var betas [3]float64
	for i, d := range []decimal.Decimal{v.Beta0, v.Beta1, v.Beta2} {
		f, err := c.DecimalToFloat(d)
		if err != nil {
			return curve.Params{}, 0, err
		}
		betas[i] = f
	}
	tau, err := years(v.Tau)
	if err != nil {
		return curve.Params{}, 0, errors.Wrap(err, "tau")
	}
	lambda, err := years(v.Lambda)
	if err != nil {
		return curve.Params{}, 0, errors.Wrap(err, "lambda")
	}
	return curve.Params{Beta0: betas[0], Beta1: betas[1], Beta2: betas[2], Lambda: lambda}, tau, nil
}

// years converts an integral, non-negative number of seconds.
func years(seconds decimal.Decimal) (float64, error) {
	i, err := wad.Integer(seconds)
	if err != nil {
		return 0, err
	}
	if i.Sign() < 0 || !i.IsInt64() {
		return 0, errors.Errorf("seconds %s out of range", i)
	}
	return utils.SecondsToYears(i.Int64()), nil
}

// DecodeVectors parses a JSON array of vectors, a single JSON object, or either of
// those hex-encoded (with or without 0x).
func DecodeVectors[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty input")
	}
	if trimmed[0] != '[' && trimmed[0] != '{' {
		decoded, err := wad.ParseHex(string(trimmed))
		if err != nil {
			return nil, errors.Wrap(err, "input is neither JSON nor hex-encoded JSON")
		}
		trimmed = bytes.TrimSpace(decoded)
	}
	return decodeJSON[T](trimmed)
}

func decodeJSON[T any](trimmed []byte) ([]T, error) {
	if len(trimmed) == 0 {
		return nil, errors.New("empty input")
	}
	switch trimmed[0] {
	case '[':
		var vs []T
		if err := json.Unmarshal(trimmed, &vs); err != nil {
			return nil, errors.Wrap(err, "parse JSON array")
		}
		return vs, nil
	case '{':
		var v T
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, errors.Wrap(err, "parse JSON object")
		}
		return []T{v}, nil
	default:
		return nil, errors.New("expected a JSON array or object")
	}
}

// PairJSON is the JSON rendering of a result tuple.
type PairJSON struct {
	First   decimal.Decimal `json:"first"`
	Second  decimal.Decimal `json:"second"`
	Failure string          `json:"failure,omitempty"`
}

// RenderPairs converts result tuples to JSON rows. When signedSecond is set the
// second word of a success is read as int256.
func RenderPairs(pairs []wad.Pair, signedSecond bool) ([]PairJSON, error) {
	rows := make([]PairJSON, len(pairs))
	for i := range pairs {
		p := &pairs[i]
		f, err := p.Failure()
		if err != nil {
			return nil, errors.Wrapf(err, "result %d", i)
		}
		second := p.Second.ToBig()
		if f == cfmm.FailureNone && signedSecond {
			second = wad.SignedBig(&p.Second)
		}
		rows[i] = PairJSON{
			First:  decimal.NewFromBigInt(p.First.ToBig(), 0),
			Second: decimal.NewFromBigInt(second, 0),
		}
		if f != cfmm.FailureNone {
			rows[i].Failure = f.String()
		}
	}
	return rows, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
