package wad

import (
	"github.com/go-faster/errors"
	"github.com/holiman/uint256"

	"github.com/meenmo/bondamm/cfmm"
)

// Pair is one (first, second) result tuple of the oracle wire format. A failure is
// encoded as first = 2^256 − 1 and second = the error code.
type Pair struct {
	First  uint256.Int
	Second uint256.Int
}

// FailurePair encodes a rejected trade.
func FailurePair(f cfmm.Failure) Pair {
	var p Pair
	p.First.Set(MaxUint256)
	p.Second.SetUint64(f.Code())
	return p
}

// Failure reports the failure carried by p, or cfmm.FailureNone.
func (p Pair) Failure() (cfmm.Failure, error) {
	if !p.First.Eq(MaxUint256) {
		return cfmm.FailureNone, nil
	}
	if !p.Second.IsUint64() {
		return cfmm.FailureNone, errors.New("wad: sentinel error code overflows uint64")
	}
	return cfmm.FailureFromCode(p.Second.Uint64())
}

// EncodeOutcome is Default.EncodeOutcome.
func EncodeOutcome(o cfmm.Outcome) (Pair, error) { return Default.EncodeOutcome(o) }

// EncodeDualOutcome is Default.EncodeDualOutcome.
func EncodeDualOutcome(o cfmm.DualOutcome) (Pair, error) { return Default.EncodeDualOutcome(o) }

// DecodeOutcome is Default.DecodeOutcome.
func DecodeOutcome(p Pair) (cfmm.Outcome, error) { return Default.DecodeOutcome(p) }

// DecodeDualOutcome is Default.DecodeDualOutcome.
func DecodeDualOutcome(p Pair) (cfmm.DualOutcome, error) { return Default.DecodeDualOutcome(p) }

// EncodeOutcome maps a single-reserve outcome to (XNew, yNew) in fixed point.
func (c Codec) EncodeOutcome(o cfmm.Outcome) (Pair, error) {
	if !o.OK() {
		return FailurePair(o.Failure), nil
	}
	first, err := c.floatWord(o.XNew, false)
	if err != nil {
		return Pair{}, errors.Wrap(err, "XNew")
	}
	second, err := c.floatWord(o.YNew, false)
	if err != nil {
		return Pair{}, errors.Wrap(err, "yNew")
	}
	return Pair{First: *first, Second: *second}, nil
}

// EncodeDualOutcome maps a dual-reserve outcome to (XNew, cashAmountSigned) in fixed
// point, the cash amount as a two's-complement int256.
func (c Codec) EncodeDualOutcome(o cfmm.DualOutcome) (Pair, error) {
	if !o.OK() {
		return FailurePair(o.Failure), nil
	}
	first, err := c.floatWord(o.XNew, false)
	if err != nil {
		return Pair{}, errors.Wrap(err, "XNew")
	}
	second, err := c.floatWord(o.CashAmount, true)
	if err != nil {
		return Pair{}, errors.Wrap(err, "cashAmount")
	}
	return Pair{First: *first, Second: *second}, nil
}

// DecodeOutcome is the inverse of EncodeOutcome, up to truncation.
func (c Codec) DecodeOutcome(p Pair) (cfmm.Outcome, error) {
	f, err := p.Failure()
	if err != nil {
		return cfmm.Outcome{}, err
	}
	if f != cfmm.FailureNone {
		return cfmm.Outcome{Failure: f}, nil
	}
	return cfmm.Outcome{
		XNew: c.ToFloat(p.First.ToBig()),
		YNew: c.ToFloat(p.Second.ToBig()),
	}, nil
}

// DecodeDualOutcome is the inverse of EncodeDualOutcome, up to truncation.
func (c Codec) DecodeDualOutcome(p Pair) (cfmm.DualOutcome, error) {
	f, err := p.Failure()
	if err != nil {
		return cfmm.DualOutcome{}, err
	}
	if f != cfmm.FailureNone {
		return cfmm.DualOutcome{Failure: f}, nil
	}
	return cfmm.DualOutcome{
		XNew:       c.ToFloat(p.First.ToBig()),
		CashAmount: c.ToFloat(SignedBig(&p.Second)),
	}, nil
}

func (c Codec) floatWord(f float64, signed bool) (*uint256.Int, error) {
	v, err := c.FromFloat(f)
	if err != nil {
		return nil, err
	}
	if signed {
		return Int256(v)
	}
	return Uint256(v)
}
