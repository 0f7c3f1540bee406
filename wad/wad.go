// Package wad converts between the fixed-point integers used at the oracle
// boundary (18 decimals unless configured otherwise) and the float64 arithmetic
// of the solver.
package wad

import (
	"math"
	"math/big"

	"github.com/go-faster/errors"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// DefaultDecimals is the WAD exponent: 1.0 is carried as 10^18.
const DefaultDecimals = 18

// MaxDecimals keeps 1.0 representable in a uint256 word.
const MaxDecimals = 77

var (
	// One is 1.0 at the default scale.
	One = decimal.New(1, DefaultDecimals)

	// MaxUint256 is 2^256 − 1, the failure sentinel of the first result word.
	MaxUint256 = new(uint256.Int).SetAllOne()

	minInt256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	maxInt256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
)

var (
	// ErrNotInteger is returned when a WAD value carries a fractional part.
	ErrNotInteger = errors.New("wad: value is not an integer")
	// ErrInvalidDecimals is returned for a scale outside [0, MaxDecimals].
	ErrInvalidDecimals = errors.New("wad: invalid decimals")
)

// Codec converts between fixed-point integers with Decimals fractional digits and
// float64. The zero value has no fractional digits.
type Codec struct {
	Decimals int
}

// Default is the 18-decimal WAD codec of the oracle wire format.
var Default = Codec{Decimals: DefaultDecimals}

// NewCodec returns a codec for the given number of fractional digits.
func NewCodec(decimals int) (Codec, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return Codec{}, errors.Wrapf(ErrInvalidDecimals, "%d not in [0, %d]", decimals, MaxDecimals)
	}
	return Codec{Decimals: decimals}, nil
}

// One is 1.0 at the codec's scale.
func (c Codec) One() decimal.Decimal {
	return decimal.New(1, int32(c.Decimals))
}

func (c Codec) scale() float64 {
	return math.Pow10(c.Decimals)
}

// ToFloat converts a fixed-point integer to a real: the integer is rounded to the
// nearest float64 first and then divided by 10^Decimals.
func (c Codec) ToFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f / c.scale()
}

// DecimalToFloat is ToFloat for an integral decimal.
func (c Codec) DecimalToFloat(d decimal.Decimal) (float64, error) {
	i, err := Integer(d)
	if err != nil {
		return 0, err
	}
	return c.ToFloat(i), nil
}

// FromFloat scales f by 10^Decimals in float64 and truncates toward zero.
func (c Codec) FromFloat(f float64) (*big.Int, error) {
	scaled := f * c.scale()
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return nil, errors.Errorf("wad: cannot encode %v", f)
	}
	i, _ := big.NewFloat(scaled).Int(nil)
	return i, nil
}

// FromDecimal converts a human-readable decimal (1.5) to fixed point, truncating
// digits beyond the codec's scale.
func (c Codec) FromDecimal(d decimal.Decimal) *big.Int {
	return d.Shift(int32(c.Decimals)).Truncate(0).BigInt()
}

// ToFloat is Default.ToFloat.
func ToFloat(v *big.Int) float64 { return Default.ToFloat(v) }

// DecimalToFloat is Default.DecimalToFloat.
func DecimalToFloat(d decimal.Decimal) (float64, error) { return Default.DecimalToFloat(d) }

// FromFloat is Default.FromFloat.
func FromFloat(f float64) (*big.Int, error) { return Default.FromFloat(f) }

// FromDecimal is Default.FromDecimal.
func FromDecimal(d decimal.Decimal) *big.Int { return Default.FromDecimal(d) }

// Integer returns d as a big integer, rejecting fractional values.
func Integer(d decimal.Decimal) (*big.Int, error) {
	if !d.Truncate(0).Equal(d) {
		return nil, errors.Wrapf(ErrNotInteger, "%s", d.String())
	}
	return d.BigInt(), nil
}

// Uint256 converts a non-negative integer below 2^256 to a word.
func Uint256(v *big.Int) (*uint256.Int, error) {
	if v.Sign() < 0 {
		return nil, errors.Errorf("wad: negative value %s for uint256", v)
	}
	w, overflow := uint256.FromBig(v)
	if overflow {
		return nil, errors.Errorf("wad: %s overflows uint256", v)
	}
	return w, nil
}

// Int256 converts an integer in [−2^255, 2^255) to its two's-complement word.
func Int256(v *big.Int) (*uint256.Int, error) {
	if v.Cmp(minInt256) < 0 || v.Cmp(maxInt256) > 0 {
		return nil, errors.Errorf("wad: %s overflows int256", v)
	}
	w, _ := uint256.FromBig(new(big.Int).Abs(v))
	if v.Sign() < 0 {
		w.Neg(w)
	}
	return w, nil
}

// SignedBig interprets a word as a two's-complement int256.
func SignedBig(w *uint256.Int) *big.Int {
	if w.Sign() >= 0 {
		return w.ToBig()
	}
	abs := new(uint256.Int).Neg(w)
	return new(big.Int).Neg(abs.ToBig())
}
