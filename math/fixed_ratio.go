package math

import (
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/lstpool-go/decimal_math"
	"github.com/krazyTry/lstpool-go/shared"
	"github.com/krazyTry/lstpool-go/u128"
)

// FixedRatio is a value in [0, 1] stored as a Q0.64 numerator over 2^64.
// 1.0 is representable, so the numerator is kept wide.
type FixedRatio struct {
	num *big.Int
}

var (
	ZeroRatio = FixedRatio{num: big.NewInt(0)}
	OneRatio  = FixedRatio{num: new(big.Int).Set(shared.OneQ64)}
)

// NewFixedRatio validates a raw Q0.64 numerator.
func NewFixedRatio(num *big.Int) (FixedRatio, error) {
	if num == nil || num.Sign() < 0 || num.Cmp(shared.OneQ64) > 0 {
		return FixedRatio{}, fmt.Errorf("%w: fixed ratio numerator %v outside [0, 2^64]", shared.ErrInvalidRate, num)
	}
	return FixedRatio{num: new(big.Int).Set(num)}, nil
}

func FixedRatioFromUint128(raw binary.Uint128) (FixedRatio, error) {
	return NewFixedRatio(u128.ToBig(raw))
}

// FixedRatioFromFraction returns floor(num * 2^64 / den).
func FixedRatioFromFraction(num, den uint64) (FixedRatio, error) {
	if den == 0 {
		return FixedRatio{}, shared.ErrDivisionByZero
	}
	if num > den {
		return FixedRatio{}, fmt.Errorf("%w: %d/%d exceeds one", shared.ErrInvalidRate, num, den)
	}
	q, err := MulDiv(new(big.Int).SetUint64(num), shared.OneQ64, new(big.Int).SetUint64(den), shared.RoundingDown)
	if err != nil {
		return FixedRatio{}, err
	}
	return FixedRatio{num: q}, nil
}

// FixedRatioFromDecimal floors d into Q0.64.
func FixedRatioFromDecimal(d decimal.Decimal) (FixedRatio, error) {
	return NewFixedRatio(decimal_math.DecimalToQ64(d))
}

func (r FixedRatio) n() *big.Int {
	if r.num == nil {
		return new(big.Int)
	}
	return r.num
}

// Num returns a copy of the raw numerator.
func (r FixedRatio) Num() *big.Int {
	return new(big.Int).Set(r.n())
}

func (r FixedRatio) IsZero() bool {
	return r.n().Sign() == 0
}

func (r FixedRatio) IsOne() bool {
	return r.n().Cmp(shared.OneQ64) == 0
}

func (r FixedRatio) Cmp(o FixedRatio) int {
	return r.n().Cmp(o.n())
}

// Mul floors the product: (a*b) >> 64.
func (r FixedRatio) Mul(o FixedRatio) FixedRatio {
	p := new(big.Int).Mul(r.n(), o.n())
	return FixedRatio{num: p.Rsh(p, shared.ScaleOffset)}
}

// MulRound rounds the product to nearest: (a*b + 2^63) >> 64.
func (r FixedRatio) MulRound(o FixedRatio) FixedRatio {
	p := new(big.Int).Mul(r.n(), o.n())
	p.Add(p, shared.HalfQ64)
	return FixedRatio{num: p.Rsh(p, shared.ScaleOffset)}
}

// Pow raises r to exp by repeated squaring with flooring multiplication.
// Results never increase with exp; any base below one reaches exactly zero.
func (r FixedRatio) Pow(exp uint64) FixedRatio {
	if exp == 0 || r.IsOne() {
		return OneRatio
	}
	if r.IsZero() {
		return ZeroRatio
	}
	result := OneRatio
	base := r
	for {
		if exp&1 == 1 {
			result = result.Mul(base)
		}
		exp >>= 1
		if exp == 0 || result.IsZero() {
			return result
		}
		base = base.Mul(base)
		if base.IsZero() {
			// a bit of exp is still set, so result is multiplied by zero
			return ZeroRatio
		}
	}
}

// Complement returns 1 - r.
func (r FixedRatio) Complement() FixedRatio {
	return FixedRatio{num: new(big.Int).Sub(shared.OneQ64, r.n())}
}

// Ratio is the lossless rational form num / 2^64.
func (r FixedRatio) Ratio() Ratio {
	return Ratio{Num: r.Num(), Den: new(big.Int).Set(shared.OneQ64)}
}

// Uint128 returns the raw Q64 numerator. It panics if the numerator is out of
// [0, 2^64], which no constructor allows.
func (r FixedRatio) Uint128() binary.Uint128 {
	out, err := u128.FromBig(r.n())
	if err != nil {
		panic(fmt.Sprintf("fixed ratio numerator %s out of range: %v", r.n(), err))
	}
	return out
}

func (r FixedRatio) Decimal() decimal.Decimal {
	return decimal_math.Q64ToDecimal(r.n(), -1)
}

func (r FixedRatio) String() string {
	return decimal_math.Q64ToDecimal(r.n(), 20).String()
}
