package math

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/lstpool-go/shared"
)

// MulDiv returns x*y/denominator rounded as requested.
func MulDiv(x, y, denominator *big.Int, rounding shared.Rounding) (*big.Int, error) {
	if denominator.Sign() == 0 {
		return nil, shared.ErrDivisionByZero
	}
	mul := new(big.Int).Mul(x, y)
	div, mod := new(big.Int).QuoRem(mul, denominator, new(big.Int))
	if rounding == shared.RoundingUp && mod.Sign() != 0 {
		return div.Add(div, big.NewInt(1)), nil
	}
	return div, nil
}

// MulDivU64 is MulDiv over u64 operands with a checked u64 result.
func MulDivU64(x, y, denominator uint64, rounding shared.Rounding) (uint64, error) {
	out, err := MulDiv(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y), new(big.Int).SetUint64(denominator), rounding)
	if err != nil {
		return 0, err
	}
	return ToU64(out)
}

// ToU64 narrows v, failing with ErrOverflow outside [0, MaxUint64].
func ToU64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 {
		return 0, fmt.Errorf("negative %s: %w", v, shared.ErrOverflow)
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%s exceeds u64: %w", v, shared.ErrOverflow)
	}
	return v.Uint64(), nil
}

func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, fmt.Errorf("%d + %d: %w", a, b, shared.ErrOverflow)
	}
	return sum, nil
}

func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("%d - %d: %w", a, b, shared.ErrOverflow)
	}
	return a - b, nil
}

func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// ReverseMulDivFloor inverts value = floor(n * num / den). Min is the smallest
// n mapping to at least value, Max the largest n mapping to at most value.
func ReverseMulDivFloor(value, num, den uint64) (shared.ValueRange, error) {
	if den == 0 {
		return shared.ValueRange{}, shared.ErrDivisionByZero
	}
	if num == 0 {
		if value == 0 {
			return shared.ValueRange{Min: 0, Max: shared.U64Max}, nil
		}
		return shared.ValueRange{}, fmt.Errorf("%w: zero ratio cannot reach %d", shared.ErrZeroValue, value)
	}
	n, d := new(big.Int).SetUint64(num), new(big.Int).SetUint64(den)
	v := new(big.Int).SetUint64(value)
	lo, err := MulDiv(v, d, n, shared.RoundingUp)
	if err != nil {
		return shared.ValueRange{}, err
	}
	hi, err := MulDiv(v.Add(v, big.NewInt(1)), d, n, shared.RoundingUp)
	if err != nil {
		return shared.ValueRange{}, err
	}
	return clampRange(lo, hi.Sub(hi, big.NewInt(1)))
}
