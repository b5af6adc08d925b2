package decimal_math

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of decimal places used by the series
// expansions below. Q64 values need ~20 significant digits.
const DefaultPrecision int32 = 40

// Root returns x^(1/n) for x > 0 through exp(ln(x)/n).
func Root(x decimal.Decimal, n uint64, precision int32) (decimal.Decimal, error) {
	if n == 0 {
		return decimal.Zero, errors.New("zeroth root")
	}
	if !x.IsPositive() {
		return decimal.Zero, fmt.Errorf("root of non-positive %s", x)
	}
	if n == 1 || x.Equal(decimal.NewFromInt(1)) {
		return x, nil
	}
	ln, err := x.Ln(precision)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ln %s: %w", x, err)
	}
	exponent := ln.DivRound(decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0), precision)
	out, err := exponent.ExpTaylor(precision)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exp %s: %w", exponent, err)
	}
	return out, nil
}
