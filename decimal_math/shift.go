package decimal_math

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Lsh shifts the integer part of x left by n bits.
func Lsh(x decimal.Decimal, n uint) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).Lsh(x.BigInt(), n), 0)
}

// Rsh shifts the integer part of x right by n bits.
func Rsh(x decimal.Decimal, n uint) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).Rsh(x.BigInt(), n), 0)
}

// Q64ToDecimal converts a Q64 fixed point numerator to a decimal. A negative
// decimalPlaces keeps full precision.
func Q64ToDecimal(num *big.Int, decimalPlaces int32) decimal.Decimal {
	if num == nil {
		return decimal.Zero
	}
	out := decimal.NewFromBigInt(num, 0).Div(Lsh(decimal.NewFromInt(1), 64))
	if decimalPlaces >= 0 {
		return out.Round(decimalPlaces)
	}
	return out
}

// DecimalToQ64 returns floor(num * 2^64).
func DecimalToQ64(num decimal.Decimal) *big.Int {
	return num.Mul(Lsh(decimal.NewFromInt(1), 64)).Floor().BigInt()
}
