package math

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/lstpool-go/shared"
)

// Ratio is a non-negative rational Num / Den.
type Ratio struct {
	Num *big.Int
	Den *big.Int
}

func NewRatio(num, den uint64) Ratio {
	return Ratio{Num: new(big.Int).SetUint64(num), Den: new(big.Int).SetUint64(den)}
}

func (r Ratio) String() string {
	return fmt.Sprintf("%v/%v", r.Num, r.Den)
}

// FeeRatio splits an amount into a fee and a remainder. RoundingUp rounds the
// fee up, RoundingDown rounds it down.
type FeeRatio struct {
	ratio    Ratio
	rounding shared.Rounding
}

// NewFeeRatioFromRatio validates 0 <= num <= den, den > 0.
func NewFeeRatioFromRatio(ratio Ratio, rounding shared.Rounding) (FeeRatio, error) {
	if ratio.Num == nil || ratio.Den == nil {
		return FeeRatio{}, fmt.Errorf("%w: nil fee ratio", shared.ErrInvalidRate)
	}
	if ratio.Den.Sign() <= 0 || ratio.Num.Sign() < 0 || ratio.Num.Cmp(ratio.Den) > 0 {
		return FeeRatio{}, fmt.Errorf("%w: fee ratio %s", shared.ErrInvalidRate, ratio)
	}
	return FeeRatio{
		ratio:    Ratio{Num: new(big.Int).Set(ratio.Num), Den: new(big.Int).Set(ratio.Den)},
		rounding: rounding,
	}, nil
}

func NewFeeRatio(num, den uint64, rounding shared.Rounding) (FeeRatio, error) {
	return NewFeeRatioFromRatio(NewRatio(num, den), rounding)
}

func FeeRatioFromBps(bps uint16, rounding shared.Rounding) (FeeRatio, error) {
	return NewFeeRatio(uint64(bps), shared.BasisPointMax, rounding)
}

func FeeRatioFromNanos(nanos uint32, rounding shared.Rounding) (FeeRatio, error) {
	return NewFeeRatio(uint64(nanos), shared.NanosDenominator, rounding)
}

func FeeRatioFromFixed(r FixedRatio, rounding shared.Rounding) (FeeRatio, error) {
	return NewFeeRatioFromRatio(r.Ratio(), rounding)
}

func (f FeeRatio) num() *big.Int {
	if f.ratio.Num == nil {
		return new(big.Int)
	}
	return f.ratio.Num
}

func (f FeeRatio) den() *big.Int {
	if f.ratio.Den == nil {
		return big.NewInt(1)
	}
	return f.ratio.Den
}

func (f FeeRatio) Rounding() shared.Rounding {
	return f.rounding
}

func (f FeeRatio) IsZero() bool {
	return f.num().Sign() == 0
}

func (f FeeRatio) String() string {
	return fmt.Sprintf("%v/%v(%s)", f.num(), f.den(), f.rounding)
}

// Apply splits amount so that Fee + Remainder == amount.
func (f FeeRatio) Apply(amount uint64) (shared.FeeSplit, error) {
	fee, err := MulDiv(new(big.Int).SetUint64(amount), f.num(), f.den(), f.rounding)
	if err != nil {
		return shared.FeeSplit{}, err
	}
	feeU64, err := ToU64(fee)
	if err != nil {
		return shared.FeeSplit{}, err
	}
	if feeU64 > amount {
		return shared.FeeSplit{}, fmt.Errorf("fee %d above amount %d: %w", feeU64, amount, shared.ErrRounding)
	}
	return shared.FeeSplit{Fee: feeU64, Remainder: amount - feeU64}, nil
}

// ReverseFromRemainder returns the gross amounts that leave remainder after
// the fee. Min is the smallest gross leaving at least remainder, Max the
// largest gross leaving at most remainder.
func (f FeeRatio) ReverseFromRemainder(remainder uint64) (shared.ValueRange, error) {
	keep := new(big.Int).Sub(f.den(), f.num())
	r := new(big.Int).SetUint64(remainder)
	if keep.Sign() == 0 {
		if remainder == 0 {
			return shared.ValueRange{Min: 0, Max: shared.U64Max}, nil
		}
		return shared.ValueRange{}, fmt.Errorf("%w: full fee leaves no remainder for %d", shared.ErrZeroValue, remainder)
	}

	var lo, hi *big.Int
	var err error
	switch f.rounding {
	case shared.RoundingUp:
		// remainder(a) = floor(a * keep / den)
		lo, err = MulDiv(r, f.den(), keep, shared.RoundingUp)
		if err != nil {
			return shared.ValueRange{}, err
		}
		next := new(big.Int).Add(r, big.NewInt(1))
		hi, err = MulDiv(next, f.den(), keep, shared.RoundingUp)
		if err != nil {
			return shared.ValueRange{}, err
		}
		hi.Sub(hi, big.NewInt(1))
	default:
		// remainder(a) = ceil(a * keep / den)
		if remainder == 0 {
			lo = new(big.Int)
		} else {
			prev := new(big.Int).Sub(r, big.NewInt(1))
			lo, err = MulDiv(prev, f.den(), keep, shared.RoundingDown)
			if err != nil {
				return shared.ValueRange{}, err
			}
			lo.Add(lo, big.NewInt(1))
		}
		hi, err = MulDiv(r, f.den(), keep, shared.RoundingDown)
		if err != nil {
			return shared.ValueRange{}, err
		}
	}
	return clampRange(lo, hi)
}

// clampRange narrows a big range to u64. A minimum above u64 means no u64
// amount qualifies.
func clampRange(lo, hi *big.Int) (shared.ValueRange, error) {
	min, err := ToU64(lo)
	if err != nil {
		return shared.ValueRange{}, err
	}
	if hi.Cmp(shared.U64MaxBig) > 0 {
		return shared.ValueRange{Min: min, Max: shared.U64Max}, nil
	}
	return shared.ValueRange{Min: min, Max: hi.Uint64()}, nil
}
