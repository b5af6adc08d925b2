package math

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krazyTry/lstpool-go/shared"
)

func TestFeeRatioApplyConservesAmount(t *testing.T) {
	rates := [][2]uint64{{0, 1}, {1, 1}, {1, 1000}, {3, 7}, {9999, 10_000}, {1, shared.U64Max}, {shared.U64Max - 1, shared.U64Max}}
	amounts := []uint64{0, 1, 2, 999, 1_000_000, 1 << 40, shared.U64Max}
	for _, rate := range rates {
		for _, rounding := range []shared.Rounding{shared.RoundingUp, shared.RoundingDown} {
			f, err := NewFeeRatio(rate[0], rate[1], rounding)
			require.NoError(t, err)
			for _, amount := range amounts {
				split, err := f.Apply(amount)
				if err != nil {
					t.Fatalf("apply %s to %d: %v", f, amount, err)
				}
				if split.Fee+split.Remainder != amount || split.Fee > amount {
					t.Fatalf("apply %s to %d: fee %d remainder %d", f, amount, split.Fee, split.Remainder)
				}
			}
		}
	}
}

func TestFeeRatioApplyRounding(t *testing.T) {
	ceil, err := NewFeeRatio(1, 1000, shared.RoundingUp)
	require.NoError(t, err)
	floor, err := NewFeeRatio(1, 1000, shared.RoundingDown)
	require.NoError(t, err)

	split, err := ceil.Apply(1_000_000)
	require.NoError(t, err)
	require.Equal(t, shared.FeeSplit{Fee: 1_000, Remainder: 999_000}, split)

	split, err = ceil.Apply(1_001)
	require.NoError(t, err)
	require.Equal(t, shared.FeeSplit{Fee: 2, Remainder: 999}, split)

	split, err = floor.Apply(1_001)
	require.NoError(t, err)
	require.Equal(t, shared.FeeSplit{Fee: 1, Remainder: 1_000}, split)

	var zero FeeRatio
	split, err = zero.Apply(42)
	require.NoError(t, err)
	require.Equal(t, shared.FeeSplit{Fee: 0, Remainder: 42}, split)
}

func TestFeeRatioFromFixed(t *testing.T) {
	quarter, err := FixedRatioFromFraction(1, 4)
	require.NoError(t, err)
	f, err := FeeRatioFromFixed(quarter, shared.RoundingDown)
	require.NoError(t, err)
	split, err := f.Apply(10)
	require.NoError(t, err)
	require.Equal(t, shared.FeeSplit{Fee: 2, Remainder: 8}, split)
}

func TestFeeRatioRejectsInvalid(t *testing.T) {
	_, err := NewFeeRatio(2, 1, shared.RoundingUp)
	require.ErrorIs(t, err, shared.ErrInvalidRate)
	_, err = NewFeeRatio(0, 0, shared.RoundingUp)
	require.ErrorIs(t, err, shared.ErrInvalidRate)
	_, err = FeeRatioFromBps(10_001, shared.RoundingUp)
	require.ErrorIs(t, err, shared.ErrInvalidRate)
	_, err = NewFeeRatioFromRatio(Ratio{Num: big.NewInt(-1), Den: big.NewInt(1)}, shared.RoundingUp)
	require.ErrorIs(t, err, shared.ErrInvalidRate)
}

// bruteReverse scans gross amounts for the smallest leaving >= remainder and
// the largest leaving <= remainder.
func bruteReverse(t *testing.T, f FeeRatio, remainder, limit uint64) shared.ValueRange {
	t.Helper()
	min, max := uint64(0), uint64(0)
	foundMin := false
	for a := uint64(0); a <= limit; a++ {
		split, err := f.Apply(a)
		require.NoError(t, err)
		if !foundMin && split.Remainder >= remainder {
			min, foundMin = a, true
		}
		if split.Remainder <= remainder {
			max = a
		}
	}
	require.True(t, foundMin)
	return shared.ValueRange{Min: min, Max: max}
}

func TestFeeRatioReverseFromRemainderMatchesBruteForce(t *testing.T) {
	for _, rate := range [][2]uint64{{0, 1}, {1, 10}, {3, 7}, {1, 1000}, {99, 100}} {
		for _, rounding := range []shared.Rounding{shared.RoundingUp, shared.RoundingDown} {
			f, err := NewFeeRatio(rate[0], rate[1], rounding)
			require.NoError(t, err)
			for r := uint64(0); r <= 40; r++ {
				got, err := f.ReverseFromRemainder(r)
				require.NoError(t, err)
				want := bruteReverse(t, f, r, 40*100+200)
				if got != want {
					t.Fatalf("%s reverse %d: got %+v want %+v", f, r, got, want)
				}
			}
		}
	}
}

func TestFeeRatioReverseFullFee(t *testing.T) {
	f, err := NewFeeRatio(1, 1, shared.RoundingUp)
	require.NoError(t, err)
	got, err := f.ReverseFromRemainder(0)
	require.NoError(t, err)
	require.Equal(t, shared.ValueRange{Min: 0, Max: shared.U64Max}, got)
	_, err = f.ReverseFromRemainder(1)
	require.ErrorIs(t, err, shared.ErrZeroValue)
}

func TestFeeRatioReverseOverflow(t *testing.T) {
	f, err := NewFeeRatio(1, 2, shared.RoundingUp)
	require.NoError(t, err)
	_, err = f.ReverseFromRemainder(shared.U64Max)
	require.ErrorIs(t, err, shared.ErrOverflow)

	got, err := f.ReverseFromRemainder(shared.U64Max / 2)
	require.NoError(t, err)
	require.Equal(t, shared.U64Max-1, got.Min)
	require.Equal(t, shared.U64Max, got.Max)
}

func TestReverseMulDivFloorMatchesBruteForce(t *testing.T) {
	for _, ratio := range [][2]uint64{{10, 9}, {9, 10}, {1, 1}, {7, 3}, {3, 7}} {
		for v := uint64(0); v <= 30; v++ {
			got, err := ReverseMulDivFloor(v, ratio[0], ratio[1])
			require.NoError(t, err)
			min, max, foundMin := uint64(0), uint64(0), false
			for n := uint64(0); n <= 200; n++ {
				out := n * ratio[0] / ratio[1]
				if !foundMin && out >= v {
					min, foundMin = n, true
				}
				if out <= v {
					max = n
				}
			}
			want := shared.ValueRange{Min: min, Max: max}
			if got != want {
				t.Fatalf("%v reverse %d: got %+v want %+v", ratio, v, got, want)
			}
		}
	}
	_, err := ReverseMulDivFloor(1, 0, 5)
	require.ErrorIs(t, err, shared.ErrZeroValue)
	_, err = ReverseMulDivFloor(1, 5, 0)
	require.ErrorIs(t, err, shared.ErrDivisionByZero)
}

func TestCheckedArithmetic(t *testing.T) {
	_, err := Add(shared.U64Max, 1)
	require.ErrorIs(t, err, shared.ErrOverflow)
	_, err = Sub(1, 2)
	require.ErrorIs(t, err, shared.ErrOverflow)
	require.Equal(t, uint64(0), SaturatingSub(1, 2))
	_, err = MulDivU64(shared.U64Max, 2, 1, shared.RoundingDown)
	require.ErrorIs(t, err, shared.ErrOverflow)
	got, err := MulDivU64(10, 1, 3, shared.RoundingUp)
	require.NoError(t, err)
	require.Equal(t, uint64(4), got)
}
