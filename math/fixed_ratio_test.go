package math

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krazyTry/lstpool-go/shared"
)

func ratioFromRaw(t *testing.T, raw *big.Int) FixedRatio {
	t.Helper()
	r, err := NewFixedRatio(raw)
	require.NoError(t, err)
	return r
}

func sampleRatios(t *testing.T) []FixedRatio {
	rng := rand.New(rand.NewSource(7))
	out := []FixedRatio{
		ZeroRatio,
		OneRatio,
		ratioFromRaw(t, big.NewInt(1)),
		ratioFromRaw(t, shared.HalfQ64),
		ratioFromRaw(t, new(big.Int).Sub(shared.OneQ64, big.NewInt(1))),
	}
	for i := 0; i < 64; i++ {
		out = append(out, ratioFromRaw(t, new(big.Int).SetUint64(rng.Uint64())))
	}
	return out
}

func TestFixedRatioMulNeverExceedsOperands(t *testing.T) {
	ratios := sampleRatios(t)
	for _, a := range ratios {
		for _, b := range ratios {
			for _, p := range []FixedRatio{a.Mul(b), a.MulRound(b)} {
				if p.Cmp(a) > 0 || p.Cmp(b) > 0 {
					t.Fatalf("product %s of %s and %s exceeds an operand", p, a, b)
				}
			}
		}
	}
}

func TestFixedRatioMulRounding(t *testing.T) {
	// 3/2^64 * 1/2 = 1.5 ulp
	a := ratioFromRaw(t, big.NewInt(3))
	half := ratioFromRaw(t, shared.HalfQ64)
	require.Equal(t, int64(1), a.Mul(half).Num().Int64())
	require.Equal(t, int64(2), a.MulRound(half).Num().Int64())
}

func TestFixedRatioPow(t *testing.T) {
	for _, r := range sampleRatios(t) {
		require.True(t, r.Pow(0).IsOne(), "pow(%s, 0)", r)
	}
	for _, n := range []uint64{1, 2, 3, 1000, shared.U64Max} {
		require.True(t, OneRatio.Pow(n).IsOne(), "pow(1, %d)", n)
	}

	half := ratioFromRaw(t, shared.HalfQ64)
	for n := uint64(1); n <= 64; n++ {
		want := new(big.Int).Lsh(big.NewInt(1), uint(64-n))
		if got := half.Pow(n).Num(); got.Cmp(want) != 0 {
			t.Fatalf("0.5^%d: got %s want %s", n, got, want)
		}
	}
	require.True(t, half.Pow(65).IsZero())

	nearOne := ratioFromRaw(t, new(big.Int).Sub(shared.OneQ64, new(big.Int).Lsh(big.NewInt(1), 44)))
	require.True(t, nearOne.Pow(shared.U64Max).IsZero())
	require.False(t, nearOne.Pow(1<<20).IsZero())
}

func TestFixedRatioPowNonIncreasing(t *testing.T) {
	rate, err := FixedRatioFromFraction(4264, 1_000_000_000)
	require.NoError(t, err)
	base := rate.Complement()
	prev := OneRatio
	for _, n := range []uint64{1, 2, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 2_160_000, 10_000_000, 100_000_000} {
		cur := base.Pow(n)
		if cur.Cmp(prev) > 0 {
			t.Fatalf("pow increased at %d: %s > %s", n, cur, prev)
		}
		prev = cur
	}
}

func TestFixedRatioConversions(t *testing.T) {
	half, err := FixedRatioFromFraction(1, 2)
	require.NoError(t, err)
	require.Equal(t, "0.5", half.String())

	r := half.Ratio()
	require.Zero(t, r.Num.Cmp(shared.HalfQ64))
	require.Zero(t, r.Den.Cmp(shared.OneQ64))

	raw := OneRatio.Uint128()
	require.Equal(t, uint64(1), raw.Hi)
	require.Equal(t, uint64(0), raw.Lo)
	back, err := FixedRatioFromUint128(raw)
	require.NoError(t, err)
	require.True(t, back.IsOne())

	zero := FixedRatio{}.Uint128()
	require.Zero(t, zero.Hi)
	require.Zero(t, zero.Lo)
	require.Panics(t, func() {
		FixedRatio{num: new(big.Int).Lsh(shared.OneQ64, 65)}.Uint128()
	})

	_, err = NewFixedRatio(new(big.Int).Add(shared.OneQ64, big.NewInt(1)))
	require.ErrorIs(t, err, shared.ErrInvalidRate)
	_, err = FixedRatioFromFraction(2, 1)
	require.ErrorIs(t, err, shared.ErrInvalidRate)
	_, err = FixedRatioFromFraction(1, 0)
	require.ErrorIs(t, err, shared.ErrMath)
}
