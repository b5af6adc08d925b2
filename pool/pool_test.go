package pool

import (
	"os"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/krazyTry/lstpool-go/calculator"
	"github.com/krazyTry/lstpool-go/pricing"
	"github.com/krazyTry/lstpool-go/release"
	"github.com/krazyTry/lstpool-go/shared"
)

var (
	solMint   = solana.SolMint
	jitoMint  = solana.MustPublicKeyFromBase58("J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn")
	msolMint  = solana.MustPublicKeyFromBase58("mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So")
	bsolMint  = solana.MustPublicKeyFromBase58("bSo13r4TkiE4KumL71LsHTPpL2euBYLFx6h9HP3piy1")
	infLpMint = solana.MustPublicKeyFromBase58("5oVNBeEEQvYi1cX3ir8Dx5n1P7pdxydbGF2X4TxVusJm")
)

func loadFixture(t *testing.T) Snapshot {
	t.Helper()
	data, err := os.ReadFile("testdata/pool.json")
	require.NoError(t, err)
	rate, err := release.DefaultRate()
	require.NoError(t, err)
	s, err := LoadSnapshot(data, rate)
	require.NoError(t, err)
	return s
}

// withMarinade supplies the opaque marinade capability, here valued 1:1.
func withMarinade(s Snapshot) Snapshot {
	calc := s.Calculators[msolMint]
	calc.External = calculator.Wsol{}
	s.Calculators[msolMint] = calc
	return s
}

func newFixturePool(t *testing.T, opts ...Option) *Pool {
	t.Helper()
	p, err := New(withMarinade(loadFixture(t)), opts...)
	require.NoError(t, err)
	return p
}

func TestLoadSnapshot(t *testing.T) {
	s := loadFixture(t)
	require.Equal(t, shared.Clock{Slot: 1_000, Epoch: 500}, s.Clock)
	require.Equal(t, infLpMint, s.LpMint)
	require.Equal(t, uint64(10_993_000_000), s.Ledger.TotalValue)
	require.Equal(t, uint64(9_993_000_000), s.Ledger.LpSupply)
	require.Len(t, s.Entries, 4)
	require.Equal(t, pricing.KindFlatFee, s.Pricing.Kind())

	jito := s.Calculators[jitoMint]
	require.NotNil(t, jito.ExchangePool)
	require.Equal(t, uint64(9_000_000_000), jito.ExchangePool.TokenSupply)
	require.True(t, s.Entries[3].InputDisabled)
	require.Nil(t, s.Calculators[msolMint].External)

	half, err := release.RateFromUint128(s.Ledger.ReleaseRate)
	require.NoError(t, err)
	require.Equal(t, "0.5", half.String())
}

func TestLoadSnapshotErrors(t *testing.T) {
	rate, err := release.DefaultRate()
	require.NoError(t, err)

	_, err = LoadSnapshot([]byte(`{"clock":`), rate)
	require.Error(t, err)

	_, err = LoadSnapshot([]byte(`{"lp_mint": "not-a-key"}`), rate)
	require.Error(t, err)

	const base = `{"lp_mint": "5oVNBeEEQvYi1cX3ir8Dx5n1P7pdxydbGF2X4TxVusJm", "ledger": {"total_value": 10}, `
	_, err = LoadSnapshot([]byte(base+`"pricing": {"program": "So11111111111111111111111111111111111111112"}}`), rate)
	require.ErrorIs(t, err, shared.ErrUnknownPricing)

	_, err = LoadSnapshot([]byte(base+`"pricing": {"program": "s1b6NRXj6ygNu1QMKXh2H9LUR2aPApAAm1UQ2DjdhNV"},
		"entries": [{"mint": "So11111111111111111111111111111111111111112", "calculator": "So11111111111111111111111111111111111111112"}]}`), rate)
	require.ErrorIs(t, err, shared.ErrUnknownCalculator)

	_, err = LoadSnapshot([]byte(`{"lp_mint": "5oVNBeEEQvYi1cX3ir8Dx5n1P7pdxydbGF2X4TxVusJm",
		"ledger": {"total_value": 10, "withheld_value": 11}}`), rate)
	require.ErrorIs(t, err, shared.ErrInvalidLedger)

	_, err = LoadSnapshot([]byte(`{"lp_mint": "5oVNBeEEQvYi1cX3ir8Dx5n1P7pdxydbGF2X4TxVusJm",
		"ledger": {"total_value": 10, "release_rate": "1"}}`), rate)
	require.ErrorIs(t, err, shared.ErrRateTooSmall)
}

func TestNewAppliesRelease(t *testing.T) {
	p := newFixturePool(t)
	// one slot at a rate of one half
	require.Equal(t, shared.FeeSplit{Fee: 500_000_000, Remainder: 500_000_000}, p.Released())
	require.Equal(t, uint64(500_000_000), p.Ledger().WithheldValue)
	require.Equal(t, uint64(1_000), p.Ledger().LastReleaseSlot)

	due, err := p.Ledger().LpDueValue()
	require.NoError(t, err)
	require.Equal(t, uint64(9_993_000_000), due)
	require.Equal(t, []solana.PublicKey{solMint, jitoMint, msolMint, bsolMint}, p.Mints())
}

func TestPoolSwap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := newFixturePool(t, WithLogger(zap.New(core)))

	q, err := p.SwapExactIn(solMint, jitoMint, 1_000_000, 0)
	require.NoError(t, err)
	require.Equal(t, shared.Quote{
		InMint:      solMint,
		OutMint:     jitoMint,
		In:          1_000_000,
		Out:         900_181,
		LpFee:       648,
		ProtocolFee: 72,
	}, q)
	require.Equal(t, 1, logs.FilterMessage("swap exact in").Len())

	q, err = p.SwapExactOut(solMint, jitoMint, 900_000, shared.U64Max)
	require.NoError(t, err)
	require.Equal(t, uint64(999_800), q.In)

	_, err = p.SwapExactIn(solMint, jitoMint, 1_000_000, 1_000_000)
	require.ErrorIs(t, err, shared.ErrSlippageToleranceExceeded)
	refused := logs.FilterMessage("swap exact in refused").All()
	require.Len(t, refused, 1)
	require.Equal(t, "SlippageToleranceExceeded", refused[0].ContextMap()["code"])
}

func TestPoolEntryChecks(t *testing.T) {
	p := newFixturePool(t)

	_, err := p.SwapExactIn(bsolMint, solMint, 1_000, 0)
	require.ErrorIs(t, err, shared.ErrInputDisabled)
	require.Equal(t, shared.CodeInputDisabled, shared.CodeOf(err))

	// disabled mints can still leave the pool
	_, err = p.SwapExactIn(solMint, bsolMint, 1_000_000, 0)
	require.NoError(t, err)

	_, err = p.SwapExactIn(solana.PublicKey{7}, solMint, 1_000, 0)
	require.ErrorIs(t, err, shared.ErrUnsupportedMint)

	q, err := p.SwapExactIn(msolMint, solMint, 1_000_000, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(999_500), q.Out)
}

func TestPoolMissingExternalState(t *testing.T) {
	p, err := New(loadFixture(t))
	require.NoError(t, err)

	_, err = p.SwapExactIn(msolMint, solMint, 1_000, 0)
	require.ErrorIs(t, err, shared.ErrNotUpdated)

	// other entries are unaffected
	_, err = p.SwapExactIn(jitoMint, solMint, 1_000, 0)
	require.NoError(t, err)
}

func TestPoolStaleCalculator(t *testing.T) {
	s := withMarinade(loadFixture(t))
	s.Clock.Epoch++
	p, err := New(s)
	require.NoError(t, err)

	_, err = p.SwapExactIn(solMint, jitoMint, 1_000, 0)
	require.ErrorIs(t, err, shared.ErrNotUpdated)
	_, err = p.SwapExactIn(msolMint, solMint, 1_000, 0)
	require.ErrorIs(t, err, shared.ErrNotUpdated)
}

func TestPoolLiquidity(t *testing.T) {
	p := newFixturePool(t)

	q, err := p.AddLiquidity(solMint, 1_000_000, 0)
	require.NoError(t, err)
	require.Equal(t, infLpMint, q.OutMint)
	require.Equal(t, uint64(1_000_000), q.Out)

	q, err = p.RemoveLiquidity(solMint, 1_000_000, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(999_000), q.Out)
	require.Equal(t, uint64(100), q.ProtocolFee)
	require.Equal(t, uint64(900), q.LpFee)

	q, err = p.RemoveLiquidityExactOut(solMint, 999_000, shared.U64Max)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), q.In)

	_, err = p.AddLiquidity(bsolMint, 1_000, 0)
	require.ErrorIs(t, err, shared.ErrInputDisabled)
}

func TestPoolRebalance(t *testing.T) {
	p := newFixturePool(t, WithRebalanceMaxSteps(1<<10))

	q, err := p.Rebalance(jitoMint, solMint, 9_000)
	require.NoError(t, err)
	// 9,000 jito at the 5.4e9 reserve level is worth 9,990 (one fee step
	// of 9 and a 10/9 ratio)
	require.Equal(t, uint64(9_990), q.ValueRemoved)
	require.Equal(t, uint64(9_990), q.In)

	_, err = p.Rebalance(bsolMint, solMint, 2_000_000_000)
	require.ErrorIs(t, err, shared.ErrNotEnoughLiquidity)

	// bsol can be taken out but not paid in
	q, err = p.Rebalance(bsolMint, solMint, 1_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), q.In)
	_, err = p.Rebalance(solMint, bsolMint, 1_000)
	require.ErrorIs(t, err, shared.ErrInputDisabled)
	require.Equal(t, shared.CodeInputDisabled, shared.CodeOf(err))
}

func TestPoolSyncValues(t *testing.T) {
	p := newFixturePool(t)
	res, err := p.SyncValues()
	require.NoError(t, err)
	require.Empty(t, res.Skipped)

	require.Equal(t, uint64(10_994_000_000), res.Ledger.TotalValue)
	require.Equal(t, uint64(500_100_000), res.Ledger.ProtocolFeeValue)
	require.Equal(t, uint64(500_900_000), res.Ledger.WithheldValue)
	require.Equal(t, uint64(4_000_000_000), res.Entries[0].Value)
	require.Equal(t, uint64(5_994_000_000), res.Entries[1].Value)

	// the pool snapshot itself is untouched
	require.Equal(t, uint64(10_993_000_000), p.Ledger().TotalValue)
}

func TestPoolSyncValuesSkipsUnavailableCalculators(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := loadFixture(t)
	s.Entries[2].Value = 7
	p, err := New(s, WithLogger(zap.New(core)))
	require.NoError(t, err)

	res, err := p.SyncValues()
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	require.Equal(t, msolMint, res.Skipped[0].Mint)
	require.ErrorIs(t, res.Skipped[0].Err, shared.ErrNotUpdated)
	require.Equal(t, 1, logs.FilterMessage("entry sync skipped").Len())

	// the skipped entry keeps its cached value and stays in the ledger
	require.Len(t, res.Entries, 4)
	require.Equal(t, uint64(7), res.Entries[2].Value)
	require.Equal(t, uint64(10_994_000_000), res.Ledger.TotalValue)
	require.Equal(t, uint64(4_000_000_000), res.Entries[0].Value)
}

func TestNewRejectsBadSnapshots(t *testing.T) {
	s := withMarinade(loadFixture(t))
	s.Entries = append(s.Entries, s.Entries[0])
	_, err := New(s)
	require.ErrorIs(t, err, shared.ErrUnsupportedMint)

	s = withMarinade(loadFixture(t))
	s.Entries[0].CalculatorProgram = solana.PublicKey{5}
	_, err = New(s)
	require.ErrorIs(t, err, shared.ErrUnknownCalculator)

	s = withMarinade(loadFixture(t))
	s.Pricing = nil
	_, err = New(s)
	require.ErrorIs(t, err, shared.ErrUnknownPricing)
}
