package pool

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/lstpool-go/calculator"
	"github.com/krazyTry/lstpool-go/pricing"
	"github.com/krazyTry/lstpool-go/quote"
	"github.com/krazyTry/lstpool-go/release"
	"github.com/krazyTry/lstpool-go/shared"
)

// Snapshot is one consistent read of the pool and every protocol state it
// depends on. Calculators is keyed by token mint.
type Snapshot struct {
	Clock       shared.Clock
	LpMint      solana.PublicKey
	Ledger      shared.PoolLedger
	Entries     []shared.TokenEntry
	Calculators map[solana.PublicKey]calculator.Snapshot
	Pricing     pricing.Strategy
}

type Option func(*Pool)

func WithLogger(log *zap.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithRebalanceMaxSteps bounds the rebalance forward search.
func WithRebalanceMaxSteps(n uint64) Option {
	return func(p *Pool) {
		p.maxSteps = n
	}
}

// Pool quotes against a Snapshot. It is immutable after New and safe for
// concurrent use.
type Pool struct {
	clock    shared.Clock
	lpMint   solana.PublicKey
	ledger   shared.PoolLedger
	released shared.FeeSplit
	pricing  pricing.Strategy

	mints       []solana.PublicKey
	entries     map[solana.PublicKey]shared.TokenEntry
	calculators map[solana.PublicKey]calculator.ValueCalculator
	calcErrs    map[solana.PublicKey]error

	maxSteps uint64
	log      *zap.Logger
}

// New validates s and applies any release pending at s.Clock.Slot. An entry
// whose calculator program is unknown fails New; an entry whose state is
// missing only fails quotes that touch it.
func New(s Snapshot, opts ...Option) (*Pool, error) {
	if s.Pricing == nil {
		return nil, fmt.Errorf("%w: no pricing strategy", shared.ErrUnknownPricing)
	}
	ledger, released, err := release.ReleaseLedger(s.Ledger, s.Clock.Slot)
	if err != nil {
		return nil, fmt.Errorf("release at slot %d: %w", s.Clock.Slot, err)
	}
	p := &Pool{
		clock:       s.Clock,
		lpMint:      s.LpMint,
		ledger:      ledger,
		released:    released,
		pricing:     s.Pricing,
		entries:     make(map[solana.PublicKey]shared.TokenEntry, len(s.Entries)),
		calculators: make(map[solana.PublicKey]calculator.ValueCalculator, len(s.Entries)),
		calcErrs:    make(map[solana.PublicKey]error),
		maxSteps:    quote.DefaultMaxSteps,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, e := range s.Entries {
		if e.Mint == s.LpMint {
			return nil, fmt.Errorf("%w: lp mint %s listed as a token entry", shared.ErrUnsupportedMint, e.Mint)
		}
		if _, dup := p.entries[e.Mint]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %s", shared.ErrUnsupportedMint, e.Mint)
		}
		if _, err := calculator.KindFromProgram(e.CalculatorProgram); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.Mint, err)
		}
		p.mints = append(p.mints, e.Mint)
		p.entries[e.Mint] = e

		calc, err := calculator.New(e.CalculatorProgram, s.Calculators[e.Mint], s.Clock)
		if err != nil {
			p.calcErrs[e.Mint] = err
			p.log.Warn("calculator unavailable", zap.Stringer("mint", e.Mint), zap.Error(err))
			continue
		}
		p.calculators[e.Mint] = calc
	}

	p.log.Debug("pool snapshot loaded",
		zap.Uint64("slot", s.Clock.Slot),
		zap.Uint64("epoch", s.Clock.Epoch),
		zap.Int("entries", len(p.mints)),
		zap.Uint64("released", released.Fee),
		zap.Uint64("withheld", ledger.WithheldValue),
	)
	return p, nil
}

func (p *Pool) Clock() shared.Clock {
	return p.clock
}

func (p *Pool) LpMint() solana.PublicKey {
	return p.lpMint
}

// Ledger is the ledger with pending release applied.
func (p *Pool) Ledger() shared.PoolLedger {
	return p.ledger
}

// Released is the release applied on top of the stored ledger.
func (p *Pool) Released() shared.FeeSplit {
	return p.released
}

func (p *Pool) Pricing() pricing.Strategy {
	return p.pricing
}

// Mints lists the token entries in snapshot order.
func (p *Pool) Mints() []solana.PublicKey {
	return append([]solana.PublicKey(nil), p.mints...)
}

func (p *Pool) Entry(mint solana.PublicKey) (shared.TokenEntry, error) {
	e, ok := p.entries[mint]
	if !ok {
		return shared.TokenEntry{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedMint, mint)
	}
	return e, nil
}

// Calculator returns the calculator for mint; the lp mint gets the pool's
// own calculator over the released ledger.
func (p *Pool) Calculator(mint solana.PublicKey) (calculator.ValueCalculator, error) {
	if mint == p.lpMint {
		return calculator.NewLp(p.ledger), nil
	}
	if _, ok := p.entries[mint]; !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedMint, mint)
	}
	if err := p.calcErrs[mint]; err != nil {
		return nil, fmt.Errorf("calculator for %s: %w", mint, err)
	}
	return p.calculators[mint], nil
}

// input resolves the entry and calculator for a mint being paid in.
func (p *Pool) input(mint solana.PublicKey) (shared.TokenEntry, calculator.ValueCalculator, error) {
	e, err := p.Entry(mint)
	if err != nil {
		return shared.TokenEntry{}, nil, err
	}
	if e.InputDisabled {
		return shared.TokenEntry{}, nil, fmt.Errorf("%w: %s", shared.ErrInputDisabled, mint)
	}
	calc, err := p.Calculator(mint)
	if err != nil {
		return shared.TokenEntry{}, nil, err
	}
	return e, calc, nil
}

func (p *Pool) output(mint solana.PublicKey) (shared.TokenEntry, calculator.ValueCalculator, error) {
	e, err := p.Entry(mint)
	if err != nil {
		return shared.TokenEntry{}, nil, err
	}
	calc, err := p.Calculator(mint)
	if err != nil {
		return shared.TokenEntry{}, nil, err
	}
	return e, calc, nil
}

func (p *Pool) swapParams(inMint, outMint solana.PublicKey, amount, limit uint64) (quote.SwapParams, error) {
	_, inCalc, err := p.input(inMint)
	if err != nil {
		return quote.SwapParams{}, err
	}
	out, outCalc, err := p.output(outMint)
	if err != nil {
		return quote.SwapParams{}, err
	}
	return quote.SwapParams{
		Amount:           amount,
		Limit:            limit,
		InMint:           inMint,
		OutMint:          outMint,
		InCalc:           inCalc,
		OutCalc:          outCalc,
		Pricing:          p.pricing,
		OutReserves:      out.Reserves,
		ProtocolFeeNanos: p.ledger.ProtocolFeeNanos,
	}, nil
}

func (p *Pool) SwapExactIn(inMint, outMint solana.PublicKey, amount, minOut uint64) (shared.Quote, error) {
	params, err := p.swapParams(inMint, outMint, amount, minOut)
	if err != nil {
		return shared.Quote{}, err
	}
	q, err := quote.SwapExactIn(params)
	p.logQuote("swap exact in", q, err)
	return q, err
}

func (p *Pool) SwapExactOut(inMint, outMint solana.PublicKey, amount, maxIn uint64) (shared.Quote, error) {
	params, err := p.swapParams(inMint, outMint, amount, maxIn)
	if err != nil {
		return shared.Quote{}, err
	}
	q, err := quote.SwapExactOut(params)
	p.logQuote("swap exact out", q, err)
	return q, err
}

func (p *Pool) AddLiquidity(inMint solana.PublicKey, amount, minLp uint64) (shared.Quote, error) {
	_, inCalc, err := p.input(inMint)
	if err != nil {
		return shared.Quote{}, err
	}
	q, err := quote.AddLiquidity(quote.LiquidityParams{
		Amount:  amount,
		Limit:   minLp,
		InMint:  inMint,
		LpMint:  p.lpMint,
		InCalc:  inCalc,
		Pricing: p.pricing,
		Ledger:  p.ledger,
	})
	p.logQuote("add liquidity", q, err)
	return q, err
}

func (p *Pool) removeParams(outMint solana.PublicKey, amount, limit uint64) (quote.SwapParams, error) {
	out, outCalc, err := p.output(outMint)
	if err != nil {
		return quote.SwapParams{}, err
	}
	return quote.SwapParams{
		Amount:      amount,
		Limit:       limit,
		InMint:      p.lpMint,
		OutMint:     outMint,
		OutCalc:     outCalc,
		Pricing:     p.pricing,
		OutReserves: out.Reserves,
	}, nil
}

// RemoveLiquidity quotes burning lpAmount for outMint.
func (p *Pool) RemoveLiquidity(outMint solana.PublicKey, lpAmount, minOut uint64) (shared.Quote, error) {
	params, err := p.removeParams(outMint, lpAmount, minOut)
	if err != nil {
		return shared.Quote{}, err
	}
	q, err := quote.RemoveLiquidity(p.ledger, params)
	p.logQuote("remove liquidity", q, err)
	return q, err
}

func (p *Pool) RemoveLiquidityExactOut(outMint solana.PublicKey, amount, maxLp uint64) (shared.Quote, error) {
	params, err := p.removeParams(outMint, amount, maxLp)
	if err != nil {
		return shared.Quote{}, err
	}
	q, err := quote.RemoveLiquidityExactOut(p.ledger, params)
	p.logQuote("remove liquidity exact out", q, err)
	return q, err
}

// Rebalance quotes taking amount of outMint for the least inMint that keeps
// pool value. Input-disabled mints can still be taken out but not paid in.
func (p *Pool) Rebalance(outMint, inMint solana.PublicKey, amount uint64) (shared.RebalanceQuote, error) {
	in, inCalc, err := p.input(inMint)
	if err != nil {
		return shared.RebalanceQuote{}, err
	}
	out, outCalc, err := p.output(outMint)
	if err != nil {
		return shared.RebalanceQuote{}, err
	}
	q, err := quote.Rebalance(quote.RebalanceParams{
		Amount:      amount,
		InMint:      inMint,
		OutMint:     outMint,
		InCalc:      inCalc,
		OutCalc:     outCalc,
		InReserves:  in.Reserves,
		OutReserves: out.Reserves,
		MaxSteps:    p.maxSteps,
	})
	p.logQuote("rebalance", q.Quote, err, zap.Uint64("value_removed", q.ValueRemoved), zap.Uint64("value_added", q.ValueAdded))
	return q, err
}

// SkippedEntry is an entry SyncValues left at its cached value because its
// calculator could not value it.
type SkippedEntry struct {
	Mint solana.PublicKey
	Err  error
}

type SyncResult struct {
	Ledger  shared.PoolLedger
	Entries []shared.TokenEntry
	Skipped []SkippedEntry
}

// SyncValues re-values every entry at its current reserves and folds the
// changes into the released ledger. Entries are returned with the new cached
// values; the pool itself is unchanged. Entries whose calculator is not
// updated keep their cached value and are reported in Skipped.
func (p *Pool) SyncValues() (SyncResult, error) {
	res := SyncResult{
		Ledger:  p.ledger,
		Entries: make([]shared.TokenEntry, 0, len(p.mints)),
	}
	for _, mint := range p.mints {
		e := p.entries[mint]
		v, err := p.entryValue(mint, e.Reserves)
		if errors.Is(err, shared.ErrNotUpdated) {
			p.log.Warn("entry sync skipped", zap.Stringer("mint", mint), zap.Error(err))
			res.Skipped = append(res.Skipped, SkippedEntry{Mint: mint, Err: err})
			res.Entries = append(res.Entries, e)
			continue
		}
		if err != nil {
			return SyncResult{}, err
		}
		if res.Ledger, err = release.SyncTokenValue(res.Ledger, e.Value, v); err != nil {
			return SyncResult{}, fmt.Errorf("sync %s: %w", mint, err)
		}
		p.log.Debug("entry synced", zap.Stringer("mint", mint), zap.Uint64("old_value", e.Value), zap.Uint64("new_value", v))
		e.Value = v
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func (p *Pool) entryValue(mint solana.PublicKey, reserves uint64) (uint64, error) {
	calc, err := p.Calculator(mint)
	if err != nil {
		return 0, err
	}
	v, err := calc.ToValue(reserves)
	if err != nil {
		return 0, fmt.Errorf("value %s reserves: %w", mint, err)
	}
	return v.Min, nil
}

func (p *Pool) logQuote(op string, q shared.Quote, err error, fields ...zap.Field) {
	if err != nil {
		p.log.Debug(op+" refused",
			append(fields, zap.Error(err), zap.Stringer("code", shared.CodeOf(err)))...)
		return
	}
	p.log.Debug(op,
		append(fields,
			zap.Stringer("in_mint", q.InMint),
			zap.Stringer("out_mint", q.OutMint),
			zap.Uint64("in", q.In),
			zap.Uint64("out", q.Out),
			zap.Uint64("lp_fee", q.LpFee),
			zap.Uint64("protocol_fee", q.ProtocolFee),
		)...)
}
