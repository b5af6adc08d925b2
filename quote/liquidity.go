package quote

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/lstpool-go/calculator"
	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/pricing"
	"github.com/krazyTry/lstpool-go/shared"
)

// LiquidityParams describes a deposit of Amount of InMint for lp tokens.
// Ledger must already have pending release applied. Limit is the minimum
// number of lp tokens to mint.
type LiquidityParams struct {
	Amount uint64
	Limit  uint64

	InMint  solana.PublicKey
	LpMint  solana.PublicKey
	InCalc  calculator.ValueCalculator
	Pricing pricing.Strategy
	Ledger  shared.PoolLedger
}

// AddLiquidity quotes the lp tokens minted for a deposit. Out is the mint
// amount; fees are reported in input tokens.
func AddLiquidity(p LiquidityParams) (shared.Quote, error) {
	if p.Amount == 0 {
		return shared.Quote{}, fmt.Errorf("%w: deposit amount", shared.ErrZeroValue)
	}
	inRange, err := p.InCalc.ToValue(p.Amount)
	if err != nil {
		return shared.Quote{}, fmt.Errorf("value deposit: %w", err)
	}
	inValue := inRange.Min
	postValue, err := p.Pricing.PriceExactIn(pricing.Input{InMint: p.InMint, OutMint: p.LpMint, Value: inValue})
	if err != nil {
		return shared.Quote{}, fmt.Errorf("price deposit: %w", err)
	}
	if postValue == 0 {
		return shared.Quote{}, fmt.Errorf("%w: deposit of %d prices to zero value", shared.ErrZeroValue, p.Amount)
	}
	poolValue, err := p.Ledger.LpDueValue()
	if err != nil {
		return shared.Quote{}, err
	}
	minted, err := lpToMint(p.Ledger.LpSupply, poolValue, postValue)
	if err != nil {
		return shared.Quote{}, fmt.Errorf("lp to mint: %w", err)
	}

	feeTokens, err := feeInTokens(math.SaturatingSub(inValue, postValue), p.Amount, inValue)
	if err != nil {
		return shared.Quote{}, fmt.Errorf("deposit fee: %w", err)
	}
	fees, err := splitFee(feeTokens, p.Ledger.ProtocolFeeNanos)
	if err != nil {
		return shared.Quote{}, err
	}
	if minted == 0 || fees.Fee >= p.Amount {
		return shared.Quote{}, fmt.Errorf("%w: mint %d protocol fee %d", shared.ErrZeroValue, minted, fees.Fee)
	}

	q := shared.Quote{
		InMint:      p.InMint,
		OutMint:     p.LpMint,
		In:          p.Amount,
		Out:         minted,
		LpFee:       fees.Remainder,
		ProtocolFee: fees.Fee,
	}
	if q.Out < p.Limit {
		return shared.Quote{}, fmt.Errorf("%w: mint %d below minimum %d", shared.ErrSlippageToleranceExceeded, q.Out, p.Limit)
	}
	return q, nil
}

// lpToMint prices a deposit of value against the pool:
//
//	supply == 0      -> poolValue + value
//	poolValue == 0   -> value
//	otherwise        -> supply * value / poolValue
//
// The first depositor mints against everything the pool already holds. A
// drained pool with outstanding supply mints at 1:1 so it stays usable, at
// the expense of existing holders.
func lpToMint(supply, poolValue, value uint64) (uint64, error) {
	switch {
	case supply == 0:
		return math.Add(poolValue, value)
	case poolValue == 0:
		return value, nil
	default:
		return math.MulDivU64(supply, value, poolValue, shared.RoundingDown)
	}
}

// RemoveLiquidity quotes burning p.Amount lp tokens for p.OutMint. The lp
// token is valued by the pool's own calculator on the input side.
func RemoveLiquidity(ledger shared.PoolLedger, p SwapParams) (shared.Quote, error) {
	p.InCalc = calculator.NewLp(ledger)
	p.ProtocolFeeNanos = ledger.ProtocolFeeNanos
	return SwapExactIn(p)
}

// RemoveLiquidityExactOut quotes the lp tokens to burn for exactly p.Amount
// of p.OutMint.
func RemoveLiquidityExactOut(ledger shared.PoolLedger, p SwapParams) (shared.Quote, error) {
	p.InCalc = calculator.NewLp(ledger)
	p.ProtocolFeeNanos = ledger.ProtocolFeeNanos
	return SwapExactOut(p)
}
