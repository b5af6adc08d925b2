package quote

import (
	"fmt"

	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

// SwapExactIn quotes the output for p.Amount of p.InMint.
//
// The input is valued at the low end of its range and the output sized at
// the high end of the amounts worth the post-fee value, both conservative
// toward the pool.
func SwapExactIn(p SwapParams) (shared.Quote, error) {
	if p.Amount == 0 {
		return shared.Quote{}, fmt.Errorf("%w: swap amount", shared.ErrZeroValue)
	}
	inValue, err := p.InCalc.ToValue(p.Amount)
	if err != nil {
		return shared.Quote{}, fmt.Errorf("value input: %w", err)
	}
	outValue, err := p.Pricing.PriceExactIn(p.pricingInput(inValue.Min))
	if err != nil {
		return shared.Quote{}, fmt.Errorf("price exact in: %w", err)
	}
	if outValue == 0 {
		return shared.Quote{}, fmt.Errorf("%w: %d in prices to zero value", shared.ErrZeroValue, p.Amount)
	}
	outRange, err := p.OutCalc.FromValue(outValue)
	if err != nil {
		return shared.Quote{}, fmt.Errorf("size output: %w", err)
	}
	out := outRange.Max

	feeTokens, err := feeInTokens(math.SaturatingSub(inValue.Min, outValue), out, outValue)
	if err != nil {
		return shared.Quote{}, fmt.Errorf("swap fee: %w", err)
	}
	fees, err := splitFee(feeTokens, p.ProtocolFeeNanos)
	if err != nil {
		return shared.Quote{}, err
	}
	if out == 0 || fees.Fee >= out {
		return shared.Quote{}, fmt.Errorf("%w: out %d protocol fee %d", shared.ErrZeroValue, out, fees.Fee)
	}
	if err := checkLiquidity(out, fees.Fee, p.OutReserves); err != nil {
		return shared.Quote{}, err
	}

	q := shared.Quote{
		InMint:      p.InMint,
		OutMint:     p.OutMint,
		In:          p.Amount,
		Out:         out,
		LpFee:       fees.Remainder,
		ProtocolFee: fees.Fee,
	}
	if q.Out < p.Limit {
		return shared.Quote{}, fmt.Errorf("%w: out %d below minimum %d", shared.ErrSlippageToleranceExceeded, q.Out, p.Limit)
	}
	return q, nil
}

// SwapExactOut quotes the input needed for p.Amount of p.OutMint.
func SwapExactOut(p SwapParams) (shared.Quote, error) {
	if p.Amount == 0 {
		return shared.Quote{}, fmt.Errorf("%w: swap amount", shared.ErrZeroValue)
	}
	outRange, err := p.OutCalc.ToValue(p.Amount)
	if err != nil {
		return shared.Quote{}, fmt.Errorf("value output: %w", err)
	}
	outValue := outRange.Max
	if outValue == 0 {
		return shared.Quote{}, fmt.Errorf("%w: %d out is worth zero value", shared.ErrZeroValue, p.Amount)
	}
	inValue, err := p.Pricing.PriceExactOut(p.pricingInput(outValue))
	if err != nil {
		return shared.Quote{}, fmt.Errorf("price exact out: %w", err)
	}
	inRange, err := p.InCalc.FromValue(inValue)
	if err != nil {
		return shared.Quote{}, fmt.Errorf("size input: %w", err)
	}
	in := inRange.Min

	feeTokens, err := feeInTokens(math.SaturatingSub(inValue, outValue), p.Amount, outValue)
	if err != nil {
		return shared.Quote{}, fmt.Errorf("swap fee: %w", err)
	}
	fees, err := splitFee(feeTokens, p.ProtocolFeeNanos)
	if err != nil {
		return shared.Quote{}, err
	}
	if in == 0 || fees.Fee >= p.Amount {
		return shared.Quote{}, fmt.Errorf("%w: in %d protocol fee %d", shared.ErrZeroValue, in, fees.Fee)
	}
	if err := checkLiquidity(p.Amount, fees.Fee, p.OutReserves); err != nil {
		return shared.Quote{}, err
	}

	q := shared.Quote{
		InMint:      p.InMint,
		OutMint:     p.OutMint,
		In:          in,
		Out:         p.Amount,
		LpFee:       fees.Remainder,
		ProtocolFee: fees.Fee,
	}
	if q.In > p.Limit {
		return shared.Quote{}, fmt.Errorf("%w: in %d above maximum %d", shared.ErrSlippageToleranceExceeded, q.In, p.Limit)
	}
	return q, nil
}
