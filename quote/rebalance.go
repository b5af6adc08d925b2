package quote

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/lstpool-go/calculator"
	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

// DefaultMaxSteps bounds the forward search past the reverse estimate.
const DefaultMaxSteps = 1 << 16

// RebalanceParams takes Amount of OutMint out of the pool in exchange for
// the least InMint that keeps the pool's value.
type RebalanceParams struct {
	Amount uint64

	InMint      solana.PublicKey
	OutMint     solana.PublicKey
	InCalc      calculator.ValueCalculator
	OutCalc     calculator.ValueCalculator
	InReserves  uint64
	OutReserves uint64

	// MaxSteps is the forward search bound, DefaultMaxSteps when zero.
	MaxSteps uint64
}

// Rebalance finds the smallest in such that
//
//	to_value(inReserves + in) - to_value(inReserves) >= to_value(outReserves) - to_value(outReserves - amount)
//
// Values are taken at reserve levels rather than per unit because exchange
// pool ratios step with the reserve level. The search starts at the input
// calculator's reverse estimate and walks forward.
func Rebalance(p RebalanceParams) (shared.RebalanceQuote, error) {
	if p.Amount == 0 {
		return shared.RebalanceQuote{}, fmt.Errorf("%w: rebalance amount", shared.ErrZeroValue)
	}
	if p.Amount > p.OutReserves {
		return shared.RebalanceQuote{}, &shared.NotEnoughLiquidityError{Required: p.Amount, Available: p.OutReserves}
	}
	maxSteps := p.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	outBefore, err := p.OutCalc.ToValue(p.OutReserves)
	if err != nil {
		return shared.RebalanceQuote{}, fmt.Errorf("value out reserves: %w", err)
	}
	outAfter, err := p.OutCalc.ToValue(p.OutReserves - p.Amount)
	if err != nil {
		return shared.RebalanceQuote{}, fmt.Errorf("value out reserves: %w", err)
	}
	removed, err := math.Sub(outBefore.Min, outAfter.Min)
	if err != nil {
		return shared.RebalanceQuote{}, fmt.Errorf("value removed: %w", err)
	}
	if removed == 0 {
		return shared.RebalanceQuote{}, fmt.Errorf("%w: taking %d out removes no value", shared.ErrZeroValue, p.Amount)
	}

	base, err := p.InCalc.ToValue(p.InReserves)
	if err != nil {
		return shared.RebalanceQuote{}, fmt.Errorf("value in reserves: %w", err)
	}
	target, err := math.Add(base.Min, removed)
	if err != nil {
		return shared.RebalanceQuote{}, fmt.Errorf("rebalance target: %w", err)
	}
	estimate, err := p.InCalc.FromValue(target)
	if err != nil {
		return shared.RebalanceQuote{}, fmt.Errorf("estimate input: %w", err)
	}

	in := math.SaturatingSub(estimate.Min, p.InReserves)
	var added uint64
	for step := uint64(0); ; step++ {
		total, err := math.Add(p.InReserves, in)
		if err != nil {
			return shared.RebalanceQuote{}, fmt.Errorf("no input covers %d value: %w", removed, err)
		}
		v, err := p.InCalc.ToValue(total)
		if err != nil {
			return shared.RebalanceQuote{}, fmt.Errorf("value in reserves: %w", err)
		}
		if v.Min >= target {
			added = v.Min - base.Min
			break
		}
		if step == maxSteps {
			return shared.RebalanceQuote{}, fmt.Errorf("no input covers %d value within %d steps: %w", removed, maxSteps, shared.ErrOverflow)
		}
		in++
	}

	return shared.RebalanceQuote{
		Quote: shared.Quote{
			InMint:  p.InMint,
			OutMint: p.OutMint,
			In:      in,
			Out:     p.Amount,
		},
		ValueRemoved: removed,
		ValueAdded:   added,
	}, nil
}
