package calculator

import (
	"errors"
	"fmt"

	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

// ExchangePoolState is the part of a stake pool account the calculator reads.
type ExchangePoolState struct {
	TotalValue       uint64
	TokenSupply      uint64
	WithdrawalFeeNum uint64
	WithdrawalFeeDen uint64
	LastUpdateEpoch  uint64
}

// ExchangePool values stake pool tokens: the withdrawal fee is taken first
// (rounded up, in favor of the stake pool), then the remainder is converted at
// TotalValue / TokenSupply rounded down.
type ExchangePool struct {
	kind  Kind
	state ExchangePoolState
	fee   math.FeeRatio
	stale bool
}

func NewExchangePool(kind Kind, state ExchangePoolState, clock shared.Clock) (*ExchangePool, error) {
	if !kind.IsExchangePool() {
		return nil, fmt.Errorf("%w: %s is not a stake pool calculator", shared.ErrUnknownCalculator, kind)
	}
	var fee math.FeeRatio
	if state.WithdrawalFeeNum != 0 {
		var err error
		if fee, err = math.NewFeeRatio(state.WithdrawalFeeNum, state.WithdrawalFeeDen, shared.RoundingUp); err != nil {
			return nil, fmt.Errorf("withdrawal fee: %w", err)
		}
	}
	return &ExchangePool{
		kind:  kind,
		state: state,
		fee:   fee,
		stale: state.LastUpdateEpoch != clock.Epoch,
	}, nil
}

func (p *ExchangePool) Kind() Kind {
	return p.kind
}

func (p *ExchangePool) ToValue(amount uint64) (shared.ValueRange, error) {
	if p.stale {
		return shared.ValueRange{}, p.notUpdated()
	}
	split, err := p.fee.Apply(amount)
	if err != nil {
		return shared.ValueRange{}, err
	}
	value, err := math.MulDivU64(split.Remainder, p.state.TotalValue, p.state.TokenSupply, shared.RoundingDown)
	if err != nil {
		return shared.ValueRange{}, fmt.Errorf("%s to value: %w", p.kind, err)
	}
	return shared.PointRange(value), nil
}

// FromValue reverses the ratio step and then the fee step, taking the low
// extreme of each for Min and the high extreme for Max.
func (p *ExchangePool) FromValue(value uint64) (shared.ValueRange, error) {
	if p.stale {
		return shared.ValueRange{}, p.notUpdated()
	}
	net, err := math.ReverseMulDivFloor(value, p.state.TotalValue, p.state.TokenSupply)
	if err != nil {
		return shared.ValueRange{}, fmt.Errorf("%s from value: %w", p.kind, err)
	}
	lo, err := p.fee.ReverseFromRemainder(net.Min)
	if err != nil {
		return shared.ValueRange{}, fmt.Errorf("%s from value: %w", p.kind, err)
	}
	hi, err := p.maxGross(net.Max)
	if err != nil {
		return shared.ValueRange{}, err
	}
	return shared.ValueRange{Min: lo.Min, Max: hi}, nil
}

// maxGross is the largest amount whose post-fee remainder is at most net.
func (p *ExchangePool) maxGross(net uint64) (uint64, error) {
	if net == shared.U64Max {
		return shared.U64Max, nil
	}
	r, err := p.fee.ReverseFromRemainder(net)
	if errors.Is(err, shared.ErrOverflow) {
		// no u64 amount leaves more than net
		return shared.U64Max, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s from value: %w", p.kind, err)
	}
	return r.Max, nil
}

func (p *ExchangePool) notUpdated() error {
	return fmt.Errorf("%w: %s state at epoch %d", shared.ErrNotUpdated, p.kind, p.state.LastUpdateEpoch)
}
