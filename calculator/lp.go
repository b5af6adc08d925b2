package calculator

import (
	"fmt"

	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

// Lp values the pool's own liquidity token at
// (total - withheld - protocol fee) / lp supply, rounded down.
type Lp struct {
	ledger shared.PoolLedger
}

// NewLp takes the ledger after any pending release has been applied.
func NewLp(ledger shared.PoolLedger) *Lp {
	return &Lp{ledger: ledger}
}

func (l *Lp) ratio() (due, supply uint64, err error) {
	if l.ledger.LpSupply == 0 {
		return 0, 0, shared.ErrLpSupplyZero
	}
	due, err = l.ledger.LpDueValue()
	if err != nil {
		return 0, 0, err
	}
	return due, l.ledger.LpSupply, nil
}

func (l *Lp) ToValue(amount uint64) (shared.ValueRange, error) {
	due, supply, err := l.ratio()
	if err != nil {
		return shared.ValueRange{}, err
	}
	value, err := math.MulDivU64(amount, due, supply, shared.RoundingDown)
	if err != nil {
		return shared.ValueRange{}, fmt.Errorf("lp to value: %w", err)
	}
	return shared.PointRange(value), nil
}

func (l *Lp) FromValue(value uint64) (shared.ValueRange, error) {
	due, supply, err := l.ratio()
	if err != nil {
		return shared.ValueRange{}, err
	}
	out, err := math.ReverseMulDivFloor(value, due, supply)
	if err != nil {
		return shared.ValueRange{}, fmt.Errorf("lp from value: %w", err)
	}
	return out, nil
}
