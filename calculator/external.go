package calculator

import (
	"fmt"

	"github.com/krazyTry/lstpool-go/shared"
)

// External wraps a protocol-owned calculator. Its math is opaque here; only
// the freshness of the supplied snapshot is enforced.
type External struct {
	kind            Kind
	inner           ValueCalculator
	lastUpdateEpoch uint64
	stale           bool
}

func NewExternal(kind Kind, inner ValueCalculator, lastUpdateEpoch uint64, clock shared.Clock) (*External, error) {
	if !kind.IsExternal() {
		return nil, fmt.Errorf("%w: %s is not an external calculator", shared.ErrUnknownCalculator, kind)
	}
	if inner == nil {
		return nil, fmt.Errorf("%w: no %s capability supplied", shared.ErrNotUpdated, kind)
	}
	return &External{
		kind:            kind,
		inner:           inner,
		lastUpdateEpoch: lastUpdateEpoch,
		stale:           lastUpdateEpoch != clock.Epoch,
	}, nil
}

func (e *External) Kind() Kind {
	return e.kind
}

func (e *External) ToValue(amount uint64) (shared.ValueRange, error) {
	if e.stale {
		return shared.ValueRange{}, e.notUpdated()
	}
	return e.inner.ToValue(amount)
}

func (e *External) FromValue(value uint64) (shared.ValueRange, error) {
	if e.stale {
		return shared.ValueRange{}, e.notUpdated()
	}
	return e.inner.FromValue(value)
}

func (e *External) notUpdated() error {
	return fmt.Errorf("%w: %s state at epoch %d", shared.ErrNotUpdated, e.kind, e.lastUpdateEpoch)
}
