package calculator

import (
	"github.com/krazyTry/lstpool-go/shared"
)

// Wsol values the wrapped base asset 1:1.
type Wsol struct{}

func (Wsol) ToValue(amount uint64) (shared.ValueRange, error) {
	return shared.PointRange(amount), nil
}

func (Wsol) FromValue(value uint64) (shared.ValueRange, error) {
	return shared.PointRange(value), nil
}
