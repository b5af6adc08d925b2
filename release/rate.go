package release

import (
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/lstpool-go/decimal_math"
	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

const (
	// DefaultReleaseFraction and DefaultHorizonSlots define the reference
	// schedule: at least 99.99% of any withheld snapshot is released within
	// 2,160,000 slots (about ten epochs).
	DefaultReleaseFraction = "0.9999"
	DefaultHorizonSlots    = 2_160_000

	// MinReleaseRateRaw is 2^-44 per slot. Below it (1 - rate) squared
	// repeatedly loses the rate inside the Q64 flooring error.
	MinReleaseRateRaw = 1 << 20
)

var MinReleaseRate, _ = math.NewFixedRatio(big.NewInt(MinReleaseRateRaw))

// Rate is a validated per-slot release rate in [MinReleaseRate, 1].
type Rate struct {
	r math.FixedRatio
}

func NewRate(r math.FixedRatio) (Rate, error) {
	if r.Cmp(MinReleaseRate) < 0 {
		return Rate{}, fmt.Errorf("%w: release rate %s below %s", shared.ErrRateTooSmall, r, MinReleaseRate)
	}
	if r.Cmp(math.OneRatio) > 0 {
		return Rate{}, fmt.Errorf("%w: release rate %s above one", shared.ErrInvalidRate, r)
	}
	return Rate{r: r}, nil
}

func RateFromUint128(raw binary.Uint128) (Rate, error) {
	r, err := math.FixedRatioFromUint128(raw)
	if err != nil {
		return Rate{}, err
	}
	return NewRate(r)
}

func RateFromDecimal(d decimal.Decimal) (Rate, error) {
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return Rate{}, fmt.Errorf("%w: release rate %s", shared.ErrInvalidRate, d)
	}
	r, err := math.FixedRatioFromDecimal(d)
	if err != nil {
		return Rate{}, err
	}
	return NewRate(r)
}

// RateForHorizon solves (1 - rate)^horizon <= 1 - fraction for the smallest
// Q64 rate, so that at least fraction of a snapshot is released within
// horizon slots.
func RateForHorizon(fraction decimal.Decimal, horizon uint64) (Rate, error) {
	one := decimal.NewFromInt(1)
	if !fraction.IsPositive() || !fraction.LessThan(one) {
		return Rate{}, fmt.Errorf("%w: release fraction %s outside (0, 1)", shared.ErrInvalidRate, fraction)
	}
	if horizon == 0 {
		return Rate{}, fmt.Errorf("%w: zero release horizon", shared.ErrInvalidRate)
	}
	perSlot, err := decimal_math.Root(one.Sub(fraction), horizon, decimal_math.DefaultPrecision)
	if err != nil {
		return Rate{}, fmt.Errorf("release rate for horizon %d: %w", horizon, err)
	}
	raw := decimal_math.DecimalToQ64(one.Sub(perSlot))
	// round up: a floored rate would release slightly less than fraction
	raw.Add(raw, big.NewInt(1))
	if raw.Cmp(shared.OneQ64) > 0 {
		raw.Set(shared.OneQ64)
	}
	r, err := math.NewFixedRatio(raw)
	if err != nil {
		return Rate{}, err
	}
	return NewRate(r)
}

// DefaultRate is RateForHorizon(DefaultReleaseFraction, DefaultHorizonSlots),
// about 4.264e-6 per slot.
func DefaultRate() (Rate, error) {
	return RateForHorizon(decimal.RequireFromString(DefaultReleaseFraction), DefaultHorizonSlots)
}

func (r Rate) FixedRatio() math.FixedRatio {
	return r.r
}

func (r Rate) Uint128() binary.Uint128 {
	return r.r.Uint128()
}

func (r Rate) String() string {
	return r.r.Decimal().String()
}
