package release

import (
	"fmt"

	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

// Release decays withheld value over elapsed slots. Fee is the released
// value and Remainder the value still withheld, ceil(withheld * (1-rate)^elapsed).
func Release(withheld uint64, rate Rate, elapsed uint64) (shared.FeeSplit, error) {
	remaining := rate.r.Complement().Pow(elapsed)
	released, err := math.FeeRatioFromFixed(remaining.Complement(), shared.RoundingDown)
	if err != nil {
		return shared.FeeSplit{}, err
	}
	return released.Apply(withheld)
}

// ReleaseLedger returns a copy of ledger with withheld value released up to
// slot. Total value is unchanged: released value becomes due to LPs. A slot
// at or before the last release leaves the ledger as is.
func ReleaseLedger(ledger shared.PoolLedger, slot uint64) (shared.PoolLedger, shared.FeeSplit, error) {
	if err := ledger.Validate(); err != nil {
		return shared.PoolLedger{}, shared.FeeSplit{}, err
	}
	if slot <= ledger.LastReleaseSlot {
		return ledger, shared.FeeSplit{Remainder: ledger.WithheldValue}, nil
	}
	rate, err := RateFromUint128(ledger.ReleaseRate)
	if err != nil {
		return shared.PoolLedger{}, shared.FeeSplit{}, err
	}
	split, err := Release(ledger.WithheldValue, rate, slot-ledger.LastReleaseSlot)
	if err != nil {
		return shared.PoolLedger{}, shared.FeeSplit{}, fmt.Errorf("release %d slots: %w", slot-ledger.LastReleaseSlot, err)
	}
	out := ledger
	out.WithheldValue = split.Remainder
	out.LastReleaseSlot = slot
	return out, split, nil
}
