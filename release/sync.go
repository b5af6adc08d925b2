package release

import (
	"fmt"

	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

// SyncTokenValue re-values one token entry from oldValue to newValue and
// returns the updated ledger, keeping
//
//	new_total = old_total - oldValue + newValue
//
// A gain is split with the protocol fee rate (rounded up for the protocol)
// and the rest withheld for gradual release. A loss is absorbed by withheld
// value first, then by the protocol fee balance, and only then by LPs.
//
// The gain and loss split is provisional until it is checked against the
// on-chain yield update arithmetic.
func SyncTokenValue(ledger shared.PoolLedger, oldValue, newValue uint64) (shared.PoolLedger, error) {
	if err := ledger.Validate(); err != nil {
		return shared.PoolLedger{}, err
	}
	if oldValue > ledger.TotalValue {
		return shared.PoolLedger{}, fmt.Errorf("%w: token value %d above total %d", shared.ErrInvalidLedger, oldValue, ledger.TotalValue)
	}
	out := ledger
	out.TotalValue = ledger.TotalValue - oldValue
	var err error
	if out.TotalValue, err = math.Add(out.TotalValue, newValue); err != nil {
		return shared.PoolLedger{}, fmt.Errorf("sync total: %w", err)
	}

	if newValue >= oldValue {
		protocolShare, err := math.FeeRatioFromNanos(ledger.ProtocolFeeNanos, shared.RoundingUp)
		if err != nil {
			return shared.PoolLedger{}, err
		}
		split, err := protocolShare.Apply(newValue - oldValue)
		if err != nil {
			return shared.PoolLedger{}, err
		}
		if out.ProtocolFeeValue, err = math.Add(out.ProtocolFeeValue, split.Fee); err != nil {
			return shared.PoolLedger{}, fmt.Errorf("sync protocol fee: %w", err)
		}
		if out.WithheldValue, err = math.Add(out.WithheldValue, split.Remainder); err != nil {
			return shared.PoolLedger{}, fmt.Errorf("sync withheld: %w", err)
		}
		return out, nil
	}

	loss := oldValue - newValue
	absorbed := min(loss, out.WithheldValue)
	out.WithheldValue -= absorbed
	loss -= absorbed
	out.ProtocolFeeValue -= min(loss, out.ProtocolFeeValue)
	return out, nil
}
