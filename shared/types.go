package shared

import (
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Enums and common types shared by math, calculator, pricing and quote.
type Rounding uint8

const (
	RoundingUp   Rounding = 0
	RoundingDown Rounding = 1
)

func (r Rounding) String() string {
	switch r {
	case RoundingUp:
		return "ceil"
	case RoundingDown:
		return "floor"
	default:
		return fmt.Sprintf("rounding(%d)", uint8(r))
	}
}

type SwapMode uint8

const (
	SwapModeExactIn  SwapMode = 0
	SwapModeExactOut SwapMode = 1
)

// Clock is the ledger time the caller read its snapshot at.
// Slot is the release time-step, Epoch the calculator freshness period.
type Clock struct {
	Slot  uint64
	Epoch uint64
}

// ValueRange is an inclusive bound on a conversion.
//
// For forward conversions (amount -> value) Min and Max bracket the value.
// For reverse conversions Min is the smallest amount worth at least the
// requested value and Max the largest amount worth at most it. When the value
// falls strictly between two representable steps Max is Min-1.
type ValueRange struct {
	Min uint64
	Max uint64
}

func PointRange(v uint64) ValueRange {
	return ValueRange{Min: v, Max: v}
}

func (r ValueRange) Contains(v uint64) bool {
	return r.Min <= v && v <= r.Max
}

// FeeSplit is the result of applying a fee ratio. Fee + Remainder always
// equals the original amount.
type FeeSplit struct {
	Fee       uint64
	Remainder uint64
}

type Quote struct {
	InMint      solana.PublicKey
	OutMint     solana.PublicKey
	In          uint64
	Out         uint64
	LpFee       uint64
	ProtocolFee uint64
}

type RebalanceQuote struct {
	Quote
	ValueRemoved uint64
	ValueAdded   uint64
}

// PoolLedger is the pool-level accounting snapshot. The core never persists
// it; functions that change it return a modified copy.
type PoolLedger struct {
	TotalValue       uint64
	WithheldValue    uint64
	ProtocolFeeValue uint64
	// ProtocolFeeNanos is the protocol share of fees in parts per 1e9.
	ProtocolFeeNanos uint32
	// ReleaseRate is the raw Q0.64 numerator of the per-slot release rate.
	// 1.0 is 1<<64, so it needs the high word.
	ReleaseRate     binary.Uint128
	LastReleaseSlot uint64
	LpSupply        uint64
}

// LpDueValue returns total - withheld - protocol fee.
func (l PoolLedger) LpDueValue() (uint64, error) {
	if err := l.Validate(); err != nil {
		return 0, err
	}
	return l.TotalValue - l.WithheldValue - l.ProtocolFeeValue, nil
}

func (l PoolLedger) Validate() error {
	reserved := l.WithheldValue + l.ProtocolFeeValue
	if reserved < l.WithheldValue {
		return fmt.Errorf("withheld plus protocol fee: %w", ErrOverflow)
	}
	if reserved > l.TotalValue {
		return fmt.Errorf("%w: withheld %d + protocol fee %d exceeds total %d", ErrInvalidLedger, l.WithheldValue, l.ProtocolFeeValue, l.TotalValue)
	}
	if l.ProtocolFeeNanos > NanosDenominator {
		return fmt.Errorf("%w: protocol fee nanos %d", ErrInvalidRate, l.ProtocolFeeNanos)
	}
	return nil
}

func (l PoolLedger) ReleaseRateBig() *big.Int {
	return l.ReleaseRate.BigInt()
}

// TokenEntry is one supported LST. CalculatorProgram identifies which
// calculator values it.
type TokenEntry struct {
	Mint              solana.PublicKey
	CalculatorProgram solana.PublicKey
	Value             uint64
	Reserves          uint64
	InputDisabled     bool
}
