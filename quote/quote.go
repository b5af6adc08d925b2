package quote

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/lstpool-go/calculator"
	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/pricing"
	"github.com/krazyTry/lstpool-go/shared"
)

// SwapParams describes one swap against a consistent pool snapshot.
//
// Limit is the minimum output for exact-in quotes and the maximum input for
// exact-out quotes.
type SwapParams struct {
	Amount uint64
	Limit  uint64

	InMint  solana.PublicKey
	OutMint solana.PublicKey
	InCalc  calculator.ValueCalculator
	OutCalc calculator.ValueCalculator
	Pricing pricing.Strategy

	OutReserves      uint64
	ProtocolFeeNanos uint32
}

func (p SwapParams) pricingInput(value uint64) pricing.Input {
	return pricing.Input{InMint: p.InMint, OutMint: p.OutMint, Value: value}
}

// feeInTokens translates a fee expressed in value into token units at the
// rate tokens/value, rounded down.
func feeInTokens(feeValue, tokens, value uint64) (uint64, error) {
	if value == 0 || feeValue == 0 {
		return 0, nil
	}
	fee, err := math.MulDiv(
		new(big.Int).SetUint64(feeValue),
		new(big.Int).SetUint64(tokens),
		new(big.Int).SetUint64(value),
		shared.RoundingDown,
	)
	if err != nil {
		return 0, err
	}
	if !fee.IsUint64() {
		return shared.U64Max, nil
	}
	return fee.Uint64(), nil
}

// splitFee divides a token fee into the protocol share (rounded up) and the
// LP share. The LP share is an estimate: those tokens never move.
func splitFee(feeTokens uint64, protocolFeeNanos uint32) (shared.FeeSplit, error) {
	protocol, err := math.FeeRatioFromNanos(protocolFeeNanos, shared.RoundingUp)
	if err != nil {
		return shared.FeeSplit{}, fmt.Errorf("protocol fee: %w", err)
	}
	return protocol.Apply(feeTokens)
}

// checkLiquidity verifies the pool can pay out amount plus the protocol fee
// withdrawn alongside it.
func checkLiquidity(amount, protocolFee, reserves uint64) error {
	required, err := math.Add(amount, protocolFee)
	if err != nil {
		return err
	}
	if required > reserves {
		return &shared.NotEnoughLiquidityError{Required: required, Available: reserves}
	}
	return nil
}
