package pricing

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

// Input is the value being moved from InMint to OutMint. Adding liquidity
// prices with OutMint set to the lp mint, removing with InMint set to it.
type Input struct {
	InMint  solana.PublicKey
	OutMint solana.PublicKey
	Value   uint64
}

// Strategy prices a value transfer between two mints.
//
// PriceExactIn returns the value left after fees for Input.Value going in.
// PriceExactOut returns the smallest value going in that leaves at least
// Input.Value after fees.
type Strategy interface {
	Kind() Kind
	PriceExactIn(in Input) (uint64, error)
	PriceExactOut(in Input) (uint64, error)
}

type Kind uint8

const (
	KindFlatFee Kind = iota
	KindFlatSlab
)

func (k Kind) String() string {
	switch k {
	case KindFlatFee:
		return "flat-fee"
	case KindFlatSlab:
		return "flat-slab"
	default:
		return fmt.Sprintf("pricing(%d)", uint8(k))
	}
}

var (
	FlatFeePricingProgramID  = solana.MustPublicKeyFromBase58("f1tUoNEKrDp1oeGn4zxr7bh41eN6VcfHjfrL3ZqQday")
	FlatSlabPricingProgramID = solana.MustPublicKeyFromBase58("s1b6NRXj6ygNu1QMKXh2H9LUR2aPApAAm1UQ2DjdhNV")
)

// KindFromProgram resolves the pricing program recorded on the pool.
func KindFromProgram(programID solana.PublicKey) (Kind, error) {
	switch programID {
	case FlatFeePricingProgramID:
		return KindFlatFee, nil
	case FlatSlabPricingProgramID:
		return KindFlatSlab, nil
	default:
		return 0, fmt.Errorf("%w: %s", shared.ErrUnknownPricing, programID)
	}
}

func ProgramOf(kind Kind) (solana.PublicKey, error) {
	switch kind {
	case KindFlatFee:
		return FlatFeePricingProgramID, nil
	case KindFlatSlab:
		return FlatSlabPricingProgramID, nil
	default:
		return solana.PublicKey{}, fmt.Errorf("%w: %s", shared.ErrUnknownPricing, kind)
	}
}

// fees are rounded up in favor of the pool.
func priceExactIn(fee math.FeeRatio, value uint64) (uint64, error) {
	split, err := fee.Apply(value)
	if err != nil {
		return 0, err
	}
	return split.Remainder, nil
}

func priceExactOut(fee math.FeeRatio, value uint64) (uint64, error) {
	gross, err := fee.ReverseFromRemainder(value)
	if err != nil {
		return 0, fmt.Errorf("price exact out %d at %s: %w", value, fee, err)
	}
	return gross.Min, nil
}
