package pricing

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

// SlabEntry is the per-mint fee in parts per 1e9, signed.
type SlabEntry struct {
	InputFeeNanos  int32
	OutputFeeNanos int32
}

// FlatSlab charges in.InputFeeNanos + out.OutputFeeNanos on every transfer.
// The lp mint is an ordinary entry, so liquidity fees are configured like any
// other mint.
type FlatSlab struct {
	mints map[solana.PublicKey]SlabEntry
}

var _ Strategy = (*FlatSlab)(nil)

func NewFlatSlab(mints map[solana.PublicKey]SlabEntry) (*FlatSlab, error) {
	s := &FlatSlab{mints: make(map[solana.PublicKey]SlabEntry, len(mints))}
	for mint, e := range mints {
		if absNanos(e.InputFeeNanos) >= shared.NanosDenominator || absNanos(e.OutputFeeNanos) >= shared.NanosDenominator {
			return nil, fmt.Errorf("%w: mint %s fee %+v", shared.ErrInvalidRate, mint, e)
		}
		s.mints[mint] = e
	}
	return s, nil
}

func absNanos(v int32) int64 {
	if v < 0 {
		return -int64(v)
	}
	return int64(v)
}

func (s *FlatSlab) Kind() Kind {
	return KindFlatSlab
}

func (s *FlatSlab) Entry(mint solana.PublicKey) (SlabEntry, bool) {
	e, ok := s.mints[mint]
	return e, ok
}

// FeeNanos returns the total fee for in in parts per 1e9.
func (s *FlatSlab) FeeNanos(in Input) (uint32, error) {
	inEntry, ok := s.mints[in.InMint]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no slab entry", shared.ErrUnsupportedMint, in.InMint)
	}
	outEntry, ok := s.mints[in.OutMint]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no slab entry", shared.ErrUnsupportedMint, in.OutMint)
	}
	total := int64(inEntry.InputFeeNanos) + int64(outEntry.OutputFeeNanos)
	if total < 0 {
		total = 0
	}
	if total >= shared.NanosDenominator {
		return 0, fmt.Errorf("%w: %s -> %s fee %d nanos", shared.ErrInvalidRate, in.InMint, in.OutMint, total)
	}
	return uint32(total), nil
}

func (s *FlatSlab) feeRatio(in Input) (math.FeeRatio, error) {
	nanos, err := s.FeeNanos(in)
	if err != nil {
		return math.FeeRatio{}, err
	}
	return math.FeeRatioFromNanos(nanos, shared.RoundingUp)
}

func (s *FlatSlab) PriceExactIn(in Input) (uint64, error) {
	fee, err := s.feeRatio(in)
	if err != nil {
		return 0, err
	}
	return priceExactIn(fee, in.Value)
}

func (s *FlatSlab) PriceExactOut(in Input) (uint64, error) {
	fee, err := s.feeRatio(in)
	if err != nil {
		return 0, err
	}
	return priceExactOut(fee, in.Value)
}
