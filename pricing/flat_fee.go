package pricing

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/lstpool-go/math"
	"github.com/krazyTry/lstpool-go/shared"
)

// FlatFeeEntry is the per-mint fee in basis points. Negative fees are
// rebates that offset the other side of a swap.
type FlatFeeEntry struct {
	InputFeeBps  int16
	OutputFeeBps int16
}

// FlatFee charges in.InputFeeBps + out.OutputFeeBps on swaps, nothing on
// adding liquidity and LpWithdrawalFeeBps on removing it.
type FlatFee struct {
	lpMint             solana.PublicKey
	lpWithdrawalFeeBps uint16
	mints              map[solana.PublicKey]FlatFeeEntry
}

var _ Strategy = (*FlatFee)(nil)

func NewFlatFee(lpMint solana.PublicKey, lpWithdrawalFeeBps uint16, mints map[solana.PublicKey]FlatFeeEntry) (*FlatFee, error) {
	if lpWithdrawalFeeBps > shared.BasisPointMax {
		return nil, fmt.Errorf("%w: lp withdrawal fee %d bps", shared.ErrInvalidRate, lpWithdrawalFeeBps)
	}
	f := &FlatFee{
		lpMint:             lpMint,
		lpWithdrawalFeeBps: lpWithdrawalFeeBps,
		mints:              make(map[solana.PublicKey]FlatFeeEntry, len(mints)),
	}
	for mint, e := range mints {
		if absBps(e.InputFeeBps) > shared.BasisPointMax || absBps(e.OutputFeeBps) > shared.BasisPointMax {
			return nil, fmt.Errorf("%w: mint %s fee %+v", shared.ErrInvalidRate, mint, e)
		}
		f.mints[mint] = e
	}
	return f, nil
}

func absBps(v int16) int32 {
	if v < 0 {
		return -int32(v)
	}
	return int32(v)
}

func (f *FlatFee) Kind() Kind {
	return KindFlatFee
}

func (f *FlatFee) LpMint() solana.PublicKey {
	return f.lpMint
}

func (f *FlatFee) LpWithdrawalFeeBps() uint16 {
	return f.lpWithdrawalFeeBps
}

func (f *FlatFee) Entry(mint solana.PublicKey) (FlatFeeEntry, bool) {
	e, ok := f.mints[mint]
	return e, ok
}

func (f *FlatFee) entry(mint solana.PublicKey) (FlatFeeEntry, error) {
	e, ok := f.mints[mint]
	if !ok {
		return FlatFeeEntry{}, fmt.Errorf("%w: %s has no flat fee entry", shared.ErrUnsupportedMint, mint)
	}
	return e, nil
}

// FeeBps returns the total fee for in in basis points.
func (f *FlatFee) FeeBps(in Input) (uint16, error) {
	switch {
	case in.OutMint == f.lpMint:
		if _, err := f.entry(in.InMint); err != nil {
			return 0, err
		}
		return 0, nil
	case in.InMint == f.lpMint:
		if _, err := f.entry(in.OutMint); err != nil {
			return 0, err
		}
		return f.lpWithdrawalFeeBps, nil
	}
	inEntry, err := f.entry(in.InMint)
	if err != nil {
		return 0, err
	}
	outEntry, err := f.entry(in.OutMint)
	if err != nil {
		return 0, err
	}
	total := int32(inEntry.InputFeeBps) + int32(outEntry.OutputFeeBps)
	if total < 0 {
		total = 0
	}
	if total > shared.BasisPointMax {
		return 0, fmt.Errorf("%w: %s -> %s fee %d bps", shared.ErrInvalidRate, in.InMint, in.OutMint, total)
	}
	return uint16(total), nil
}

func (f *FlatFee) feeRatio(in Input) (math.FeeRatio, error) {
	bps, err := f.FeeBps(in)
	if err != nil {
		return math.FeeRatio{}, err
	}
	return math.FeeRatioFromBps(bps, shared.RoundingUp)
}

func (f *FlatFee) PriceExactIn(in Input) (uint64, error) {
	fee, err := f.feeRatio(in)
	if err != nil {
		return 0, err
	}
	return priceExactIn(fee, in.Value)
}

func (f *FlatFee) PriceExactOut(in Input) (uint64, error) {
	fee, err := f.feeRatio(in)
	if err != nil {
		return 0, err
	}
	return priceExactOut(fee, in.Value)
}
