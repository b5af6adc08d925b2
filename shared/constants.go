package shared

import (
	"math/big"
)

const (
	BasisPointMax    = 10_000
	NanosDenominator = 1_000_000_000

	ScaleOffset = 64
	U64Max      = ^uint64(0)
)

var (
	OneQ64    = new(big.Int).Lsh(big.NewInt(1), ScaleOffset)
	HalfQ64   = new(big.Int).Lsh(big.NewInt(1), ScaleOffset-1)
	U64MaxBig = new(big.Int).SetUint64(U64Max)
)
