package calculator

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/lstpool-go/shared"
)

// ValueCalculator converts between token amounts and value (base asset units).
// An instance is only valid for the epoch of the Clock it was built with.
type ValueCalculator interface {
	ToValue(amount uint64) (shared.ValueRange, error)
	FromValue(value uint64) (shared.ValueRange, error)
}

type Kind uint8

const (
	KindWsol Kind = iota
	KindSplStakePool
	KindSanctumSpl
	KindSanctumSplMulti
	KindMarinade
	KindLido
	// KindLp values the pool's own liquidity token. It has no program of its
	// own and is never looked up by program id.
	KindLp
)

var kindNames = map[Kind]string{
	KindWsol:            "wsol",
	KindSplStakePool:    "spl",
	KindSanctumSpl:      "sanctum-spl",
	KindSanctumSplMulti: "sanctum-spl-multi",
	KindMarinade:        "marinade",
	KindLido:            "lido",
	KindLp:              "lp",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsExchangePool reports whether k is valued with the stake pool formula.
func (k Kind) IsExchangePool() bool {
	return k == KindSplStakePool || k == KindSanctumSpl || k == KindSanctumSplMulti
}

func (k Kind) IsExternal() bool {
	return k == KindMarinade || k == KindLido
}

var (
	WsolCalculatorProgramID            = solana.MustPublicKeyFromBase58("wsoGmxQLSvwWpuaidCApxN5kEowLe2HLQLJhCQnj4bE")
	SplCalculatorProgramID             = solana.MustPublicKeyFromBase58("sp1V4h2gWorkGhVcazBc22Hfo2f5sd7jcjT4EDPrWFF")
	SanctumSplCalculatorProgramID      = solana.MustPublicKeyFromBase58("sspUE1vrh7xRoXxGsg7vR1zde2WdGtJRbyK9uRumBDy")
	SanctumSplMultiCalculatorProgramID = solana.MustPublicKeyFromBase58("ssmbu3KZxgonUtjEMCKspZzxvUQCxAFnyh1rcHUeEDo")
	MarinadeCalculatorProgramID        = solana.MustPublicKeyFromBase58("mare3SCyfZkAndpBRBeonETmkCCB3TJTTrz8ZN2dnhP")
	LidoCalculatorProgramID            = solana.MustPublicKeyFromBase58("1idUSy4MGGKyKhvjSnGZ6Zc7Q4eKQcibym4BkEEw9KR")
)

var programKinds = map[solana.PublicKey]Kind{
	WsolCalculatorProgramID:            KindWsol,
	SplCalculatorProgramID:             KindSplStakePool,
	SanctumSplCalculatorProgramID:      KindSanctumSpl,
	SanctumSplMultiCalculatorProgramID: KindSanctumSplMulti,
	MarinadeCalculatorProgramID:        KindMarinade,
	LidoCalculatorProgramID:            KindLido,
}

// KindFromProgram resolves the calculator identity recorded on a token entry.
func KindFromProgram(programID solana.PublicKey) (Kind, error) {
	kind, ok := programKinds[programID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", shared.ErrUnknownCalculator, programID)
	}
	return kind, nil
}

// ProgramOf is the inverse of KindFromProgram.
func ProgramOf(kind Kind) (solana.PublicKey, error) {
	for id, k := range programKinds {
		if k == kind {
			return id, nil
		}
	}
	return solana.PublicKey{}, fmt.Errorf("%w: %s", shared.ErrUnknownCalculator, kind)
}

// Snapshot is the decoded protocol state a calculator is built from. Only the
// field matching the calculator kind is read.
type Snapshot struct {
	ExchangePool *ExchangePoolState
	// External is the opaque capability for protocols whose math is owned by
	// the protocol itself.
	External        ValueCalculator
	LastUpdateEpoch uint64
}

// New builds the calculator recorded for a token entry.
func New(programID solana.PublicKey, snapshot Snapshot, clock shared.Clock) (ValueCalculator, error) {
	kind, err := KindFromProgram(programID)
	if err != nil {
		return nil, err
	}
	switch {
	case kind == KindWsol:
		return Wsol{}, nil
	case kind.IsExchangePool():
		if snapshot.ExchangePool == nil {
			return nil, fmt.Errorf("%w: no %s pool state", shared.ErrNotUpdated, kind)
		}
		return NewExchangePool(kind, *snapshot.ExchangePool, clock)
	case kind.IsExternal():
		return NewExternal(kind, snapshot.External, snapshot.LastUpdateEpoch, clock)
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownCalculator, kind)
	}
}
