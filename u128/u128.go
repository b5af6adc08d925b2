package u128

import (
	"errors"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
)

var errOverflow = errors.New("value overflows Uint128")

type Uint128 binary.Uint128

func (u *Uint128) Scan(s fmt.ScanState, ch rune) error {
	i := new(big.Int)
	if err := i.Scan(s, ch); err != nil {
		return err
	}
	v, err := FromBig(i)
	if err != nil {
		return err
	}
	u.Lo, u.Hi = v.Lo, v.Hi
	return nil
}

// FromBig converts v to a little endian Uint128.
func FromBig(v *big.Int) (binary.Uint128, error) {
	out := binary.NewUint128LittleEndian()
	if v == nil {
		return *out, nil
	}
	if v.Sign() < 0 {
		return *out, errors.New("value cannot be negative")
	}
	if v.BitLen() > 128 {
		return *out, errOverflow
	}
	out.Lo = new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0))).Uint64()
	out.Hi = new(big.Int).Rsh(v, 64).Uint64()
	return *out, nil
}

// Parse reads a base-10 unsigned integer.
func Parse(num string) (binary.Uint128, error) {
	u128 := binary.NewUint128LittleEndian()
	if _, err := fmt.Sscan(num, (*Uint128)(u128)); err != nil {
		return binary.Uint128{}, fmt.Errorf("parse uint128 %q: %w", num, err)
	}
	return *u128, nil
}

func ToBig(u binary.Uint128) *big.Int {
	return u.BigInt()
}
