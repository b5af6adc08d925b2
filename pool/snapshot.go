package pool

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/krazyTry/lstpool-go/calculator"
	"github.com/krazyTry/lstpool-go/pricing"
	"github.com/krazyTry/lstpool-go/release"
	"github.com/krazyTry/lstpool-go/shared"
	"github.com/krazyTry/lstpool-go/u128"
)

// LoadSnapshot decodes a JSON pool snapshot:
//
//	{
//	  "clock":   {"slot": 0, "epoch": 0},
//	  "lp_mint": "<base58>",
//	  "ledger":  {"total_value": 0, "withheld_value": 0, "protocol_fee_value": 0,
//	              "protocol_fee_nanos": 0, "release_rate": "<raw q64>",
//	              "last_release_slot": 0, "lp_supply": 0},
//	  "pricing": {"program": "<base58>", "lp_withdrawal_fee_bps": 0,
//	              "mints": {"<base58>": {"input_fee_bps": 0, "output_fee_bps": 0}}},
//	  "entries": [{"mint": "<base58>", "calculator": "<base58>", "value": 0,
//	               "reserves": 0, "input_disabled": false,
//	               "state": {"total_value": 0, "token_supply": 0,
//	                         "withdrawal_fee_num": 0, "withdrawal_fee_den": 0,
//	                         "last_update_epoch": 0}}]
//	}
//
// Amounts may be JSON numbers or decimal strings. The ledger may give
// "release_rate_decimal" instead of the raw rate; with neither, defaultRate
// is used. Slab pricing uses "input_fee_nanos" / "output_fee_nanos".
// External calculators only get their "last_update_epoch" here; the caller
// attaches the protocol capability to Calculators[mint].External.
func LoadSnapshot(data []byte, defaultRate release.Rate) (Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return Snapshot{}, errors.New("snapshot is not valid json")
	}
	root := gjson.ParseBytes(data)

	var s Snapshot
	var err error
	s.Clock = shared.Clock{
		Slot:  root.Get("clock.slot").Uint(),
		Epoch: root.Get("clock.epoch").Uint(),
	}
	if s.LpMint, err = publicKey(root, "lp_mint"); err != nil {
		return Snapshot{}, err
	}
	if s.Ledger, err = loadLedger(root.Get("ledger"), defaultRate); err != nil {
		return Snapshot{}, err
	}
	if s.Pricing, err = loadPricing(root.Get("pricing"), s.LpMint); err != nil {
		return Snapshot{}, err
	}

	s.Calculators = make(map[solana.PublicKey]calculator.Snapshot)
	for i, e := range root.Get("entries").Array() {
		entry, calc, err := loadEntry(e)
		if err != nil {
			return Snapshot{}, fmt.Errorf("entries[%d]: %w", i, err)
		}
		s.Entries = append(s.Entries, entry)
		s.Calculators[entry.Mint] = calc
	}
	return s, nil
}

func publicKey(r gjson.Result, path string) (solana.PublicKey, error) {
	v := r.Get(path)
	if !v.Exists() {
		return solana.PublicKey{}, fmt.Errorf("missing %s", path)
	}
	key, err := solana.PublicKeyFromBase58(v.String())
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}

func loadLedger(r gjson.Result, defaultRate release.Rate) (shared.PoolLedger, error) {
	if !r.Exists() {
		return shared.PoolLedger{}, errors.New("missing ledger")
	}
	ledger := shared.PoolLedger{
		TotalValue:       r.Get("total_value").Uint(),
		WithheldValue:    r.Get("withheld_value").Uint(),
		ProtocolFeeValue: r.Get("protocol_fee_value").Uint(),
		ProtocolFeeNanos: uint32(r.Get("protocol_fee_nanos").Uint()),
		LastReleaseSlot:  r.Get("last_release_slot").Uint(),
		LpSupply:         r.Get("lp_supply").Uint(),
	}
	if nanos := r.Get("protocol_fee_nanos").Uint(); nanos > shared.NanosDenominator {
		return shared.PoolLedger{}, fmt.Errorf("%w: protocol fee nanos %d", shared.ErrInvalidRate, nanos)
	}

	switch {
	case r.Get("release_rate").Exists():
		raw, err := u128.Parse(r.Get("release_rate").String())
		if err != nil {
			return shared.PoolLedger{}, fmt.Errorf("release_rate: %w", err)
		}
		rate, err := release.RateFromUint128(raw)
		if err != nil {
			return shared.PoolLedger{}, fmt.Errorf("release_rate: %w", err)
		}
		ledger.ReleaseRate = rate.Uint128()
	case r.Get("release_rate_decimal").Exists():
		d, err := decimal.NewFromString(r.Get("release_rate_decimal").String())
		if err != nil {
			return shared.PoolLedger{}, fmt.Errorf("release_rate_decimal: %w", err)
		}
		rate, err := release.RateFromDecimal(d)
		if err != nil {
			return shared.PoolLedger{}, fmt.Errorf("release_rate_decimal: %w", err)
		}
		ledger.ReleaseRate = rate.Uint128()
	default:
		ledger.ReleaseRate = defaultRate.Uint128()
	}

	if err := ledger.Validate(); err != nil {
		return shared.PoolLedger{}, err
	}
	return ledger, nil
}

func loadPricing(r gjson.Result, lpMint solana.PublicKey) (pricing.Strategy, error) {
	program, err := publicKey(r, "program")
	if err != nil {
		return nil, fmt.Errorf("pricing: %w", err)
	}
	kind, err := pricing.KindFromProgram(program)
	if err != nil {
		return nil, err
	}

	var parseErr error
	switch kind {
	case pricing.KindFlatFee:
		mints := make(map[solana.PublicKey]pricing.FlatFeeEntry)
		r.Get("mints").ForEach(func(k, v gjson.Result) bool {
			mint, err := solana.PublicKeyFromBase58(k.String())
			if err != nil {
				parseErr = fmt.Errorf("pricing mint %q: %w", k.String(), err)
				return false
			}
			mints[mint] = pricing.FlatFeeEntry{
				InputFeeBps:  int16(v.Get("input_fee_bps").Int()),
				OutputFeeBps: int16(v.Get("output_fee_bps").Int()),
			}
			return true
		})
		if parseErr != nil {
			return nil, parseErr
		}
		f, err := pricing.NewFlatFee(lpMint, uint16(r.Get("lp_withdrawal_fee_bps").Uint()), mints)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		mints := make(map[solana.PublicKey]pricing.SlabEntry)
		r.Get("mints").ForEach(func(k, v gjson.Result) bool {
			mint, err := solana.PublicKeyFromBase58(k.String())
			if err != nil {
				parseErr = fmt.Errorf("pricing mint %q: %w", k.String(), err)
				return false
			}
			mints[mint] = pricing.SlabEntry{
				InputFeeNanos:  int32(v.Get("input_fee_nanos").Int()),
				OutputFeeNanos: int32(v.Get("output_fee_nanos").Int()),
			}
			return true
		})
		if parseErr != nil {
			return nil, parseErr
		}
		slab, err := pricing.NewFlatSlab(mints)
		if err != nil {
			return nil, err
		}
		return slab, nil
	}
}

func loadEntry(r gjson.Result) (shared.TokenEntry, calculator.Snapshot, error) {
	mint, err := publicKey(r, "mint")
	if err != nil {
		return shared.TokenEntry{}, calculator.Snapshot{}, err
	}
	program, err := publicKey(r, "calculator")
	if err != nil {
		return shared.TokenEntry{}, calculator.Snapshot{}, err
	}
	kind, err := calculator.KindFromProgram(program)
	if err != nil {
		return shared.TokenEntry{}, calculator.Snapshot{}, err
	}
	entry := shared.TokenEntry{
		Mint:              mint,
		CalculatorProgram: program,
		Value:             r.Get("value").Uint(),
		Reserves:          r.Get("reserves").Uint(),
		InputDisabled:     r.Get("input_disabled").Bool(),
	}

	state := r.Get("state")
	calc := calculator.Snapshot{LastUpdateEpoch: state.Get("last_update_epoch").Uint()}
	if kind.IsExchangePool() && state.Exists() {
		calc.ExchangePool = &calculator.ExchangePoolState{
			TotalValue:       state.Get("total_value").Uint(),
			TokenSupply:      state.Get("token_supply").Uint(),
			WithdrawalFeeNum: state.Get("withdrawal_fee_num").Uint(),
			WithdrawalFeeDen: state.Get("withdrawal_fee_den").Uint(),
			LastUpdateEpoch:  calc.LastUpdateEpoch,
		}
	}
	return entry, calc, nil
}
