package shared

import (
	"errors"
	"fmt"
)

var (
	ErrMath           = errors.New("math error")
	ErrOverflow       = fmt.Errorf("%w: overflow", ErrMath)
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", ErrMath)
	ErrRounding       = fmt.Errorf("%w: rounding", ErrMath)

	ErrZeroValue                 = errors.New("zero value")
	ErrSlippageToleranceExceeded = errors.New("slippage tolerance exceeded")
	ErrNotEnoughLiquidity        = errors.New("not enough liquidity")
	ErrNotUpdated                = errors.New("calculator not updated for current epoch")
	ErrRateTooSmall              = errors.New("rate too small")
	ErrInvalidRate               = errors.New("invalid rate")
	ErrUnknownCalculator         = errors.New("unknown calculator program")
	ErrUnknownPricing            = errors.New("unknown pricing program")
	ErrUnsupportedMint           = errors.New("unsupported mint")
	ErrLpSupplyZero              = errors.New("lp token supply is zero")
	ErrInputDisabled             = errors.New("input disabled for mint")
	ErrInvalidLedger             = errors.New("invalid pool ledger")
)

// NotEnoughLiquidityError reports the amount a trade needs from the pool and
// what the pool holds.
type NotEnoughLiquidityError struct {
	Required  uint64
	Available uint64
}

func (e *NotEnoughLiquidityError) Error() string {
	return fmt.Sprintf("%s: required %d, available %d", ErrNotEnoughLiquidity, e.Required, e.Available)
}

func (e *NotEnoughLiquidityError) Unwrap() error {
	return ErrNotEnoughLiquidity
}

// ErrorCode is the stable numeric identity of an error kind.
type ErrorCode uint32

const (
	CodeUnknown ErrorCode = 0

	CodeMath ErrorCode = 6000 + iota - 1
	CodeOverflow
	CodeDivisionByZero
	CodeRounding
	CodeZeroValue
	CodeSlippageToleranceExceeded
	CodeNotEnoughLiquidity
	CodeNotUpdated
	CodeRateTooSmall
	CodeInvalidRate
	CodeUnknownCalculator
	CodeUnknownPricing
	CodeUnsupportedMint
	CodeLpSupplyZero
	CodeInputDisabled
	CodeInvalidLedger
)

type codedError struct {
	err  error
	code ErrorCode
	name string
}

// most specific first: the math sub-kinds wrap ErrMath.
var errorCodes = []codedError{
	{ErrOverflow, CodeOverflow, "Overflow"},
	{ErrDivisionByZero, CodeDivisionByZero, "DivisionByZero"},
	{ErrRounding, CodeRounding, "Rounding"},
	{ErrMath, CodeMath, "MathError"},
	{ErrZeroValue, CodeZeroValue, "ZeroValue"},
	{ErrSlippageToleranceExceeded, CodeSlippageToleranceExceeded, "SlippageToleranceExceeded"},
	{ErrNotEnoughLiquidity, CodeNotEnoughLiquidity, "NotEnoughLiquidity"},
	{ErrNotUpdated, CodeNotUpdated, "NotUpdated"},
	{ErrRateTooSmall, CodeRateTooSmall, "RateTooSmall"},
	{ErrInvalidRate, CodeInvalidRate, "InvalidRate"},
	{ErrUnknownCalculator, CodeUnknownCalculator, "UnknownCalculator"},
	{ErrUnknownPricing, CodeUnknownPricing, "UnknownPricing"},
	{ErrUnsupportedMint, CodeUnsupportedMint, "UnsupportedMint"},
	{ErrLpSupplyZero, CodeLpSupplyZero, "LpSupplyZero"},
	{ErrInputDisabled, CodeInputDisabled, "InputDisabled"},
	{ErrInvalidLedger, CodeInvalidLedger, "InvalidLedger"},
}

// CodeOf maps err to its stable code, CodeUnknown if it is not one of ours.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}

func (c ErrorCode) String() string {
	for _, e := range errorCodes {
		if e.code == c {
			return e.name
		}
	}
	return fmt.Sprintf("Unknown(%d)", uint32(c))
}
