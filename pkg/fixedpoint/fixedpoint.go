// Package fixedpoint implements the checked Q64.64 arithmetic
// primitives the rest of the core is built on: multiply-shift with
// overflow detection, and division with directional rounding. There is
// no silent wraparound anywhere in this package; every operation that
// would lose bits above its declared width fails instead.
package fixedpoint

import (
	"math/big"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"whirlcore/pkg/clmmerrors"
)

// Q is the number of fractional bits in the Q64.64 format.
const Q = 64

var maxUint128 = func() *uint256.Int {
	one := uint256.NewInt(1)
	shifted := new(uint256.Int).Lsh(one, 128)
	return new(uint256.Int).Sub(shifted, uint256.NewInt(1))
}()

// u256FromU128 widens a 128-bit value into a 256-bit intermediate. This
// never overflows: a is at most 2^128-1.
func u256FromU128(a uint128.Uint128) *uint256.Int {
	u, overflow := uint256.FromBig(a.Big())
	if overflow {
		// unreachable: a is bounded to 128 bits by its type.
		panic("fixedpoint: uint128 value did not fit in uint256")
	}
	return u
}

// u128FromU256 narrows a 256-bit intermediate to 128 bits, failing if
// the value does not fit.
func u128FromU256(op string, x *uint256.Int) (uint128.Uint128, error) {
	if x.Gt(maxUint128) {
		return uint128.Uint128{}, &clmmerrors.MultiplicationOverflowError{Op: op}
	}
	return uint128.FromBig(x.ToBig()), nil
}

// MulShiftRight computes (a*b) >> shift, as a 256-bit intermediate,
// returning the low 128 bits. The core calls it with shift 64 or 128
// (§4.1); any shift, including 0, is accepted. Fails with
// MultiplicationOverflowError if the shifted result does not fit in
// 128 bits.
func MulShiftRight(a, b uint128.Uint128, shift uint) (uint128.Uint128, error) {
	return MulShiftRightRoundUpIf(a, b, false, shift)
}

// MulShiftRightRoundUpIf is MulShiftRight, plus 1 added to the result
// if roundUp is set and the shifted-out low bits were non-zero.
func MulShiftRightRoundUpIf(a, b uint128.Uint128, roundUp bool, shift uint) (uint128.Uint128, error) {
	aa := u256FromU128(a)
	bb := u256FromU128(b)

	product := new(uint256.Int).Mul(aa, bb) // a, b <= 2^128-1 each: product fits in 256 bits exactly.

	shiftedOut := new(uint256.Int)
	if shift > 0 {
		mask := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), shift), uint256.NewInt(1))
		shiftedOut.And(product, mask)
	}

	result := new(uint256.Int).Rsh(product, shift)
	if roundUp && !shiftedOut.IsZero() {
		result.Add(result, uint256.NewInt(1))
	}

	return u128FromU256("fixedpoint.MulShiftRight", result)
}

// DivRoundUp computes ceil(n/d) for 256-bit intermediates. Fails with
// DivideByZeroError if d is zero.
func DivRoundUp(n, d *uint256.Int) (*uint256.Int, error) {
	return DivRoundUpIf(n, d, true)
}

// DivRoundUpIf computes n/d, rounding the quotient up iff roundUp and
// the division is inexact; otherwise it truncates. Fails with
// DivideByZeroError if d is zero.
func DivRoundUpIf(n, d *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, &clmmerrors.DivideByZeroError{Op: "fixedpoint.Div"}
	}
	quo := new(uint256.Int)
	rem := new(uint256.Int)
	quo.DivMod(n, d, rem)
	if roundUp && !rem.IsZero() {
		quo.Add(quo, uint256.NewInt(1))
	}
	return quo, nil
}

// U256FromU128 widens a Q64.64 value into a 256-bit intermediate for
// use in callers that need one more multiply of headroom than
// MulShiftRight budgets for (e.g. tokenmath's two-multiply forms).
func U256FromU128(a uint128.Uint128) *uint256.Int {
	return u256FromU128(a)
}

// U128FromU256 narrows a 256-bit intermediate back to Q64.64, failing
// with MultiplicationOverflowError (op-tagged) if it does not fit.
func U128FromU256(op string, x *uint256.Int) (uint128.Uint128, error) {
	return u128FromU256(op, x)
}

// U256FromBig widens an arbitrary-precision value, failing if it is
// negative or exceeds 256 bits.
func U256FromBig(op string, v *big.Int) (*uint256.Int, error) {
	if v.Sign() < 0 {
		return nil, &clmmerrors.NumberDownCastError{Op: op, Bits: 256}
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, &clmmerrors.NumberDownCastError{Op: op, Bits: 256}
	}
	return u, nil
}

// U64FromU128 narrows a Q64.64-scaled or plain 128-bit integer value
// down to 64 bits, failing with TokenMaxExceededError if it does not
// fit — this is the cast used when crediting owed token/reward amounts
// (§4.5, §4.6), whose declared width is u64.
func U64FromU128(op string, x uint128.Uint128) (uint64, error) {
	if x.Hi != 0 {
		return 0, &clmmerrors.TokenMaxExceededError{Op: op, Got: x.String(), Max: "18446744073709551615"}
	}
	return x.Lo, nil
}
