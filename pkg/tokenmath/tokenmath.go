// Package tokenmath implements the closed-form token-delta and
// next-square-root-price formulas of §4.3: the amount of token A or B
// swept between two prices at a given liquidity, and the inverse — the
// next price reached by consuming a given amount of A or B.
package tokenmath

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"whirlcore/pkg/clmmerrors"
	"whirlcore/pkg/fixedpoint"
	"whirlcore/pkg/tickmath"
)

func order(a, b uint128.Uint128) (lo, hi uint128.Uint128) {
	if a.Cmp(b) <= 0 {
		return a, b
	}
	return b, a
}

// mulDivRoundingUpIf computes floor_or_ceil(a*b/denom) on 256-bit
// intermediates.
func mulDivRoundingUpIf(a, b, denom *uint256.Int, roundUp bool) (*uint256.Int, error) {
	numerator := new(uint256.Int).Mul(a, b) // a, b are both bounded well under 2^256 by their callers.
	return fixedpoint.DivRoundUpIf(numerator, denom, roundUp)
}

// AmountAFromLiquidity computes the amount of token A swept between
// priceLow and priceHigh at the given liquidity. FAILS
// TokenMaxExceededError if the result does not fit in a u64.
func AmountAFromLiquidity(priceLow, priceHigh, liquidity uint128.Uint128, roundUp bool) (uint64, error) {
	priceLow, priceHigh = order(priceLow, priceHigh)

	numerator1 := new(uint256.Int).Lsh(fixedpoint.U256FromU128(liquidity), fixedpoint.Q)
	numerator2 := new(uint256.Int).Sub(fixedpoint.U256FromU128(priceHigh), fixedpoint.U256FromU128(priceLow))
	priceHigh256 := fixedpoint.U256FromU128(priceHigh)
	priceLow256 := fixedpoint.U256FromU128(priceLow)

	temp, err := mulDivRoundingUpIf(numerator1, numerator2, priceHigh256, roundUp)
	if err != nil {
		return 0, err
	}

	result, err := fixedpoint.DivRoundUpIf(temp, priceLow256, roundUp)
	if err != nil {
		return 0, err
	}

	if result.BitLen() > 64 {
		return 0, &clmmerrors.TokenMaxExceededError{Op: "tokenmath.AmountAFromLiquidity", Got: result.Dec(), Max: "18446744073709551615"}
	}
	return result.Uint64(), nil
}

// AmountBFromLiquidity computes the amount of token B swept between
// priceLow and priceHigh at the given liquidity. FAILS
// TokenMaxExceededError if the result does not fit in a u64.
func AmountBFromLiquidity(priceLow, priceHigh, liquidity uint128.Uint128, roundUp bool) (uint64, error) {
	priceLow, priceHigh = order(priceLow, priceHigh)

	diff := new(uint256.Int).Sub(fixedpoint.U256FromU128(priceHigh), fixedpoint.U256FromU128(priceLow))
	denom := new(uint256.Int).Lsh(uint256.NewInt(1), fixedpoint.Q)

	result, err := mulDivRoundingUpIf(fixedpoint.U256FromU128(liquidity), diff, denom, roundUp)
	if err != nil {
		return 0, err
	}

	if result.BitLen() > 64 {
		return 0, &clmmerrors.TokenMaxExceededError{Op: "tokenmath.AmountBFromLiquidity", Got: result.Dec(), Max: "18446744073709551615"}
	}
	return result.Uint64(), nil
}

// NextSqrtPriceFromAmountA computes the √price reached after moving
// `amount` of token A into (add=true) or out of (add=false) the pool
// at the given liquidity, rounding up (the direction that never
// under-charges the pool for an A-side move). FAILS DivideByZeroError
// if amount would fully consume the liquidity (add=false); FAILS
// SqrtPriceOutOfRangeError if the result leaves the admissible domain.
func NextSqrtPriceFromAmountA(sqrtPrice, liquidity uint128.Uint128, amount uint64, add bool) (uint128.Uint128, error) {
	if amount == 0 {
		return sqrtPrice, nil
	}

	liquidityShift := new(uint256.Int).Lsh(fixedpoint.U256FromU128(liquidity), fixedpoint.Q)
	amount256 := uint256.NewInt(amount)
	sqrtPrice256 := fixedpoint.U256FromU128(sqrtPrice)
	amountMulSqrtPrice := new(uint256.Int).Mul(amount256, sqrtPrice256)

	var resultU256 *uint256.Int
	if add {
		denominator := new(uint256.Int).Add(liquidityShift, amountMulSqrtPrice)
		if denominator.Cmp(liquidityShift) >= 0 {
			var err error
			resultU256, err = mulDivRoundingUpIf(liquidityShift, sqrtPrice256, denominator, true)
			if err != nil {
				return uint128.Uint128{}, err
			}
		} else {
			temp := new(uint256.Int).Div(liquidityShift, sqrtPrice256)
			temp.Add(temp, amount256)
			var err error
			resultU256, err = fixedpoint.DivRoundUp(liquidityShift, temp)
			if err != nil {
				return uint128.Uint128{}, err
			}
		}
	} else {
		if liquidityShift.Cmp(amountMulSqrtPrice) <= 0 {
			return uint128.Uint128{}, &clmmerrors.DivideByZeroError{Op: "tokenmath.NextSqrtPriceFromAmountA"}
		}
		denominator := new(uint256.Int).Sub(liquidityShift, amountMulSqrtPrice)
		var err error
		resultU256, err = mulDivRoundingUpIf(liquidityShift, sqrtPrice256, denominator, true)
		if err != nil {
			return uint128.Uint128{}, err
		}
	}

	result, err := fixedpoint.U128FromU256("tokenmath.NextSqrtPriceFromAmountA", resultU256)
	if err != nil {
		return uint128.Uint128{}, err
	}
	return checkInDomain(result)
}

// NextSqrtPriceFromAmountB computes the √price reached after moving
// `amount` of token B into (add=true) or out of (add=false) the pool
// at the given liquidity, rounding down. FAILS SqrtPriceOutOfRangeError
// if the result would leave the admissible domain, including the case
// where a removal would drive the price to zero or below.
func NextSqrtPriceFromAmountB(sqrtPrice, liquidity uint128.Uint128, amount uint64, add bool) (uint128.Uint128, error) {
	deltaY := new(uint256.Int).Lsh(uint256.NewInt(amount), fixedpoint.Q)
	liquidity256 := fixedpoint.U256FromU128(liquidity)
	sqrtPrice256 := fixedpoint.U256FromU128(sqrtPrice)

	var resultU256 *uint256.Int
	if add {
		quotient, err := fixedpoint.DivRoundUpIf(deltaY, liquidity256, false)
		if err != nil {
			return uint128.Uint128{}, err
		}
		resultU256 = new(uint256.Int).Add(sqrtPrice256, quotient)
	} else {
		amountDivLiquidity, err := fixedpoint.DivRoundUp(deltaY, liquidity256)
		if err != nil {
			return uint128.Uint128{}, err
		}
		if sqrtPrice256.Cmp(amountDivLiquidity) <= 0 {
			return uint128.Uint128{}, &clmmerrors.SqrtPriceOutOfRangeError{SqrtPrice: "0"}
		}
		resultU256 = new(uint256.Int).Sub(sqrtPrice256, amountDivLiquidity)
	}

	result, err := fixedpoint.U128FromU256("tokenmath.NextSqrtPriceFromAmountB", resultU256)
	if err != nil {
		return uint128.Uint128{}, err
	}
	return checkInDomain(result)
}

func checkInDomain(p uint128.Uint128) (uint128.Uint128, error) {
	if p.Cmp(tickmath.MinSqrtPrice) < 0 || p.Cmp(tickmath.MaxSqrtPrice) > 0 {
		return uint128.Uint128{}, &clmmerrors.SqrtPriceOutOfRangeError{SqrtPrice: p.String()}
	}
	return p, nil
}
