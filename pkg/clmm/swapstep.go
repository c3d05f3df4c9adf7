package clmm

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"whirlcore/pkg/clmmerrors"
	"whirlcore/pkg/fixedpoint"
	"whirlcore/pkg/tokenmath"
)

// feeRateDenominator is the scale of Pool.FeeRate: hundredths of a
// basis point, so a fee_rate of 3000 means 0.3%.
const feeRateDenominator = 1_000_000

// SwapStepResult is the outcome of a single swap segment (§4.7).
type SwapStepResult struct {
	NextSqrtPrice uint128.Uint128
	AmountIn      uint64
	AmountOut     uint64
	FeeAmount     uint64
	ReachedTarget bool
}

// ComputeSwapStep consumes amountRemaining (input or output, per
// amountSpecifiedIsInput) moving from currentSqrtPrice toward
// sqrtPriceTarget at the given liquidity and fee rate, stopping early
// if the target is reached first. amount_in always rounds up,
// amount_out always rounds down (§4.7 step 5). FAILS
// SqrtPriceOutOfRangeError if the target or the resulting price lies
// in the wrong direction for aToB.
func ComputeSwapStep(currentSqrtPrice, sqrtPriceTarget, liquidity uint128.Uint128, amountRemaining uint64, amountSpecifiedIsInput, aToB bool, feeRate uint16) (SwapStepResult, error) {
	if aToB && sqrtPriceTarget.Cmp(currentSqrtPrice) > 0 {
		return SwapStepResult{}, &clmmerrors.SqrtPriceOutOfRangeError{SqrtPrice: sqrtPriceTarget.String()}
	}
	if !aToB && sqrtPriceTarget.Cmp(currentSqrtPrice) < 0 {
		return SwapStepResult{}, &clmmerrors.SqrtPriceOutOfRangeError{SqrtPrice: sqrtPriceTarget.String()}
	}

	inputAmountToTarget := func() (uint64, error) {
		if aToB {
			return tokenmath.AmountAFromLiquidity(sqrtPriceTarget, currentSqrtPrice, liquidity, true)
		}
		return tokenmath.AmountBFromLiquidity(currentSqrtPrice, sqrtPriceTarget, liquidity, true)
	}
	outputAmountToTarget := func() (uint64, error) {
		if aToB {
			return tokenmath.AmountBFromLiquidity(sqrtPriceTarget, currentSqrtPrice, liquidity, false)
		}
		return tokenmath.AmountAFromLiquidity(currentSqrtPrice, sqrtPriceTarget, liquidity, false)
	}
	nextPriceFromInput := func(amount uint64) (uint128.Uint128, error) {
		if aToB {
			return tokenmath.NextSqrtPriceFromAmountA(currentSqrtPrice, liquidity, amount, true)
		}
		return tokenmath.NextSqrtPriceFromAmountB(currentSqrtPrice, liquidity, amount, true)
	}
	nextPriceFromOutput := func(amount uint64) (uint128.Uint128, error) {
		if aToB {
			return tokenmath.NextSqrtPriceFromAmountB(currentSqrtPrice, liquidity, amount, false)
		}
		return tokenmath.NextSqrtPriceFromAmountA(currentSqrtPrice, liquidity, amount, false)
	}

	var nextSqrtPrice uint128.Uint128
	var err error

	if amountSpecifiedIsInput {
		amountRemainingLessFee, mulErr := mulDivU64Floor(amountRemaining, feeRateDenominator-uint64(feeRate), feeRateDenominator)
		if mulErr != nil {
			return SwapStepResult{}, mulErr
		}
		amountInToTarget, tErr := inputAmountToTarget()
		if tErr != nil {
			return SwapStepResult{}, tErr
		}
		if amountRemainingLessFee >= amountInToTarget {
			nextSqrtPrice = sqrtPriceTarget
		} else {
			nextSqrtPrice, err = nextPriceFromInput(amountRemainingLessFee)
			if err != nil {
				return SwapStepResult{}, err
			}
		}
	} else {
		amountOutToTarget, tErr := outputAmountToTarget()
		if tErr != nil {
			return SwapStepResult{}, tErr
		}
		if amountRemaining >= amountOutToTarget {
			nextSqrtPrice = sqrtPriceTarget
		} else {
			nextSqrtPrice, err = nextPriceFromOutput(amountRemaining)
			if err != nil {
				return SwapStepResult{}, err
			}
		}
	}

	if aToB && nextSqrtPrice.Cmp(currentSqrtPrice) > 0 {
		return SwapStepResult{}, &clmmerrors.SqrtPriceOutOfRangeError{SqrtPrice: nextSqrtPrice.String()}
	}
	if !aToB && nextSqrtPrice.Cmp(currentSqrtPrice) < 0 {
		return SwapStepResult{}, &clmmerrors.SqrtPriceOutOfRangeError{SqrtPrice: nextSqrtPrice.String()}
	}

	reached := nextSqrtPrice.Cmp(sqrtPriceTarget) == 0

	var amountIn, amountOut uint64
	if aToB {
		if !(reached && amountSpecifiedIsInput) {
			amountIn, err = tokenmath.AmountAFromLiquidity(nextSqrtPrice, currentSqrtPrice, liquidity, true)
			if err != nil {
				return SwapStepResult{}, err
			}
		}
		if !(reached && !amountSpecifiedIsInput) {
			amountOut, err = tokenmath.AmountBFromLiquidity(nextSqrtPrice, currentSqrtPrice, liquidity, false)
			if err != nil {
				return SwapStepResult{}, err
			}
		}
	} else {
		if !(reached && amountSpecifiedIsInput) {
			amountIn, err = tokenmath.AmountBFromLiquidity(currentSqrtPrice, nextSqrtPrice, liquidity, true)
			if err != nil {
				return SwapStepResult{}, err
			}
		}
		if !(reached && !amountSpecifiedIsInput) {
			amountOut, err = tokenmath.AmountAFromLiquidity(currentSqrtPrice, nextSqrtPrice, liquidity, false)
			if err != nil {
				return SwapStepResult{}, err
			}
		}
	}
	// the target-reached case on the side matching amount_specified
	// carries its amount from the target pre-check above, not the
	// recompute; fill it in now.
	if reached && amountSpecifiedIsInput {
		amountIn, err = inputAmountToTarget()
		if err != nil {
			return SwapStepResult{}, err
		}
	}
	if reached && !amountSpecifiedIsInput {
		amountOut, err = outputAmountToTarget()
		if err != nil {
			return SwapStepResult{}, err
		}
	}

	var feeAmount uint64
	if amountSpecifiedIsInput && !reached {
		feeAmount = amountRemaining - amountIn
	} else {
		feeAmount, err = mulDivU64Ceil(amountIn, uint64(feeRate), feeRateDenominator-uint64(feeRate))
		if err != nil {
			return SwapStepResult{}, err
		}
	}

	return SwapStepResult{
		NextSqrtPrice: nextSqrtPrice,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		FeeAmount:     feeAmount,
		ReachedTarget: reached,
	}, nil
}

func mulDivU64Floor(a, b, denom uint64) (uint64, error) {
	return mulDivU64(a, b, denom, false)
}

func mulDivU64Ceil(a, b, denom uint64) (uint64, error) {
	return mulDivU64(a, b, denom, true)
}

func mulDivU64(a, b, denom uint64, roundUp bool) (uint64, error) {
	product := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	result, err := fixedpoint.DivRoundUpIf(product, uint256.NewInt(denom), roundUp)
	if err != nil {
		return 0, err
	}
	if result.BitLen() > 64 {
		return 0, &clmmerrors.TokenMaxExceededError{Op: "clmm.mulDivU64", Got: result.Dec(), Max: "18446744073709551615"}
	}
	return result.Uint64(), nil
}
