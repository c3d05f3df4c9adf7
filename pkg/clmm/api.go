package clmm

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"whirlcore/pkg/clmmerrors"
	"whirlcore/pkg/config"
	"whirlcore/pkg/tickmath"
	"whirlcore/pkg/tokenmath"
)

// InitializePool constructs a new pool at the given tick spacing and
// starting price, with its fee rate seeded from the configured
// tick-spacing/fee-tier table (§3, §6). FAILS InvalidTickSpacingError
// if spacing is not one of the configured tiers.
func InitializePool(id solana.PublicKey, tickSpacing uint16, initialSqrtPrice uint128.Uint128) (*Pool, error) {
	if !config.IsValidTickSpacing(tickSpacing) {
		return nil, &clmmerrors.InvalidTickSpacingError{Spacing: tickSpacing}
	}
	var feeRate uint16
	for _, tier := range config.FeeTiers() {
		if tier.TickSpacing == tickSpacing {
			feeRate = tier.FeeRate
			break
		}
	}

	tickIndex, err := tickmath.SqrtPriceToTick(initialSqrtPrice)
	if err != nil {
		return nil, err
	}

	return &Pool{
		Id:               id,
		TickSpacing:      tickSpacing,
		SqrtPrice:        initialSqrtPrice,
		TickCurrentIndex: tickIndex,
		FeeRate:          feeRate,
	}, nil
}

// OpenPosition validates a pair of tick bounds against the pool's
// spacing and the global tick domain and returns a freshly zeroed
// position bracketed by them (§6). FAILS InvalidPositionBoundsError if
// the bounds are not strictly increasing, not multiples of the pool's
// tick spacing, or leave [MinTick, MaxTick].
func OpenPosition(pool *Pool, tickLower, tickUpper int32) (*Position, error) {
	if tickLower >= tickUpper {
		return nil, &clmmerrors.InvalidPositionBoundsError{Lower: tickLower, Upper: tickUpper}
	}
	if tickLower < tickmath.MinTick || tickUpper > tickmath.MaxTick {
		return nil, &clmmerrors.InvalidPositionBoundsError{Lower: tickLower, Upper: tickUpper}
	}
	spacing := int32(pool.TickSpacing)
	if tickLower%spacing != 0 || tickUpper%spacing != 0 {
		return nil, &clmmerrors.InvalidPositionBoundsError{Lower: tickLower, Upper: tickUpper}
	}

	return &Position{
		PoolRef:        pool.Id,
		TickLowerIndex: tickLower,
		TickUpperIndex: tickUpper,
	}, nil
}

// ClosePosition removes a position from bookkeeping. FAILS
// ClosePositionNotEmptyError unless the position carries zero
// liquidity and zero owed fees and rewards (§4.5).
func ClosePosition(position *Position) error {
	if !position.Closable() {
		return &clmmerrors.ClosePositionNotEmptyError{}
	}
	return nil
}

// ModifyLiquidity deposits (isDeposit=true) or withdraws liquidity from
// position, enforcing the caller's slippage threshold against the
// token amounts the move actually requires (deposit: thresholdA/B are
// maximums; withdraw: thresholds are minimums). FAILS
// TokenMaxExceededError / TokenMinSubceededError on threshold breach.
func ModifyLiquidity(pool *Pool, position *Position, lowerArray, upperArray *TickArray, liquidityDelta uint128.Uint128, isDeposit bool, thresholdA, thresholdB uint64, now uint64) (amountA, amountB uint64, err error) {
	priceLower, err := tickmath.TickToSqrtPrice(position.TickLowerIndex)
	if err != nil {
		return 0, 0, err
	}
	priceUpper, err := tickmath.TickToSqrtPrice(position.TickUpperIndex)
	if err != nil {
		return 0, 0, err
	}

	amountA, amountB, err = liquidityDeltaToTokenAmounts(pool.SqrtPrice, priceLower, priceUpper, liquidityDelta, isDeposit)
	if err != nil {
		return 0, 0, err
	}

	if isDeposit {
		if amountA > thresholdA {
			return 0, 0, &clmmerrors.TokenMaxExceededError{Op: "clmm.ModifyLiquidity.A", Got: uitoa(amountA), Max: uitoa(thresholdA)}
		}
		if amountB > thresholdB {
			return 0, 0, &clmmerrors.TokenMaxExceededError{Op: "clmm.ModifyLiquidity.B", Got: uitoa(amountB), Max: uitoa(thresholdB)}
		}
	} else {
		if amountA < thresholdA {
			return 0, 0, &clmmerrors.TokenMinSubceededError{Op: "clmm.ModifyLiquidity.A", Got: uitoa(amountA), Min: uitoa(thresholdA)}
		}
		if amountB < thresholdB {
			return 0, 0, &clmmerrors.TokenMinSubceededError{Op: "clmm.ModifyLiquidity.B", Got: uitoa(amountB), Min: uitoa(thresholdB)}
		}
	}

	if err := ModifyPositionLiquidity(pool, position, lowerArray, upperArray, position.TickLowerIndex, position.TickUpperIndex, liquidityDelta, isDeposit, now); err != nil {
		return 0, 0, err
	}

	return amountA, amountB, nil
}

// liquidityDeltaToTokenAmounts computes the token amounts a liquidity
// move of the given magnitude requires, given where the pool's current
// price sits relative to the position's bounds: below range moves only
// A, above range moves only B, in range moves a blend of both,
// rounding up on deposit (never under-collateralize) and down on
// withdraw (never over-pay).
func liquidityDeltaToTokenAmounts(currentSqrtPrice, priceLower, priceUpper, liquidity uint128.Uint128, roundUp bool) (amountA, amountB uint64, err error) {
	switch {
	case currentSqrtPrice.Cmp(priceLower) < 0:
		amountA, err = tokenmath.AmountAFromLiquidity(priceLower, priceUpper, liquidity, roundUp)
	case currentSqrtPrice.Cmp(priceUpper) >= 0:
		amountB, err = tokenmath.AmountBFromLiquidity(priceLower, priceUpper, liquidity, roundUp)
	default:
		amountA, err = tokenmath.AmountAFromLiquidity(currentSqrtPrice, priceUpper, liquidity, roundUp)
		if err == nil {
			amountB, err = tokenmath.AmountBFromLiquidity(priceLower, currentSqrtPrice, liquidity, roundUp)
		}
	}
	return amountA, amountB, err
}

// Swap is the public entry point wrapping the swap walk with the
// caller's slippage threshold (§6): a minimum-output or maximum-input
// check depending on amountSpecifiedIsInput. The walk is computed into
// a scratch plan and committed to pool only after the threshold check
// passes, so a slippage failure leaves pool entirely untouched (§5).
func Swap(pool *Pool, arrays []*TickArray, amountSpecified uint64, sqrtPriceLimit uint128.Uint128, amountSpecifiedIsInput, aToB bool, otherAmountThreshold uint64, now uint64) (SwapResult, error) {
	plan, err := computeSwap(pool, arrays, amountSpecified, sqrtPriceLimit, amountSpecifiedIsInput, aToB, now)
	if err != nil {
		return SwapResult{}, err
	}
	result := plan.result

	in, out := result.AmountA, result.AmountB
	if !aToB {
		in, out = result.AmountB, result.AmountA
	}
	other := out
	if !amountSpecifiedIsInput {
		other = in
	}

	if amountSpecifiedIsInput {
		if other < otherAmountThreshold {
			return SwapResult{}, &clmmerrors.TokenMinSubceededError{Op: "clmm.Swap", Got: uitoa(other), Min: uitoa(otherAmountThreshold)}
		}
	} else {
		if other > otherAmountThreshold {
			return SwapResult{}, &clmmerrors.TokenMaxExceededError{Op: "clmm.Swap", Got: uitoa(other), Max: uitoa(otherAmountThreshold)}
		}
	}

	plan.commit(pool)
	return result, nil
}

// UpdateFeesAndRewards advances the pool's reward growth to now and
// settles a position's accrued fees and rewards against the pool's
// growth accumulators without changing its liquidity (§6), the refresh
// a host calls before quoting a position's owed balances. It writes the
// pool's reward fields and the position's owed amounts and checkpoints
// only if the whole settlement succeeds (§5).
func UpdateFeesAndRewards(pool *Pool, position *Position, lowerArray, upperArray *TickArray, now uint64) error {
	lowerTick, err := LocateTick(lowerArray, position.TickLowerIndex, pool.TickSpacing)
	if err != nil {
		return err
	}
	upperTick, err := LocateTick(upperArray, position.TickUpperIndex, pool.TickSpacing)
	if err != nil {
		return err
	}
	scratchPool := *pool
	UpdateRewardGrowth(&scratchPool, now)
	if err := SettleFeesAndRewards(&scratchPool, position, lowerTick, upperTick, position.TickLowerIndex, position.TickUpperIndex); err != nil {
		return err
	}
	*pool = scratchPool
	return nil
}

func uitoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}
