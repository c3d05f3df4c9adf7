package clmm

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"whirlcore/pkg/clmmerrors"
	"whirlcore/pkg/fixedpoint"
)

// growthInside implements §4.6's three-way split, with wrapping (mod
// 2^128) subtraction throughout, so that negative intermediate values
// cancel correctly once multiplied by liquidity and differenced
// against a position's checkpoint.
func growthInside(global, outsideLower, outsideUpper uint128.Uint128, lower, upper, current int32) uint128.Uint128 {
	switch {
	case current < lower:
		return outsideLower.Sub(outsideUpper)
	case current >= upper:
		return outsideUpper.Sub(outsideLower)
	default:
		return global.Sub(outsideLower).Sub(outsideUpper)
	}
}

// FeeGrowthInside returns the current growth-inside-the-position value
// for both sides of a pool, given the bracketing ticks.
func FeeGrowthInside(pool *Pool, lowerTick, upperTick *Tick, lowerIdx, upperIdx int32) (insideA, insideB uint128.Uint128) {
	insideA = growthInside(pool.FeeGrowthGlobalA, lowerTick.FeeGrowthOutsideA, upperTick.FeeGrowthOutsideA, lowerIdx, upperIdx, pool.TickCurrentIndex)
	insideB = growthInside(pool.FeeGrowthGlobalB, lowerTick.FeeGrowthOutsideB, upperTick.FeeGrowthOutsideB, lowerIdx, upperIdx, pool.TickCurrentIndex)
	return insideA, insideB
}

// RewardGrowthInside returns the current growth-inside value for
// reward slot i.
func RewardGrowthInside(pool *Pool, lowerTick, upperTick *Tick, lowerIdx, upperIdx int32, i int) uint128.Uint128 {
	return growthInside(pool.RewardInfos[i].GrowthGlobal, lowerTick.RewardGrowthsOutside[i], upperTick.RewardGrowthsOutside[i], lowerIdx, upperIdx, pool.TickCurrentIndex)
}

var mask128 = func() *uint256.Int {
	one := uint256.NewInt(1)
	return new(uint256.Int).Sub(new(uint256.Int).Lsh(one, 128), one)
}()

// wrapTo128 narrows a 256-bit intermediate to its low 128 bits without
// failing on truncation: growth accumulators are allowed to wrap, by
// design, since only their differences are ever meaningful (§4.6).
func wrapTo128(x *uint256.Int) uint128.Uint128 {
	low := new(uint256.Int).And(x, mask128)
	return uint128.FromBig(low.ToBig())
}

// AddFeeGrowth folds a fee amount collected at the given active
// liquidity into a global fee-growth accumulator: global +=
// fee_amount*2^64/liquidity, rounded down, wrapping on overflow. A
// zero active liquidity contributes nothing (no open position could
// have earned it).
func AddFeeGrowth(global uint128.Uint128, feeAmount uint64, liquidity uint128.Uint128) uint128.Uint128 {
	if liquidity.IsZero() || feeAmount == 0 {
		return global
	}
	numerator := new(uint256.Int).Lsh(uint256.NewInt(feeAmount), fixedpoint.Q)
	delta, err := fixedpoint.DivRoundUpIf(numerator, fixedpoint.U256FromU128(liquidity), false)
	if err != nil {
		// liquidity is checked non-zero above; unreachable.
		panic(err)
	}
	sum := new(uint256.Int).Add(fixedpoint.U256FromU128(global), delta)
	return wrapTo128(sum)
}

// computeRewardGrowth computes the reward timestamp/growth-global
// update that UpdateRewardGrowth would commit, without mutating pool:
// emissions_per_second * elapsed / liquidity per reward slot, where
// elapsed = now - pool.RewardLastUpdatedTimestamp clamped at zero for
// clock regressions (§4.6). The caller commits the result once the
// rest of its operation has also succeeded (§5).
func computeRewardGrowth(pool *Pool, now uint64) (newTimestamp uint64, newGrowths [NumRewards]uint128.Uint128) {
	newTimestamp = pool.RewardLastUpdatedTimestamp
	for i := range pool.RewardInfos {
		newGrowths[i] = pool.RewardInfos[i].GrowthGlobal
	}

	var elapsed uint64
	if now > pool.RewardLastUpdatedTimestamp {
		elapsed = now - pool.RewardLastUpdatedTimestamp
		newTimestamp = now
	}

	if elapsed == 0 || pool.Liquidity.IsZero() {
		return newTimestamp, newGrowths
	}

	liquidity256 := fixedpoint.U256FromU128(pool.Liquidity)
	for i := range pool.RewardInfos {
		rate := pool.RewardInfos[i].EmissionsPerSecond
		if rate.IsZero() {
			continue
		}
		numerator := new(uint256.Int).Mul(fixedpoint.U256FromU128(rate), uint256.NewInt(elapsed))
		delta, err := fixedpoint.DivRoundUpIf(numerator, liquidity256, false)
		if err != nil {
			// liquidity is checked non-zero above; unreachable.
			panic(err)
		}
		sum := new(uint256.Int).Add(fixedpoint.U256FromU128(newGrowths[i]), delta)
		newGrowths[i] = wrapTo128(sum)
	}
	return newTimestamp, newGrowths
}

// UpdateRewardGrowth advances every reward slot's growth_global and
// pool.RewardLastUpdatedTimestamp in place; see computeRewardGrowth
// for the pure computation this commits.
func UpdateRewardGrowth(pool *Pool, now uint64) {
	newTimestamp, newGrowths := computeRewardGrowth(pool, now)
	pool.RewardLastUpdatedTimestamp = newTimestamp
	for i := range pool.RewardInfos {
		pool.RewardInfos[i].GrowthGlobal = newGrowths[i]
	}
}

// addOwed adds incrementU128 (narrowed to u64) to owed, failing with
// TokenMaxExceededError rather than silently wrapping on overflow.
func addOwed(op string, owed uint64, incrementU128 uint128.Uint128) (uint64, error) {
	inc, err := fixedpoint.U64FromU128(op, incrementU128)
	if err != nil {
		return 0, err
	}
	sum := owed + inc
	if sum < owed {
		return 0, &clmmerrors.TokenMaxExceededError{Op: op, Got: "owed+increment", Max: "18446744073709551615"}
	}
	return sum, nil
}
