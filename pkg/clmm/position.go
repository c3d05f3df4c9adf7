package clmm

import (
	cosmath "cosmossdk.io/math"
	"lukechampine.com/uint128"

	"whirlcore/pkg/clmmerrors"
	"whirlcore/pkg/fixedpoint"
)

// positionSettlement is the scratch result of settling a position's
// fees and rewards against a growth-inside snapshot, computed without
// touching position; apply commits it once the caller is ready to
// write back (§5).
type positionSettlement struct {
	feeOwedA, feeOwedB                        uint64
	feeGrowthCheckpointA, feeGrowthCheckpointB uint128.Uint128
	rewardInfos                                [NumRewards]PositionRewardInfo
}

func (s positionSettlement) apply(position *Position) {
	position.FeeOwedA = s.feeOwedA
	position.FeeOwedB = s.feeOwedB
	position.FeeGrowthCheckpointA = s.feeGrowthCheckpointA
	position.FeeGrowthCheckpointB = s.feeGrowthCheckpointB
	position.RewardInfos = s.rewardInfos
}

// computeSettleFeesAndRewards computes the fee/reward settlement
// position would receive against the given growth-inside values
// (§4.5), without mutating position. FAILS TokenMaxExceededError if
// any owed field would overflow u64.
func computeSettleFeesAndRewards(position Position, insideA, insideB uint128.Uint128, rewardInside [NumRewards]uint128.Uint128) (positionSettlement, error) {
	deltaA := insideA.Sub(position.FeeGrowthCheckpointA)
	deltaB := insideB.Sub(position.FeeGrowthCheckpointB)

	incA, err := fixedpoint.MulShiftRight(position.Liquidity, deltaA, fixedpoint.Q)
	if err != nil {
		return positionSettlement{}, err
	}
	incB, err := fixedpoint.MulShiftRight(position.Liquidity, deltaB, fixedpoint.Q)
	if err != nil {
		return positionSettlement{}, err
	}

	result := positionSettlement{feeGrowthCheckpointA: insideA, feeGrowthCheckpointB: insideB}
	result.feeOwedA, err = addOwed("clmm.SettleFeesAndRewards.feeA", position.FeeOwedA, incA)
	if err != nil {
		return positionSettlement{}, err
	}
	result.feeOwedB, err = addOwed("clmm.SettleFeesAndRewards.feeB", position.FeeOwedB, incB)
	if err != nil {
		return positionSettlement{}, err
	}

	for i := range position.RewardInfos {
		inside := rewardInside[i]
		delta := inside.Sub(position.RewardInfos[i].GrowthInsideCheckpoint)
		inc, err := fixedpoint.MulShiftRight(position.Liquidity, delta, fixedpoint.Q)
		if err != nil {
			return positionSettlement{}, err
		}
		amountOwed, err := addOwed("clmm.SettleFeesAndRewards.reward", position.RewardInfos[i].AmountOwed, inc)
		if err != nil {
			return positionSettlement{}, err
		}
		result.rewardInfos[i] = PositionRewardInfo{GrowthInsideCheckpoint: inside, AmountOwed: amountOwed}
	}

	return result, nil
}

// SettleFeesAndRewards recomputes growth-inside at the current instant
// for the position bracketed by lowerTick/upperTick and credits the
// owed fee and reward fields with the liquidity-weighted delta since
// the position's last checkpoint, then advances the checkpoints
// (§4.5). It is idempotent: calling it twice in a row with no
// intervening state change credits nothing the second time.
func SettleFeesAndRewards(pool *Pool, position *Position, lowerTick, upperTick *Tick, lowerIdx, upperIdx int32) error {
	insideA, insideB := FeeGrowthInside(pool, lowerTick, upperTick, lowerIdx, upperIdx)
	var rewardInside [NumRewards]uint128.Uint128
	for i := range position.RewardInfos {
		rewardInside[i] = RewardGrowthInside(pool, lowerTick, upperTick, lowerIdx, upperIdx, i)
	}

	settlement, err := computeSettleFeesAndRewards(*position, insideA, insideB, rewardInside)
	if err != nil {
		return err
	}
	settlement.apply(position)
	return nil
}

func checkedAddLiquidity(op string, a, b uint128.Uint128) (uint128.Uint128, error) {
	sum := cosmath.NewIntFromBigInt(a.Big()).Add(cosmath.NewIntFromBigInt(b.Big()))
	if sum.BigInt().BitLen() > 128 {
		return uint128.Uint128{}, &clmmerrors.LiquidityOverflowError{Op: op}
	}
	return uint128.FromBig(sum.BigInt()), nil
}

func checkedSubLiquidity(op string, a, b uint128.Uint128) (uint128.Uint128, error) {
	if a.Cmp(b) < 0 {
		return uint128.Uint128{}, &clmmerrors.LiquidityUnderflowError{Op: op}
	}
	return a.Sub(b), nil
}

// inRange reports whether tickCurrent falls within [lower, upper), the
// pool's active-liquidity range for a position with these bounds.
func inRange(tickCurrent, lower, upper int32) bool {
	return tickCurrent >= lower && tickCurrent < upper
}

// ModifyPositionLiquidity applies a liquidity delta (positive for
// deposit, negative for withdraw) to position, its bracketing ticks,
// and, when the pool's current tick sits inside the position's range,
// the pool's active liquidity. Fees and rewards are settled first so
// the position's checkpoints never skip an accrual window (§4.5). The
// whole operation is computed into scratch state and validated before
// any field on pool, position, or the ticks is written, so a failure
// partway through (e.g. a tick update overflowing liquidity_gross)
// leaves every input untouched (§5). FAILS LiquidityZeroError if
// magnitude is zero; LiquidityUnderflowError on a withdraw exceeding
// the position's liquidity.
func ModifyPositionLiquidity(pool *Pool, position *Position, lowerArray, upperArray *TickArray, lowerIdx, upperIdx int32, magnitude uint128.Uint128, isDeposit bool, now uint64) error {
	if magnitude.IsZero() {
		return &clmmerrors.LiquidityZeroError{Op: "clmm.ModifyPositionLiquidity"}
	}

	lowerTick, err := LocateTick(lowerArray, lowerIdx, pool.TickSpacing)
	if err != nil {
		return err
	}
	upperTick, err := LocateTick(upperArray, upperIdx, pool.TickSpacing)
	if err != nil {
		return err
	}

	newRewardTimestamp, newRewardGrowths := computeRewardGrowth(pool, now)

	scratchPool := *pool
	scratchPool.RewardLastUpdatedTimestamp = newRewardTimestamp
	for i := range scratchPool.RewardInfos {
		scratchPool.RewardInfos[i].GrowthGlobal = newRewardGrowths[i]
	}

	insideA, insideB := FeeGrowthInside(&scratchPool, lowerTick, upperTick, lowerIdx, upperIdx)
	var rewardInside [NumRewards]uint128.Uint128
	for i := range position.RewardInfos {
		rewardInside[i] = RewardGrowthInside(&scratchPool, lowerTick, upperTick, lowerIdx, upperIdx, i)
	}
	settlement, err := computeSettleFeesAndRewards(*position, insideA, insideB, rewardInside)
	if err != nil {
		return err
	}

	var newPositionLiquidity uint128.Uint128
	if isDeposit {
		newPositionLiquidity, err = checkedAddLiquidity("clmm.ModifyPositionLiquidity", position.Liquidity, magnitude)
	} else {
		newPositionLiquidity, err = checkedSubLiquidity("clmm.ModifyPositionLiquidity", position.Liquidity, magnitude)
	}
	if err != nil {
		return err
	}

	delta := cosmath.NewIntFromBigInt(magnitude.Big())
	if !isDeposit {
		delta = delta.Neg()
	}

	newLowerTick, err := tickUpdateValues(*lowerTick, scratchPool.TickCurrentIndex, scratchPool.FeeGrowthGlobalA, scratchPool.FeeGrowthGlobalB, newRewardGrowths, lowerIdx, delta, false)
	if err != nil {
		return err
	}
	newUpperTick, err := tickUpdateValues(*upperTick, scratchPool.TickCurrentIndex, scratchPool.FeeGrowthGlobalA, scratchPool.FeeGrowthGlobalB, newRewardGrowths, upperIdx, delta, true)
	if err != nil {
		return err
	}

	poolLiquidityChanges := inRange(pool.TickCurrentIndex, lowerIdx, upperIdx)
	var newPoolLiquidity uint128.Uint128
	if poolLiquidityChanges {
		if isDeposit {
			newPoolLiquidity, err = checkedAddLiquidity("clmm.ModifyPositionLiquidity.pool", pool.Liquidity, magnitude)
		} else {
			newPoolLiquidity, err = checkedSubLiquidity("clmm.ModifyPositionLiquidity.pool", pool.Liquidity, magnitude)
		}
		if err != nil {
			return err
		}
	}

	pool.RewardLastUpdatedTimestamp = newRewardTimestamp
	for i := range pool.RewardInfos {
		pool.RewardInfos[i].GrowthGlobal = newRewardGrowths[i]
	}
	settlement.apply(position)
	*lowerTick = newLowerTick
	*upperTick = newUpperTick
	if poolLiquidityChanges {
		pool.Liquidity = newPoolLiquidity
	}
	position.Liquidity = newPositionLiquidity
	return nil
}

// CollectFees zeroes position's owed fee fields and returns the
// amounts to transfer out. Collection never requires liquidity > 0.
func CollectFees(position *Position) (feeA, feeB uint64) {
	feeA, feeB = position.FeeOwedA, position.FeeOwedB
	position.FeeOwedA, position.FeeOwedB = 0, 0
	return feeA, feeB
}

// CollectReward zeroes reward slot i's owed amount and returns it.
// FAILS InvalidRewardIndexError if i is out of [0, NumRewards).
func CollectReward(position *Position, i int) (uint64, error) {
	if i < 0 || i >= NumRewards {
		return 0, &clmmerrors.InvalidRewardIndexError{Index: i}
	}
	amount := position.RewardInfos[i].AmountOwed
	position.RewardInfos[i].AmountOwed = 0
	return amount, nil
}
