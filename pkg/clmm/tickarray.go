package clmm

import (
	cosmath "cosmossdk.io/math"
	"lukechampine.com/uint128"

	"whirlcore/pkg/clmmerrors"
)

// ArrayStartTickIndex returns the start index of the tick array that
// houses tick, at the given spacing: floor(tick / (spacing*88)) *
// (spacing*88) (§4.4).
func ArrayStartTickIndex(tick int32, spacing uint16) int32 {
	width := int32(spacing) * TicksPerArray
	q := tick / width
	if tick%width != 0 && (tick < 0) != (width < 0) {
		q--
	}
	return q * width
}

// LocateTick returns a pointer to the slot housing tickIndex within ta.
// FAILS TickNotSpacedError if tickIndex is not a multiple of spacing
// relative to the array's start; FAILS TickNotFoundError if the index
// falls outside this array's window.
func LocateTick(ta *TickArray, tickIndex int32, spacing uint16) (*Tick, error) {
	width := int32(spacing)
	offset := tickIndex - ta.StartTickIndex
	if offset%width != 0 {
		return nil, &clmmerrors.TickNotSpacedError{Tick: tickIndex, Spacing: spacing}
	}
	slot := offset / width
	if slot < 0 || slot >= TicksPerArray {
		return nil, &clmmerrors.TickNotFoundError{Tick: tickIndex, ArrayStart: ta.StartTickIndex}
	}
	return &ta.Ticks[slot], nil
}

// FindNextInitializedTick scans ta in the swap direction from fromTick
// and returns the first initialized tick's index. aToB scans toward
// lower indices starting at fromTick's own slot (inclusive); otherwise
// it scans toward higher indices starting at the slot after fromTick's.
// Returns found=false if no initialized slot remains in this array in
// that direction.
func (ta *TickArray) FindNextInitializedTick(fromTick int32, spacing uint16, aToB bool) (tickIndex int32, found bool) {
	width := int32(spacing)
	offset := fromTick - ta.StartTickIndex
	slot := offset / width
	if offset%width != 0 && offset < 0 {
		slot--
	}

	if aToB {
		if slot >= TicksPerArray {
			slot = TicksPerArray - 1
		}
		for s := int(slot); s >= 0; s-- {
			if s >= TicksPerArray {
				continue
			}
			if ta.Ticks[s].Initialized {
				return ta.StartTickIndex + int32(s)*width, true
			}
		}
		return 0, false
	}

	start := int(slot) + 1
	if start < 0 {
		start = 0
	}
	for s := start; s < TicksPerArray; s++ {
		if ta.Ticks[s].Initialized {
			return ta.StartTickIndex + int32(s)*width, true
		}
	}
	return 0, false
}

// tickUpdateValues computes the tick slot UpdateTick would write back,
// given an explicit copy of its prior value and the pool globals it
// may need to seed from, without mutating anything. Callers that need
// to validate several ticks before committing any of them (e.g.
// ModifyPositionLiquidity, §5) use this directly; UpdateTick is the
// immediate-commit convenience wrapper around it.
func tickUpdateValues(tick Tick, tickCurrentIndex int32, feeGrowthGlobalA, feeGrowthGlobalB uint128.Uint128, rewardGrowthGlobal [NumRewards]uint128.Uint128, tickIndex int32, delta cosmath.Int, isUpper bool) (Tick, error) {
	wasZero := tick.LiquidityGross.IsZero()

	grossBefore := cosmath.NewIntFromBigInt(tick.LiquidityGross.Big())
	grossAfter := grossBefore.Add(delta)
	if grossAfter.IsNegative() {
		return Tick{}, &clmmerrors.LiquidityNetError{Op: "clmm.UpdateTick"}
	}
	if grossAfter.BigInt().BitLen() > 128 {
		return Tick{}, &clmmerrors.LiquidityOverflowError{Op: "clmm.UpdateTick"}
	}
	newGross := uint128.FromBig(grossAfter.BigInt())

	newTick := tick
	if wasZero && !newGross.IsZero() && tickIndex <= tickCurrentIndex {
		newTick.FeeGrowthOutsideA = feeGrowthGlobalA
		newTick.FeeGrowthOutsideB = feeGrowthGlobalB
		for i := range newTick.RewardGrowthsOutside {
			newTick.RewardGrowthsOutside[i] = rewardGrowthGlobal[i]
		}
	}

	newTick.LiquidityGross = newGross
	newTick.Initialized = !newGross.IsZero()

	if isUpper {
		newTick.LiquidityNet = newTick.LiquidityNet.Sub(delta)
	} else {
		newTick.LiquidityNet = newTick.LiquidityNet.Add(delta)
	}

	return newTick, nil
}

// rewardGrowthGlobals snapshots pool's per-slot reward growth
// accumulators into a plain array, the shape tickUpdateValues and
// crossTickValues need to stay decoupled from *Pool.
func rewardGrowthGlobals(pool *Pool) [NumRewards]uint128.Uint128 {
	var globals [NumRewards]uint128.Uint128
	for i := range pool.RewardInfos {
		globals[i] = pool.RewardInfos[i].GrowthGlobal
	}
	return globals
}

// UpdateTick applies a signed liquidity delta to the tick housing
// tickIndex: liquidity_gross moves by delta, liquidity_net by +delta
// (lower bound) or -delta (upper bound), initialized toggles on a
// zero-crossing of gross, and on first initialization at or below
// pool.tick_current the outside growth accumulators are seeded from
// the pool's global accumulators (§4.4).
func UpdateTick(ta *TickArray, pool *Pool, tickIndex int32, spacing uint16, delta cosmath.Int, isUpper bool) error {
	tick, err := LocateTick(ta, tickIndex, spacing)
	if err != nil {
		return err
	}
	updated, err := tickUpdateValues(*tick, pool.TickCurrentIndex, pool.FeeGrowthGlobalA, pool.FeeGrowthGlobalB, rewardGrowthGlobals(pool), tickIndex, delta, isUpper)
	if err != nil {
		return err
	}
	*tick = updated
	return nil
}

// crossTickValues computes the new active liquidity and flipped
// outside-growth tick that CrossTick would commit, given explicit
// scratch values for the pool's active liquidity and global growth
// accumulators rather than reading them off *Pool directly — a swap in
// progress tracks these in scratch variables of its own until the
// whole operation commits (§5), so crossing a tick mid-swap must fold
// against that scratch state, not pool's last-committed one.
func crossTickValues(liquidity uint128.Uint128, tick Tick, feeGrowthGlobalA, feeGrowthGlobalB uint128.Uint128, rewardGrowthGlobal [NumRewards]uint128.Uint128, aToB bool) (newLiquidity uint128.Uint128, newTick Tick, err error) {
	current := cosmath.NewIntFromBigInt(liquidity.Big())
	delta := tick.LiquidityNet
	if aToB {
		delta = delta.Neg()
	}
	next := current.Add(delta)
	if next.IsNegative() {
		return uint128.Uint128{}, Tick{}, &clmmerrors.LiquidityUnderflowError{Op: "clmm.CrossTick"}
	}
	if next.BigInt().BitLen() > 128 {
		return uint128.Uint128{}, Tick{}, &clmmerrors.LiquidityOverflowError{Op: "clmm.CrossTick"}
	}
	newLiquidity = uint128.FromBig(next.BigInt())

	newTick = tick
	newTick.FeeGrowthOutsideA = feeGrowthGlobalA.Sub(tick.FeeGrowthOutsideA)
	newTick.FeeGrowthOutsideB = feeGrowthGlobalB.Sub(tick.FeeGrowthOutsideB)
	for i := range newTick.RewardGrowthsOutside {
		newTick.RewardGrowthsOutside[i] = rewardGrowthGlobal[i].Sub(tick.RewardGrowthsOutside[i])
	}
	return newLiquidity, newTick, nil
}

// CrossTick applies a tick's liquidity_net to the pool's active
// liquidity (added when crossing upward, i.e. !aToB; subtracted when
// crossing downward) and flips its outside growth accumulators to
// global - outside_prev. FAILS LiquidityOverflowError /
// LiquidityUnderflowError if the resulting pool liquidity would leave
// [0, 2^128).
func CrossTick(pool *Pool, tick *Tick, aToB bool) error {
	newLiquidity, newTick, err := crossTickValues(pool.Liquidity, *tick, pool.FeeGrowthGlobalA, pool.FeeGrowthGlobalB, rewardGrowthGlobals(pool), aToB)
	if err != nil {
		return err
	}
	pool.Liquidity = newLiquidity
	*tick = newTick
	return nil
}
