package clmm

import (
	"lukechampine.com/uint128"

	"whirlcore/pkg/clmmerrors"
	"whirlcore/pkg/tickmath"
)

// SwapResult is the net outcome of a multi-step swap (§4.8).
type SwapResult struct {
	AmountA       uint64
	AmountB       uint64
	NextSqrtPrice uint128.Uint128
	NextTickIndex int32
}

// protocolFeeRateDenominator is the scale of Pool.ProtocolFeeRate.
const protocolFeeRateDenominator = 10000

// tickCrossing is a deferred write to a tick slot crossed mid-swap:
// swapPlan accumulates these instead of crossing ticks immediately, so
// a later failure in the same swap leaves every tick untouched (§5).
type tickCrossing struct {
	tick     *Tick
	newValue Tick
}

// swapPlan is the scratch result of computeSwap: every pool field a
// successful swap would write back, plus the deferred tick crossings,
// none of it committed until commit is called.
type swapPlan struct {
	result                              SwapResult
	sqrtPrice                           uint128.Uint128
	tickCurrentIndex                    int32
	liquidity                           uint128.Uint128
	protocolFeeOwedA, protocolFeeOwedB  uint64
	feeGrowthGlobalA, feeGrowthGlobalB  uint128.Uint128
	rewardLastUpdatedTimestamp          uint64
	rewardGrowthGlobal                  [NumRewards]uint128.Uint128
	crossings                           []tickCrossing
}

// commit writes every field of p back to pool and applies its deferred
// tick crossings, in one pass, after the caller has validated whatever
// it needed to against p.result (§5).
func (p swapPlan) commit(pool *Pool) {
	pool.SqrtPrice = p.sqrtPrice
	pool.TickCurrentIndex = p.tickCurrentIndex
	pool.Liquidity = p.liquidity
	pool.ProtocolFeeOwedA = p.protocolFeeOwedA
	pool.ProtocolFeeOwedB = p.protocolFeeOwedB
	pool.FeeGrowthGlobalA = p.feeGrowthGlobalA
	pool.FeeGrowthGlobalB = p.feeGrowthGlobalB
	pool.RewardLastUpdatedTimestamp = p.rewardLastUpdatedTimestamp
	for i := range pool.RewardInfos {
		pool.RewardInfos[i].GrowthGlobal = p.rewardGrowthGlobal[i]
	}
	for _, c := range p.crossings {
		*c.tick = c.newValue
	}
}

// computeSwap performs the full multi-step swap walk described by
// SwapDriver, entirely against scratch state: it reads pool and the
// tick arrays but writes none of them, instead returning a swapPlan
// the caller commits once satisfied with the result (§5). See
// SwapDriver for the parameter and failure-mode documentation this
// shares.
func computeSwap(pool *Pool, arrays []*TickArray, amountSpecified uint64, sqrtPriceLimit uint128.Uint128, amountSpecifiedIsInput, aToB bool, now uint64) (swapPlan, error) {
	if sqrtPriceLimit.Cmp(tickmath.MinSqrtPrice) < 0 || sqrtPriceLimit.Cmp(tickmath.MaxSqrtPrice) > 0 {
		return swapPlan{}, &clmmerrors.SqrtPriceLimitOutOfBoundsError{Limit: sqrtPriceLimit.String()}
	}
	if aToB && sqrtPriceLimit.Cmp(pool.SqrtPrice) > 0 {
		return swapPlan{}, &clmmerrors.InvalidSqrtPriceLimitDirectionError{AToB: aToB}
	}
	if !aToB && sqrtPriceLimit.Cmp(pool.SqrtPrice) < 0 {
		return swapPlan{}, &clmmerrors.InvalidSqrtPriceLimitDirectionError{AToB: aToB}
	}
	if err := checkArraySequence(arrays, pool.TickSpacing, aToB); err != nil {
		return swapPlan{}, err
	}

	newRewardTimestamp, newRewardGrowths := computeRewardGrowth(pool, now)

	var totalIn, totalOut uint64
	amountRemaining := amountSpecified
	currentSqrtPrice := pool.SqrtPrice
	currentTickIndex := pool.TickCurrentIndex
	liquidity := pool.Liquidity
	feeGrowthGlobalA := pool.FeeGrowthGlobalA
	feeGrowthGlobalB := pool.FeeGrowthGlobalB
	protocolFeeOwedA := pool.ProtocolFeeOwedA
	protocolFeeOwedB := pool.ProtocolFeeOwedB
	var crossings []tickCrossing

	for amountRemaining > 0 && currentSqrtPrice.Cmp(sqrtPriceLimit) != 0 {
		nextTickIndex, nextTick, hasNext := nextInitializedTick(arrays, currentTickIndex, pool.TickSpacing, aToB)

		var target uint128.Uint128
		if hasNext {
			p, err := tickmath.TickToSqrtPrice(nextTickIndex)
			if err != nil {
				return swapPlan{}, err
			}
			target = clampToLimit(p, sqrtPriceLimit, aToB)
		} else {
			target = sqrtPriceLimit
		}

		if liquidity.IsZero() && !hasNext {
			break
		}

		step, err := ComputeSwapStep(currentSqrtPrice, target, liquidity, amountRemaining, amountSpecifiedIsInput, aToB, pool.FeeRate)
		if err != nil {
			return swapPlan{}, err
		}

		if pool.ProtocolFeeRate > 0 && step.FeeAmount > 0 {
			protocolCut := step.FeeAmount * uint64(pool.ProtocolFeeRate) / protocolFeeRateDenominator
			step.FeeAmount -= protocolCut
			if aToB {
				protocolFeeOwedA, err = addOwed("clmm.SwapDriver.protocolFeeA", protocolFeeOwedA, uint128.From64(protocolCut))
			} else {
				protocolFeeOwedB, err = addOwed("clmm.SwapDriver.protocolFeeB", protocolFeeOwedB, uint128.From64(protocolCut))
			}
			if err != nil {
				return swapPlan{}, err
			}
		}

		if amountSpecifiedIsInput {
			consumed := step.AmountIn + step.FeeAmount
			amountRemaining -= consumed
			totalIn += consumed
			totalOut += step.AmountOut
		} else {
			amountRemaining -= step.AmountOut
			totalIn += step.AmountIn + step.FeeAmount
			totalOut += step.AmountOut
		}

		if aToB {
			feeGrowthGlobalA = AddFeeGrowth(feeGrowthGlobalA, step.FeeAmount, liquidity)
		} else {
			feeGrowthGlobalB = AddFeeGrowth(feeGrowthGlobalB, step.FeeAmount, liquidity)
		}

		currentSqrtPrice = step.NextSqrtPrice

		if hasNext && step.NextSqrtPrice.Cmp(target) == 0 {
			newLiquidity, newTick, err := crossTickValues(liquidity, *nextTick, feeGrowthGlobalA, feeGrowthGlobalB, newRewardGrowths, aToB)
			if err != nil {
				return swapPlan{}, err
			}
			crossings = append(crossings, tickCrossing{tick: nextTick, newValue: newTick})
			liquidity = newLiquidity
			if aToB {
				currentTickIndex = nextTickIndex - 1
			} else {
				currentTickIndex = nextTickIndex
			}
		} else {
			tick, err := tickmath.SqrtPriceToTick(currentSqrtPrice)
			if err != nil {
				return swapPlan{}, err
			}
			currentTickIndex = tick
			break
		}
	}

	if totalOut == 0 && totalIn == 0 {
		return swapPlan{}, &clmmerrors.ZeroTradableAmountError{Op: "clmm.SwapDriver"}
	}

	amountA, amountB := totalIn, totalOut
	if !aToB {
		amountA, amountB = totalOut, totalIn
	}

	return swapPlan{
		result: SwapResult{
			AmountA:       amountA,
			AmountB:       amountB,
			NextSqrtPrice: currentSqrtPrice,
			NextTickIndex: currentTickIndex,
		},
		sqrtPrice:                  currentSqrtPrice,
		tickCurrentIndex:           currentTickIndex,
		liquidity:                  liquidity,
		protocolFeeOwedA:           protocolFeeOwedA,
		protocolFeeOwedB:           protocolFeeOwedB,
		feeGrowthGlobalA:           feeGrowthGlobalA,
		feeGrowthGlobalB:           feeGrowthGlobalB,
		rewardLastUpdatedTimestamp: newRewardTimestamp,
		rewardGrowthGlobal:         newRewardGrowths,
		crossings:                  crossings,
	}, nil
}

// SwapDriver walks the pool's active liquidity across up to three
// caller-supplied, ordered tick arrays, consuming amountSpecified
// (interpreted per amountSpecifiedIsInput) until either the amount is
// exhausted or sqrtPriceLimit is reached, crossing initialized ticks
// and folding fees into the global growth accumulators as it goes
// (§4.8). The arrays must be supplied in traversal order for the given
// direction and must be mutually contiguous; FAILS
// TickArraySequenceInvalidError otherwise. FAILS
// SqrtPriceLimitOutOfBoundsError if sqrtPriceLimit leaves
// [MinSqrtPrice, MaxSqrtPrice]; FAILS
// InvalidSqrtPriceLimitDirectionError if it sits on the wrong side of
// the pool's current price; FAILS ZeroTradableAmountError if
// liquidity is exhausted before any amount is produced. The result is
// committed to pool only once the whole walk succeeds (§5); callers
// that must also validate a slippage threshold against the result
// before committing (e.g. Swap) call computeSwap directly instead.
func SwapDriver(pool *Pool, arrays []*TickArray, amountSpecified uint64, sqrtPriceLimit uint128.Uint128, amountSpecifiedIsInput, aToB bool, now uint64) (SwapResult, error) {
	plan, err := computeSwap(pool, arrays, amountSpecified, sqrtPriceLimit, amountSpecifiedIsInput, aToB, now)
	if err != nil {
		return SwapResult{}, err
	}
	plan.commit(pool)
	return plan.result, nil
}

// clampToLimit returns the nearer of p and sqrtPriceLimit to the
// current price, in the direction of travel.
func clampToLimit(p, sqrtPriceLimit uint128.Uint128, aToB bool) uint128.Uint128 {
	if aToB {
		if sqrtPriceLimit.Cmp(p) > 0 {
			return sqrtPriceLimit
		}
		return p
	}
	if sqrtPriceLimit.Cmp(p) < 0 {
		return sqrtPriceLimit
	}
	return p
}

// nextInitializedTick scans the provided arrays in traversal order for
// the next initialized tick in the swap direction (at or below fromTick
// for aToB, strictly above it otherwise), returning a pointer into
// whichever array housed it.
func nextInitializedTick(arrays []*TickArray, fromTick int32, spacing uint16, aToB bool) (int32, *Tick, bool) {
	cursor := fromTick
	for _, ta := range arrays {
		idx, found := ta.FindNextInitializedTick(cursor, spacing, aToB)
		if found {
			tick, err := LocateTick(ta, idx, spacing)
			if err != nil {
				return 0, nil, false
			}
			return idx, tick, true
		}
		if aToB {
			cursor = ta.StartTickIndex - 1
		} else {
			cursor = ta.StartTickIndex + TicksPerArray*int32(spacing) - 1
		}
	}
	return 0, nil, false
}

// checkArraySequence verifies that consecutive arrays abut with no gap
// and are ordered correctly for the swap direction.
func checkArraySequence(arrays []*TickArray, spacing uint16, aToB bool) error {
	if len(arrays) == 0 {
		return &clmmerrors.TickArraySequenceInvalidError{Reason: "no tick arrays supplied"}
	}
	width := int32(spacing) * TicksPerArray
	for i := 1; i < len(arrays); i++ {
		prev, cur := arrays[i-1], arrays[i]
		if aToB {
			if cur.StartTickIndex != prev.StartTickIndex-width {
				return &clmmerrors.TickArraySequenceInvalidError{Reason: "arrays must descend contiguously for a_to_b swaps"}
			}
		} else {
			if cur.StartTickIndex != prev.StartTickIndex+width {
				return &clmmerrors.TickArraySequenceInvalidError{Reason: "arrays must ascend contiguously for b_to_a swaps"}
			}
		}
	}
	return nil
}
