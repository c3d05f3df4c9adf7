// Package clmm implements the stateful core of the concentrated
// liquidity engine: pools, tick arrays, positions, fee/reward accrual,
// the swap step, and the swap driver, plus the small set of public
// entry points a host calls into (Swap, ModifyLiquidity,
// UpdateFeesAndRewards, CollectFees, CollectReward, OpenPosition,
// ClosePosition).
package clmm

import (
	cosmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// TicksPerArray and NumRewards are the fixed widths of the tick-array
// window and the reward-slot table.
const (
	TicksPerArray = 88
	NumRewards    = 3
)

// RewardInfo is a pool-level reward emitter: a constant emission rate
// and the cumulative per-unit-liquidity growth it has produced.
type RewardInfo struct {
	EmissionsPerSecond uint128.Uint128 // Q64.64
	GrowthGlobal       uint128.Uint128 // Q64.64
}

// Pool is the concentrated-liquidity pool's full mutable state.
type Pool struct {
	Id                         solana.PublicKey
	TickSpacing                uint16
	SqrtPrice                  uint128.Uint128
	TickCurrentIndex           int32
	Liquidity                  uint128.Uint128
	FeeRate                    uint16 // hundredths of a basis point
	ProtocolFeeRate            uint16 // fraction of fees, denominator 10000
	FeeGrowthGlobalA           uint128.Uint128
	FeeGrowthGlobalB           uint128.Uint128
	ProtocolFeeOwedA           uint64
	ProtocolFeeOwedB           uint64
	RewardInfos                [NumRewards]RewardInfo
	RewardLastUpdatedTimestamp uint64
}

// Tick is one slot of a TickArray.
type Tick struct {
	Initialized          bool
	LiquidityGross       uint128.Uint128
	LiquidityNet         cosmath.Int // signed
	FeeGrowthOutsideA    uint128.Uint128
	FeeGrowthOutsideB    uint128.Uint128
	RewardGrowthsOutside [NumRewards]uint128.Uint128
}

// NewTick returns a zeroed, uninitialized tick slot.
func NewTick() Tick {
	return Tick{LiquidityNet: cosmath.ZeroInt()}
}

// TickArray is a fixed window of TicksPerArray consecutive tick slots.
type TickArray struct {
	StartTickIndex int32
	PoolRef        solana.PublicKey
	Ticks          [TicksPerArray]Tick
}

// NewTickArray returns a tick array anchored at startTickIndex with all
// slots uninitialized.
func NewTickArray(poolRef solana.PublicKey, startTickIndex int32) *TickArray {
	ta := &TickArray{StartTickIndex: startTickIndex, PoolRef: poolRef}
	for i := range ta.Ticks {
		ta.Ticks[i] = NewTick()
	}
	return ta
}

// PositionRewardInfo is a position's checkpoint against one pool reward
// slot.
type PositionRewardInfo struct {
	GrowthInsideCheckpoint uint128.Uint128
	AmountOwed             uint64
}

// Position is a single liquidity position's bookkeeping.
type Position struct {
	PoolRef              solana.PublicKey
	TickLowerIndex       int32
	TickUpperIndex       int32
	Liquidity            uint128.Uint128
	FeeGrowthCheckpointA uint128.Uint128
	FeeGrowthCheckpointB uint128.Uint128
	FeeOwedA             uint64
	FeeOwedB             uint64
	RewardInfos          [NumRewards]PositionRewardInfo
}

// Closable reports whether the position has no liquidity and no owed
// fees or rewards outstanding (§4.5).
func (p *Position) Closable() bool {
	if !p.Liquidity.IsZero() {
		return false
	}
	if p.FeeOwedA != 0 || p.FeeOwedB != 0 {
		return false
	}
	for _, r := range p.RewardInfos {
		if r.AmountOwed != 0 {
			return false
		}
	}
	return true
}
