package clmm

import (
	"testing"

	"lukechampine.com/uint128"
)

func TestModifyPositionLiquidity_DepositInRangeUpdatesPool(t *testing.T) {
	pool := newTestPool(64)
	lowerArray := NewTickArray(pool.Id, ArrayStartTickIndex(-64, 64))
	upperArray := NewTickArray(pool.Id, ArrayStartTickIndex(64, 64))
	position := &Position{TickLowerIndex: -64, TickUpperIndex: 64}

	if err := ModifyPositionLiquidity(pool, position, lowerArray, upperArray, -64, 64, uint128From(1_000), true, 100); err != nil {
		t.Fatalf("ModifyPositionLiquidity: %v", err)
	}
	if position.Liquidity != uint128From(1_000) {
		t.Errorf("position liquidity = %s, want 1000", position.Liquidity)
	}
	if pool.Liquidity != uint128From(1_000) {
		t.Errorf("pool liquidity should reflect the deposit since tick 0 is in range, got %s", pool.Liquidity)
	}

	lowerTick, _ := LocateTick(lowerArray, -64, 64)
	upperTick, _ := LocateTick(upperArray, 64, 64)
	if !lowerTick.Initialized || !upperTick.Initialized {
		t.Errorf("both bounding ticks should be initialized after a deposit")
	}
}

func TestModifyPositionLiquidity_DepositOutOfRangeLeavesPoolLiquidity(t *testing.T) {
	pool := newTestPool(64)
	pool.TickCurrentIndex = 10_000
	array := NewTickArray(pool.Id, ArrayStartTickIndex(640, 64))
	position := &Position{TickLowerIndex: 64, TickUpperIndex: 640}

	if err := ModifyPositionLiquidity(pool, position, array, array, 64, 640, uint128From(1_000), true, 100); err != nil {
		t.Fatalf("ModifyPositionLiquidity: %v", err)
	}
	if !pool.Liquidity.IsZero() {
		t.Errorf("pool liquidity should be untouched when the position is out of range, got %s", pool.Liquidity)
	}
}

func TestModifyPositionLiquidity_ZeroMagnitudeFails(t *testing.T) {
	pool := newTestPool(64)
	array := NewTickArray(pool.Id, 0)
	position := &Position{TickLowerIndex: 0, TickUpperIndex: 640}

	if err := ModifyPositionLiquidity(pool, position, array, array, 0, 640, uint128.Uint128{}, true, 100); err == nil {
		t.Fatalf("expected LiquidityZeroError")
	}
}

func TestModifyPositionLiquidity_WithdrawMoreThanHeldFails(t *testing.T) {
	pool := newTestPool(64)
	array := NewTickArray(pool.Id, 0)
	position := &Position{TickLowerIndex: 0, TickUpperIndex: 640, Liquidity: uint128From(10)}

	if err := ModifyPositionLiquidity(pool, position, array, array, 0, 640, uint128From(20), false, 100); err == nil {
		t.Fatalf("expected LiquidityUnderflowError")
	}
}

func TestSettleFeesAndRewards_Idempotent(t *testing.T) {
	pool := newTestPool(64)
	pool.FeeGrowthGlobalA = uint128From(1).Lsh(64)
	lower := &Tick{}
	upper := &Tick{}
	position := &Position{Liquidity: uint128From(1_000_000)}

	if err := SettleFeesAndRewards(pool, position, lower, upper, -640, 640); err != nil {
		t.Fatalf("SettleFeesAndRewards: %v", err)
	}
	firstOwed := position.FeeOwedA
	if firstOwed == 0 {
		t.Fatalf("expected a non-zero fee credit on first settle")
	}

	if err := SettleFeesAndRewards(pool, position, lower, upper, -640, 640); err != nil {
		t.Fatalf("SettleFeesAndRewards (second call): %v", err)
	}
	if position.FeeOwedA != firstOwed {
		t.Errorf("second settle with no intervening growth credited more fees: %d -> %d", firstOwed, position.FeeOwedA)
	}
}

func TestCollectFees_ZeroesOwed(t *testing.T) {
	position := &Position{FeeOwedA: 10, FeeOwedB: 20}
	a, b := CollectFees(position)
	if a != 10 || b != 20 {
		t.Errorf("CollectFees returned (%d, %d), want (10, 20)", a, b)
	}
	if position.FeeOwedA != 0 || position.FeeOwedB != 0 {
		t.Errorf("CollectFees should zero the position's owed fields")
	}
}

func TestCollectReward_InvalidIndex(t *testing.T) {
	position := &Position{}
	if _, err := CollectReward(position, 3); err == nil {
		t.Fatalf("expected InvalidRewardIndexError")
	}
	if _, err := CollectReward(position, -1); err == nil {
		t.Fatalf("expected InvalidRewardIndexError")
	}
}

func TestCollectReward_ZeroesOwed(t *testing.T) {
	position := &Position{}
	position.RewardInfos[1].AmountOwed = 42
	amount, err := CollectReward(position, 1)
	if err != nil {
		t.Fatalf("CollectReward: %v", err)
	}
	if amount != 42 {
		t.Errorf("CollectReward = %d, want 42", amount)
	}
	if position.RewardInfos[1].AmountOwed != 0 {
		t.Errorf("CollectReward should zero the slot's owed amount")
	}
}
