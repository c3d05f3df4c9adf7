package clmm

import "testing"

func TestGrowthInside_BelowRange(t *testing.T) {
	got := growthInside(uint128From(100), uint128From(30), uint128From(20), 10, 20, 5)
	want := uint128From(30).Sub(uint128From(20))
	if got != want {
		t.Errorf("growthInside below range = %s, want %s", got, want)
	}
}

func TestGrowthInside_AboveRange(t *testing.T) {
	got := growthInside(uint128From(100), uint128From(30), uint128From(20), 10, 20, 25)
	want := uint128From(20).Sub(uint128From(30))
	if got != want {
		t.Errorf("growthInside above range = %s, want %s", got, want)
	}
}

func TestGrowthInside_WithinRange(t *testing.T) {
	got := growthInside(uint128From(100), uint128From(30), uint128From(20), 10, 20, 15)
	want := uint128From(100).Sub(uint128From(30)).Sub(uint128From(20))
	if got != want {
		t.Errorf("growthInside in range = %s, want %s", got, want)
	}
}

func TestGrowthInside_AtUpperBoundCountsAsAbove(t *testing.T) {
	// current == upper is the boundary case: §4.6 treats [lower, upper)
	// as "inside", so current == upper must take the above-range branch.
	got := growthInside(uint128From(100), uint128From(30), uint128From(20), 10, 20, 20)
	want := uint128From(20).Sub(uint128From(30))
	if got != want {
		t.Errorf("growthInside at upper bound = %s, want %s", got, want)
	}
}

func TestAddFeeGrowth_ZeroLiquidityNoOp(t *testing.T) {
	got := AddFeeGrowth(uint128From(100), 500, uint128From(0))
	if got != uint128From(100) {
		t.Errorf("AddFeeGrowth with zero liquidity should be a no-op, got %s", got)
	}
}

func TestAddFeeGrowth_Increments(t *testing.T) {
	before := uint128From(0)
	after := AddFeeGrowth(before, 1_000_000, uint128From(1_000_000))
	// 1_000_000 fee over 1_000_000 liquidity, scaled by 2^64, should be
	// exactly 1.0 in Q64.64.
	want := uint128From(1).Lsh(64)
	if after != want {
		t.Errorf("AddFeeGrowth = %s, want %s", after, want)
	}
}

func TestUpdateRewardGrowth_AdvancesTimestampForward(t *testing.T) {
	pool := newTestPool(64)
	pool.Liquidity = uint128From(1_000_000)
	pool.RewardInfos[0].EmissionsPerSecond = uint128From(1).Lsh(64) // 1.0/s
	pool.RewardLastUpdatedTimestamp = 100

	UpdateRewardGrowth(pool, 110)
	if pool.RewardLastUpdatedTimestamp != 110 {
		t.Errorf("timestamp = %d, want 110", pool.RewardLastUpdatedTimestamp)
	}
	want := uint128From(10).Lsh(64).Div(uint128From(1_000_000))
	if pool.RewardInfos[0].GrowthGlobal != want {
		t.Errorf("reward growth = %s, want %s", pool.RewardInfos[0].GrowthGlobal, want)
	}
}

func TestUpdateRewardGrowth_ClockRegressionIsNoOp(t *testing.T) {
	pool := newTestPool(64)
	pool.Liquidity = uint128From(1_000_000)
	pool.RewardInfos[0].EmissionsPerSecond = uint128From(1).Lsh(64)
	pool.RewardLastUpdatedTimestamp = 100

	UpdateRewardGrowth(pool, 50)
	if pool.RewardLastUpdatedTimestamp != 100 {
		t.Errorf("timestamp regressed: got %d, want unchanged 100", pool.RewardLastUpdatedTimestamp)
	}
	if !pool.RewardInfos[0].GrowthGlobal.IsZero() {
		t.Errorf("reward growth should not advance on a clock regression")
	}
}

func TestUpdateRewardGrowth_ZeroLiquidityNoOp(t *testing.T) {
	pool := newTestPool(64)
	pool.RewardInfos[0].EmissionsPerSecond = uint128From(1).Lsh(64)
	pool.RewardLastUpdatedTimestamp = 100

	UpdateRewardGrowth(pool, 200)
	if pool.RewardLastUpdatedTimestamp != 200 {
		t.Errorf("timestamp should still advance even with no liquidity")
	}
	if !pool.RewardInfos[0].GrowthGlobal.IsZero() {
		t.Errorf("growth should not accrue with zero liquidity")
	}
}
