package clmm

import (
	"testing"

	cosmath "cosmossdk.io/math"

	"whirlcore/pkg/tickmath"
	"whirlcore/pkg/tokenmath"
)

// singleArraySwapPool returns a pool with active liquidity and no
// initialized ticks anywhere in its one tick array, so a swap moves
// freely within that liquidity until its amount is exhausted or it
// hits the price limit, without crossing a tick boundary.
func singleArraySwapPool(t *testing.T) (*Pool, []*TickArray) {
	t.Helper()
	pool := newTestPool(64)
	array := NewTickArray(pool.Id, ArrayStartTickIndex(0, 64))
	pool.Liquidity = uint128From(1_000_000_000)
	return pool, []*TickArray{array}
}

func TestSwapDriver_AToBDecreasesSqrtPrice(t *testing.T) {
	pool, arrays := singleArraySwapPool(t)
	start := pool.SqrtPrice

	result, err := SwapDriver(pool, arrays, 1_000_000, tickmath.MinSqrtPrice, true, true, 100)
	if err != nil {
		t.Fatalf("SwapDriver: %v", err)
	}
	if pool.SqrtPrice.Cmp(start) >= 0 {
		t.Errorf("a_to_b swap should decrease sqrt_price: start=%s end=%s", start, pool.SqrtPrice)
	}
	if result.AmountA == 0 {
		t.Errorf("expected non-zero amount_a consumed")
	}
}

func TestSwapDriver_BToAIncreasesSqrtPrice(t *testing.T) {
	pool, arrays := singleArraySwapPool(t)
	start := pool.SqrtPrice

	result, err := SwapDriver(pool, arrays, 1_000_000, tickmath.MaxSqrtPrice, true, false, 100)
	if err != nil {
		t.Fatalf("SwapDriver: %v", err)
	}
	if pool.SqrtPrice.Cmp(start) <= 0 {
		t.Errorf("b_to_a swap should increase sqrt_price: start=%s end=%s", start, pool.SqrtPrice)
	}
	if result.AmountB == 0 {
		t.Errorf("expected non-zero amount_b consumed")
	}
}

func TestSwapDriver_AccumulatesFeeGrowth(t *testing.T) {
	pool, arrays := singleArraySwapPool(t)
	pool.FeeRate = 3000 // 0.3%

	if _, err := SwapDriver(pool, arrays, 1_000_000, tickmath.MinSqrtPrice, true, true, 100); err != nil {
		t.Fatalf("SwapDriver: %v", err)
	}
	if pool.FeeGrowthGlobalA.IsZero() {
		t.Errorf("expected fee_growth_global_a to accrue from a non-zero fee rate")
	}
}

func TestSwapDriver_InvalidLimitDirectionFails(t *testing.T) {
	pool, arrays := singleArraySwapPool(t)

	// a_to_b moves price down; a limit above the current price is on
	// the wrong side.
	if _, err := SwapDriver(pool, arrays, 1_000_000, tickmath.MaxSqrtPrice, true, true, 100); err == nil {
		t.Fatalf("expected InvalidSqrtPriceLimitDirectionError")
	}
}

func TestSwapDriver_EmptyArraysFails(t *testing.T) {
	pool, _ := singleArraySwapPool(t)
	if _, err := SwapDriver(pool, nil, 1_000_000, tickmath.MinSqrtPrice, true, true, 100); err == nil {
		t.Fatalf("expected TickArraySequenceInvalidError for no arrays")
	}
}

// TestSwapDriver_CrossesOnExactTarget pins the §9 tick-crossing
// convention (SPEC_FULL.md §6): a segment crosses the next initialized
// tick iff the step's resulting sqrt_price equals that tick's price
// exactly, not merely reaches-or-passes it.
func TestSwapDriver_CrossesOnExactTarget(t *testing.T) {
	pool := newTestPool(64)
	pool.Liquidity = uint128From(1_000_000_000)
	// tick 0 (the pool's current tick) and tick -64 fall in different
	// arrays: ArrayStartTickIndex(0, 64) = 0, so the array covering the
	// current tick does not reach back to a negative tick.
	currentArray := NewTickArray(pool.Id, ArrayStartTickIndex(0, 64))
	lowerArray := NewTickArray(pool.Id, ArrayStartTickIndex(-64, 64))

	// isUpper=true so liquidity_net comes out negative (tick -64 acts as
	// a position's upper bound here); liquidity_gross stays positive.
	if err := UpdateTick(lowerArray, pool, -64, 64, cosmath.NewInt(500_000_000), true); err != nil {
		t.Fatalf("seed tick -64: %v", err)
	}

	current := mustSqrtPrice(t, 0)
	target := mustSqrtPrice(t, -64)
	exactAmountIn, err := tokenmath.AmountAFromLiquidity(target, current, pool.Liquidity, true)
	if err != nil {
		t.Fatalf("AmountAFromLiquidity: %v", err)
	}

	result, err := SwapDriver(pool, []*TickArray{currentArray, lowerArray}, exactAmountIn, tickmath.MinSqrtPrice, true, true, 100)
	if err != nil {
		t.Fatalf("SwapDriver: %v", err)
	}
	if pool.SqrtPrice != target {
		t.Errorf("pool.SqrtPrice = %s, want exactly the tick price %s", pool.SqrtPrice, target)
	}
	if pool.TickCurrentIndex != -65 {
		t.Errorf("pool.TickCurrentIndex = %d, want -65 after crossing tick -64 downward", pool.TickCurrentIndex)
	}
	// tick -64 carries liquidity_net = -500_000_000 (seeded as an upper
	// bound); crossing it downward subtracts that negative net, so pool
	// liquidity increases by its magnitude.
	if pool.Liquidity != uint128From(1_500_000_000) {
		t.Errorf("pool.Liquidity = %s, want 1500000000 after crossing the seeded tick", pool.Liquidity)
	}
	if result.AmountA != exactAmountIn {
		t.Errorf("AmountA = %d, want the full exact input %d", result.AmountA, exactAmountIn)
	}
}

