package tickmath

import (
	"testing"

	"lukechampine.com/uint128"
)

func TestTickToSqrtPrice_Zero(t *testing.T) {
	got, err := TickToSqrtPrice(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint128.From64(1).Lsh(64)
	if got != want {
		t.Errorf("tick_to_sqrt_price(0) = %s, want %s", got, want)
	}
}

func TestTickToSqrtPrice_MinTick(t *testing.T) {
	got, err := TickToSqrtPrice(MinTick)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint128.From64(4295048016)
	if got != want {
		t.Errorf("tick_to_sqrt_price(MIN_TICK) = %s, want %s", got, want)
	}
	if got != MinSqrtPrice {
		t.Errorf("MinSqrtPrice out of sync with ladder: %s vs %s", MinSqrtPrice, got)
	}
}

func TestTickToSqrtPrice_MaxTickMatchesConstant(t *testing.T) {
	got, err := TickToSqrtPrice(MaxTick)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != MaxSqrtPrice {
		t.Errorf("MaxSqrtPrice out of sync with ladder: %s vs %s", MaxSqrtPrice, got)
	}
}

func TestTickToSqrtPrice_OutOfRange(t *testing.T) {
	if _, err := TickToSqrtPrice(MaxTick + 1); err == nil {
		t.Fatalf("expected InvalidTickIndexError, got nil")
	}
	if _, err := TickToSqrtPrice(MinTick - 1); err == nil {
		t.Fatalf("expected InvalidTickIndexError, got nil")
	}
}

func TestTickToSqrtPrice_Monotonic(t *testing.T) {
	ticks := []int32{MinTick, -300000, -100000, -5000, -1, 0, 1, 5000, 100000, 300000, MaxTick}
	var prev uint128.Uint128
	for idx, tick := range ticks {
		price, err := TickToSqrtPrice(tick)
		if err != nil {
			t.Fatalf("TickToSqrtPrice(%d): %v", tick, err)
		}
		if idx > 0 && price.Cmp(prev) <= 0 {
			t.Errorf("sqrt_price not strictly increasing at tick %d", tick)
		}
		prev = price
	}
}

func TestSqrtPriceToTick_RoundTrip(t *testing.T) {
	ticks := []int32{MinTick, -443635, -300000, -1, 0, 1, 300000, 443635, MaxTick}
	for _, tick := range ticks {
		price, err := TickToSqrtPrice(tick)
		if err != nil {
			t.Fatalf("TickToSqrtPrice(%d): %v", tick, err)
		}
		got, err := SqrtPriceToTick(price)
		if err != nil {
			t.Fatalf("SqrtPriceToTick(%s): %v", price, err)
		}
		if got != tick {
			t.Errorf("round-trip tick %d: got %d", tick, got)
		}
	}
}

func TestSqrtPriceToTick_Bracketing(t *testing.T) {
	lowPrice, err := TickToSqrtPrice(500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	highPrice, err := TickToSqrtPrice(501)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mid := lowPrice.Add(highPrice).Div64(2)

	got, err := SqrtPriceToTick(mid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 500 {
		t.Errorf("sqrt_price_to_tick(mid) = %d, want 500 (greatest tick <= p)", got)
	}
}

func TestSqrtPriceToTick_OutOfRange(t *testing.T) {
	belowMin := MinSqrtPrice.Sub64(1)
	if _, err := SqrtPriceToTick(belowMin); err == nil {
		t.Fatalf("expected SqrtPriceOutOfRangeError, got nil")
	}
	aboveMax := MaxSqrtPrice.Add64(1)
	if _, err := SqrtPriceToTick(aboveMax); err == nil {
		t.Fatalf("expected SqrtPriceOutOfRangeError, got nil")
	}
}
