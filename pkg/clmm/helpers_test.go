package clmm

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"whirlcore/pkg/tickmath"
)

func mustSqrtPrice(t *testing.T, tick int32) uint128.Uint128 {
	t.Helper()
	p, err := tickmath.TickToSqrtPrice(tick)
	if err != nil {
		t.Fatalf("TickToSqrtPrice(%d): %v", tick, err)
	}
	return p
}

// newTestPool returns a pool at tick 0, 1:1 price, the given tick
// spacing, with no liquidity and no fees, the common starting point for tests
// that add their own liquidity and fee rate.
func newTestPool(spacing uint16) *Pool {
	return &Pool{
		Id:               solana.NewWallet().PublicKey(),
		TickSpacing:      spacing,
		SqrtPrice:        mustSqrtPriceNoErr(0),
		TickCurrentIndex: 0,
	}
}

func mustSqrtPriceNoErr(tick int32) uint128.Uint128 {
	p, err := tickmath.TickToSqrtPrice(tick)
	if err != nil {
		panic(err)
	}
	return p
}

func uint128From(v uint64) uint128.Uint128 {
	return uint128.From64(v)
}
