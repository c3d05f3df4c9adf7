// Package tickmath implements the bijection between signed tick
// indices and Q64.64 square-root prices (§4.2): tick_to_sqrt_price via
// the standard binary-decomposition magic-constant ladder, and its
// inverse via binary search over the forward direction.
package tickmath

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"whirlcore/pkg/clmmerrors"
)

// MinTick and MaxTick bound the admissible tick domain.
const (
	MinTick int32 = -443636
	MaxTick int32 = 443636
)

// MinSqrtPrice and MaxSqrtPrice are tick_to_sqrt_price(MinTick) and
// tick_to_sqrt_price(MaxTick); computed once at init so they can never
// drift out of sync with the ladder below.
var (
	MinSqrtPrice uint128.Uint128
	MaxSqrtPrice uint128.Uint128
)

func init() {
	var err error
	MinSqrtPrice, err = tickToSqrtPrice(MinTick)
	if err != nil {
		panic(err)
	}
	MaxSqrtPrice, err = tickToSqrtPrice(MaxTick)
	if err != nil {
		panic(err)
	}
}

// magicConstants are the per-bit multipliers of the binary-decomposition
// ladder: ratio for bit k of |tick| is 1.0001^(-2^(k-1)) in Q128.128,
// i.e. the same ladder Uniswap V3's TickMath uses for sqrt(1.0001^tick)
// in Q128.128, before any Q96/Q64 rescaling.
var magicConstants = [19]uint256.Int{
	mustU256("0xfffcb933bd6fad37aa2d162d1a594001"),
	mustU256("0xfff97272373d413259a46990580e213a"),
	mustU256("0xfff2e50f5f656932ef12357cf3c7fdcc"),
	mustU256("0xffe5caca7e10e4e61c3624eaa0941cd0"),
	mustU256("0xffcb9843d60f6159c9db58835c926644"),
	mustU256("0xff973b41fa98c081472e6896dfb254c0"),
	mustU256("0xff2ea16466c96a3843ec78b326b52861"),
	mustU256("0xfe5dee046a99a2a811c461f1969c3053"),
	mustU256("0xfcbe86c7900a88aedcffc83b479aa3a4"),
	mustU256("0xf987a7253ac413176f2b074cf7815e54"),
	mustU256("0xf3392b0822b70005940c7a398e4b70f3"),
	mustU256("0xe7159475a2c29b7443b29c7fa6e889d9"),
	mustU256("0xd097f3bdfd2022b8845ad8f792aa5825"),
	mustU256("0xa9f746462d870fdf8a65dc1f90e061e5"),
	mustU256("0x70d869a156d2a1b890bb3df62baf32f7"),
	mustU256("0x31be135f97d08fd981231505542fcfa6"),
	mustU256("0x9aa508b5b7a84e1c677de54f3e99bc9"),
	mustU256("0x5d6af8dedb81196699c329225ee604"),
	mustU256("0x2216e584f5fa1ea926041bedfe98"),
}

func mustU256(hex string) uint256.Int {
	v, err := uint256.FromHex(hex)
	if err != nil {
		panic(err)
	}
	return *v
}

// TickToSqrtPrice converts a tick index to its Q64.64 square-root
// price. FAILS InvalidTickIndexError if i is outside [MinTick, MaxTick].
func TickToSqrtPrice(i int32) (uint128.Uint128, error) {
	return tickToSqrtPrice(i)
}

func tickToSqrtPrice(i int32) (uint128.Uint128, error) {
	if i < MinTick || i > MaxTick {
		return uint128.Uint128{}, &clmmerrors.InvalidTickIndexError{Tick: i}
	}

	absTick := uint32(i)
	if i < 0 {
		absTick = uint32(-i)
	}

	one := uint256.NewInt(1)
	ratio := new(uint256.Int).Lsh(one, 128)
	if absTick&0x1 != 0 {
		ratio = &magicConstants[0]
	}
	for bit := 1; bit < 19; bit++ {
		if absTick&(1<<uint(bit)) != 0 {
			ratio = new(uint256.Int).Rsh(new(uint256.Int).Mul(ratio, &magicConstants[bit]), 128)
		}
	}

	if i > 0 {
		maxU256 := new(uint256.Int).Sub(new(uint256.Int).Lsh(one, 256), one)
		// ratio ∈ (0, 2^128]; no div-by-zero is reachable here.
		ratio = new(uint256.Int).Div(maxU256, ratio)
	}

	// Rescale Q128.128 -> Q64.64 by truncation (shift 64, in place of
	// the Q128.96 downscale the Uniswap ladder this is adapted from
	// uses with shift 32) — this is the convention that reproduces
	// tick_to_sqrt_price(MIN_TICK) = MIN_SQRT_PRICE exactly.
	shifted := new(uint256.Int).Rsh(ratio, 64)

	if shifted.BitLen() > 128 {
		return uint128.Uint128{}, &clmmerrors.SqrtPriceOutOfRangeError{SqrtPrice: shifted.Dec()}
	}
	return uint128.FromBig(shifted.ToBig()), nil
}

// SqrtPriceToTick returns the greatest tick whose sqrt_price is <= p.
// FAILS SqrtPriceOutOfRangeError if p is outside [MinSqrtPrice,
// MaxSqrtPrice].
//
// Implemented as a binary search over TickToSqrtPrice rather than a
// ported logarithmic-approximation ladder: this guarantees the
// round-trip and bracketing invariants hold by construction, since the
// inverse can never disagree with the forward direction it is defined
// against.
func SqrtPriceToTick(p uint128.Uint128) (int32, error) {
	if p.Cmp(MinSqrtPrice) < 0 || p.Cmp(MaxSqrtPrice) > 0 {
		return 0, &clmmerrors.SqrtPriceOutOfRangeError{SqrtPrice: p.String()}
	}

	lo, hi := MinTick, MaxTick
	for lo < hi {
		// mid rounds toward +inf to keep the search converging on the
		// greatest tick satisfying sqrt_price(mid) <= p.
		mid := lo + (hi-lo+1)/2
		midPrice, err := TickToSqrtPrice(mid)
		if err != nil {
			return 0, err
		}
		if midPrice.Cmp(p) <= 0 {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, nil
}
