// Package clmmerrors defines the flat, typed error taxonomy the core
// surfaces to callers. Every variant carries the offending values so a
// host can format a message without re-deriving context; the core
// itself never logs or recovers from these (see pkg/clmm).
package clmmerrors

import "fmt"

// MultiplicationOverflowError is returned when a checked Q64.64
// multiply-shift would not fit in its declared output width.
type MultiplicationOverflowError struct {
	Op string
}

func (e *MultiplicationOverflowError) Error() string {
	return fmt.Sprintf("%s: multiplication overflow", e.Op)
}

// DivideByZeroError is returned by any division primitive given a zero
// divisor.
type DivideByZeroError struct {
	Op string
}

func (e *DivideByZeroError) Error() string {
	return fmt.Sprintf("%s: divide by zero", e.Op)
}

// NumberDownCastError is returned when a wide intermediate cannot be
// narrowed to the requested bit width without loss.
type NumberDownCastError struct {
	Op   string
	Bits int
}

func (e *NumberDownCastError) Error() string {
	return fmt.Sprintf("%s: value does not fit in %d bits", e.Op, e.Bits)
}

// TokenMaxExceededError is returned when a computed or required token
// amount exceeds a caller-specified maximum (deposit slippage, or an
// amount that overflows its declared width).
type TokenMaxExceededError struct {
	Op  string
	Got string
	Max string
}

func (e *TokenMaxExceededError) Error() string {
	return fmt.Sprintf("%s: amount %s exceeds max %s", e.Op, e.Got, e.Max)
}

// TokenMinSubceededError is returned when a computed token amount falls
// below a caller-specified minimum (withdraw/swap slippage).
type TokenMinSubceededError struct {
	Op  string
	Got string
	Min string
}

func (e *TokenMinSubceededError) Error() string {
	return fmt.Sprintf("%s: amount %s is below min %s", e.Op, e.Got, e.Min)
}

// ZeroTradableAmountError is returned when a swap would produce no
// output because liquidity is exhausted before the limit or amount is.
type ZeroTradableAmountError struct {
	Op string
}

func (e *ZeroTradableAmountError) Error() string {
	return fmt.Sprintf("%s: no tradable liquidity remains", e.Op)
}

// InvalidTickIndexError is returned when a tick index is outside
// [MinTick, MaxTick].
type InvalidTickIndexError struct {
	Tick int32
}

func (e *InvalidTickIndexError) Error() string {
	return fmt.Sprintf("tick index %d out of range", e.Tick)
}

// TickNotSpacedError is returned when a tick index is not a multiple of
// the pool's tick spacing.
type TickNotSpacedError struct {
	Tick    int32
	Spacing uint16
}

func (e *TickNotSpacedError) Error() string {
	return fmt.Sprintf("tick index %d is not a multiple of spacing %d", e.Tick, e.Spacing)
}

// InvalidTickSpacingError is returned when a pool is initialized with a
// tick spacing outside the configured fee-tier table.
type InvalidTickSpacingError struct {
	Spacing uint16
}

func (e *InvalidTickSpacingError) Error() string {
	return fmt.Sprintf("tick spacing %d is not a configured fee tier", e.Spacing)
}

// TickNotFoundError is returned when a tick index is not housed by the
// tick array it was looked up against.
type TickNotFoundError struct {
	Tick       int32
	ArrayStart int32
}

func (e *TickNotFoundError) Error() string {
	return fmt.Sprintf("tick %d not housed by array starting at %d", e.Tick, e.ArrayStart)
}

// TickArrayIndexOutOfBoundsError reports a slot index outside
// [0, TicksPerArray). No function in this module returns it; a tick
// outside an array's window is reported as TickNotFoundError.
type TickArrayIndexOutOfBoundsError struct {
	Index int
}

func (e *TickArrayIndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("tick array slot index %d out of bounds", e.Index)
}

// TickArraySequenceInvalidError is returned when the caller-supplied
// tick arrays are not contiguous in the swap direction.
type TickArraySequenceInvalidError struct {
	Reason string
}

func (e *TickArraySequenceInvalidError) Error() string {
	return fmt.Sprintf("tick array sequence invalid: %s", e.Reason)
}

// LiquidityZeroError is returned when an operation requires a non-zero
// liquidity delta but received zero.
type LiquidityZeroError struct {
	Op string
}

func (e *LiquidityZeroError) Error() string {
	return fmt.Sprintf("%s: liquidity delta must be non-zero", e.Op)
}

// LiquidityOverflowError is returned when adding liquidity would
// overflow its declared 128-bit width.
type LiquidityOverflowError struct {
	Op string
}

func (e *LiquidityOverflowError) Error() string {
	return fmt.Sprintf("%s: liquidity overflow", e.Op)
}

// LiquidityUnderflowError is returned when subtracting liquidity would
// underflow below zero.
type LiquidityUnderflowError struct {
	Op string
}

func (e *LiquidityUnderflowError) Error() string {
	return fmt.Sprintf("%s: liquidity underflow", e.Op)
}

// LiquidityNetError is returned when a tick's signed liquidity_net
// bookkeeping becomes inconsistent with its liquidity_gross.
type LiquidityNetError struct {
	Op string
}

func (e *LiquidityNetError) Error() string {
	return fmt.Sprintf("%s: liquidity_net inconsistent with liquidity_gross", e.Op)
}

// SqrtPriceOutOfRangeError is returned when a sqrt price leaves
// [MinSqrtPrice, MaxSqrtPrice].
type SqrtPriceOutOfRangeError struct {
	SqrtPrice string
}

func (e *SqrtPriceOutOfRangeError) Error() string {
	return fmt.Sprintf("sqrt price %s out of range", e.SqrtPrice)
}

// SqrtPriceLimitOutOfBoundsError is returned when a caller-supplied
// price limit is outside the admissible domain.
type SqrtPriceLimitOutOfBoundsError struct {
	Limit string
}

func (e *SqrtPriceLimitOutOfBoundsError) Error() string {
	return fmt.Sprintf("sqrt price limit %s out of bounds", e.Limit)
}

// InvalidSqrtPriceLimitDirectionError is returned when a price limit is
// on the wrong side of the pool's current price for the swap direction.
type InvalidSqrtPriceLimitDirectionError struct {
	AToB bool
}

func (e *InvalidSqrtPriceLimitDirectionError) Error() string {
	return fmt.Sprintf("sqrt price limit is invalid for a_to_b=%v", e.AToB)
}

// ClosePositionNotEmptyError is returned when closing a position that
// still has liquidity or owed amounts.
type ClosePositionNotEmptyError struct{}

func (e *ClosePositionNotEmptyError) Error() string {
	return "position is not closable: liquidity or owed amounts are non-zero"
}

// InvalidPositionBoundsError is returned when tick_lower/tick_upper
// violate the bracketing or spacing invariants of §3.
type InvalidPositionBoundsError struct {
	Lower int32
	Upper int32
}

func (e *InvalidPositionBoundsError) Error() string {
	return fmt.Sprintf("invalid position bounds [%d, %d)", e.Lower, e.Upper)
}

// InvalidRewardIndexError is returned when a reward index is outside
// [0, NumRewards).
type InvalidRewardIndexError struct {
	Index int
}

func (e *InvalidRewardIndexError) Error() string {
	return fmt.Sprintf("invalid reward index %d", e.Index)
}

// RewardNotInitializedError reports a reward slot that has never been
// emitted into. No function in this module returns it; collecting from
// such a slot returns its (zero) owed amount without error.
type RewardNotInitializedError struct {
	Index int
}

func (e *RewardNotInitializedError) Error() string {
	return fmt.Sprintf("reward index %d is not initialized", e.Index)
}
