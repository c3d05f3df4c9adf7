// Package config exposes the pool-level configuration table the core
// validates new pools against: the admissible tick-spacing set and its
// paired default fee rate (§3 "tick_spacing ... one of a configured
// set"). Defaults load from built-in values and can be overridden from
// the environment, the same "env overrides a baked-in default" shape
// the original RPC-endpoint loader used.
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// FeeTier pairs a tick spacing with the default fee rate new pools at
// that spacing are created with. FeeRate is hundredths of a basis
// point, matching Pool.fee_rate's declared width (§3).
type FeeTier struct {
	TickSpacing uint16
	FeeRate     uint16
}

// defaultFeeTiers mirrors the common Whirlpool spacing/fee pairings:
// 1 tick spacing for stable pairs, 128 for exotic/volatile ones.
var defaultFeeTiers = []FeeTier{
	{TickSpacing: 1, FeeRate: 100},
	{TickSpacing: 8, FeeRate: 300},
	{TickSpacing: 64, FeeRate: 3000},
	{TickSpacing: 128, FeeRate: 10000},
}

// LoadEnv loads environment variables from a .env file if it exists.
// Missing files are not an error: the file is optional.
func LoadEnv(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}

// FeeTiers returns the configured tick-spacing/fee-rate table. It
// first loads a .env file in the working directory, if present, to
// seed FEE_TIERS without clobbering a value the environment already
// set, then reads FEE_TIERS as a comma-separated list of
// "spacing:feerate" pairs (e.g. "1:100,64:3000"), falling back to
// defaultFeeTiers when it's still unset. Malformed entries are
// skipped.
func FeeTiers() []FeeTier {
	_ = LoadEnv(".env")
	raw := os.Getenv("FEE_TIERS")
	if raw == "" {
		return append([]FeeTier(nil), defaultFeeTiers...)
	}

	var tiers []FeeTier
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			continue
		}
		spacing, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
		if err != nil {
			continue
		}
		feeRate, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 16)
		if err != nil {
			continue
		}
		tiers = append(tiers, FeeTier{TickSpacing: uint16(spacing), FeeRate: uint16(feeRate)})
	}
	if tiers == nil {
		return append([]FeeTier(nil), defaultFeeTiers...)
	}
	return tiers
}

// IsValidTickSpacing reports whether spacing appears in the configured
// fee-tier table.
func IsValidTickSpacing(spacing uint16) bool {
	for _, tier := range FeeTiers() {
		if tier.TickSpacing == spacing {
			return true
		}
	}
	return false
}
