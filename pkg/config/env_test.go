package config

import "testing"

func TestFeeTiers_DefaultsWhenUnset(t *testing.T) {
	t.Setenv("FEE_TIERS", "")
	tiers := FeeTiers()
	if len(tiers) != len(defaultFeeTiers) {
		t.Fatalf("got %d tiers, want %d default tiers", len(tiers), len(defaultFeeTiers))
	}
}

func TestFeeTiers_EnvOverride(t *testing.T) {
	t.Setenv("FEE_TIERS", "16:500,32:1500")
	tiers := FeeTiers()
	if len(tiers) != 2 {
		t.Fatalf("got %d tiers, want 2", len(tiers))
	}
	if tiers[0] != (FeeTier{TickSpacing: 16, FeeRate: 500}) {
		t.Errorf("tiers[0] = %+v, want {16 500}", tiers[0])
	}
	if tiers[1] != (FeeTier{TickSpacing: 32, FeeRate: 1500}) {
		t.Errorf("tiers[1] = %+v, want {32 1500}", tiers[1])
	}
}

func TestFeeTiers_MalformedEntriesSkipped(t *testing.T) {
	t.Setenv("FEE_TIERS", "not-a-pair,64:3000,also:bad:format")
	tiers := FeeTiers()
	if len(tiers) != 1 || tiers[0].TickSpacing != 64 {
		t.Fatalf("FeeTiers with malformed entries = %+v, want only the 64:3000 pair", tiers)
	}
}

func TestIsValidTickSpacing(t *testing.T) {
	t.Setenv("FEE_TIERS", "")
	if !IsValidTickSpacing(64) {
		t.Errorf("64 should be a valid default tick spacing")
	}
	if IsValidTickSpacing(7) {
		t.Errorf("7 should not be a valid default tick spacing")
	}
}

func TestLoadEnv_MissingFileIsNotAnError(t *testing.T) {
	if err := LoadEnv("/nonexistent/path/to/.env"); err != nil {
		t.Errorf("LoadEnv on a missing file should not error, got %v", err)
	}
}
