package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTaxRates_DefaultsWhenUnset(t *testing.T) {
	t.Setenv("TAX_RATES_PATH", "")
	tr, err := LoadTaxRates(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.DefaultBPS != 0 || len(tr.Categories) != 0 {
		t.Fatalf("expected empty defaults, got %+v", tr)
	}
}

func TestLoadTaxRates_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax.yaml")
	raw := "default_bps: 1500\ncategories:\n  food: 0\n  alcohol: 2000\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv("TAX_RATES_PATH", path)
	tr, err := LoadTaxRates(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.DefaultBPS != 1500 {
		t.Fatalf("expected default 1500, got %d", tr.DefaultBPS)
	}
	if tr.Categories["alcohol"] != 2000 {
		t.Fatalf("expected alcohol 2000, got %d", tr.Categories["alcohol"])
	}
}

func TestLoadTaxRates_RejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax.yaml")
	if err := os.WriteFile(path, []byte("default_bps: [oops"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv("TAX_RATES_PATH", path)
	if _, err := LoadTaxRates(nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRateFor_ProductRateWins(t *testing.T) {
	tr := &TaxRates{DefaultBPS: 1000, Categories: map[string]int64{"food": 500}}
	if got := tr.RateFor(250, "food"); got != 250 {
		t.Fatalf("expected product rate 250, got %d", got)
	}
}

func TestRateFor_FallsBackToCategoryThenDefault(t *testing.T) {
	tr := &TaxRates{DefaultBPS: 1000, Categories: map[string]int64{"food": 500}}
	if got := tr.RateFor(0, "Food"); got != 500 {
		t.Fatalf("expected category rate 500, got %d", got)
	}
	if got := tr.RateFor(0, "misc"); got != 1000 {
		t.Fatalf("expected default rate 1000, got %d", got)
	}
}

func TestRateFor_NilReceiver(t *testing.T) {
	var tr *TaxRates
	if got := tr.RateFor(300, "food"); got != 300 {
		t.Fatalf("expected product rate passthrough, got %d", got)
	}
}
