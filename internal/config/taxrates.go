package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
)

// TaxRates maps product categories to tax rates in basis points.
// Products carry their own rate; the category table is the fallback for
// products created without one. Loaded once at startup from
// TAX_RATES_PATH when set.
type TaxRates struct {
	DefaultBPS int64            `yaml:"default_bps"`
	Categories map[string]int64 `yaml:"categories"`
}

func LoadTaxRates(log *logger.Logger) (*TaxRates, error) {
	path := strings.TrimSpace(os.Getenv("TAX_RATES_PATH"))
	if path == "" {
		return &TaxRates{DefaultBPS: 0, Categories: map[string]int64{}}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tax rates file: %w", err)
	}
	var tr TaxRates
	if err := yaml.Unmarshal(raw, &tr); err != nil {
		return nil, fmt.Errorf("parse tax rates file: %w", err)
	}
	if tr.Categories == nil {
		tr.Categories = map[string]int64{}
	}
	if log != nil {
		log.Info("Loaded tax rates", "path", path, "categories", len(tr.Categories))
	}
	return &tr, nil
}

// RateFor resolves the tax rate for a product. An explicit product rate
// wins; otherwise the category rate, otherwise the default.
func (tr *TaxRates) RateFor(productBPS int64, category string) int64 {
	if tr == nil {
		return productBPS
	}
	if productBPS > 0 {
		return productBPS
	}
	category = strings.TrimSpace(strings.ToLower(category))
	if category != "" {
		if bps, ok := tr.Categories[category]; ok {
			return bps
		}
	}
	return tr.DefaultBPS
}
