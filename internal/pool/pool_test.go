package pool

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var defaults = Defaults{MaxLeverage: 5, MinOrderQuantity: d("0.01")}

func TestParseKey_Valid(t *testing.T) {
	k, err := ParseKey("SUI_USDC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Base != "SUI" || k.Quote != "USDC" {
		t.Errorf("expected SUI/USDC, got %s/%s", k.Base, k.Quote)
	}
}

func TestParseKey_Normalizes(t *testing.T) {
	k, err := ParseKey(" deep_sui ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.ID != "DEEP_SUI" {
		t.Errorf("expected DEEP_SUI, got %s", k.ID)
	}
}

func TestParseKey_Invalid(t *testing.T) {
	tests := []string{
		"",
		"SUI",
		"SUI-USDC",
		"SUI_",
		"_USDC",
		"SUI_USDC_DEEP",
		"1SUI_USDC",
		"SUI_SUI",
	}
	for _, id := range tests {
		if _, err := ParseKey(id); err == nil {
			t.Errorf("expected error for pool key %q", id)
		}
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	p, err := Normalize(model.PoolParams{PoolID: "sui_usdc", BaseDecimals: 9, QuoteDecimals: 6}, defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PoolID != "SUI_USDC" || p.BaseSymbol != "SUI" || p.QuoteSymbol != "USDC" {
		t.Errorf("unexpected identity: %+v", p)
	}
	if p.MaxLeverage != 5 {
		t.Errorf("expected default leverage 5, got %d", p.MaxLeverage)
	}
	if !p.MinOrderQuantity.Equal(d("0.01")) {
		t.Errorf("expected default min 0.01, got %s", p.MinOrderQuantity)
	}
}

func TestNormalize_KeepsExplicitLimits(t *testing.T) {
	p, err := Normalize(model.PoolParams{
		PoolID:           "SUI_USDC",
		MaxLeverage:      3,
		MinOrderQuantity: d("1"),
	}, defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MaxLeverage != 3 || !p.MinOrderQuantity.Equal(d("1")) {
		t.Errorf("explicit limits overwritten: %+v", p)
	}
}

func TestValidate_Rejections(t *testing.T) {
	good := model.PoolParams{PoolID: "SUI_USDC", MaxLeverage: 5, MinOrderQuantity: d("0.1"), BaseDecimals: 9, QuoteDecimals: 6}

	tests := []struct {
		name   string
		mutate func(p *model.PoolParams)
	}{
		{"bad key", func(p *model.PoolParams) { p.PoolID = "nope" }},
		{"negative decimals", func(p *model.PoolParams) { p.BaseDecimals = -1 }},
		{"huge decimals", func(p *model.PoolParams) { p.QuoteDecimals = 30 }},
		{"zero leverage", func(p *model.PoolParams) { p.MaxLeverage = 0 }},
		{"zero min size", func(p *model.PoolParams) { p.MinOrderQuantity = decimal.Zero }},
	}
	for _, tt := range tests {
		p := good
		tt.mutate(&p)
		if err := Validate(p); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
	if err := Validate(good); err != nil {
		t.Errorf("unexpected error for valid pool: %v", err)
	}
}
