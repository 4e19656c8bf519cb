package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/marginkit/margin-engine/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func price(s string) decimal.NullDecimal {
	return model.NullOf(d(s))
}

// snapshot: 10 base (9 dp) at $2, 100 quote (6 dp) at $1, 4 base of debt.
func testSnapshot() *model.MarginSnapshot {
	return &model.MarginSnapshot{
		BaseAsset:         d("10000000000"),
		BaseDebt:          d("4000000000"),
		BaseDecimals:      9,
		QuoteAsset:        d("100000000"),
		QuoteDecimals:     6,
		RewardAsset:       d("50000000"),
		RewardDecimals:    6,
		BasePythPrice:     price("200000000"),
		BasePythDecimals:  8,
		QuotePythPrice:    price("100000000"),
		QuotePythDecimals: 8,
	}
}

func TestValue_AllPricesPresent(t *testing.T) {
	v := Value(testSnapshot(), price("0.1"))

	// 10*2 + 100*1 + 50*0.1
	assert.True(t, v.CollateralUsd.Equal(d("125")), "collateral %s", v.CollateralUsd)
	assert.True(t, v.DebtUsd.Equal(d("8")), "debt %s", v.DebtUsd)
	assert.True(t, v.EquityUsd.Equal(d("117")), "equity %s", v.EquityUsd)
	assert.True(t, v.RiskRatioKnown)
	assert.True(t, v.RiskRatio.Equal(d("15.625")))
	assert.False(t, v.BasePriceMissing || v.QuotePriceMissing || v.RewardPriceMissing)
}

func TestValue_ProtocolRiskRatioWins(t *testing.T) {
	s := testSnapshot()
	s.RiskRatio = price("1.75")
	v := Value(s, price("0.1"))
	assert.True(t, v.RiskRatio.Equal(d("1.75")))
}

func TestValue_MissingBasePriceDegrades(t *testing.T) {
	s := testSnapshot()
	s.BasePythPrice = decimal.NullDecimal{}

	v := Value(s, decimal.NullDecimal{})
	assert.True(t, v.BasePriceMissing)
	assert.True(t, v.RewardPriceMissing)
	assert.True(t, v.CollateralUsd.Equal(d("100")))
	assert.True(t, v.DebtUsd.IsZero())
	assert.True(t, v.EquityUsd.Equal(d("100")))
	assert.False(t, v.RiskRatioKnown)
}

func TestValue_EquityFloorsAtZero(t *testing.T) {
	s := testSnapshot()
	s.BaseDebt = d("200000000000") // 200 base
	v := Value(s, price("0.1"))
	assert.True(t, v.EquityUsd.IsZero())
	assert.True(t, v.DebtUsd.GreaterThan(v.CollateralUsd))
}

func TestValue_NilSnapshot(t *testing.T) {
	v := Value(nil, price("1"))
	assert.True(t, v.CollateralUsd.IsZero())
	assert.True(t, v.EquityUsd.IsZero())
	assert.True(t, v.BasePriceMissing)
}

func TestValue_ZeroPriceTreatedAsMissing(t *testing.T) {
	s := testSnapshot()
	s.QuotePythPrice = price("0")
	v := Value(s, price("0.1"))
	assert.True(t, v.QuotePriceMissing)
	assert.True(t, v.CollateralUsd.Equal(d("25")))
}
