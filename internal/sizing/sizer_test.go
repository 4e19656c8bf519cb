package sizing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginkit/margin-engine/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func px(s string) decimal.NullDecimal {
	return model.NullOf(d(s))
}

var pool = model.PoolParams{
	PoolID:           "SUI_USDC",
	MaxLeverage:      5,
	MinOrderQuantity: d("0.1"),
}

func equity(s string) model.Valuation {
	return model.Valuation{EquityUsd: d(s)}
}

func TestSizeOrder_MarketQuantity(t *testing.T) {
	req := model.OrderRequest{
		Side:     model.SideSell,
		Type:     model.OrderMarket,
		Margin:   d("10"),
		Leverage: 3,
	}
	plan, err := SizeOrder(req, pool, equity("20"), px("2"))
	require.NoError(t, err)

	assert.True(t, plan.Quantity.Equal(d("30")))
	assert.True(t, plan.Notional.Equal(d("60")))
	assert.False(t, plan.Price.Valid)
	assert.Equal(t, model.PayReward, plan.PayWith)
	require.True(t, plan.Borrow.BorrowBase.Valid)
	assert.True(t, plan.Borrow.BorrowBase.Decimal.Equal(d("20")))
}

func TestSizeOrder_NotionalExceedsEquity(t *testing.T) {
	req := model.OrderRequest{
		Side:     model.SideSell,
		Type:     model.OrderMarket,
		Margin:   d("10"),
		Leverage: 3,
	}
	// 19 * 3 = 57 < 30 * 2
	_, err := SizeOrder(req, pool, equity("19"), px("2"))
	assert.ErrorIs(t, err, ErrNotionalExceedsEquity)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSizeOrder_LimitUsesLimitPrice(t *testing.T) {
	req := model.OrderRequest{
		Side:       model.SideBuy,
		Type:       model.OrderLimit,
		Margin:     d("5"),
		Leverage:   2,
		LimitPrice: px("1.5"),
		PayWith:    model.PayQuote,
	}
	plan, err := SizeOrder(req, pool, equity("100"), px("2"))
	require.NoError(t, err)

	assert.True(t, plan.Quantity.Equal(d("10")))
	assert.True(t, plan.Notional.Equal(d("15")))
	assert.True(t, plan.Price.Valid)
	assert.Equal(t, model.PayQuote, plan.PayWith)
	// Borrow uses the mark: 5 * 2 * 1
	require.True(t, plan.Borrow.BorrowQuote.Valid)
	assert.True(t, plan.Borrow.BorrowQuote.Decimal.Equal(d("10")))
}

func TestSizeOrder_Rejections(t *testing.T) {
	base := model.OrderRequest{
		Side:     model.SideBuy,
		Type:     model.OrderMarket,
		Margin:   d("1"),
		Leverage: 1,
	}

	tests := []struct {
		name   string
		mutate func(r *model.OrderRequest)
		mark   decimal.NullDecimal
		want   error
	}{
		{"bad side", func(r *model.OrderRequest) { r.Side = "hold" }, px("1"), ErrInvalidSide},
		{"bad type", func(r *model.OrderRequest) { r.Type = "stop" }, px("1"), ErrInvalidOrderType},
		{"zero margin", func(r *model.OrderRequest) { r.Margin = decimal.Zero }, px("1"), ErrInvalidAmount},
		{"negative margin", func(r *model.OrderRequest) { r.Margin = d("-1") }, px("1"), ErrInvalidAmount},
		{"leverage zero", func(r *model.OrderRequest) { r.Leverage = 0 }, px("1"), ErrInvalidLeverage},
		{"leverage above pool", func(r *model.OrderRequest) { r.Leverage = 6 }, px("1"), ErrInvalidLeverage},
		{"limit without price", func(r *model.OrderRequest) { r.Type = model.OrderLimit }, px("1"), ErrMissingLimitPrice},
		{"market without mark", func(r *model.OrderRequest) {}, decimal.NullDecimal{}, ErrPriceUnavailable},
		{"below minimum", func(r *model.OrderRequest) { r.Margin = d("0.01") }, px("1"), ErrBelowMinimum},
		{"bad pay asset", func(r *model.OrderRequest) { r.PayWith = "eth" }, px("1"), model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := SizeOrder(req, pool, equity("1000"), tt.mark)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestSizeOrder_LeveragedLimitBuyNeedsMark(t *testing.T) {
	req := model.OrderRequest{
		Side:       model.SideBuy,
		Type:       model.OrderLimit,
		Margin:     d("5"),
		Leverage:   2,
		LimitPrice: px("1"),
	}
	_, err := SizeOrder(req, pool, equity("100"), decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestSizeOrder_RoundsQuantity(t *testing.T) {
	req := model.OrderRequest{
		Side:     model.SideSell,
		Type:     model.OrderMarket,
		Margin:   d("0.33333333"),
		Leverage: 3,
	}
	plan, err := SizeOrder(req, pool, equity("100"), px("1"))
	require.NoError(t, err)
	assert.Equal(t, "1", plan.Quantity.String())
}

func TestCheckLeverage_PoolWithoutMax(t *testing.T) {
	assert.NoError(t, CheckLeverage(1, model.PoolParams{}))
	assert.ErrorIs(t, CheckLeverage(2, model.PoolParams{}), ErrInvalidLeverage)
}

func TestMaxMargin(t *testing.T) {
	assert.True(t, MaxMargin(equity("100"), px("3")).Equal(d("33.333333")))
	assert.True(t, MaxMargin(equity("100"), decimal.NullDecimal{}).IsZero())
	assert.True(t, MaxMargin(equity("100"), px("0")).IsZero())
}
