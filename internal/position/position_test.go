package position

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginkit/margin-engine/internal/ledger"
	"github.com/marginkit/margin-engine/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mark(s string) decimal.NullDecimal {
	return model.NullOf(d(s))
}

// snap builds a snapshot in whole units (zero decimals).
func snap(baseAsset, baseDebt, quoteAsset, quoteDebt string) *model.MarginSnapshot {
	return &model.MarginSnapshot{
		BaseAsset:  d(baseAsset),
		BaseDebt:   d(baseDebt),
		QuoteAsset: d(quoteAsset),
		QuoteDebt:  d(quoteDebt),
	}
}

var t0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestResolve_LongWithKnownEntry(t *testing.T) {
	inv, err := ledger.Reduce([]model.Fill{
		{ID: "a", Timestamp: t0, Side: model.SideBuy, BaseVolume: d("10"), QuoteVolume: d("20"), Price: d("2")},
	})
	require.NoError(t, err)
	latest := &model.Fill{Side: model.SideBuy}

	p := Resolve(inv, snap("10", "0", "0", "15"), latest, mark("2.5"))

	assert.Equal(t, model.PositionLong, p.Side)
	assert.True(t, p.Size.Equal(d("10")))
	assert.True(t, p.HasKnownEntry)
	assert.True(t, p.EntryPrice.Equal(d("2")))
	assert.True(t, p.UnrealizedPnl.Equal(d("5")))
	assert.True(t, p.HasDebt)
}

func TestResolve_ShortFromSellFill(t *testing.T) {
	inv, err := ledger.Reduce([]model.Fill{
		{ID: "a", Timestamp: t0, Side: model.SideSell, BaseVolume: d("5"), QuoteVolume: d("15"), Price: d("3")},
	})
	require.NoError(t, err)

	p := Resolve(inv, snap("0", "5", "30", "0"), &model.Fill{Side: model.SideSell}, mark("2"))

	assert.Equal(t, model.PositionShort, p.Side)
	assert.True(t, p.Size.Equal(d("5")))
	assert.True(t, p.NetBase.Equal(d("-5")))
	assert.True(t, p.EntryPrice.Equal(d("3")))
	assert.True(t, p.UnrealizedPnl.Equal(d("5")))
}

func TestResolve_LatestFillOverridesSign(t *testing.T) {
	p := Resolve(ledger.Result{}, snap("3", "0", "0", "0"), &model.Fill{Side: model.SideSell}, mark("1"))
	assert.Equal(t, model.PositionShort, p.Side)
}

func TestResolve_SideFromSignWithoutFills(t *testing.T) {
	p := Resolve(ledger.Result{}, snap("0", "2", "0", "0"), nil, mark("1"))
	assert.Equal(t, model.PositionShort, p.Side)

	p = Resolve(ledger.Result{}, snap("2", "0", "0", "0"), nil, mark("1"))
	assert.Equal(t, model.PositionLong, p.Side)
}

func TestResolve_UnknownEntry(t *testing.T) {
	p := Resolve(ledger.Result{}, snap("4", "0", "0", "0"), nil, mark("3"))
	assert.False(t, p.HasKnownEntry)
	assert.True(t, p.UnrealizedPnl.IsZero())
}

func TestResolve_MissingMark(t *testing.T) {
	inv := ledger.Result{LongBase: d("4"), LongCost: d("8")}
	p := Resolve(inv, snap("4", "0", "0", "0"), nil, decimal.NullDecimal{})
	assert.True(t, p.HasKnownEntry)
	assert.True(t, p.UnrealizedPnl.IsZero())
	assert.True(t, p.MarkPrice.IsZero())
}

func TestResolve_FlatAndNilSnapshot(t *testing.T) {
	p := Resolve(ledger.Result{RealizedPnl: d("7")}, snap("0", "0", "50", "0"), &model.Fill{Side: model.SideBuy}, mark("1"))
	assert.Equal(t, model.PositionNone, p.Side)
	assert.False(t, p.HasPosition)
	assert.True(t, p.RealizedPnl.Equal(d("7")))

	p = Resolve(ledger.Result{}, nil, nil, mark("1"))
	assert.Equal(t, model.PositionNone, p.Side)
	assert.True(t, p.Size.IsZero())
}

func TestResolve_ScalesRawBalances(t *testing.T) {
	s := &model.MarginSnapshot{
		BaseAsset:    d("2500000000"),
		BaseDebt:     d("500000000"),
		BaseDecimals: 9,
	}
	p := Resolve(ledger.Result{}, s, nil, mark("1"))
	assert.True(t, p.Size.Equal(d("2")))
}

func TestLatest(t *testing.T) {
	assert.Nil(t, Latest(nil))

	fills := []model.Fill{
		{ID: "b", Timestamp: t0.Add(time.Minute)},
		{ID: "a", Timestamp: t0},
		{ID: "c", Timestamp: t0.Add(time.Minute)},
	}
	got := Latest(fills)
	require.NotNil(t, got)
	assert.Equal(t, "c", got.ID)
}
