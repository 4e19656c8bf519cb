package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginkit/margin-engine/internal/closeout"
	"github.com/marginkit/margin-engine/internal/ledger"
	"github.com/marginkit/margin-engine/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func px(s string) decimal.NullDecimal {
	return model.NullOf(d(s))
}

var t0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

var pool = model.PoolParams{
	PoolID:           "SUI_USDC",
	BaseSymbol:       "SUI",
	QuoteSymbol:      "USDC",
	BaseDecimals:     9,
	QuoteDecimals:    6,
	MaxLeverage:      5,
	MinOrderQuantity: d("0.1"),
}

// A 3x long: 10 SUI margin, 20 borrowed USDC worth of SUI bought at 2.
func longInputs() Inputs {
	return Inputs{
		Snapshot: &model.MarginSnapshot{
			ManagerID:         "mgr-1",
			PoolID:            "SUI_USDC",
			Version:           3,
			BaseAsset:         d("30000000000"),
			QuoteAsset:        d("0"),
			QuoteDebt:         d("40000000"),
			BaseDecimals:      9,
			QuoteDecimals:     6,
			BasePythPrice:     px("250000000"),
			BasePythDecimals:  8,
			QuotePythPrice:    px("100000000"),
			QuotePythDecimals: 8,
		},
		Fills: []model.Fill{
			{ID: "f1", Timestamp: t0, Side: model.SideBuy, BaseVolume: d("20"), QuoteVolume: d("40"), Price: d("2")},
		},
		Mark:     px("2.5"),
		AuxPrice: px("0.05"),
	}
}

func TestEvaluate_LongScenario(t *testing.T) {
	v, err := Evaluate(longInputs())
	require.NoError(t, err)

	assert.Equal(t, model.PositionLong, v.Position.Side)
	assert.True(t, v.Position.Size.Equal(d("30")))
	assert.True(t, v.Position.EntryPrice.Equal(d("2")))
	assert.True(t, v.Position.UnrealizedPnl.Equal(d("15")))
	assert.True(t, v.Position.HasDebt)

	assert.True(t, v.Valuation.CollateralUsd.Equal(d("75")))
	assert.True(t, v.Valuation.DebtUsd.Equal(d("40")))
	assert.True(t, v.Valuation.EquityUsd.Equal(d("35")))
	require.NotNil(t, v.Latest)
	assert.Equal(t, "f1", v.Latest.ID)
}

func TestOperations_CloseThenRepay(t *testing.T) {
	in := longInputs()
	pos, err := ComputePosition(in.Snapshot, in.Fills, in.Mark)
	require.NoError(t, err)

	plan, err := SolveClose(pos, in.Snapshot, &in.Fills[0], in.Mark, pool)
	require.NoError(t, err)
	assert.Equal(t, model.SideSell, plan.Side)
	// (40 + 40*0.5/2) / 2.5 = 20
	assert.Equal(t, "20", plan.CloseQuantity.String())
	assert.True(t, plan.NeedsRepay)

	// After settlement the collaborator supplies a fresh snapshot.
	fresh := *in.Snapshot
	fresh.Version = 4
	fresh.BaseAsset = d("10000000000")
	fresh.QuoteAsset = d("50000000")
	repay, err := PlanRepay(&fresh)
	require.NoError(t, err)
	assert.Equal(t, int64(4), repay.SnapshotVersion)
	assert.True(t, repay.RepayQuote.Decimal.Equal(d("40")))
}

func TestOperations_SizeAndBorrow(t *testing.T) {
	in := longInputs()
	val := ComputeValuation(in.Snapshot, in.AuxPrice)

	plan, err := SizeOrder(model.OrderRequest{
		Side:     model.SideBuy,
		Type:     model.OrderMarket,
		Margin:   d("4"),
		Leverage: 2,
	}, pool, val, in.Mark)
	require.NoError(t, err)
	assert.True(t, plan.Quantity.Equal(d("8")))
	assert.True(t, plan.Borrow.BorrowQuote.Decimal.Equal(d("10")))

	b := ComputeBorrow(model.SideSell, d("4"), 2, in.Mark)
	assert.True(t, b.BorrowBase.Decimal.Equal(d("4")))

	assert.True(t, MaxMargin(val, in.Mark).Equal(d("14")))
}

func TestSolveClose_NothingToDo(t *testing.T) {
	snap := &model.MarginSnapshot{QuoteAsset: d("5")}
	pos, err := ComputePosition(snap, nil, px("1"))
	require.NoError(t, err)

	_, err = SolveClose(pos, snap, nil, px("1"), pool)
	assert.True(t, errors.Is(err, closeout.ErrNothingToDo))
}

func TestEvaluate_DoesNotMutateInputs(t *testing.T) {
	in := longInputs()
	in.Fills = append(in.Fills, model.Fill{
		ID: "f0", Timestamp: t0.Add(-time.Hour), Side: model.SideBuy,
		BaseVolume: d("1"), QuoteVolume: d("1"), Price: d("1"),
	})
	before := in.Snapshot.BaseAsset

	_, err := Evaluate(in)
	require.NoError(t, err)
	assert.Equal(t, "f1", in.Fills[0].ID)
	assert.True(t, in.Snapshot.BaseAsset.Equal(before))
}

func TestEvaluate_InvalidFill(t *testing.T) {
	in := longInputs()
	in.Fills[0].Side = "hold"
	_, err := Evaluate(in)
	assert.ErrorIs(t, err, ledger.ErrInvalidFill)
}

func TestMemo_HitAndEviction(t *testing.T) {
	m := NewMemo(2)
	in := longInputs()
	k1 := Key{ManagerID: "mgr-1", PoolID: "SUI_USDC", SnapshotVersion: 1}
	k2 := Key{ManagerID: "mgr-1", PoolID: "SUI_USDC", SnapshotVersion: 2}
	k3 := Key{ManagerID: "mgr-1", PoolID: "SUI_USDC", SnapshotVersion: 3}

	_, hit, err := m.Evaluate(k1, in)
	require.NoError(t, err)
	assert.False(t, hit)

	v, hit, err := m.Evaluate(k1, in)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, v.Position.Size.Equal(d("30")))

	_, _, _ = m.Evaluate(k2, in)
	_, _, _ = m.Evaluate(k3, in)
	assert.Equal(t, 2, m.Len())

	_, hit, _ = m.Evaluate(k1, in)
	assert.False(t, hit, "k1 should have been evicted")
}

func TestMemo_ErrorsNotCached(t *testing.T) {
	m := NewMemo(4)
	in := longInputs()
	in.Fills[0].Side = "hold"
	k := Key{ManagerID: "mgr-1"}

	_, _, err := m.Evaluate(k, in)
	require.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestMemo_ConcurrentEvaluate(t *testing.T) {
	m := NewMemo(8)
	in := longInputs()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := Key{ManagerID: "mgr-1", SnapshotVersion: int64(i % 4)}
			v, _, err := m.Evaluate(k, in)
			assert.NoError(t, err)
			assert.True(t, v.Position.Size.Equal(d("30")))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, m.Len())
}
