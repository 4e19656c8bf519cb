// Package engine exposes the margin accounting operations to the
// submission layer. Every function is a pure recomputation over the inputs
// it is handed; nothing here fetches, persists or mutates its arguments.
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/closeout"
	"github.com/marginkit/margin-engine/internal/ledger"
	"github.com/marginkit/margin-engine/internal/model"
	"github.com/marginkit/margin-engine/internal/position"
	"github.com/marginkit/margin-engine/internal/sizing"
	"github.com/marginkit/margin-engine/internal/valuation"
)

// Inputs is everything the collaborators supply for one margin manager in
// one pool. Snapshot may be nil and prices may be absent.
type Inputs struct {
	Snapshot *model.MarginSnapshot
	Fills    []model.Fill
	Mark     decimal.NullDecimal
	AuxPrice decimal.NullDecimal
}

// View is the derived state of one margin manager.
type View struct {
	Position  model.Position  `json:"position"`
	Valuation model.Valuation `json:"valuation"`
	Ledger    ledger.Result   `json:"ledger"`
	Latest    *model.Fill     `json:"latest_fill,omitempty"`
}

// Evaluate derives position and valuation in one pass.
func Evaluate(in Inputs) (View, error) {
	inv, err := ledger.Reduce(in.Fills)
	if err != nil {
		return View{}, err
	}
	latest := position.Latest(in.Fills)
	return View{
		Position:  position.Resolve(inv, in.Snapshot, latest, in.Mark),
		Valuation: valuation.Value(in.Snapshot, in.AuxPrice),
		Ledger:    inv,
		Latest:    latest,
	}, nil
}

// ComputePosition replays fills and resolves them against snap.
func ComputePosition(snap *model.MarginSnapshot, fills []model.Fill, mark decimal.NullDecimal) (model.Position, error) {
	inv, err := ledger.Reduce(fills)
	if err != nil {
		return model.Position{}, err
	}
	return position.Resolve(inv, snap, position.Latest(fills), mark), nil
}

// ComputeValuation values snap in USD.
func ComputeValuation(snap *model.MarginSnapshot, auxPrice decimal.NullDecimal) model.Valuation {
	return valuation.Value(snap, auxPrice)
}

// SizeOrder validates and sizes an order, borrow included.
func SizeOrder(req model.OrderRequest, pool model.PoolParams, val model.Valuation, mark decimal.NullDecimal) (model.OrderPlan, error) {
	return sizing.SizeOrder(req, pool, val, mark)
}

// ComputeBorrow returns the borrow amounts for a leveraged order.
func ComputeBorrow(side model.OrderSide, margin decimal.Decimal, leverage int, mark decimal.NullDecimal) model.BorrowPlan {
	return sizing.Borrow(side, margin, leverage, mark)
}

// MaxMargin returns the margin that sizes an order to full equity.
func MaxMargin(val model.Valuation, mark decimal.NullDecimal) decimal.Decimal {
	return sizing.MaxMargin(val, mark)
}

// SolveClose sizes the flattening order. closeout.ErrNothingToDo marks the
// no-op outcome.
func SolveClose(pos model.Position, snap *model.MarginSnapshot, latest *model.Fill, mark decimal.NullDecimal, pool model.PoolParams) (model.ClosePlan, error) {
	return closeout.Solve(pos, snap, latest, mark, pool)
}

// PlanRepay builds the repay step. fresh must be fetched after the close
// order settled.
func PlanRepay(fresh *model.MarginSnapshot) (model.RepayPlan, error) {
	return closeout.PlanRepay(fresh)
}
