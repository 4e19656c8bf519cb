// Package closeout sizes the opposing market order that flattens a
// position, and the separate repay step that follows it.
//
// The latest fill stands in for the trade that opened the position. That
// is an approximation when a position was built from several fills or the
// indexer lags the chain, so every branch is clamped by what the account
// actually holds.
package closeout

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

var (
	// ErrNothingToDo is returned when no close order can be placed and no
	// debt is outstanding.
	ErrNothingToDo = errors.New("closeout: nothing to do")

	// ErrNoSnapshot is returned when a plan is requested without a snapshot.
	ErrNoSnapshot = errors.New("closeout: no margin snapshot")
)

// Solve computes the close plan for pos.
//
// Branch priority:
//  1. short with a latest fill carrying quote volume and price:
//     (quoteVolume + quoteVolume*(entry-mark)/entry) / mark, capped by quoteAsset/mark
//  2. short otherwise: quoteAsset / mark
//  3. long with a latest fill carrying quote volume and price: the mirror of 1,
//     capped by baseAsset and the on-chain size
//  4. long with a latest fill carrying base volume: baseVolume, capped by baseAsset
//  5. anything else: the on-chain position size
//
// The result never exceeds the on-chain size or the asset available for the
// side, and is truncated to 1e-6.
func Solve(
	pos model.Position,
	snap *model.MarginSnapshot,
	latest *model.Fill,
	mark decimal.NullDecimal,
	params model.PoolParams,
) (model.ClosePlan, error) {
	if snap == nil {
		return model.ClosePlan{}, ErrNoSnapshot
	}

	m := decimal.Zero
	if mark.Valid && mark.Decimal.IsPositive() {
		m = mark.Decimal
	}
	onChain := pos.Size
	baseAsset := snap.BaseAssetUnits()
	quoteAsset := snap.QuoteAssetUnits()

	qty, rule := onChain, model.ClosePositionSize
	available := decimal.NullDecimal{}

	switch pos.Side {
	case model.PositionShort:
		if !m.IsPositive() {
			break
		}
		available = model.NullOf(quoteAsset.Div(m))
		if quoteSized(latest) {
			qty = fromQuote(latest.QuoteVolume, latest.Price.Sub(m), latest.Price, m)
			rule = model.CloseShortFromQuote
		} else {
			qty = available.Decimal
			rule = model.CloseShortFallback
		}

	case model.PositionLong:
		available = model.NullOf(baseAsset)
		switch {
		case quoteSized(latest) && m.IsPositive():
			qty = fromQuote(latest.QuoteVolume, m.Sub(latest.Price), latest.Price, m)
			rule = model.CloseLongFromQuote
		case latest != nil && latest.BaseVolume.IsPositive():
			qty = latest.BaseVolume
			rule = model.CloseLongFromBase
		}
	}

	if available.Valid {
		qty = decimal.Min(qty, available.Decimal)
	}
	qty = decimal.Min(qty, onChain)
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	qty = model.TruncateQuantity(qty)

	plan := model.ClosePlan{
		CloseQuantity:    qty,
		CloseQuantityRaw: model.ToRaw(qty, params.BaseDecimals),
		NeedsRepay:       snap.HasDebt(),
		Rule:             rule,
	}
	if side, ok := pos.Side.CloseSide(); ok {
		plan.Side = side
		plan.CanPlaceCloseOrder = qty.IsPositive() && qty.GreaterThanOrEqual(params.MinOrderQuantity)
	}
	if plan.NeedsRepay {
		plan.RepayBase, plan.RepayQuote = debts(snap)
	}

	if !plan.CanPlaceCloseOrder && !plan.NeedsRepay {
		return plan, ErrNothingToDo
	}
	return plan, nil
}

// PlanRepay builds the repay step from fresh, which must be a snapshot
// taken after the close order settled. It repays the full outstanding
// debt; the protocol caps anything beyond what is owed.
func PlanRepay(fresh *model.MarginSnapshot) (model.RepayPlan, error) {
	if fresh == nil {
		return model.RepayPlan{}, ErrNoSnapshot
	}
	if !fresh.HasDebt() {
		return model.RepayPlan{}, ErrNothingToDo
	}
	base, quote := debts(fresh)
	return model.RepayPlan{
		RepayBase:       base,
		RepayQuote:      quote,
		SnapshotVersion: fresh.Version,
	}, nil
}

func quoteSized(f *model.Fill) bool {
	return f != nil && f.QuoteVolume.IsPositive() && f.Price.IsPositive()
}

// fromQuote is (size + size*move/entry) / mark, with move signed so that a
// favourable price change grows the amount to unwind.
func fromQuote(sizeInQuote, move, entry, mark decimal.Decimal) decimal.Decimal {
	unrealized := sizeInQuote.Mul(move).Div(entry)
	return sizeInQuote.Add(unrealized).Div(mark)
}

func debts(s *model.MarginSnapshot) (base, quote decimal.NullDecimal) {
	if s.BaseDebt.IsPositive() {
		base = model.NullOf(s.BaseDebtUnits())
	}
	if s.QuoteDebt.IsPositive() {
		quote = model.NullOf(s.QuoteDebtUnits())
	}
	return base, quote
}
