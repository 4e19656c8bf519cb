// Package sizing turns a trader's margin and leverage into a validated
// order quantity and the borrow amounts that back it.
package sizing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

// CheckLeverage validates lev against [1, params.MaxLeverage].
func CheckLeverage(lev int, params model.PoolParams) error {
	maxLev := params.MaxLeverage
	if maxLev < 1 {
		maxLev = 1
	}
	if lev < 1 || lev > maxLev {
		return fmt.Errorf("%w: got %d, allowed 1..%d", ErrInvalidLeverage, lev, maxLev)
	}
	return nil
}

// SizeOrder validates req and sizes it.
//
//	quantity = margin * leverage            (rounded to 1e-6)
//	quantity * referencePrice <= equityUsd * leverage
//
// The reference price is the limit price for limit orders and the mark
// otherwise. The capital check holds even though borrowing lets the order
// exceed the trader's raw margin.
func SizeOrder(
	req model.OrderRequest,
	params model.PoolParams,
	val model.Valuation,
	mark decimal.NullDecimal,
) (model.OrderPlan, error) {
	if !req.Side.Valid() {
		return model.OrderPlan{}, ErrInvalidSide
	}
	if !req.Type.Valid() {
		return model.OrderPlan{}, ErrInvalidOrderType
	}
	if !req.Margin.IsPositive() {
		return model.OrderPlan{}, ErrInvalidAmount
	}
	if err := CheckLeverage(req.Leverage, params); err != nil {
		return model.OrderPlan{}, err
	}
	payWith, err := model.ParsePayAsset(string(req.PayWith))
	if err != nil {
		return model.OrderPlan{}, err
	}

	var ref decimal.Decimal
	var price decimal.NullDecimal
	if req.Type == model.OrderLimit {
		if !req.LimitPrice.Valid || !req.LimitPrice.Decimal.IsPositive() {
			return model.OrderPlan{}, ErrMissingLimitPrice
		}
		ref = req.LimitPrice.Decimal
		price = req.LimitPrice
	} else {
		if !mark.Valid || !mark.Decimal.IsPositive() {
			return model.OrderPlan{}, ErrPriceUnavailable
		}
		ref = mark.Decimal
	}

	lev := decimal.NewFromInt(int64(req.Leverage))
	qty := model.RoundQuantity(req.Margin.Mul(lev))
	if qty.LessThan(params.MinOrderQuantity) {
		return model.OrderPlan{}, fmt.Errorf("%w: %s < %s", ErrBelowMinimum, qty, params.MinOrderQuantity)
	}

	notional := qty.Mul(ref)
	limit := val.EquityUsd.Mul(lev)
	if notional.GreaterThan(limit) {
		return model.OrderPlan{}, fmt.Errorf("%w: %s > %s", ErrNotionalExceedsEquity, notional, limit)
	}

	borrow := Borrow(req.Side, req.Margin, req.Leverage, mark)
	if req.Leverage > 1 && borrow.IsEmpty() {
		// A leveraged buy cannot size its quote borrow without a mark.
		return model.OrderPlan{}, ErrPriceUnavailable
	}

	return model.OrderPlan{
		Side:        req.Side,
		Type:        req.Type,
		Quantity:    qty,
		QuantityRaw: model.ToRaw(qty, params.BaseDecimals),
		Price:       price,
		PayWith:     payWith,
		Leverage:    req.Leverage,
		Notional:    notional,
		Borrow:      borrow,
	}, nil
}

// MaxMargin is the largest margin, in base units, the trader's equity
// supports at the mark: equityUsd / mark. Zero without a mark.
func MaxMargin(val model.Valuation, mark decimal.NullDecimal) decimal.Decimal {
	if !mark.Valid || !mark.Decimal.IsPositive() {
		return decimal.Zero
	}
	return model.TruncateQuantity(val.EquityUsd.Div(mark.Decimal))
}
