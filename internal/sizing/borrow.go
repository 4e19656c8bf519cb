package sizing

import (
	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

// Borrow derives what has to be borrowed to carry a leveraged order.
//
//	sell: borrowBase  = margin * (leverage - 1)
//	buy:  borrowQuote = margin * mark * (leverage - 1)   (only with a mark)
//
// Leverage 1 borrows nothing. Both amounts are rounded to 1e-6.
func Borrow(side model.OrderSide, margin decimal.Decimal, leverage int, mark decimal.NullDecimal) model.BorrowPlan {
	var plan model.BorrowPlan
	if leverage <= 1 || !margin.IsPositive() {
		return plan
	}
	extra := decimal.NewFromInt(int64(leverage - 1))

	switch side {
	case model.SideSell:
		plan.BorrowBase = model.NullOf(model.RoundQuantity(margin.Mul(extra)))
	case model.SideBuy:
		if mark.Valid && mark.Decimal.IsPositive() {
			plan.BorrowQuote = model.NullOf(model.RoundQuantity(margin.Mul(mark.Decimal).Mul(extra)))
		}
	}
	return plan
}
