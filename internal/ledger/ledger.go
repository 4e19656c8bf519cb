// Package ledger folds a chronological fill history into running long and
// short inventory with average-cost realized P&L.
//
// The venue holds one net position per margin manager, so inventory is
// tracked per direction with an average cost rather than per lot:
//   - a buy first closes open short inventory, then opens or extends long
//   - a sell first closes open long inventory, then opens or extends short
//
// Flips between long and short fall out of that close-then-open order.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

var (
	// ErrInvalidFill is returned for a fill with an unknown side or a
	// negative volume or price.
	ErrInvalidFill = errors.New("ledger: invalid fill")

	// ErrNegativeInventory signals a broken accounting invariant. It cannot
	// happen for well-formed fills.
	ErrNegativeInventory = errors.New("ledger: inventory went negative")
)

// Realization is one closing event and the P&L it realized.
type Realization struct {
	FillID   string          `json:"fill_id"`
	Side     model.OrderSide `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Delta    decimal.Decimal `json:"delta"`
}

// Result is the state after replaying every fill.
type Result struct {
	LongBase      decimal.Decimal `json:"long_base"`
	LongCost      decimal.Decimal `json:"long_cost"`
	ShortBase     decimal.Decimal `json:"short_base"`
	ShortProceeds decimal.Decimal `json:"short_proceeds"`
	RealizedPnl   decimal.Decimal `json:"realized_pnl"`
	Realizations  []Realization   `json:"realizations,omitempty"`
}

// AvgEntryLong is longCost / longBase, or zero with no long inventory.
func (r Result) AvgEntryLong() decimal.Decimal {
	if !r.LongBase.IsPositive() {
		return decimal.Zero
	}
	return r.LongCost.Div(r.LongBase)
}

// AvgEntryShort is shortProceeds / shortBase, or zero with no short inventory.
func (r Result) AvgEntryShort() decimal.Decimal {
	if !r.ShortBase.IsPositive() {
		return decimal.Zero
	}
	return r.ShortProceeds.Div(r.ShortBase)
}

// Reduce replays fills in timestamp order. The input slice is not
// modified; ordering is applied to a working copy with a stable sort so
// equal timestamps keep their supplied order.
func Reduce(fills []model.Fill) (Result, error) {
	work := make([]model.Fill, len(fills))
	copy(work, fills)
	sort.SliceStable(work, func(i, j int) bool {
		return work[i].Timestamp.Before(work[j].Timestamp)
	})

	var r Result
	for i := range work {
		if err := r.apply(work[i]); err != nil {
			return Result{}, err
		}
	}
	return r, nil
}

func (r *Result) apply(f model.Fill) error {
	if !f.Side.Valid() {
		return fmt.Errorf("%w: fill %s has side %q", ErrInvalidFill, f.ID, f.Side)
	}
	if f.BaseVolume.IsNegative() || f.QuoteVolume.IsNegative() || f.Price.IsNegative() {
		return fmt.Errorf("%w: fill %s has a negative amount", ErrInvalidFill, f.ID)
	}

	qty := f.BaseVolume
	price := f.EffectivePrice()

	if f.Side == model.SideBuy {
		closeQty := decimal.Min(qty, r.ShortBase)
		if closeQty.IsPositive() {
			proceeds := r.ShortProceeds.Mul(closeQty).Div(r.ShortBase)
			r.realize(f, closeQty, price, proceeds.Sub(price.Mul(closeQty)))
			r.ShortBase = r.ShortBase.Sub(closeQty)
			r.ShortProceeds = r.ShortProceeds.Sub(proceeds)
			if r.ShortBase.IsZero() {
				r.ShortProceeds = decimal.Zero
			}
		}
		if open := qty.Sub(closeQty); open.IsPositive() {
			r.LongBase = r.LongBase.Add(open)
			r.LongCost = r.LongCost.Add(price.Mul(open))
		}
	} else {
		closeQty := decimal.Min(qty, r.LongBase)
		if closeQty.IsPositive() {
			cost := r.LongCost.Mul(closeQty).Div(r.LongBase)
			r.realize(f, closeQty, price, price.Mul(closeQty).Sub(cost))
			r.LongBase = r.LongBase.Sub(closeQty)
			r.LongCost = r.LongCost.Sub(cost)
			if r.LongBase.IsZero() {
				r.LongCost = decimal.Zero
			}
		}
		if open := qty.Sub(closeQty); open.IsPositive() {
			r.ShortBase = r.ShortBase.Add(open)
			r.ShortProceeds = r.ShortProceeds.Add(price.Mul(open))
		}
	}

	if r.LongBase.IsNegative() || r.ShortBase.IsNegative() {
		return fmt.Errorf("%w: after fill %s long=%s short=%s",
			ErrNegativeInventory, f.ID, r.LongBase, r.ShortBase)
	}
	return nil
}

func (r *Result) realize(f model.Fill, qty, price, delta decimal.Decimal) {
	r.RealizedPnl = r.RealizedPnl.Add(delta)
	r.Realizations = append(r.Realizations, Realization{
		FillID:   f.ID,
		Side:     f.Side,
		Quantity: qty,
		Price:    price,
		Delta:    delta,
	})
}
