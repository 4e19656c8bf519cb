// Package position combines ledger inventory with a live snapshot into the
// authoritative current-position view.
package position

import (
	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/ledger"
	"github.com/marginkit/margin-engine/internal/model"
)

// Resolve derives the current position.
//
// Size comes from the snapshot (baseAsset - baseDebt); the ledger only
// contributes entry price and realized P&L. Side is taken from the most
// recent fill when there is one, else from the sign of the net base.
// Without a known entry or mark, UnrealizedPnl stays zero and
// HasKnownEntry is false; callers render "entry unknown" in that case.
func Resolve(
	inv ledger.Result,
	snap *model.MarginSnapshot,
	latest *model.Fill,
	mark decimal.NullDecimal,
) model.Position {
	p := model.Position{
		Side:          model.PositionNone,
		Size:          decimal.Zero,
		NetBase:       decimal.Zero,
		EntryPrice:    decimal.Zero,
		RealizedPnl:   inv.RealizedPnl,
		UnrealizedPnl: decimal.Zero,
		MarkPrice:     decimal.Zero,
	}
	if mark.Valid && mark.Decimal.IsPositive() {
		p.MarkPrice = mark.Decimal
	}
	if snap == nil {
		return p
	}

	p.NetBase = snap.BaseAssetUnits().Sub(snap.BaseDebtUnits())
	p.Size = p.NetBase.Abs()
	p.HasPosition = p.Size.IsPositive()
	p.HasDebt = snap.HasDebt()
	if !p.HasPosition {
		return p
	}

	p.Side = sideOf(latest, p.NetBase)

	switch p.Side {
	case model.PositionLong:
		p.EntryPrice = inv.AvgEntryLong()
	case model.PositionShort:
		p.EntryPrice = inv.AvgEntryShort()
	}
	p.HasKnownEntry = p.EntryPrice.IsPositive()

	if p.HasKnownEntry && p.MarkPrice.IsPositive() {
		if p.Side == model.PositionLong {
			p.UnrealizedPnl = p.Size.Mul(p.MarkPrice.Sub(p.EntryPrice))
		} else {
			p.UnrealizedPnl = p.Size.Mul(p.EntryPrice.Sub(p.MarkPrice))
		}
	}
	return p
}

func sideOf(latest *model.Fill, netBase decimal.Decimal) model.PositionSide {
	if latest != nil {
		if latest.Side == model.SideSell {
			return model.PositionShort
		}
		return model.PositionLong
	}
	switch netBase.Sign() {
	case 1:
		return model.PositionLong
	case -1:
		return model.PositionShort
	default:
		return model.PositionNone
	}
}

// Latest returns the fill with the greatest timestamp, or nil. Ties keep
// the later element of the slice.
func Latest(fills []model.Fill) *model.Fill {
	var latest *model.Fill
	for i := range fills {
		if latest == nil || !fills[i].Timestamp.Before(latest.Timestamp) {
			latest = &fills[i]
		}
	}
	if latest == nil {
		return nil
	}
	f := *latest
	return &f
}
