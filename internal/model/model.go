// Package model defines the domain types shared across the margin engine.
// All monetary values use shopspring/decimal; float64 never carries money.
package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrValidation is wrapped by every caller-input rejection so transport
// layers can map the whole family to one status code.
var ErrValidation = errors.New("validation failed")

// Fill is an immutable record of one matched execution against the
// trader's margin manager. Volumes and price are in human units.
type Fill struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Side        OrderSide       `json:"our_side"`
	BaseVolume  decimal.Decimal `json:"base_volume"`
	QuoteVolume decimal.Decimal `json:"quote_volume"`
	Price       decimal.Decimal `json:"price"`
}

// EffectivePrice returns the fill price, deriving it from the volumes when
// the indexer omitted it.
func (f Fill) EffectivePrice() decimal.Decimal {
	if f.Price.IsPositive() {
		return f.Price
	}
	if f.BaseVolume.IsPositive() && f.QuoteVolume.IsPositive() {
		return f.QuoteVolume.Div(f.BaseVolume)
	}
	return decimal.Zero
}

// MarginSnapshot is a point-in-time view of one margin manager in one pool.
// Balances and debts are raw on-chain integers scaled by the per-asset
// decimals; oracle prices are raw integers scaled by their Pyth exponent.
type MarginSnapshot struct {
	ManagerID string    `json:"manager_id"`
	PoolID    string    `json:"pool_id"`
	Version   int64     `json:"version"`
	TakenAt   time.Time `json:"taken_at"`

	BaseAsset   decimal.Decimal `json:"base_asset"`
	QuoteAsset  decimal.Decimal `json:"quote_asset"`
	BaseDebt    decimal.Decimal `json:"base_debt"`
	QuoteDebt   decimal.Decimal `json:"quote_debt"`
	RewardAsset decimal.Decimal `json:"reward_asset"`

	BaseDecimals   int32 `json:"base_decimals"`
	QuoteDecimals  int32 `json:"quote_decimals"`
	RewardDecimals int32 `json:"reward_decimals"`

	BasePythPrice     decimal.NullDecimal `json:"base_pyth_price"`
	BasePythDecimals  int32               `json:"base_pyth_decimals"`
	QuotePythPrice    decimal.NullDecimal `json:"quote_pyth_price"`
	QuotePythDecimals int32               `json:"quote_pyth_decimals"`

	// RiskRatio is the protocol-computed health metric, when reported.
	RiskRatio decimal.NullDecimal `json:"risk_ratio"`
}

func (s *MarginSnapshot) BaseAssetUnits() decimal.Decimal {
	return FromRaw(s.BaseAsset, s.BaseDecimals)
}

func (s *MarginSnapshot) QuoteAssetUnits() decimal.Decimal {
	return FromRaw(s.QuoteAsset, s.QuoteDecimals)
}

func (s *MarginSnapshot) BaseDebtUnits() decimal.Decimal {
	return FromRaw(s.BaseDebt, s.BaseDecimals)
}

func (s *MarginSnapshot) QuoteDebtUnits() decimal.Decimal {
	return FromRaw(s.QuoteDebt, s.QuoteDecimals)
}

func (s *MarginSnapshot) RewardAssetUnits() decimal.Decimal {
	return FromRaw(s.RewardAsset, s.RewardDecimals)
}

// HasDebt reports whether either side carries outstanding debt.
func (s *MarginSnapshot) HasDebt() bool {
	return s.BaseDebt.IsPositive() || s.QuoteDebt.IsPositive()
}

// Position is the derived current-position view. Never persisted.
type Position struct {
	Side          PositionSide    `json:"side"`
	Size          decimal.Decimal `json:"size"`
	NetBase       decimal.Decimal `json:"net_base"` // signed: baseAsset - baseDebt
	EntryPrice    decimal.Decimal `json:"entry_price"`
	HasKnownEntry bool            `json:"has_known_entry"`
	RealizedPnl   decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
	HasPosition   bool            `json:"has_position"`
	HasDebt       bool            `json:"has_debt"`
	MarkPrice     decimal.Decimal `json:"mark_price"`
}

// Valuation is the USD collateral/debt picture of one snapshot.
type Valuation struct {
	CollateralUsd  decimal.Decimal `json:"collateral_usd"`
	DebtUsd        decimal.Decimal `json:"debt_usd"`
	EquityUsd      decimal.Decimal `json:"equity_usd"`
	RiskRatio      decimal.Decimal `json:"risk_ratio"`
	RiskRatioKnown bool            `json:"risk_ratio_known"`

	// Degraded-input flags. A missing price drops its term from the sums.
	BasePriceMissing   bool `json:"base_price_missing"`
	QuotePriceMissing  bool `json:"quote_price_missing"`
	RewardPriceMissing bool `json:"reward_price_missing"`
}

// OrderRequest is the trader's requested order. Margin is in human units
// of the trader's own capital.
type OrderRequest struct {
	Side       OrderSide           `json:"side"`
	Type       OrderType           `json:"type"`
	Margin     decimal.Decimal     `json:"margin"`
	Leverage   int                 `json:"leverage"`
	LimitPrice decimal.NullDecimal `json:"limit_price"`
	PayWith    PayAsset            `json:"pay_with"`
}

// OrderPlan is a validated, sized order ready for submission.
type OrderPlan struct {
	Side        OrderSide           `json:"side"`
	Type        OrderType           `json:"type"`
	Quantity    decimal.Decimal     `json:"quantity"`
	QuantityRaw decimal.Decimal     `json:"quantity_raw"` // base asset integer units
	Price       decimal.NullDecimal `json:"price"`
	PayWith     PayAsset            `json:"pay_with"`
	Leverage    int                 `json:"leverage"`
	Notional    decimal.Decimal     `json:"notional"`
	Borrow      BorrowPlan          `json:"borrow"`
}

// BorrowPlan carries at most one of BorrowBase / BorrowQuote.
type BorrowPlan struct {
	BorrowBase  decimal.NullDecimal `json:"borrow_base"`
	BorrowQuote decimal.NullDecimal `json:"borrow_quote"`
}

// IsEmpty reports whether nothing has to be borrowed.
func (b BorrowPlan) IsEmpty() bool {
	return !b.BorrowBase.Valid && !b.BorrowQuote.Valid
}

// ClosePlan is the opposing market order that flattens a position, plus
// whether a separate repay step has to follow it.
type ClosePlan struct {
	Side               OrderSide           `json:"side"`
	CloseQuantity      decimal.Decimal     `json:"close_quantity"`
	CloseQuantityRaw   decimal.Decimal     `json:"close_quantity_raw"`
	CanPlaceCloseOrder bool                `json:"can_place_close_order"`
	NeedsRepay         bool                `json:"needs_repay"`
	RepayBase          decimal.NullDecimal `json:"repay_base"`
	RepayQuote         decimal.NullDecimal `json:"repay_quote"`
	Rule               CloseRule           `json:"rule"`
}

// RepayPlan is the debt repayment step built from a snapshot taken after
// the close order settled.
type RepayPlan struct {
	RepayBase       decimal.NullDecimal `json:"repay_base"`
	RepayQuote      decimal.NullDecimal `json:"repay_quote"`
	SnapshotVersion int64               `json:"snapshot_version"`
}

// PoolParams describes one margin pool and its trading limits.
type PoolParams struct {
	PoolID           string          `json:"pool_id" db:"pool_id"`
	BaseSymbol       string          `json:"base_symbol" db:"base_symbol"`
	QuoteSymbol      string          `json:"quote_symbol" db:"quote_symbol"`
	BaseDecimals     int32           `json:"base_decimals" db:"base_decimals"`
	QuoteDecimals    int32           `json:"quote_decimals" db:"quote_decimals"`
	MaxLeverage      int             `json:"max_leverage" db:"max_leverage"`
	MinOrderQuantity decimal.Decimal `json:"min_order_quantity" db:"min_order_quantity"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}
