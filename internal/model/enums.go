package model

import "fmt"

// OrderSide is the direction of an order or of our side of a fill.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// Valid reports whether s is one of the known order sides.
func (s OrderSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// PositionSide is the direction of a net position.
type PositionSide string

const (
	PositionNone  PositionSide = "none"
	PositionLong  PositionSide = "long"
	PositionShort PositionSide = "short"
)

// CloseSide returns the order side that flattens a position on p.
func (p PositionSide) CloseSide() (OrderSide, bool) {
	switch p {
	case PositionLong:
		return SideSell, true
	case PositionShort:
		return SideBuy, true
	default:
		return "", false
	}
}

// OrderType selects resting limit or immediate market execution.
type OrderType string

const (
	OrderLimit  OrderType = "limit"
	OrderMarket OrderType = "market"
)

func (t OrderType) Valid() bool {
	return t == OrderLimit || t == OrderMarket
}

// PayAsset is the asset used to pay trading fees.
type PayAsset string

const (
	PayBase   PayAsset = "base"
	PayQuote  PayAsset = "quote"
	PayReward PayAsset = "reward"
)

// ParsePayAsset defaults an empty value to the reward token, which the
// venue discounts fees for.
func ParsePayAsset(s string) (PayAsset, error) {
	switch PayAsset(s) {
	case "":
		return PayReward, nil
	case PayBase, PayQuote, PayReward:
		return PayAsset(s), nil
	default:
		return "", fmt.Errorf("%w: unknown pay asset %q", ErrValidation, s)
	}
}

// CloseRule records which sizing branch produced a close quantity.
type CloseRule string

const (
	CloseShortFromQuote CloseRule = "short_from_quote"
	CloseShortFallback  CloseRule = "short_fallback"
	CloseLongFromQuote  CloseRule = "long_from_quote"
	CloseLongFromBase   CloseRule = "long_from_base"
	ClosePositionSize   CloseRule = "position_size"
)
