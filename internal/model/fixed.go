package model

import "github.com/shopspring/decimal"

// QuantityScale is the number of decimal places order quantities, borrow
// amounts and close quantities are rounded to (1e-6).
const QuantityScale int32 = 6

// FromRaw converts an on-chain fixed-point integer into human units.
func FromRaw(raw decimal.Decimal, decimals int32) decimal.Decimal {
	return raw.Shift(-decimals)
}

// ToRaw converts human units back into an on-chain integer, truncating
// any precision the asset cannot represent.
func ToRaw(units decimal.Decimal, decimals int32) decimal.Decimal {
	return units.Shift(decimals).Truncate(0)
}

// RoundQuantity rounds half-up to QuantityScale.
func RoundQuantity(q decimal.Decimal) decimal.Decimal {
	return q.Round(QuantityScale)
}

// TruncateQuantity rounds toward zero at QuantityScale, so the result
// never exceeds q.
func TruncateQuantity(q decimal.Decimal) decimal.Decimal {
	return q.Truncate(QuantityScale)
}

// NullOf wraps d as a present NullDecimal.
func NullOf(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
