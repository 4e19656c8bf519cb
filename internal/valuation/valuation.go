// Package valuation converts a margin snapshot and oracle prices into a
// USD collateral, debt and equity picture.
//
// A missing or non-positive price drops its term from both sums and sets
// the matching flag on the result. It is a display condition, not an error.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

// RatioScale is the number of decimal places a derived risk ratio keeps.
const RatioScale int32 = 8

// Value computes the valuation of snap. auxPrice is the USD price of the
// reward token held as a third collateral asset. A nil snapshot yields a
// zero valuation with every price flagged missing.
func Value(snap *model.MarginSnapshot, auxPrice decimal.NullDecimal) model.Valuation {
	if snap == nil {
		return model.Valuation{
			CollateralUsd:      decimal.Zero,
			DebtUsd:            decimal.Zero,
			EquityUsd:          decimal.Zero,
			RiskRatio:          decimal.Zero,
			BasePriceMissing:   true,
			QuotePriceMissing:  true,
			RewardPriceMissing: true,
		}
	}

	var v model.Valuation
	collateral := decimal.Zero
	debt := decimal.Zero

	if px, ok := oraclePrice(snap.BasePythPrice, snap.BasePythDecimals); ok {
		collateral = collateral.Add(snap.BaseAssetUnits().Mul(px))
		debt = debt.Add(snap.BaseDebtUnits().Mul(px))
	} else {
		v.BasePriceMissing = true
	}

	if px, ok := oraclePrice(snap.QuotePythPrice, snap.QuotePythDecimals); ok {
		collateral = collateral.Add(snap.QuoteAssetUnits().Mul(px))
		debt = debt.Add(snap.QuoteDebtUnits().Mul(px))
	} else {
		v.QuotePriceMissing = true
	}

	if auxPrice.Valid && auxPrice.Decimal.IsPositive() {
		collateral = collateral.Add(snap.RewardAssetUnits().Mul(auxPrice.Decimal))
	} else {
		v.RewardPriceMissing = true
	}

	v.CollateralUsd = collateral
	v.DebtUsd = debt
	v.EquityUsd = decimal.Max(decimal.Zero, collateral.Sub(debt))

	switch {
	case snap.RiskRatio.Valid:
		v.RiskRatio = snap.RiskRatio.Decimal
		v.RiskRatioKnown = true
	case debt.IsPositive():
		v.RiskRatio = collateral.DivRound(debt, RatioScale)
		v.RiskRatioKnown = true
	default:
		v.RiskRatio = decimal.Zero
	}
	return v
}

// oraclePrice scales a raw Pyth price by its exponent. The boolean is
// false when the price is absent or non-positive.
func oraclePrice(raw decimal.NullDecimal, decimals int32) (decimal.Decimal, bool) {
	if !raw.Valid || !raw.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return model.FromRaw(raw.Decimal, decimals), true
}
