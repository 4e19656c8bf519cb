package sizing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/marginkit/margin-engine/internal/model"
)

func TestBorrow_Long(t *testing.T) {
	plan := Borrow(model.SideBuy, d("5"), 4, px("2"))
	assert.False(t, plan.BorrowBase.Valid)
	assert.True(t, plan.BorrowQuote.Valid)
	assert.True(t, plan.BorrowQuote.Decimal.Equal(d("30")))
}

func TestBorrow_Short(t *testing.T) {
	plan := Borrow(model.SideSell, d("5"), 4, decimal.NullDecimal{})
	assert.False(t, plan.BorrowQuote.Valid)
	assert.True(t, plan.BorrowBase.Valid)
	assert.True(t, plan.BorrowBase.Decimal.Equal(d("15")))
}

func TestBorrow_NoLeverage(t *testing.T) {
	assert.True(t, Borrow(model.SideBuy, d("5"), 1, px("2")).IsEmpty())
	assert.True(t, Borrow(model.SideSell, d("5"), 1, px("2")).IsEmpty())
}

func TestBorrow_LongWithoutMarkOmitted(t *testing.T) {
	assert.True(t, Borrow(model.SideBuy, d("5"), 3, decimal.NullDecimal{}).IsEmpty())
	assert.True(t, Borrow(model.SideBuy, d("5"), 3, px("0")).IsEmpty())
}

func TestBorrow_Rounds(t *testing.T) {
	plan := Borrow(model.SideBuy, d("0.1234567"), 2, px("1.1"))
	assert.Equal(t, "0.135802", plan.BorrowQuote.Decimal.String())
}
