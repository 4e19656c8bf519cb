package sizing

import (
	"fmt"

	"github.com/marginkit/margin-engine/internal/model"
)

// Every rejection wraps model.ErrValidation.
var (
	ErrInvalidSide           = fmt.Errorf("%w: sizing: side must be buy or sell", model.ErrValidation)
	ErrInvalidOrderType      = fmt.Errorf("%w: sizing: order type must be limit or market", model.ErrValidation)
	ErrInvalidAmount         = fmt.Errorf("%w: sizing: margin must be positive", model.ErrValidation)
	ErrInvalidLeverage       = fmt.Errorf("%w: sizing: leverage out of pool range", model.ErrValidation)
	ErrMissingLimitPrice     = fmt.Errorf("%w: sizing: limit order requires a positive limit price", model.ErrValidation)
	ErrPriceUnavailable      = fmt.Errorf("%w: sizing: reference price unavailable", model.ErrValidation)
	ErrBelowMinimum          = fmt.Errorf("%w: sizing: quantity below pool minimum", model.ErrValidation)
	ErrNotionalExceedsEquity = fmt.Errorf("%w: sizing: notional exceeds equity times leverage", model.ErrValidation)
)
