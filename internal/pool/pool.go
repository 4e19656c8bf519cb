// Package pool handles margin pool key parsing and validation of the
// per-pool trading limits.
package pool

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marginkit/margin-engine/internal/model"
)

// MaxAssetDecimals bounds the fixed-point scale accepted for pool assets.
const MaxAssetDecimals = 18

// keyRegex matches: {BASE}_{QUOTE}
// Example: SUI_USDC
var keyRegex = regexp.MustCompile(`^([A-Z][A-Z0-9]{1,15})_([A-Z][A-Z0-9]{1,15})$`)

var (
	ErrInvalidKey      = errors.New("pool: invalid pool key")
	ErrInvalidDecimals = errors.New("pool: asset decimals out of range")
	ErrInvalidLeverage = errors.New("pool: max leverage must be at least 1")
	ErrInvalidMinSize  = errors.New("pool: min order quantity must be positive")
)

// Key is a parsed pool key.
type Key struct {
	ID    string `json:"id"`
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// ParseKey parses and validates a pool key. Lower-case input is accepted
// and normalized.
// Format: {BASE}_{QUOTE}
func ParseKey(id string) (*Key, error) {
	norm := strings.ToUpper(strings.TrimSpace(id))
	matches := keyRegex.FindStringSubmatch(norm)
	if matches == nil {
		return nil, fmt.Errorf("%w: %q (expected BASE_QUOTE)", ErrInvalidKey, id)
	}
	if matches[1] == matches[2] {
		return nil, fmt.Errorf("%w: %q has identical base and quote", ErrInvalidKey, id)
	}
	return &Key{ID: norm, Base: matches[1], Quote: matches[2]}, nil
}

// Defaults fills unset limits on a new pool.
type Defaults struct {
	MaxLeverage      int
	MinOrderQuantity decimal.Decimal
}

// Normalize parses the pool ID, fills symbols and unset limits from def,
// and validates the result.
func Normalize(p model.PoolParams, def Defaults) (model.PoolParams, error) {
	key, err := ParseKey(p.PoolID)
	if err != nil {
		return model.PoolParams{}, err
	}
	p.PoolID = key.ID
	if p.BaseSymbol == "" {
		p.BaseSymbol = key.Base
	}
	if p.QuoteSymbol == "" {
		p.QuoteSymbol = key.Quote
	}
	if p.MaxLeverage == 0 {
		p.MaxLeverage = def.MaxLeverage
	}
	if p.MinOrderQuantity.IsZero() {
		p.MinOrderQuantity = def.MinOrderQuantity
	}
	return p, Validate(p)
}

// Validate checks the limits of an already-normalized pool.
func Validate(p model.PoolParams) error {
	if _, err := ParseKey(p.PoolID); err != nil {
		return err
	}
	for _, dec := range []int32{p.BaseDecimals, p.QuoteDecimals} {
		if dec < 0 || dec > MaxAssetDecimals {
			return fmt.Errorf("%w: %d", ErrInvalidDecimals, dec)
		}
	}
	if p.MaxLeverage < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLeverage, p.MaxLeverage)
	}
	if !p.MinOrderQuantity.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidMinSize, p.MinOrderQuantity)
	}
	return nil
}
