package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/fixedpoint"
)

// Position is a stock holding of one account.
//
// Prices are stored in cents (fixedpoint.ScaleCurrency). CurrentPrice,
// CurrentPriceDate and Value only change together, through ApplyCurrentPrice,
// except that a share count change recomputes Value from the cached price.
type Position struct {
	ID               string
	Symbol           string
	Shares           int64
	PurchasePrice    int64
	PurchaseDate     time.Time
	AccountID        string
	CurrentPrice     int64
	CurrentPriceDate *time.Time
	Value            int64
}

// ApplyCurrentPrice stores a freshly fetched price and recomputes the value.
func (p *Position) ApplyCurrentPrice(cents int64, now time.Time) {
	p.CurrentPrice = cents
	p.CurrentPriceDate = &now
	p.Value = cents * p.Shares
}

// PositionValue returns the value of the holding in dollars.
func (p Position) PositionValue() float64 {
	return fixedpoint.DecodeCurrency(p.Value)
}

// CurrentPriceValue returns the cached price in dollars.
func (p Position) CurrentPriceValue() float64 {
	return fixedpoint.DecodeCurrency(p.CurrentPrice)
}

// PurchasePriceValue returns the purchase price in dollars.
func (p Position) PurchasePriceValue() float64 {
	return fixedpoint.DecodeCurrency(p.PurchasePrice)
}

// Update applies a user edit. Each argument is optional: an empty string or a
// nil date leaves that field as it is. All inputs are validated before any
// field changes. A new share count recomputes Value from the cached current
// price without fetching a new one.
func (p *Position) Update(shares, purchasePrice string, purchaseDate *time.Time) error {
	shares = strings.TrimSpace(shares)
	purchasePrice = strings.TrimSpace(purchasePrice)

	var newShares, newPrice int64
	if shares != "" {
		n, err := ParseShares(shares)
		if err != nil {
			return err
		}
		newShares = n
	}
	if purchasePrice != "" {
		cents, err := fixedpoint.EncodeCurrency(purchasePrice)
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrInvalidPrice, err)
		}
		newPrice = cents
	}

	if shares != "" {
		p.Shares = newShares
		p.Value = p.CurrentPrice * p.Shares
	}
	if purchasePrice != "" {
		p.PurchasePrice = newPrice
	}
	if purchaseDate != nil {
		p.PurchaseDate = *purchaseDate
	}
	return nil
}

// ParseShares parses a non-negative whole share count.
func ParseShares(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidShares, s)
	}
	return n, nil
}
