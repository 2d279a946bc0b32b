package validation

import (
	"strings"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
)

// ValidateCreateStock checks a new position. Symbols are 1-5 letters and the
// share count a non-negative whole number.
func ValidateCreateStock(req request.CreateStockRequest) error {
	req.Symbol = strings.TrimSpace(req.Symbol)
	return validateStruct(req)
}

// ValidateUpdateStock checks an edit. Every field is optional.
func ValidateUpdateStock(req request.UpdateStockRequest) error {
	return validateStruct(req)
}

func ValidateCreateWatchlistEntry(req request.CreateWatchlistEntryRequest) error {
	req.Symbol = strings.TrimSpace(req.Symbol)
	return validateStruct(req)
}
