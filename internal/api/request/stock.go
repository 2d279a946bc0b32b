package request

import "encoding/json"

// CreateStockRequest represents the request body for adding a position.
// Numbers may be sent as JSON numbers or numeric strings; the purchase
// price is kept as text so it is encoded to cents without float rounding.
type CreateStockRequest struct {
	Symbol        string      `json:"symbol" validate:"required,alpha,max=5"`
	Shares        json.Number `json:"shares" validate:"required,number"`
	PurchasePrice json.Number `json:"purchasePrice" validate:"required,numeric"`
	PurchaseDate  string      `json:"purchaseDate" validate:"required,datetime=2006-01-02"`
}

// UpdateStockRequest represents the request body for editing a position.
// Omitted fields are left unchanged.
type UpdateStockRequest struct {
	Shares        json.Number `json:"shares,omitempty" validate:"omitempty,number"`
	PurchasePrice json.Number `json:"purchasePrice,omitempty" validate:"omitempty,numeric"`
	PurchaseDate  string      `json:"purchaseDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CreateWatchlistEntryRequest represents the request body for watching a stock.
type CreateWatchlistEntryRequest struct {
	Symbol string `json:"symbol" validate:"required,min=1,max=10"`
}
