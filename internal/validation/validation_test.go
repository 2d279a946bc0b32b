package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/validation"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "expected *validation.Error, got %v", err)
	return verr.Fields
}

// TestValidateCreateStock tests validation of new positions.
//
// WHY: Symbols are sent to the quote provider as-is and share counts are
// stored as integers, so bad input must be rejected before it is persisted.
func TestValidateCreateStock(t *testing.T) {
	valid := request.CreateStockRequest{
		Symbol:        "AAPL",
		Shares:        "16",
		PurchasePrice: "406.78",
		PurchaseDate:  "2020-07-18",
	}

	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, validation.ValidateCreateStock(valid))
	})

	tests := []struct {
		name   string
		modify func(*request.CreateStockRequest)
		field  string
	}{
		{"symbol too long", func(r *request.CreateStockRequest) { r.Symbol = "ABCDEF" }, "symbol"},
		{"symbol with digits", func(r *request.CreateStockRequest) { r.Symbol = "AB1" }, "symbol"},
		{"missing symbol", func(r *request.CreateStockRequest) { r.Symbol = "" }, "symbol"},
		{"fractional shares", func(r *request.CreateStockRequest) { r.Shares = "1.5" }, "shares"},
		{"negative shares", func(r *request.CreateStockRequest) { r.Shares = "-1" }, "shares"},
		{"price not numeric", func(r *request.CreateStockRequest) { r.PurchasePrice = "abc" }, "purchasePrice"},
		{"bad date", func(r *request.CreateStockRequest) { r.PurchaseDate = "07/18/2020" }, "purchaseDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.modify(&req)

			fields := fieldErrors(t, validation.ValidateCreateStock(req))
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateCreateWatchlistEntry(t *testing.T) {
	t.Run("ten characters", func(t *testing.T) {
		req := request.CreateWatchlistEntryRequest{Symbol: " BRK.B-TEST "}
		assert.NoError(t, validation.ValidateCreateWatchlistEntry(req))
	})

	t.Run("eleven characters", func(t *testing.T) {
		req := request.CreateWatchlistEntryRequest{Symbol: "ABCDEFGHIJK"}
		fields := fieldErrors(t, validation.ValidateCreateWatchlistEntry(req))
		assert.Contains(t, fields, "symbol")
	})

	t.Run("missing symbol", func(t *testing.T) {
		fields := fieldErrors(t, validation.ValidateCreateWatchlistEntry(request.CreateWatchlistEntryRequest{}))
		assert.Contains(t, fields, "symbol")
	})
}

func TestValidateUpdateStock(t *testing.T) {
	assert.NoError(t, validation.ValidateUpdateStock(request.UpdateStockRequest{}))
	assert.NoError(t, validation.ValidateUpdateStock(request.UpdateStockRequest{Shares: "20"}))

	fields := fieldErrors(t, validation.ValidateUpdateStock(request.UpdateStockRequest{PurchaseDate: "yesterday"}))
	assert.Equal(t, "purchaseDate must be a date in YYYY-MM-DD format", fields["purchaseDate"])
}

func TestValidateRegister(t *testing.T) {
	assert.NoError(t, validation.ValidateRegister(request.RegisterRequest{Email: "patrick@email.com", Password: "FlaskIsAwesome"}))

	fields := fieldErrors(t, validation.ValidateRegister(request.RegisterRequest{Email: "patrick", Password: "abc"}))
	assert.Equal(t, "email must be a valid email address", fields["email"])
	assert.Equal(t, "password must be at least 6 characters", fields["password"])
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, validation.ValidateUUID("0b6f3f0e-8a0c-4f36-b0a4-1c8f0b1c2d3e"))
	assert.ErrorIs(t, validation.ValidateUUID("1234"), validation.ErrInvalidUUID)
}

func TestError_Error(t *testing.T) {
	err := &validation.Error{Fields: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "a: first; b: second", err.Error())
}
