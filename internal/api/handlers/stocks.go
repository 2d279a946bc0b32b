package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/api/response"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/service"
	"github.com/ndewijer/stock-portfolio-tracker/internal/validation"
)

// StockHandler handles HTTP requests for the caller's positions.
// Every endpoint requires an authenticated account and only touches
// positions that account owns.
type StockHandler struct {
	positionService *service.PositionService
}

// NewStockHandler creates a new StockHandler with the provided service dependency.
func NewStockHandler(positionService *service.PositionService) *StockHandler {
	return &StockHandler{
		positionService: positionService,
	}
}

// ListStocks handles GET requests for the caller's portfolio. Positions whose
// price was not fetched today are refreshed first.
//
// Endpoint: GET /api/stocks
// Response: 200 OK with PortfolioResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *StockHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	portfolio, err := h.positionService.ListPositions(r.Context(), caller.ID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveStocks.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, newPortfolioResponse(portfolio))
}

// GetStock handles GET requests for one position and its weekly chart.
//
// Endpoint: GET /api/stocks/{uuid}
// Response: 200 OK with PositionDetailsResponse
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 403 Forbidden if the position belongs to another account
// Error: 404 Not Found if the position does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	position, chart, err := h.positionService.PositionDetails(r.Context(), caller.ID, chi.URLParam(r, "uuid"))
	if err != nil {
		respondPositionError(w, err, apperrors.ErrFailedToRetrieveStock)
		return
	}

	response.RespondJSON(w, http.StatusOK, PositionDetailsResponse{
		Position: newPositionResponse(position),
		Chart:    chart,
	})
}

// CreateStock handles POST requests to add a position.
//
// Endpoint: POST /api/stocks
// Request Body: CreateStockRequest (symbol, shares, purchasePrice, purchaseDate)
// Response: 201 Created with PositionResponse
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *StockHandler) CreateStock(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateStockRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateStock(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	position, err := h.positionService.CreatePosition(r.Context(), caller.ID, req)
	if err != nil {
		if isInputError(err) {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveStock.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, newPositionResponse(position))
}

// UpdateStock handles PUT requests to edit a position. Omitted fields are
// left unchanged.
//
// Endpoint: PUT /api/stocks/{uuid}
// Request Body: UpdateStockRequest (all fields optional)
// Response: 200 OK with PositionResponse
// Error: 400 Bad Request if the ID is invalid or validation fails
// Error: 403 Forbidden if the position belongs to another account
// Error: 404 Not Found if the position does not exist
// Error: 500 Internal Server Error if the update fails
func (h *StockHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.UpdateStockRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateStock(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	position, err := h.positionService.UpdatePosition(r.Context(), caller.ID, chi.URLParam(r, "uuid"), req)
	if err != nil {
		if isInputError(err) {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		respondPositionError(w, err, apperrors.ErrFailedToSaveStock)
		return
	}

	response.RespondJSON(w, http.StatusOK, newPositionResponse(position))
}

// DeleteStock handles DELETE requests to remove a position.
//
// Endpoint: DELETE /api/stocks/{uuid}
// Response: 204 No Content on successful deletion
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 403 Forbidden if the position belongs to another account
// Error: 404 Not Found if the position does not exist
// Error: 500 Internal Server Error if deletion fails
func (h *StockHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	if err := h.positionService.DeletePosition(r.Context(), caller.ID, chi.URLParam(r, "uuid")); err != nil {
		respondPositionError(w, err, apperrors.ErrFailedToDeleteStock)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// respondPositionError maps not-found and ownership errors, and anything else
// to a 500 with the given message.
func respondPositionError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case errors.Is(err, apperrors.ErrPositionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPositionNotFound.Error(), nil)
	case errors.Is(err, apperrors.ErrForbidden):
		response.RespondError(w, http.StatusForbidden, apperrors.ErrForbidden.Error(), nil)
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}

// isInputError reports whether err is a rejected field value found after
// request validation, such as a fractional share count.
func isInputError(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidShares) ||
		errors.Is(err, apperrors.ErrInvalidPrice) ||
		errors.Is(err, apperrors.ErrInvalidDate)
}
