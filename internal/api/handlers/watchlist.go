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

// WatchlistHandler handles HTTP requests for the caller's watchlist.
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler with the provided service dependency.
func NewWatchlistHandler(watchlistService *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
	}
}

// ListWatchlist handles GET requests for the caller's watchlist. Prices and
// fundamentals not fetched today are refreshed first.
//
// Endpoint: GET /api/watchlist
// Response: 200 OK with array of WatchlistEntryResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *WatchlistHandler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	entries, err := h.watchlistService.ListEntries(r.Context(), caller.ID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveWatchlist.Error(), err.Error())
		return
	}

	resp := make([]WatchlistEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = newWatchlistEntryResponse(e)
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// CreateWatchlistEntry handles POST requests to watch a symbol.
//
// Endpoint: POST /api/watchlist
// Request Body: CreateWatchlistEntryRequest (symbol)
// Response: 201 Created with WatchlistEntryResponse
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *WatchlistHandler) CreateWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateWatchlistEntryRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateWatchlistEntry(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entry, err := h.watchlistService.CreateEntry(r.Context(), caller.ID, req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveWatchlist.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, newWatchlistEntryResponse(entry))
}

// DeleteWatchlistEntry handles DELETE requests to stop watching a symbol.
//
// Endpoint: DELETE /api/watchlist/{uuid}
// Response: 204 No Content on successful deletion
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 403 Forbidden if the entry belongs to another account
// Error: 404 Not Found if the entry does not exist
// Error: 500 Internal Server Error if deletion fails
func (h *WatchlistHandler) DeleteWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	err := h.watchlistService.DeleteEntry(r.Context(), caller.ID, chi.URLParam(r, "uuid"))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrWatchlistEntryNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrWatchlistEntryNotFound.Error(), nil)
		case errors.Is(err, apperrors.ErrForbidden):
			response.RespondError(w, http.StatusForbidden, apperrors.ErrForbidden.Error(), nil)
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToDeleteWatchlist.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
