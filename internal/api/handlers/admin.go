package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/api/response"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/service"
	"github.com/ndewijer/stock-portfolio-tracker/internal/validation"
)

// AdminHandler handles the account management endpoints. The router only
// lets admin accounts reach it.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler with the provided service dependency.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// ListUsers handles GET requests for all accounts.
//
// Endpoint: GET /api/admin/users
// Response: 200 OK with array of AccountSummary
// Error: 500 Internal Server Error if retrieval fails
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.adminService.ListAccounts(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveUsers.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summaries)
}

// DeleteUser handles DELETE requests to remove an account with everything it owns.
//
// Endpoint: DELETE /api/admin/users/{uuid}
// Response: 204 No Content on successful deletion
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 403 Forbidden if the account is an admin
// Error: 404 Not Found if the account does not exist
// Error: 500 Internal Server Error if deletion fails
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	if err := h.adminService.DeleteAccount(r.Context(), caller.ID, chi.URLParam(r, "uuid")); err != nil {
		if errors.Is(err, apperrors.ErrAdminUndeletable) {
			response.RespondError(w, http.StatusForbidden, apperrors.ErrAdminUndeletable.Error(), nil)
			return
		}
		respondAccountError(w, err, apperrors.ErrFailedToDeleteUser)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// ConfirmUserEmail handles POST requests to mark an account's address as confirmed.
//
// Endpoint: POST /api/admin/users/{uuid}/confirm_email
// Response: 200 OK with Account
// Error: 404 Not Found if the account does not exist
// Error: 500 Internal Server Error if the update fails
func (h *AdminHandler) ConfirmUserEmail(w http.ResponseWriter, r *http.Request) {
	h.modify(w, r, h.adminService.ConfirmEmail)
}

// UnconfirmUserEmail handles POST requests to clear an account's confirmation.
//
// Endpoint: POST /api/admin/users/{uuid}/unconfirm_email
// Response: 200 OK with Account
// Error: 404 Not Found if the account does not exist
// Error: 500 Internal Server Error if the update fails
func (h *AdminHandler) UnconfirmUserEmail(w http.ResponseWriter, r *http.Request) {
	h.modify(w, r, h.adminService.UnconfirmEmail)
}

func (h *AdminHandler) modify(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, adminID, id string) (model.Account, error),
) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	account, err := apply(r.Context(), caller.ID, chi.URLParam(r, "uuid"))
	if err != nil {
		respondAccountError(w, err, apperrors.ErrFailedToSaveUser)
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// ChangeUserEmail handles PUT requests to set a new address on an account.
//
// Endpoint: PUT /api/admin/users/{uuid}/email
// Request Body: EmailRequest (email)
// Response: 200 OK with Account
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the account does not exist
// Error: 409 Conflict if the address belongs to another account
// Error: 500 Internal Server Error if the update fails
func (h *AdminHandler) ChangeUserEmail(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.EmailRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateEmail(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.adminService.ChangeEmail(r.Context(), caller.ID, chi.URLParam(r, "uuid"), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEmail.Error(), nil)
			return
		}
		respondAccountError(w, err, apperrors.ErrFailedToSaveUser)
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// ChangeUserPassword handles PUT requests to set a new password on an account.
//
// Endpoint: PUT /api/admin/users/{uuid}/password
// Request Body: PasswordRequest (password)
// Response: 200 OK with MessageResponse
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the account does not exist
// Error: 500 Internal Server Error if the update fails
func (h *AdminHandler) ChangeUserPassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.PasswordRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidatePassword(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.adminService.ChangePassword(r.Context(), caller.ID, chi.URLParam(r, "uuid"), req); err != nil {
		respondAccountError(w, err, apperrors.ErrFailedToSaveUser)
		return
	}

	response.RespondMessage(w, http.StatusOK, "Password has been updated!")
}

func respondAccountError(w http.ResponseWriter, err error, fallback error) {
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), nil)
		return
	}
	response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
}
