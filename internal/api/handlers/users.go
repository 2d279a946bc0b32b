package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/api/response"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/service"
	"github.com/ndewijer/stock-portfolio-tracker/internal/validation"
)

// UserHandler handles registration, login and the self-service account
// endpoints.
type UserHandler struct {
	accountService *service.AccountService
}

// NewUserHandler creates a new UserHandler with the provided service dependency.
func NewUserHandler(accountService *service.AccountService) *UserHandler {
	return &UserHandler{
		accountService: accountService,
	}
}

// SessionResponse is returned by a successful login. The token is sent as
// "Authorization: Bearer <token>" on later requests.
type SessionResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Account   model.Account `json:"account"`
}

// Register handles POST requests to create an account. A confirmation link
// is emailed to the new address.
//
// Endpoint: POST /api/users/register
// Request Body: RegisterRequest (email, password)
// Response: 201 Created with Account
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the email is already registered
// Error: 500 Internal Server Error if registration fails
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RegisterRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRegister(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account, err := h.accountService.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEmail.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRegister.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// Login handles POST requests to exchange credentials for a session token.
//
// Endpoint: POST /api/users/login
// Request Body: LoginRequest (email, password)
// Response: 200 OK with SessionResponse
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 401 Unauthorized if the email or password is wrong
// Error: 500 Internal Server Error if login fails
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateLogin(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	session, err := h.accountService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			response.RespondError(w, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToLogin.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Account:   session.Account,
	})
}

// Profile handles GET requests for the caller's own account.
//
// Endpoint: GET /api/users/profile
// Response: 200 OK with Account
// Error: 401 Unauthorized if not logged in
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	account, err := h.accountService.Profile(r.Context(), caller.ID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveUser.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// ChangePassword handles POST requests to change the caller's password.
//
// Endpoint: POST /api/users/change_password
// Request Body: ChangePasswordRequest (currentPassword, newPassword)
// Response: 200 OK with MessageResponse
// Error: 400 Bad Request if validation fails or the current password is wrong
// Error: 500 Internal Server Error if the update fails
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.ChangePasswordRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateChangePassword(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.accountService.ChangePassword(r.Context(), caller.ID, req); err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			response.RespondError(w, http.StatusBadRequest, "incorrect current password", nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveUser.Error(), err.Error())
		return
	}

	response.RespondMessage(w, http.StatusOK, "Password has been updated!")
}

// ConfirmEmail handles the link sent in the confirmation email.
//
// Endpoint: GET /api/users/confirm/{token}
// Response: 200 OK with MessageResponse, also when the address was already confirmed
// Error: 400 Bad Request if the link is invalid or expired
// Error: 500 Internal Server Error if the update fails
func (h *UserHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	_, alreadyConfirmed, err := h.accountService.ConfirmEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidToken) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidToken.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveUser.Error(), err.Error())
		return
	}

	if alreadyConfirmed {
		response.RespondMessage(w, http.StatusOK, "Account already confirmed. Please login.")
		return
	}
	response.RespondMessage(w, http.StatusOK, "Thank you for confirming your email address!")
}

// ResendConfirmation handles POST requests to email a new confirmation link
// to the caller.
//
// Endpoint: POST /api/users/resend_confirmation
// Response: 200 OK with MessageResponse
// Error: 409 Conflict if the address is already confirmed
// Error: 500 Internal Server Error if sending fails
func (h *UserHandler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentAccount(w, r)
	if !ok {
		return
	}

	if err := h.accountService.ResendConfirmation(r.Context(), caller.ID); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyConfirmed) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrEmailAlreadyConfirmed.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveUser.Error(), err.Error())
		return
	}

	response.RespondMessage(w, http.StatusOK, "Email sent to confirm your email address. Please check your email!")
}

// RequestPasswordReset handles POST requests to email a password reset link.
//
// Endpoint: POST /api/users/password_reset
// Request Body: EmailRequest (email)
// Response: 200 OK with MessageResponse
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if no account has the address
// Error: 409 Conflict if the address has not been confirmed
// Error: 500 Internal Server Error if sending fails
func (h *UserHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.EmailRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateEmail(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.accountService.RequestPasswordReset(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), nil)
		case errors.Is(err, apperrors.ErrEmailNotConfirmed):
			response.RespondError(w, http.StatusConflict, apperrors.ErrEmailNotConfirmed.Error(),
				"you must confirm your email address before you can request a password reset")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to request password reset", err.Error())
		}
		return
	}

	response.RespondMessage(w, http.StatusOK, "Please check your email for a password reset link.")
}

// ResetPassword handles the form submitted from the password reset link.
//
// Endpoint: POST /api/users/password_reset/{token}
// Request Body: PasswordRequest (password)
// Response: 200 OK with MessageResponse
// Error: 400 Bad Request if validation fails or the link is invalid or expired
// Error: 500 Internal Server Error if the update fails
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.PasswordRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidatePassword(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.accountService.ResetPassword(r.Context(), chi.URLParam(r, "token"), req); err != nil {
		if errors.Is(err, apperrors.ErrInvalidToken) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidToken.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveUser.Error(), err.Error())
		return
	}

	response.RespondMessage(w, http.StatusOK, "Your password has been updated!")
}
