package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/response"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/auth"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
)

// Authenticator resolves a session token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Account, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <token>"
// header with 401. The authenticated account is stored in the request context
// and can be read with auth.AccountFromContext.
func RequireAuth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error(), "missing bearer token")
				return
			}

			account, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error(), nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithAccount(r.Context(), account)))
		})
	}
}

// RequireAdmin rejects accounts without the admin role with 403.
// It must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.AccountFromContext(r.Context())
		if !ok {
			response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error(), nil)
			return
		}
		if !account.IsAdmin() {
			response.RespondError(w, http.StatusForbidden, apperrors.ErrAdminRequired.Error(), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
