// Package handlers contains the HTTP handlers of the API. Handlers parse and
// validate requests, call a service and map its errors to status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/response"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/auth"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
)

// maxBodyBytes bounds request bodies; every request type is a handful of fields.
const maxBodyBytes = 1 << 16

// parseJSON decodes the request body into T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, fmt.Errorf("request body is empty")
		}
		return req, err
	}
	return req, nil
}

// currentAccount returns the account set by the auth middleware. It writes a
// 401 response and returns false when there is none.
func currentAccount(w http.ResponseWriter, r *http.Request) (model.Account, bool) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error(), nil)
	}
	return account, ok
}
