package auth

import (
	"context"

	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
)

type contextKey struct{}

// WithAccount returns a copy of ctx carrying the authenticated account.
func WithAccount(ctx context.Context, account model.Account) context.Context {
	return context.WithValue(ctx, contextKey{}, account)
}

// AccountFromContext returns the account stored by WithAccount.
func AccountFromContext(ctx context.Context) (model.Account, bool) {
	account, ok := ctx.Value(contextKey{}).(model.Account)
	return account, ok
}
