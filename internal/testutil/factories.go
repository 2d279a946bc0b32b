package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
	"github.com/ndewijer/stock-portfolio-tracker/internal/auth"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
)

// DefaultPassword is the password of accounts created by AccountBuilder.
const DefaultPassword = "FlaskIsAwesome"

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	// Simple creation with defaults
//	account := testutil.NewAccount().Build(t, db)
//
//	// Confirmed admin
//	admin := testutil.NewAccount().Admin().Confirmed().Build(t, db)
type AccountBuilder struct {
	Email          string
	Password       string
	Role           string
	EmailConfirmed bool
}

// NewAccount creates an AccountBuilder with a unique email and the standard role.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		Email:    MakeEmail("user"),
		Password: DefaultPassword,
		Role:     model.RoleStandard,
	}
}

// WithEmail sets a custom email.
func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.Email = email
	return b
}

// WithPassword sets a custom password.
func (b *AccountBuilder) WithPassword(password string) *AccountBuilder {
	b.Password = password
	return b
}

// Admin gives the account the admin role.
func (b *AccountBuilder) Admin() *AccountBuilder {
	b.Role = model.RoleAdmin
	return b
}

// Confirmed marks the email address as confirmed.
func (b *AccountBuilder) Confirmed() *AccountBuilder {
	b.EmailConfirmed = true
	return b
}

// Build creates the account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	hash, err := auth.HashPassword(b.Password)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	now := time.Now()
	account := model.Account{
		Email:                   b.Email,
		PasswordHash:            hash,
		RegisteredOn:            now,
		EmailConfirmationSentOn: &now,
		Role:                    b.Role,
	}
	if b.EmailConfirmed {
		account.ConfirmEmail(now)
	}

	if err := repository.NewAccountRepository(db).Insert(context.Background(), &account); err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}
	return account
}

// PositionBuilder provides a fluent interface for creating test positions.
//
// Example usage:
//
//	position := testutil.NewPosition(account.ID).
//	    WithSymbol("AAPL").
//	    WithShares(16).
//	    WithCurrentPrice(14834, time.Now()).
//	    Build(t, db)
type PositionBuilder struct {
	position model.Position
}

// NewPosition creates a PositionBuilder for an AAPL position without a
// cached current price.
func NewPosition(accountID string) *PositionBuilder {
	return &PositionBuilder{position: model.Position{
		Symbol:        "AAPL",
		Shares:        16,
		PurchasePrice: 40678,
		PurchaseDate:  time.Date(2020, 7, 18, 0, 0, 0, 0, time.UTC),
		AccountID:     accountID,
	}}
}

// WithSymbol sets a custom symbol.
func (b *PositionBuilder) WithSymbol(symbol string) *PositionBuilder {
	b.position.Symbol = symbol
	return b
}

// WithShares sets the share count.
func (b *PositionBuilder) WithShares(shares int64) *PositionBuilder {
	b.position.Shares = shares
	return b
}

// WithPurchasePrice sets the purchase price in cents.
func (b *PositionBuilder) WithPurchasePrice(cents int64) *PositionBuilder {
	b.position.PurchasePrice = cents
	return b
}

// WithPurchaseDate sets the purchase date.
func (b *PositionBuilder) WithPurchaseDate(date time.Time) *PositionBuilder {
	b.position.PurchaseDate = date
	return b
}

// WithCurrentPrice sets a cached current price fetched at the given time.
func (b *PositionBuilder) WithCurrentPrice(cents int64, fetched time.Time) *PositionBuilder {
	b.position.ApplyCurrentPrice(cents, fetched)
	return b
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	p := b.position
	if p.CurrentPriceDate != nil {
		p.Value = p.CurrentPrice * p.Shares
	}
	if err := repository.NewPositionRepository(db).Insert(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}
	return p
}

// WatchlistEntryBuilder provides a fluent interface for creating test
// watchlist entries.
type WatchlistEntryBuilder struct {
	entry model.WatchlistEntry
}

// NewWatchlistEntry creates a builder for a COST entry with nothing cached.
func NewWatchlistEntry(accountID string) *WatchlistEntryBuilder {
	return &WatchlistEntryBuilder{entry: model.WatchlistEntry{
		Symbol:    "COST",
		AccountID: accountID,
	}}
}

// WithSymbol sets a custom symbol.
func (b *WatchlistEntryBuilder) WithSymbol(symbol string) *WatchlistEntryBuilder {
	b.entry.Symbol = symbol
	return b
}

// WithCurrentPrice sets a cached share price fetched at the given time.
func (b *WatchlistEntryBuilder) WithCurrentPrice(cents int64, fetched time.Time) *WatchlistEntryBuilder {
	b.entry.ApplyCurrentPrice(cents, fetched)
	return b
}

// WithFundamentals sets cached fundamentals fetched at the given time.
func (b *WatchlistEntryBuilder) WithFundamentals(o alphavantage.Overview, fetched time.Time) *WatchlistEntryBuilder {
	if err := b.entry.ApplyOverview(o, fetched); err != nil {
		panic("testutil: invalid overview fixture: " + err.Error())
	}
	return b
}

// Build creates the entry in the database and returns it.
func (b *WatchlistEntryBuilder) Build(t *testing.T, db *sql.DB) model.WatchlistEntry {
	t.Helper()

	w := b.entry
	if err := repository.NewWatchlistRepository(db).Insert(context.Background(), &w); err != nil {
		t.Fatalf("Failed to create test watchlist entry: %v", err)
	}
	return w
}
