package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
)

// AccountRepository provides data access methods for the account table.
type AccountRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{
		db: r.db,
		tx: tx,
	}
}

// InTx runs fn against a repository bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise. fn must only use the
// repository it is given.
func (r *AccountRepository) InTx(ctx context.Context, fn func(repo *AccountRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(r.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *AccountRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const accountColumns = `id, email, password_hash, registered_on, email_confirmation_sent_on,
	email_confirmed, email_confirmed_on, role`

// GetByID retrieves an account.
// Returns apperrors.ErrAccountNotFound if no account has the given ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE id = ?`
	return r.get(ctx, query, id)
}

// GetByEmail retrieves an account by email address, ignoring case.
// Returns apperrors.ErrAccountNotFound if no account has the given email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account WHERE email = ?`
	return r.get(ctx, query, normalizeEmail(email))
}

func (r *AccountRepository) get(ctx context.Context, query string, arg string) (model.Account, error) {
	a, err := scanAccount(r.getQuerier().QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to query account: %w", err)
	}
	return a, nil
}

// ListSummaries retrieves every account with the number of positions and
// watchlist entries it owns, ordered by registration.
func (r *AccountRepository) ListSummaries(ctx context.Context) ([]model.AccountSummary, error) {
	query := `
        SELECT a.id, a.email, a.password_hash, a.registered_on, a.email_confirmation_sent_on,
               a.email_confirmed, a.email_confirmed_on, a.role,
               (SELECT COUNT(*) FROM position p WHERE p.account_id = a.id),
               (SELECT COUNT(*) FROM watchlist_entry w WHERE w.account_id = a.id)
        FROM account a
        ORDER BY a.registered_on, a.rowid
    `

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	summaries := []model.AccountSummary{}
	for rows.Next() {
		var s model.AccountSummary
		a, err := scanAccount(rows, &s.PositionCount, &s.WatchlistCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account table results: %w", err)
		}
		s.Account = a
		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}

	return summaries, nil
}

// Insert stores a new account. An empty ID is replaced by a new UUID.
// Returns apperrors.ErrDuplicateEmail if the email is already registered.
func (r *AccountRepository) Insert(ctx context.Context, a *model.Account) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Email = normalizeEmail(a.Email)

	query := `
        INSERT INTO account (` + accountColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := r.getQuerier().ExecContext(ctx, query,
		a.ID,
		a.Email,
		a.PasswordHash,
		formatTimestamp(a.RegisteredOn),
		nullTimestamp(a.EmailConfirmationSentOn),
		a.EmailConfirmed,
		nullTimestamp(a.EmailConfirmedOn),
		a.Role,
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// Update writes every mutable field of the account.
// Returns apperrors.ErrAccountNotFound if the account no longer exists and
// apperrors.ErrDuplicateEmail if the new email belongs to another account.
func (r *AccountRepository) Update(ctx context.Context, a model.Account) error {
	query := `
        UPDATE account
        SET email = ?, password_hash = ?, email_confirmation_sent_on = ?,
            email_confirmed = ?, email_confirmed_on = ?, role = ?
        WHERE id = ?
    `

	result, err := r.getQuerier().ExecContext(ctx, query,
		normalizeEmail(a.Email),
		a.PasswordHash,
		nullTimestamp(a.EmailConfirmationSentOn),
		a.EmailConfirmed,
		nullTimestamp(a.EmailConfirmedOn),
		a.Role,
		a.ID,
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	return requireAffected(result, apperrors.ErrAccountNotFound)
}

// Delete removes an account together with its positions and watchlist.
// Returns apperrors.ErrAccountNotFound if no account has the given ID.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM account WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return requireAffected(result, apperrors.ErrAccountNotFound)
}

// scanAccount scans the account columns followed by any extra destinations.
func scanAccount(s scanner, extra ...any) (model.Account, error) {
	var (
		a            model.Account
		registeredOn string
		sentOn       sql.NullString
		confirmedOn  sql.NullString
	)

	dest := []any{
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&registeredOn,
		&sentOn,
		&a.EmailConfirmed,
		&confirmedOn,
		&a.Role,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return model.Account{}, err
	}

	var err error
	if a.RegisteredOn, err = ParseTime(registeredOn); err != nil {
		return model.Account{}, err
	}
	if a.EmailConfirmationSentOn, err = parseNullTimestamp(sentOn); err != nil {
		return model.Account{}, err
	}
	if a.EmailConfirmedOn, err = parseNullTimestamp(confirmedOn); err != nil {
		return model.Account{}, err
	}

	return a, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
