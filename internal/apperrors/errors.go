package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAccountNotFound indicates that an account with the given ID or email does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPositionNotFound indicates that a stock position with the given ID does not exist.
	ErrPositionNotFound = errors.New("stock not found")

	// ErrWatchlistEntryNotFound indicates that a watchlist entry with the given ID does not exist.
	ErrWatchlistEntryNotFound = errors.New("watchlist entry not found")
)

// Authentication and authorization errors.
var (
	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// Both cases share one error so the response does not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthorized indicates a missing, expired or malformed session token.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden indicates the caller is authenticated but does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrAdminRequired indicates a non-admin account called an admin endpoint.
	ErrAdminRequired = errors.New("admin role required")

	// ErrInvalidToken indicates a confirmation or password reset link that is
	// invalid, expired or issued for another purpose.
	ErrInvalidToken = errors.New("the link is invalid or has expired")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDuplicateEmail indicates that an account with the same email already exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrAdminUndeletable indicates an attempt to delete an admin account.
	ErrAdminUndeletable = errors.New("admin accounts cannot be deleted")

	// ErrEmailNotConfirmed indicates an operation that needs a confirmed email,
	// such as a password reset.
	ErrEmailNotConfirmed = errors.New("email address has not been confirmed")

	// ErrEmailAlreadyConfirmed indicates a resend request for a confirmed account.
	ErrEmailAlreadyConfirmed = errors.New("email address already confirmed")

	// ErrInvalidShares indicates a share count that is not a non-negative integer.
	ErrInvalidShares = errors.New("shares must be a whole number of zero or more")

	// ErrInvalidPrice indicates a purchase price that is not a decimal number.
	ErrInvalidPrice = errors.New("purchase price must be a number")

	// ErrInvalidDate indicates a date that is not in YYYY-MM-DD format.
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	ErrFailedToRetrieveStocks    = errors.New("failed to retrieve stocks")
	ErrFailedToRetrieveStock     = errors.New("failed to retrieve stock")
	ErrFailedToSaveStock         = errors.New("failed to save stock")
	ErrFailedToDeleteStock       = errors.New("failed to delete stock")
	ErrFailedToRetrieveWatchlist = errors.New("failed to retrieve watchlist")
	ErrFailedToSaveWatchlist     = errors.New("failed to save watchlist entry")
	ErrFailedToDeleteWatchlist   = errors.New("failed to delete watchlist entry")
	ErrFailedToRetrieveUsers     = errors.New("failed to retrieve users")
	ErrFailedToRetrieveUser      = errors.New("failed to retrieve user")
	ErrFailedToSaveUser          = errors.New("failed to save user")
	ErrFailedToDeleteUser        = errors.New("failed to delete user")
	ErrFailedToRegister          = errors.New("failed to register user")
	ErrFailedToLogin             = errors.New("failed to log in")
)
