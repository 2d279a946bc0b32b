package model

import "time"

// Account roles.
const (
	RoleStandard = "standard"
	RoleAdmin    = "admin"
)

// Account represents a registered user. Positions and watchlist entries belong
// to exactly one account and are removed with it.
type Account struct {
	ID                      string     `json:"id"`
	Email                   string     `json:"email"`
	PasswordHash            string     `json:"-"`
	RegisteredOn            time.Time  `json:"registeredOn"`
	EmailConfirmationSentOn *time.Time `json:"emailConfirmationSentOn"`
	EmailConfirmed          bool       `json:"emailConfirmed"`
	EmailConfirmedOn        *time.Time `json:"emailConfirmedOn"`
	Role                    string     `json:"role"`
}

// IsAdmin reports whether the account has the admin role.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ConfirmEmail marks the email address as confirmed at now.
func (a *Account) ConfirmEmail(now time.Time) {
	a.EmailConfirmed = true
	a.EmailConfirmedOn = &now
}

// UnconfirmEmail clears the confirmation so the user has to confirm again.
func (a *Account) UnconfirmEmail() {
	a.EmailConfirmed = false
	a.EmailConfirmedOn = nil
}

// AccountSummary is an account with the number of records it owns, as shown
// in the admin user listing.
type AccountSummary struct {
	Account
	PositionCount  int `json:"positionCount"`
	WatchlistCount int `json:"watchlistCount"`
}
