package testutil

import (
	"database/sql"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
	"github.com/ndewijer/stock-portfolio-tracker/internal/auth"
	"github.com/ndewijer/stock-portfolio-tracker/internal/mail"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
	"github.com/ndewijer/stock-portfolio-tracker/internal/service"
	"github.com/ndewijer/stock-portfolio-tracker/internal/staleness"
)

// TestSecret signs session tokens and email links in tests.
const TestSecret = "test-secret-key"

// TestBaseURL prefixes the links in test emails.
const TestBaseURL = "http://localhost:3000"

func init() {
	// Hashing at the default cost makes every account fixture slow.
	auth.PasswordCost = bcrypt.MinCost
}

// NewTestRefreshService creates a RefreshService using the daily policy.
func NewTestRefreshService(t *testing.T, quotes alphavantage.Client, clock staleness.Clock) *service.RefreshService {
	t.Helper()
	return service.NewRefreshService(quotes, staleness.Daily{}, clock, zap.NewNop())
}

func NewTestPositionService(t *testing.T, db *sql.DB, quotes alphavantage.Client, clock staleness.Clock) *service.PositionService {
	t.Helper()

	return service.NewPositionService(
		repository.NewPositionRepository(db),
		NewTestRefreshService(t, quotes, clock),
		zap.NewNop(),
	)
}

func NewTestWatchlistService(t *testing.T, db *sql.DB, quotes alphavantage.Client, clock staleness.Clock) *service.WatchlistService {
	t.Helper()

	return service.NewWatchlistService(
		repository.NewWatchlistRepository(db),
		NewTestRefreshService(t, quotes, clock),
		zap.NewNop(),
	)
}

// NewTestAccountService creates an AccountService whose emails are delivered
// to mailer. Call Wait on the returned dispatcher before inspecting mailer.
func NewTestAccountService(t *testing.T, db *sql.DB, mailer mail.Mailer) (*service.AccountService, *mail.Dispatcher) {
	t.Helper()

	dispatcher := mail.NewDispatcher(mailer, zap.NewNop())
	svc := service.NewAccountService(
		repository.NewAccountRepository(db),
		NewTestTokenManager(),
		NewTestLinkSigner(),
		dispatcher,
		TestBaseURL,
		staleness.SystemClock{},
		zap.NewNop(),
	)
	t.Cleanup(dispatcher.Wait)
	return svc, dispatcher
}

func NewTestAdminService(t *testing.T, db *sql.DB) *service.AdminService {
	t.Helper()
	return service.NewAdminService(repository.NewAccountRepository(db), staleness.SystemClock{}, zap.NewNop())
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db)
}

func NewTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(TestSecret, time.Hour)
}

func NewTestLinkSigner() *auth.LinkSigner {
	return auth.NewLinkSigner(TestSecret, time.Hour)
}

// MakeID generates a new UUID string.
func MakeID() string {
	return uuid.New().String()
}

// MakeEmail generates a unique email address for testing.
//
// Example usage:
//
//	email := testutil.MakeEmail("patrick") // patrick.x7k2ab@example.com
func MakeEmail(base string) string {
	if base == "" {
		base = "user"
	}
	return base + "." + strings.ToLower(randomAlphanumeric(6)) + "@example.com"
}

func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))] //nolint:gosec // Test data only
	}
	return string(b)
}
