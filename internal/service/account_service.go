package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/auth"
	"github.com/ndewijer/stock-portfolio-tracker/internal/mail"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
	"github.com/ndewijer/stock-portfolio-tracker/internal/staleness"
)

// AccountService handles registration, login and the self-service account
// operations. Confirmation and reset emails are sent in the background.
type AccountService struct {
	accountRepo *repository.AccountRepository
	tokens      *auth.TokenManager
	links       *auth.LinkSigner
	mailer      *mail.Dispatcher
	baseURL     string
	clock       staleness.Clock
	logger      *zap.Logger
}

// NewAccountService creates a new AccountService. baseURL is the address of
// the web client and prefixes the links sent by email.
func NewAccountService(
	accountRepo *repository.AccountRepository,
	tokens *auth.TokenManager,
	links *auth.LinkSigner,
	mailer *mail.Dispatcher,
	baseURL string,
	clock staleness.Clock,
	logger *zap.Logger,
) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accountRepo: accountRepo,
		tokens:      tokens,
		links:       links,
		mailer:      mailer,
		baseURL:     strings.TrimRight(baseURL, "/"),
		clock:       clock,
		logger:      logger.Named("accounts"),
	}
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   model.Account
}

// Register creates a standard account and emails a confirmation link.
// Returns apperrors.ErrDuplicateEmail if the address is taken.
func (s *AccountService) Register(ctx context.Context, req request.RegisterRequest) (model.Account, error) {
	account, err := newAccount(req.Email, req.Password, model.RoleStandard, s.clock.Now())
	if err != nil {
		return model.Account{}, err
	}
	if err := s.accountRepo.Insert(ctx, &account); err != nil {
		return model.Account{}, err
	}

	s.logger.Info("registered new user", zap.String("account_id", account.ID), zap.String("email", account.Email))
	if err := s.sendConfirmation(account.Email); err != nil {
		s.logger.Error("failed to build confirmation email", zap.String("email", account.Email), zap.Error(err))
	}
	return account, nil
}

// Login checks the credentials and issues a session token.
// Unknown emails and wrong passwords both return apperrors.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, req request.LoginRequest) (Session, error) {
	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return Session{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		s.logger.Info("failed login", zap.String("email", account.Email))
		return Session{}, apperrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(account, s.clock.Now())
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Info("logged in user", zap.String("account_id", account.ID))
	return Session{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// Authenticate resolves a session token to its account. Returns
// apperrors.ErrUnauthorized for invalid tokens and deleted accounts.
func (s *AccountService) Authenticate(ctx context.Context, token string) (model.Account, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	account, err := s.accountRepo.GetByID(ctx, claims.Subject)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return model.Account{}, apperrors.ErrUnauthorized
	}
	if err != nil {
		return model.Account{}, err
	}
	return account, nil
}

// Profile returns the account with the given ID.
func (s *AccountService) Profile(ctx context.Context, accountID string) (model.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// ChangePassword replaces the password after checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, accountID string, req request.ChangePasswordRequest) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(account.PasswordHash, req.CurrentPassword) {
		s.logger.Info("incorrect password change", zap.String("account_id", accountID))
		return apperrors.ErrInvalidCredentials
	}

	if err := setPassword(&account, req.NewPassword); err != nil {
		return err
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	s.logger.Info("password updated", zap.String("account_id", accountID))
	return nil
}

// ResendConfirmation emails a new confirmation link.
// Returns apperrors.ErrEmailAlreadyConfirmed if there is nothing to confirm.
func (s *AccountService) ResendConfirmation(ctx context.Context, accountID string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.EmailConfirmed {
		return apperrors.ErrEmailAlreadyConfirmed
	}

	now := s.clock.Now()
	account.EmailConfirmationSentOn = &now
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	s.logger.Info("confirmation email re-sent", zap.String("account_id", accountID))
	return s.sendConfirmation(account.Email)
}

// ConfirmEmail marks the address in a confirmation link as confirmed.
// alreadyConfirmed is true when the link had been used before.
// Returns apperrors.ErrInvalidToken for tampered or expired links.
func (s *AccountService) ConfirmEmail(ctx context.Context, token string) (account model.Account, alreadyConfirmed bool, err error) {
	email, err := s.links.Verify(auth.PurposeConfirmEmail, token)
	if err != nil {
		s.logger.Info("invalid or expired confirmation link", zap.Error(err))
		return model.Account{}, false, apperrors.ErrInvalidToken
	}

	account, err = s.accountRepo.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return model.Account{}, false, apperrors.ErrInvalidToken
	}
	if err != nil {
		return model.Account{}, false, err
	}
	if account.EmailConfirmed {
		return account, true, nil
	}

	account.ConfirmEmail(s.clock.Now())
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return model.Account{}, false, err
	}

	s.logger.Info("email address confirmed", zap.String("account_id", account.ID))
	return account, false, nil
}

// RequestPasswordReset emails a reset link. Only confirmed addresses can
// receive one; otherwise apperrors.ErrEmailNotConfirmed is returned.
func (s *AccountService) RequestPasswordReset(ctx context.Context, req request.EmailRequest) error {
	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if !account.EmailConfirmed {
		return apperrors.ErrEmailNotConfirmed
	}

	token, err := s.links.Sign(auth.PurposePasswordReset, account.Email)
	if err != nil {
		return fmt.Errorf("failed to sign password reset link: %w", err)
	}
	s.mailer.Dispatch(mail.PasswordReset(account.Email, s.baseURL+"/users/password_reset/"+token))

	s.logger.Info("password reset requested", zap.String("account_id", account.ID))
	return nil
}

// ResetPassword sets a new password for the address in a reset link.
func (s *AccountService) ResetPassword(ctx context.Context, token string, req request.PasswordRequest) error {
	email, err := s.links.Verify(auth.PurposePasswordReset, token)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return apperrors.ErrInvalidToken
	}
	if err != nil {
		return err
	}

	if err := setPassword(&account, req.Password); err != nil {
		return err
	}
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	s.logger.Info("password reset", zap.String("account_id", account.ID))
	return nil
}

func (s *AccountService) sendConfirmation(email string) error {
	token, err := s.links.Sign(auth.PurposeConfirmEmail, email)
	if err != nil {
		return fmt.Errorf("failed to sign confirmation link: %w", err)
	}
	s.mailer.Dispatch(mail.ConfirmEmail(email, s.baseURL+"/users/confirm/"+token))
	return nil
}

// newAccount builds an unconfirmed account. The confirmation email is
// considered sent at registration.
func newAccount(email, password, role string, now time.Time) (model.Account, error) {
	account := model.Account{
		Email:                   email,
		RegisteredOn:            now,
		EmailConfirmationSentOn: &now,
		Role:                    role,
	}
	if err := setPassword(&account, password); err != nil {
		return model.Account{}, err
	}
	return account, nil
}

func setPassword(account *model.Account, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.PasswordHash = hash
	return nil
}
