package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
	"github.com/ndewijer/stock-portfolio-tracker/internal/staleness"
)

// AdminService implements the account management available to admins.
// Callers are responsible for checking the admin role.
type AdminService struct {
	accountRepo *repository.AccountRepository
	clock       staleness.Clock
	logger      *zap.Logger
}

// NewAdminService creates a new AdminService with the provided dependencies.
func NewAdminService(accountRepo *repository.AccountRepository, clock staleness.Clock, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		accountRepo: accountRepo,
		clock:       clock,
		logger:      logger.Named("admin"),
	}
}

// ListAccounts returns every account with its position and watchlist counts.
func (s *AdminService) ListAccounts(ctx context.Context) ([]model.AccountSummary, error) {
	return s.accountRepo.ListSummaries(ctx)
}

// DeleteAccount removes a standard account and everything it owns.
// Returns apperrors.ErrAdminUndeletable for admin accounts.
// The role check and the delete run in one transaction.
func (s *AdminService) DeleteAccount(ctx context.Context, adminID, id string) error {
	var account model.Account
	err := s.accountRepo.InTx(ctx, func(repo *repository.AccountRepository) error {
		var err error
		account, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if account.IsAdmin() {
			return apperrors.ErrAdminUndeletable
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted",
		zap.String("account_id", id),
		zap.String("email", account.Email),
		zap.String("admin_id", adminID),
	)
	return nil
}

// ConfirmEmail marks an account's address as confirmed.
func (s *AdminService) ConfirmEmail(ctx context.Context, adminID, id string) (model.Account, error) {
	return s.modify(ctx, adminID, id, "email confirmed", func(a *model.Account) error {
		a.ConfirmEmail(s.clock.Now())
		return nil
	})
}

// UnconfirmEmail clears an account's confirmation.
func (s *AdminService) UnconfirmEmail(ctx context.Context, adminID, id string) (model.Account, error) {
	return s.modify(ctx, adminID, id, "email un-confirmed", func(a *model.Account) error {
		a.UnconfirmEmail()
		return nil
	})
}

// ChangeEmail sets a new address. The confirmation state is not changed.
func (s *AdminService) ChangeEmail(ctx context.Context, adminID, id string, req request.EmailRequest) (model.Account, error) {
	return s.modify(ctx, adminID, id, "email changed", func(a *model.Account) error {
		a.Email = req.Email
		return nil
	})
}

// ChangePassword sets a new password without knowing the old one.
func (s *AdminService) ChangePassword(ctx context.Context, adminID, id string, req request.PasswordRequest) error {
	_, err := s.modify(ctx, adminID, id, "password changed", func(a *model.Account) error {
		return setPassword(a, req.Password)
	})
	return err
}

// CreateAdmin creates an account with the admin role.
func (s *AdminService) CreateAdmin(ctx context.Context, email, password string) (model.Account, error) {
	account, err := newAccount(email, password, model.RoleAdmin, s.clock.Now())
	if err != nil {
		return model.Account{}, err
	}
	if err := s.accountRepo.Insert(ctx, &account); err != nil {
		return model.Account{}, err
	}

	s.logger.Info("admin user created", zap.String("account_id", account.ID), zap.String("email", account.Email))
	return account, nil
}

func (s *AdminService) modify(ctx context.Context, adminID, id, action string, apply func(*model.Account) error) (model.Account, error) {
	var updated model.Account
	err := s.accountRepo.InTx(ctx, func(repo *repository.AccountRepository) error {
		account, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(&account); err != nil {
			return err
		}
		if err := repo.Update(ctx, account); err != nil {
			return err
		}
		updated, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return model.Account{}, err
	}

	s.logger.Info(action,
		zap.String("account_id", id),
		zap.String("admin_id", adminID),
	)
	return updated, nil
}
