// Command createadmin creates an admin account in the configured database.
//
// Usage:
//
//	createadmin -email admin@example.com -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/config"
	"github.com/ndewijer/stock-portfolio-tracker/internal/database"
	"github.com/ndewijer/stock-portfolio-tracker/internal/logging"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
	"github.com/ndewijer/stock-portfolio-tracker/internal/service"
	"github.com/ndewijer/stock-portfolio-tracker/internal/staleness"
	"github.com/ndewijer/stock-portfolio-tracker/internal/validation"
)

func main() {
	email := flag.String("email", "", "email address of the new admin")
	password := flag.String("password", "", "password of the new admin")
	flag.Parse()

	if err := validation.ValidateRegister(request.RegisterRequest{Email: *email, Password: *password}); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid admin account: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	err = run(cfg, logger, *email, *password)
	if err != nil {
		logger.Error("failed to create admin", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, email, password string) error {
	ctx := context.Background()

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	admin := service.NewAdminService(repository.NewAccountRepository(db), staleness.SystemClock{}, logger)
	account, err := admin.CreateAdmin(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("Created admin %s (%s)\n", account.Email, account.ID)
	return nil
}
