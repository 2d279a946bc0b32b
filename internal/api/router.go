package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/handlers"
	custommiddleware "github.com/ndewijer/stock-portfolio-tracker/internal/api/middleware"
	"github.com/ndewijer/stock-portfolio-tracker/internal/config"
	"github.com/ndewijer/stock-portfolio-tracker/internal/service"
)

// Services bundles the services the router dispatches to.
type Services struct {
	System    *service.SystemService
	Accounts  *service.AccountService
	Admin     *service.AdminService
	Positions *service.PositionService
	Watchlist *service.WatchlistService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	requireAuth := custommiddleware.RequireAuth(svc.Accounts)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/users", func(r chi.Router) {
			userHandler := handlers.NewUserHandler(svc.Accounts)
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Get("/confirm/{token}", userHandler.ConfirmEmail)
			r.Post("/password_reset", userHandler.RequestPasswordReset)
			r.Post("/password_reset/{token}", userHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", userHandler.Profile)
				r.Post("/change_password", userHandler.ChangePassword)
				r.Post("/resend_confirmation", userHandler.ResendConfirmation)
			})
		})

		r.Route("/stocks", func(r chi.Router) {
			r.Use(requireAuth)
			stockHandler := handlers.NewStockHandler(svc.Positions)
			r.Get("/", stockHandler.ListStocks)
			r.Post("/", stockHandler.CreateStock)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", stockHandler.GetStock)
				r.Put("/", stockHandler.UpdateStock)
				r.Delete("/", stockHandler.DeleteStock)
			})
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Use(requireAuth)
			watchlistHandler := handlers.NewWatchlistHandler(svc.Watchlist)
			r.Get("/", watchlistHandler.ListWatchlist)
			r.Post("/", watchlistHandler.CreateWatchlistEntry)
			r.With(custommiddleware.ValidateUUIDMiddleware).Delete("/{uuid}", watchlistHandler.DeleteWatchlistEntry)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(custommiddleware.RequireAdmin)
			adminHandler := handlers.NewAdminHandler(svc.Admin)
			r.Get("/users", adminHandler.ListUsers)

			r.Route("/users/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Delete("/", adminHandler.DeleteUser)
				r.Post("/confirm_email", adminHandler.ConfirmUserEmail)
				r.Post("/unconfirm_email", adminHandler.UnconfirmUserEmail)
				r.Put("/email", adminHandler.ChangeUserEmail)
				r.Put("/password", adminHandler.ChangeUserPassword)
			})
		})
	})

	return r
}
