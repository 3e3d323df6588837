package routes

import (
	"plp-rushdesk/internal/adapters/http/handlers"
	"plp-rushdesk/internal/adapters/http/middleware"
	"plp-rushdesk/internal/adapters/persistence/repositories"
	"plp-rushdesk/internal/config"
	"plp-rushdesk/internal/core/services"
	"plp-rushdesk/internal/core/watch"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, hub *watch.Hub, otpService *services.OTPService, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	pnmRepo := repositories.NewPNMRepository(db)
	referralRepo := repositories.NewReferralRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, otpService, cfg)
	googleService := services.NewGoogleService(services.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	})
	pnmService := services.NewPNMService(pnmRepo, hub)
	referralService := services.NewReferralService(referralRepo, pnmRepo, hub)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, googleService, cfg)
	pnmHandler := handlers.NewPNMHandler(pnmService)
	referralHandler := handlers.NewReferralHandler(referralService)
	watchHandler := handlers.NewWatchHandler(hub, pnmService, referralService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, pnmHandler, referralHandler, watchHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	pnmHandler *handlers.PNMHandler,
	referralHandler *handlers.ReferralHandler,
	watchHandler *handlers.WatchHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// PNM dashboard routes (Authenticated users)
	pnmRoutes := router.Group("/pnms")
	pnmRoutes.Use(middleware.AuthMiddleware(cfg))
	setupPNMRoutes(pnmRoutes, pnmHandler)

	// Referral routes (Authenticated users)
	referralRoutes := router.Group("/referrals")
	referralRoutes.Use(middleware.AuthMiddleware(cfg))
	setupReferralRoutes(referralRoutes, referralHandler)

	// Watch routes (WebSocket collection subscriptions). Browsers cannot
	// set headers on a WebSocket handshake, so a token query param is
	// promoted to the Authorization header first.
	watchRoutes := router.Group("/watch")
	watchRoutes.Use(middleware.TokenFromQuery())
	watchRoutes.Use(middleware.AuthMiddleware(cfg))
	setupWatchRoutes(watchRoutes, watchHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", handler.Register)
	router.Post("/login", handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Google OAuth
	router.Get("/google/url", handler.GoogleLoginURL)
	router.Get("/google/callback", handler.GoogleCallback)

	// Phone sign-in
	router.Post("/phone/request", handler.RequestPhoneCode)
	router.Post("/phone/verify", handler.VerifyPhoneCode)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupPNMRoutes configures PNM dashboard routes
func setupPNMRoutes(router fiber.Router, handler *handlers.PNMHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
}

// setupReferralRoutes configures referral routes
func setupReferralRoutes(router fiber.Router, handler *handlers.ReferralHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)

	// Comment thread
	router.Get("/:id/comments", handler.ListComments)
	router.Post("/:id/comments", handler.AddComment)
}

// setupWatchRoutes configures WebSocket subscription routes
func setupWatchRoutes(router fiber.Router, handler *handlers.WatchHandler) {
	router.Get("/:collection", handler.Upgrade, handler.Subscribe())
}
