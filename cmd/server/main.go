package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"plp-rushdesk/internal/adapters/http/middleware"
	"plp-rushdesk/internal/adapters/http/routes"
	"plp-rushdesk/internal/adapters/persistence/models"
	"plp-rushdesk/internal/adapters/persistence/repositories"
	"plp-rushdesk/internal/config"
	"plp-rushdesk/internal/core/services"
	"plp-rushdesk/internal/core/watch"

	"github.com/gofiber/fiber/v2"

	_ "plp-rushdesk/docs" // Swagger docs
)

// @title PLP RushDesk API
// @version 1.0
// @description Pi Lambda Phi rush management API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email rush@pilambdaphi.org

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host rush.pilambdaphi.org
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Start Cron Service for refresh-token purge (03:30 daily)
	cronService := services.NewCronService(repositories.NewRefreshTokenRepository(db))
	cronService.Start()
	defer cronService.Stop()

	// OTP service holds pending phone challenges and expires them in the
	// background
	otpService := services.NewOTPService()
	defer otpService.Stop()

	// Watch hub fans collection change signals out to WebSocket subscribers
	hub := watch.NewHub()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PLP RushDesk API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, hub, otpService, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
