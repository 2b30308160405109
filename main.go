package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/servicebook-backend/database"
	"github.com/Ananth-NQI/servicebook-backend/internal/config"
	"github.com/Ananth-NQI/servicebook-backend/internal/jobs"
	"github.com/Ananth-NQI/servicebook-backend/internal/logger"
	"github.com/Ananth-NQI/servicebook-backend/internal/middleware"
	"github.com/Ananth-NQI/servicebook-backend/internal/routes"
	"github.com/Ananth-NQI/servicebook-backend/internal/services"
	"github.com/Ananth-NQI/servicebook-backend/internal/storage"
	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

func main() {
	// Load .env file for local development
	envLoaded := config.LoadDotEnv(".env", "environments/.env.development")

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}
	logger.Init(cfg.AppName, cfg.LogLevel)
	if !envLoaded {
		logger.Log.Info("No .env file found, using process environment")
	}

	clock := utils.SystemClock{}

	// Initialize storage
	var store storage.Store
	storageKind := "postgres"
	if cfg.UseMemoryStore {
		logger.Log.Warn("Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore(clock)
		storageKind = "memory"
	} else {
		db, err := database.Connect(cfg.DB)
		if err != nil {
			logger.Log.WithError(err).Fatal("Database unavailable")
		}
		if err := database.Migrate(db); err != nil {
			logger.Log.WithError(err).Fatal("Database migration failed")
		}
		store = storage.NewDatabaseStore(db)
	}

	// Email delivery
	var notifier services.Notifier
	if cfg.SendGridAPIKey != "" {
		notifier = services.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, cfg.SendGridSandbox)
		logger.Log.Info("Email delivery via SendGrid")
	} else {
		notifier = services.LogNotifier{}
		logger.Log.Warn("SENDGRID_API_KEY not set, emails will only be logged")
	}
	if cfg.StaffEmail == "" {
		logger.Log.Warn("STAFF_EMAIL not set, staff notifications and digest are disabled")
	}

	// Initialize all services
	dispatcher := services.NewDispatcher(notifier, cfg.NotifyTimeout)
	templates := services.NewTemplateService(cfg.EmailFromName, cfg.StaffEmail)
	area := services.NewServiceArea(cfg.ServiceableCodes)
	otpService := services.NewOTPService(services.NewCacheVerificationStore(), templates, dispatcher, clock, cfg.OTPTTL)
	bookingService := services.NewBookingService(store, otpService, area, templates, dispatcher, clock, cfg.StoreTimeout)
	staffAuth := middleware.NewStaffAuth(cfg.AdminEmail, cfg.AdminPassword, cfg.JWTSecret, cfg.JWTTTL, clock)
	if !cfg.StaffLoginEnabled() {
		logger.Log.Warn("ADMIN_EMAIL or ADMIN_PASS not set, staff login and admin routes are disabled")
	}

	// Initialize and start reminder jobs
	reminderJob := jobs.NewReminderJob(bookingService, dispatcher, templates, clock)
	if err := reminderJob.Start(cfg.ReminderDailySpec, cfg.ReminderHourlySpec); err != nil {
		logger.Log.WithError(err).Fatal("Failed to schedule reminder jobs")
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName + " v" + routes.Version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Services{
		Bookings:  bookingService,
		OTP:       otpService,
		Area:      area,
		StaffAuth: staffAuth,
		Storage:   storageKind,
	})

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Log.Info("Gracefully shutting down...")
		reminderJob.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			logger.Log.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.Log.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"storage":     storageKind,
		"serviceable": len(area.Codes()),
	}).Info("Service booking backend starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.WithError(err).Fatal("Server stopped")
	}

	// Let queued emails finish before exiting.
	dispatcher.Wait()
	logger.Log.Info("Shutdown complete")
}
