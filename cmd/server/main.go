package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedback_reminder_service/internal/app"
	"feedback_reminder_service/internal/infra/auth"
	"feedback_reminder_service/internal/infra/config"
	idb "feedback_reminder_service/internal/infra/database"
	"feedback_reminder_service/internal/infra/httpapi"
	"feedback_reminder_service/internal/infra/logger"
	"feedback_reminder_service/internal/infra/scheduler"

	"github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("Feedback Reminder Service starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":       cfg.Environment,
		"reminder_interval": cfg.ReminderInterval.String(),
		"port":              cfg.Port,
	}).Info("Configuration loaded")

	// Initialize Database Connection
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := idb.NewPostgresConnection(connectCtx, cfg.DatabaseURL)
	cancelConnect()
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully")

	if cfg.AutoMigrate {
		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
		err = idb.EnsureSchema(migrateCtx, db)
		cancelMigrate()
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not apply schema")
		}
		mainLogger.Info("Schema is up to date")
	}

	// Initialize Repositories
	feedbackRepo := idb.NewPostgresFeedbackRepository(db)
	reminderRepo := idb.NewPostgresReminderRepository(db)
	reminderStore := idb.NewPostgresReminderStore(db)

	// Initialize Services
	feedbackService := app.NewFeedbackService(feedbackRepo, reminderRepo, logger.Component("feedback"))
	generator := app.NewReminderGenerator(reminderStore, logger.Component("reminder_generator"))

	// Initialize ReminderScheduler
	reminderScheduler := scheduler.NewReminderScheduler(
		generator,
		logger.Component("scheduler"),
		cfg.ReminderInterval,
		cfg.ReminderRunTimeout,
	)
	if err := reminderScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start reminder scheduler")
	}
	if cfg.ReminderRunOnStart {
		reminderScheduler.TriggerNow()
	}

	// HTTP surface
	httpLogger := logger.Component("http")
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	router := httpapi.NewRouter(httpapi.NewFeedbackHandler(feedbackService, httpLogger), verifier, db, httpLogger)
	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           httpapi.WithCORS(router, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		mainLogger.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		mainLogger.WithField("signal", sig.String()).Info("Shutting down application...")
	case err := <-serverErr:
		mainLogger.WithError(err).Error("HTTP server failed, shutting down")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	reminderScheduler.Stop()
	// db.Close() is handled by defer
	mainLogger.Info("Application shut down gracefully")
}
