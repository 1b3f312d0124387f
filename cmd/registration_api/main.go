package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quiz-registration-service/internal/config"
	"github.com/quiz-registration-service/internal/data/mongo"
	"github.com/quiz-registration-service/internal/data/postgres"
	"github.com/quiz-registration-service/internal/logger"
	"github.com/quiz-registration-service/internal/platform/gateway"
	"github.com/quiz-registration-service/internal/platform/persistence"
	"github.com/quiz-registration-service/internal/platform/security"
	"github.com/quiz-registration-service/internal/registration_api"
	"github.com/quiz-registration-service/internal/registration_api/service"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("registration_api")
	if err != nil {
		// logger is not initialized yet
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	if err := persistence.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
		log.Error("Failed to run PostgreSQL migrations", "error", err)
		os.Exit(1)
	}

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	enrollmentRepo := mongo.NewEnrollmentRepository(log, mongoDB.Database())
	ledgerRepo := mongo.NewLedgerRepository(log, mongoDB.Database())

	// The unique indexes back duplicate detection in the registration workflow.
	if err := enrollmentRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure enrollment indexes", "error", err)
		os.Exit(1)
	}
	if err := ledgerRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure ledger indexes", "error", err)
		os.Exit(1)
	}

	tokens := security.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	orderClient := gateway.NewOrderClient(
		log,
		cfg.PaymentGateway.BaseURL,
		cfg.PaymentGateway.KeyID,
		cfg.PaymentGateway.KeySecret,
		cfg.PaymentGateway.Currency,
		cfg.PaymentGateway.Timeout,
	)

	registrationService := service.NewRegistrationService(log, service.RegistrationDependencies{
		Accounts:    accountRepo,
		Enrollments: enrollmentRepo,
		Ledger:      ledgerRepo,
		Hasher:      security.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:      tokens,
		Verifier:    gateway.NewVerifier(cfg.PaymentGateway.KeySecret),
		Notifier:    service.NewOutboxNotifier(log, outboxRepo),
		DefaultFee:  gateway.ToMinorUnits(cfg.PaymentGateway.RegistrationFee),
	})

	server := registration_api.NewServer(log, cfg, registration_api.Services{
		Registration: registrationService,
		PaymentOrder: service.NewPaymentOrderService(log, orderClient, cfg.PaymentGateway.RegistrationFee),
		Account:      service.NewAccountService(accountRepo),
		Tokens:       tokens,
	})
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Drain in-flight registrations before closing the stores they write to.
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
