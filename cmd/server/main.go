package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"accounts-api/internal/config"
	"accounts-api/internal/handler"
	"accounts-api/internal/repository"
	"accounts-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := initLogger(cfg.Logger)

	mode, err := service.ParseMode(cfg.Ledger.Mode)
	if err != nil {
		logger.Fatalf("Invalid ledger configuration: %v", err)
	}

	db, err := initDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := repository.Migrate(context.Background(), db); err != nil {
		logger.Fatalf("Failed to apply migrations: %v", err)
	}

	store := repository.NewPostgresStore(db, logger)

	accountService := service.NewAccountService(store, logger)
	balanceService := service.NewBalanceService(store, mode, logger)

	accountHandler := handler.NewAccountHandler(accountService, logger)
	balanceHandler := handler.NewBalanceHandler(balanceService, logger)
	healthHandler := handler.NewHealthHandler(db)

	server := initServer(cfg, logger, healthHandler, accountHandler, balanceHandler)

	go func() {
		logger.WithFields(logrus.Fields{
			"port": cfg.Server.Port,
			"mode": mode,
		}).Info("Starting accounts service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func initLogger(cfg config.LoggerConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

func initDatabase(cfg config.DatabaseConfig, logger *logrus.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}

func initServer(
	cfg *config.Config,
	logger *logrus.Logger,
	healthHandler *handler.HealthHandler,
	accountHandler *handler.AccountHandler,
	balanceHandler *handler.BalanceHandler,
) *http.Server {
	router := mux.NewRouter()

	router.Handle("/health", healthHandler).Methods(http.MethodGet)

	accountRouter := router.PathPrefix("/accounts").Subrouter()
	accountHandler.RegisterRoutes(accountRouter)
	balanceHandler.RegisterRoutes(accountRouter)

	// Identity is outermost so request logging can attribute requests
	// to the gateway-injected caller.
	var h http.Handler = router
	h = handler.LoggingMiddleware(logger)(h)
	h = handler.CORSMiddleware()(h)
	h = handler.IdentityMiddleware()(h)

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
