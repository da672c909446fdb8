package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/axssiz/ParfumeProject/config"
	"github.com/axssiz/ParfumeProject/internal/delivery"
	"github.com/axssiz/ParfumeProject/internal/repository"
	"github.com/axssiz/ParfumeProject/internal/usecase"
	"github.com/axssiz/ParfumeProject/pkg/db"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting Order Service...")

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to open primary store handle: %v", err)
	}
	defer database.Close()

	// A dead primary at boot is not fatal: the service starts in degraded
	// mode and fails over per call until the primary comes back.
	if err := database.Ping(); err != nil {
		logger.Warnf("Primary store unreachable at startup, serving in degraded mode: %v", err)
	} else {
		if err := repository.InitOrderSchema(database); err != nil {
			logger.Fatalf("Failed to initialize order schema: %v", err)
		}
		if err := repository.InitCartSchema(database); err != nil {
			logger.Fatalf("Failed to initialize cart schema: %v", err)
		}
		logger.Info("Primary store connection established.")
	}

	// --- Dependency Injection ---
	primaryStore := repository.NewPostgresOrderStore(database, cfg.QueryTimeout, logger)
	fallbackStore := repository.NewFileOrderStore(cfg.FallbackOrdersFile, cfg.FallbackEventsFile, logger)
	cartSnapshot := repository.NewPostgresCartSnapshot(database, cfg.QueryTimeout, logger)
	logger.Info("Stores initialized.")

	guard := usecase.NewGuard(logger)
	orderService := usecase.NewOrderService(primaryStore, fallbackStore, cartSnapshot, guard, logger)
	logger.Info("Use cases initialized.")

	orderHandler := delivery.NewOrderHandler(orderService, logger)
	logger.Info("Handlers initialized.")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(delivery.RequestLogger(logger))
	router.Use(delivery.IdentityMiddleware(logger))
	orderHandler.RegisterRoutes(router)
	logger.Info("Routes registered.")

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Errorf("Failed to start server on port %s: %v", cfg.Port, err)
		os.Exit(1)
	}
}
