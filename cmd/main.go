package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cargodesk/docs/swagger"
	"cargodesk/internal/api"
	"cargodesk/internal/bot"
	"cargodesk/internal/config"
	"cargodesk/internal/db"
	"cargodesk/internal/events"
	"cargodesk/internal/models"
	"cargodesk/internal/services"
	"cargodesk/internal/tasks"
	"cargodesk/internal/tasks/rate"
	"cargodesk/internal/utils"

	console "cargodesk/internal/utils/logger"

	"github.com/joho/godotenv"
)

func main() {
	logger := console.New("cargodesk")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	console.SetLevel(console.ParseLevel(cfg.LogLevel))

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	dbInstance := db.GetDB()

	if err := models.SeedReferenceData(dbInstance); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}
	if _, err := models.EnsureCreator(dbInstance, cfg.SuperAdmin); err != nil {
		log.Fatalf("Failed to bootstrap super admin: %v", err)
	}

	// Initialize object storage
	var storage services.ObjectStorage
	if cfg.Storage.Provider != "none" {
		s3Service, err := services.NewS3Service(context.Background(), cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		models.RegisterFileURLGenerator(s3Service, cfg.Storage.SignedTTL)
		storage = s3Service
	} else {
		logger.Warn("Object storage disabled, product image uploads are unavailable")
	}

	// Task queue client, shared redis connection for throttling and bot sessions
	taskClient := tasks.NewTaskClient(cfg.Redis)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error("Failed to close task client", err)
		}
	}()

	throttle := rate.NewQueueRateLimiter(taskClient.Redis(), rate.QueueConfig{
		Name:      "otp_resend",
		RateLimit: rate.RateLimit{Window: cfg.OTP.ResendWindow, MaxJobs: cfg.OTP.ResendMax},
	})

	// Services
	tokens := utils.NewTokenIssuer(cfg.JWT)
	admins := services.NewAdminService(dbInstance, tokens)
	clients := services.NewClientService(dbInstance, tokens, taskClient, throttle, cfg.OTP)
	orders := services.NewOrderService(dbInstance)
	operations := services.NewOperationService(dbInstance)
	products := services.NewProductService(dbInstance, storage)
	catalog := services.NewCatalog(dbInstance)

	flow := bot.NewFlow(clients, orders, catalog, bot.NewRedisSessionStore(taskClient.Redis(), cfg.Bot.SessionTTL))

	// Status notifications go through the queue once the change has committed
	events.On(events.OperationCreated, func(data interface{}) {
		op, ok := data.(*models.Operation)
		if !ok || op.Status == nil {
			return
		}
		if err := taskClient.NotifyOrderStatus(context.Background(), op.OrderID, op.Status.Name); err != nil {
			logger.Warn("Failed to queue status notification for order %s: %v", op.OrderID, err)
		}
	})
	events.On(events.OrderCancelled, func(data interface{}) {
		order, ok := data.(*models.Order)
		if !ok {
			return
		}
		if err := taskClient.NotifyOrderStatus(context.Background(), order.ID, "Cancelled"); err != nil {
			logger.Warn("Failed to queue cancellation notice for order %s: %v", order.ID, err)
		}
	})

	// Initialize task server
	taskHandler := tasks.NewTaskHandler(dbInstance, services.NewMailer(cfg.SMTP), clients)
	taskServer := tasks.NewServer(cfg.Redis, cfg.Worker, taskHandler, logger)
	if err := taskServer.Start(); err != nil {
		log.Fatalf("Failed to start task server: %v", err)
	}

	// Initialize task scheduler
	taskScheduler := tasks.NewScheduler(cfg.Redis, logger)
	if err := taskScheduler.Start(); err != nil {
		log.Fatalf("Failed to start task scheduler: %v", err)
	}

	// Swagger documentation
	swagger.SwaggerInfo.Title = "Cargodesk API"
	swagger.SwaggerInfo.Description = "Back office, client and chat bot API for cargo orders"
	swagger.SwaggerInfo.Version = "1.0"
	swagger.SwaggerInfo.BasePath = "/api/v1"

	// Initialize API server
	apiServer := api.NewServer(cfg, api.Deps{
		DB:         dbInstance,
		Admins:     admins,
		Clients:    clients,
		Orders:     orders,
		Operations: operations,
		Products:   products,
		Catalog:    catalog,
		Bot:        flow,
	})
	go func() {
		logger.Success("API server started")
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown API server first so no new work arrives
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}

	// Let in-flight event handlers enqueue their tasks
	events.Drain()

	taskScheduler.Stop()
	taskServer.Shutdown()

	logger.Info("Servers shutdown gracefully")
}
