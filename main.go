package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"employee/internal/config"
	"employee/internal/handlers"
	"employee/internal/middleware"
	"employee/internal/models"
	"employee/internal/repositories"
	"employee/internal/services"
	"employee/pkg/cache"
	"employee/pkg/database"
	"employee/pkg/logger"
	"employee/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := logger.New(cfg.LogLevel)

	app, cleanup, err := newApp(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer cleanup()

	// --- Start HTTP Server ---
	log.WithField("port", cfg.AppPort).Info("Starting server")

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	log.Info("Server gracefully stopped")
}

// newApp wires the database, optional broker and cache, services and
// handlers into a Fiber app. cleanup releases the external connections.
func newApp(cfg *config.Config, log *logrus.Logger) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, cleanup, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, cleanup, err
	}

	// --- Repositories ---
	accountRepo := repositories.NewGORMAccountRepository(db)
	fieldRepo := repositories.NewGORMFormFieldRepository(db)
	employeeRepo := repositories.NewGORMEmployeeRepository(db)
	transactor := repositories.NewGORMTransactor(db)

	// --- Domain events (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, log)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() {
			if err := mqClient.Close(); err != nil {
				log.WithError(err).Warn("Error closing RabbitMQ client")
			}
		})
		events = mqClient

		if cfg.AuditConsumer {
			if err := mqClient.ConsumeEvents(rabbitmq.AuditLogger(log)); err != nil {
				log.WithError(err).Error("Failed to start audit consumer")
			}
		}
	}

	// --- Schema cache (optional) ---
	var schemaCache services.SchemaCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, schema cache disabled")
			_ = rdb.Close()
		} else {
			closers = append(closers, func() { _ = rdb.Close() })
			schemaCache = cache.NewRedisSchemaCache(rdb, cfg.SchemaCacheTTL)
		}
	}

	// --- Services ---
	authService := services.NewAuthService(accountRepo, cfg.JWTSecret, cfg.JWTTTL, log)
	fieldService := services.NewFormFieldService(fieldRepo, transactor, schemaCache, events, log)
	employeeService := services.NewEmployeeService(employeeRepo, fieldRepo, transactor, events, log)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, log)
	fieldHandler := handlers.NewFormFieldHandler(fieldService, log)
	employeeHandler := handlers.NewEmployeeHandler(employeeService, log)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": events != nil,
			"cache":  schemaCache != nil,
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService, log))
	authHandler.RegisterProfileRoutes(protectedRoutes)
	fieldHandler.RegisterRoutes(protectedRoutes)
	employeeHandler.RegisterRoutes(protectedRoutes)

	return app, cleanup, nil
}
