package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"property-service/internal/cache"
	"property-service/internal/config"
	"property-service/internal/events"
	"property-service/internal/handlers"
	"property-service/internal/health"
	"property-service/internal/middleware"
	"property-service/internal/models"
	"property-service/internal/repository"
	"property-service/internal/services"
	"property-service/internal/storage"
)

// @title Property Management API
// @version 1.0
// @description Back-office service for boarding houses: rooms, lease contracts, invoices and the tenant portal
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8086
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Check if running health check
	if len(os.Args) > 1 && os.Args[1] == "health" {
		// Perform a simple liveness check
		resp, err := http.Get("http://localhost:8086/livez")
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.NewConfig()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Structured logger shared by services
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Run database migrations
	if err := runMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize NATS events client (non-blocking reconnects once up)
	eventsClient, err := events.NewClient(&events.Config{URL: cfg.NATS.URL})
	if err != nil {
		log.Printf("WARNING: Failed to initialize events client: %v (events won't be published)", err)
	} else {
		log.Println("✓ NATS events client initialized")
	}

	// Initialize Redis client (graceful degradation if unavailable)
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Printf("WARNING: Failed to parse Redis URL: %v (caching disabled)", err)
		} else {
			redisClient = redis.NewClient(opt)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("WARNING: Failed to connect to Redis: %v (caching disabled)", err)
				redisClient = nil
			} else {
				log.Println("✓ Redis connection established")
			}
		}
	}

	// Upload store for ID card photos and lease PDFs
	store, err := storage.NewLocalStore(cfg.Uploads.BasePath, logger)
	if err != nil {
		log.Fatal("Failed to initialize upload store:", err)
	}

	// Initialize dependencies
	contractRepo := repository.NewContractRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	houseRepo := repository.NewHouseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	occupancyCache := cache.NewOccupancyCache(redisClient)

	contractService := services.NewContractService(contractRepo, eventsClient, occupancyCache, logger)
	invoiceService := services.NewInvoiceService(invoiceRepo, eventsClient, logger)
	authService := services.NewAuthService(credentialRepo, contractRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiryHours, logger)
	propertyService := services.NewPropertyService(houseRepo, roomRepo, occupancyCache, logger)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, contractRepo, eventsClient, logger)

	contractHandler := handlers.NewContractHandler(contractService, store)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	authHandler := handlers.NewAuthHandler(authService)
	portalHandler := handlers.NewPortalHandler(contractService, invoiceService, maintenanceService)
	propertyHandler := handlers.NewPropertyHandler(propertyService, maintenanceService)

	// Initialize health checker
	healthChecker := health.NewHealthChecker(db, cfg.App.Version)

	// Initialize Gin router
	router := setupRouter(contractHandler, invoiceHandler, authHandler, portalHandler, propertyHandler, authService, healthChecker)

	// Mark service as ready
	healthChecker.SetReady(true)

	// Start server
	serverAddr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("🚀 Property Service starting on %s", serverAddr)
	log.Printf("📚 API Documentation available at http://%s/swagger/index.html", serverAddr)
	log.Printf("🏥 Health endpoints: /health, /livez, /readyz")
	log.Printf("📊 Metrics available at http://%s/metrics", serverAddr)

	// Graceful shutdown handling
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		eventsClient.Close()
		os.Exit(0)
	}()

	if err := router.Run(serverAddr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// initializeDatabase establishes database connection
func initializeDatabase(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	dsn := dbConfig.DSN()

	// TranslateError maps driver duplicate-key errors to
	// gorm.ErrDuplicatedKey, which the services rely on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL database for ping
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}

	// Test database connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established successfully")
	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")

	// Run AutoMigrate for all models
	if err := db.AutoMigrate(
		&models.House{},
		&models.Room{},
		&models.Tenant{},
		&models.Contract{},
		&models.Credential{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
		&models.MaintenanceRequest{},
	); err != nil {
		log.Printf("⚠️  AutoMigrate warning: %v", err)
		// Don't fail - the table may already exist with slightly different schema
	}

	log.Println("✅ Database migrations completed successfully")
	return nil
}

// setupRouter configures the Gin router with middleware and routes
func setupRouter(contractHandler *handlers.ContractHandler, invoiceHandler *handlers.InvoiceHandler, authHandler *handlers.AuthHandler, portalHandler *handlers.PortalHandler, propertyHandler *handlers.PropertyHandler, authService *services.AuthService, healthChecker *health.HealthChecker) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.SetupCORS())
	router.Use(health.MetricsMiddleware()) // Prometheus metrics middleware

	// Health and observability endpoints (no auth required)
	router.GET("/health", healthChecker.HealthHandler)
	router.GET("/livez", healthChecker.LivezHandler)
	router.GET("/readyz", healthChecker.ReadyzHandler)
	router.GET("/metrics", health.MetricsHandler())

	v1 := router.Group("/api/v1")
	{
		// Tenant portal login
		v1.POST("/auth/login", authHandler.Login)

		// Back-office: houses and rooms
		houses := v1.Group("/houses")
		{
			houses.POST("", propertyHandler.CreateHouse)
			houses.GET("/:id", propertyHandler.GetHouse)
			houses.GET("/:id/occupancy", propertyHandler.GetHouseOccupancy)
		}
		rooms := v1.Group("/rooms")
		{
			rooms.POST("", propertyHandler.CreateRoom)
			rooms.GET("/:id", propertyHandler.GetRoom)
		}

		// Back-office: lease contracts
		contracts := v1.Group("/contracts")
		{
			contracts.POST("", contractHandler.CreateContract)
			contracts.GET("/:id", contractHandler.GetContract)
			contracts.PUT("/:id", contractHandler.UpdateContract)
			contracts.POST("/:id/terminate", contractHandler.TerminateContract)
		}

		// Back-office: invoices
		invoices := v1.Group("/invoices")
		{
			invoices.POST("", invoiceHandler.CreateInvoice)
			invoices.GET("/:id", invoiceHandler.GetInvoice)
			invoices.PUT("/:id/status", invoiceHandler.UpdateInvoiceStatus)
			invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
		}

		// Back-office: maintenance resolution
		v1.POST("/maintenance/:id/resolve", propertyHandler.ResolveMaintenanceRequest)

		// Tenant portal, scoped by the session token
		portal := v1.Group("/portal")
		portal.Use(middleware.TenantAuth(authService))
		{
			portal.GET("/contract", portalHandler.GetMyContract)
			portal.GET("/invoices", portalHandler.GetMyInvoices)
			portal.GET("/maintenance", portalHandler.GetMyMaintenanceRequests)
			portal.POST("/maintenance", portalHandler.FileMaintenanceRequest)
			portal.POST("/maintenance/:id/cancel", portalHandler.CancelMaintenanceRequest)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
