package main

import (
	_ "invoicable/api/swagger" // swagger docs
	"invoicable/internal/config"
	"invoicable/internal/database"
	"invoicable/internal/handler"
	"invoicable/internal/logger"
	"invoicable/internal/middleware"
	"invoicable/internal/registry"
	"invoicable/internal/render"
	"invoicable/internal/repository"
	"invoicable/internal/service"
	"invoicable/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Invoicable API
// @version         1.0
// @description     Billing and invoicing service: attach bills and invoices to domain records, accumulate tax-aware lines, download PDF receipts.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info().Msg("no configs/.env file found, using environment")
	}

	cfg := config.Load()

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("invalid log configuration")
	}

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to PostgreSQL")

	// Set up WebSocket Hub for billing events
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	docRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	txManager := repository.NewTransactionManager(db)

	records := registry.New()
	service.RegisterRecords(records, customerRepo, productRepo)

	renderer, err := render.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse receipt templates")
	}
	converter := render.NewWkhtmltopdfConverter(cfg.WkhtmltopdfPath)

	invoiceService := service.NewInvoiceService(cfg, docRepo, auditRepo, records, txManager, renderer, converter, wsHub, logger.WithComponent("invoices"))
	billService := service.NewBillService(cfg, docRepo, auditRepo, records, txManager, renderer, converter, wsHub, logger.WithComponent("bills"))
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	invoiceHandler := handler.NewDocumentHandler(invoiceService, "invoices")
	billHandler := handler.NewDocumentHandler(billService, "bills")
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket billing events feed
	secret := []byte(cfg.JWTSecret)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	// Register API Routes
	auth := middleware.RequireAuth(secret)
	invoiceHandler.RegisterRoutes(router.Group(""), auth)
	billHandler.RegisterRoutes(router.Group(""), auth)
	auditHandler.RegisterRoutes(router.Group(""), auth)

	log.Info().Str("port", cfg.Port).Msg("server listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
