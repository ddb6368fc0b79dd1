package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/credisul/credisul-api/docs" // Swagger docs
	"github.com/credisul/credisul-api/internal/config"
	"github.com/credisul/credisul-api/internal/database"
	"github.com/credisul/credisul-api/internal/handlers"
	"github.com/credisul/credisul-api/internal/jobs"
	"github.com/credisul/credisul-api/internal/middleware"
	"github.com/credisul/credisul-api/internal/models"
	"github.com/credisul/credisul-api/internal/repository"
	"github.com/credisul/credisul-api/internal/services"
	"github.com/credisul/credisul-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Credisul API
// @version 1.0
// @description REST API for Credisul Loan Servicing
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, cfg, db)

	// Schedule recurring servicing sweeps
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg, worker)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config, worker *jobs.Worker) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Customers
			protected.GET("/customers", h.Customer.Index)
			protected.POST("/customers", h.Customer.Create)
			protected.GET("/customers/:customer_id", h.Customer.Show)
			protected.PUT("/customers/:customer_id", h.Customer.Update)
			protected.GET("/customers/:customer_id/loans", h.Loan.ByCustomer)

			// Loan products
			protected.GET("/products", h.Product.Index)

			// Loans
			protected.GET("/loans", h.Loan.Index)
			protected.POST("/loans", h.Loan.Create)
			protected.GET("/loans/:loan_id", h.Loan.Show)
			protected.GET("/loans/:loan_id/summary", h.Loan.Summary)
			protected.GET("/loans/:loan_id/notes", h.Loan.Notes)
			protected.GET("/loans/:loan_id/export", h.Loan.Export)
			protected.POST("/loans/:loan_id/generate_installments", h.Loan.GenerateInstallments)
			protected.POST("/loans/:loan_id/renegotiation/propose", h.Renegotiation.Propose)
			protected.POST("/loans/:loan_id/renegotiation/confirm", h.Renegotiation.Confirm)

			// Installments
			protected.GET("/installments", h.Installment.Index)
			protected.GET("/installments/:installment_id", h.Installment.Show)
			protected.GET("/installments/:installment_id/notes", h.Installment.Notes)

			// Invoices
			protected.GET("/invoices", h.Invoice.Index)
			protected.GET("/invoices/:invoice_id", h.Invoice.Show)

			// Servicing operations (operators and admins)
			ops := protected.Group("")
			ops.Use(middleware.RequireRole(models.RoleAdmin, models.RoleOperator))
			{
				ops.POST("/installments/:installment_id/pay", h.Installment.RegisterPayment)
				ops.POST("/installments/:installment_id/pay_partial", h.Installment.RegisterPartialPayment)
				ops.POST("/installments/:installment_id/invoice", h.Invoice.Create)
				ops.POST("/invoices/batch", h.Invoice.CreateBatch)
				ops.POST("/invoices/:invoice_id/pay", h.Invoice.RegisterPayment)
			}

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/loans/:loan_id/refinance", h.Renegotiation.Refinance)
				admin.POST("/loans/:loan_id/mark_defaulted", h.Loan.MarkDefaulted)
				admin.POST("/invoices/:invoice_id/cancel", h.Invoice.Cancel)
				admin.POST("/products", h.Product.Create)
				admin.PUT("/products/:product_id", h.Product.Update)
				admin.GET("/jobs/stats", func(c *gin.Context) {
					c.JSON(http.StatusOK, worker.GetStats())
				})
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Sweep invoice payments onto installments
	worker.ScheduleEveryImmediate("invoice reconciliation",
		time.Duration(cfg.ReconcileIntervalMinutes)*time.Minute,
		func(ctx context.Context) error {
			return svcs.Invoicing.ReconcileInvoicePayments(ctx)
		})

	// Keep loan and installment statuses in line with the calendar
	worker.ScheduleEveryImmediate("loan status refresh",
		time.Duration(cfg.LoanRefreshIntervalMinutes)*time.Minute,
		func(ctx context.Context) error {
			if err := svcs.Installment.RefreshStatuses(ctx); err != nil {
				return err
			}
			return svcs.Loan.RefreshLoanStatuses(ctx)
		})

	logger.Info("Scheduled recurring jobs")
}
