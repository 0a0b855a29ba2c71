package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pgstays/pg-booking-backend/internal/config"
	"github.com/pgstays/pg-booking-backend/internal/database"
	"github.com/pgstays/pg-booking-backend/internal/handlers"
	"github.com/pgstays/pg-booking-backend/internal/middleware"
	"github.com/pgstays/pg-booking-backend/internal/models"
	"github.com/pgstays/pg-booking-backend/internal/services"
	"github.com/pgstays/pg-booking-backend/pkg/jwt"
	"github.com/pgstays/pg-booking-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting PGStays Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	ownerRepo := database.NewOwnerRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	pgRepo := database.NewPGRepository(db)
	roomRepo := database.NewRoomRepository(db)
	paymentRepo := database.NewPaymentRepository(db, logger)
	bookingRepo := database.NewBookingRepository(db.DB, roomRepo, paymentRepo, logger)
	bookingQueryRepo := database.NewBookingQueryRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	phoneValidator := validator.NewPhoneValidator()

	authService := services.NewAuthService(
		userRepo,
		ownerRepo,
		sessionRepo,
		jwtService,
		phoneValidator,
		cfg.Security.BcryptCost,
		logger,
	)
	bookingService := services.NewBookingService(bookingRepo, bookingQueryRepo, paymentRepo, cfg, logger)

	evidenceStore, err := services.NewEvidenceStore(cfg.Uploads, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Expiry sweep: ticker loop for the steady state, hourly cron as a
	// safety net.
	sweepService := services.NewExpirySweepService(
		bookingRepo,
		cfg.Booking.SweepInterval,
		cfg.Booking.SweepBatchSize,
		logger,
	)
	sweepService.Start()
	logger.Info("Expiry sweep started")

	cronService := services.NewCronService(sweepService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	pgHandler := handlers.NewPGHandler(pgRepo, roomRepo)
	ownerHandler := handlers.NewOwnerHandler(ownerRepo, pgRepo, roomRepo)
	customerBookingHandler := handlers.NewCustomerBookingHandler(bookingService)
	ownerBookingHandler := handlers.NewOwnerBookingHandler(bookingService)
	uploadHandler := handlers.NewUploadHandler(evidenceStore)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Uploaded evidence and listing photos
	router.Static(cfg.Uploads.PublicPath, evidenceStore.Dir())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.POST("/logout", authHandler.Logout)
			}
		}

		// Public listing surface
		v1.GET("/pgs", pgHandler.SearchPGs)
		v1.GET("/pgs/:id", pgHandler.GetPG)

		// Evidence and photo uploads (any authenticated user)
		uploads := v1.Group("/uploads")
		uploads.Use(middleware.AuthMiddleware(jwtService))
		{
			uploads.POST("", uploadHandler.Upload)
		}

		// Customer booking routes
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(string(models.RoleCustomer)))
		{
			bookings.POST("", customerBookingHandler.CreateBooking)
			bookings.GET("", customerBookingHandler.GetMyBookings)
			bookings.GET("/:id", customerBookingHandler.GetBooking)
			bookings.POST("/:id/payment", customerBookingHandler.SubmitPayment)
			bookings.POST("/:id/cancel", customerBookingHandler.CancelBooking)
		}

		// Owner routes
		owner := v1.Group("/owner")
		owner.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(string(models.RoleOwner)))
		{
			owner.GET("/profile", ownerHandler.GetProfile)
			owner.PUT("/profile/upi", ownerHandler.UpdateUpi)

			owner.POST("/pgs", ownerHandler.CreatePG)
			owner.GET("/pgs", ownerHandler.GetMyPGs)
			owner.POST("/pgs/:id/rooms", ownerHandler.CreateRoom)
			owner.GET("/pgs/:id/rooms", ownerHandler.GetRooms)

			owner.GET("/bookings", ownerBookingHandler.GetQueue)
			owner.POST("/bookings/:id/accept", ownerBookingHandler.AcceptBooking)
			owner.POST("/bookings/:id/reject", ownerBookingHandler.RejectBooking)
			owner.POST("/bookings/:id/confirm-refund", ownerBookingHandler.ConfirmRefund)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	cronService.Stop()
	sweepService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
