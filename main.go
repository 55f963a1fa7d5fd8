package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vehicle-service-server/config"
	"vehicle-service-server/database"
	"vehicle-service-server/middleware"
	"vehicle-service-server/models"
	"vehicle-service-server/routes"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security headers (must be first)
	router.Use(middleware.SecurityHeadersMiddleware())

	// Input validation
	router.Use(middleware.InputValidationMiddleware())

	// Rate limiting
	router.Use(middleware.RateLimitMiddleware())

	// CORS
	allowedOrigins := strings.Split(getEnvDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	// Audit logging
	router.Use(middleware.AuditLogMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Vehicle Service Server is running",
			"time":    time.Now().UTC(),
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		// Auth routes (no authentication required) - with strict rate limiting
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes)

		// Reference data (public)
		routes.RegisterReferenceRoutes(api)

		// Payment gateway webhook (unauthenticated; signature-verified inside)
		paymentRoutes := api.Group("/payments")
		routes.RegisterPaymentRoutes(paymentRoutes)

		// Customer surface
		customer := api.Group("")
		customer.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleCustomer))
		{
			bookingRoutes := customer.Group("/bookings")
			routes.RegisterBookingRoutes(bookingRoutes)

			vehicleRoutes := customer.Group("/vehicles")
			routes.RegisterVehicleRoutes(vehicleRoutes)
		}

		// Mechanic surface
		mechanic := api.Group("/mechanic")
		mechanic.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleMechanic))
		{
			routes.RegisterMechanicRoutes(mechanic)
			routes.RegisterProgressMediaRoutes(mechanic)
		}

		// Admin surface
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
		{
			routes.RegisterAdminRoutes(admin)
		}
	}

	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
