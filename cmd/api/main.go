package main

import (
	"context"
	"log"
	"os"
	"time"

	_ "reception/api/swagger" // swagger docs
	"reception/internal/database"
	"reception/internal/handler"
	"reception/internal/middleware"
	"reception/internal/repository"
	"reception/internal/service"
	"reception/internal/websocket"
	"reception/pkg/cache"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Reception Booking API
// @version         1.0
// @description     Booking and reception management API with dual-identity authentication.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "reception"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub for the live activity feed
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Custom-user sessions are cached to keep the per-request identity lookup
	// off the database.
	sessions := cache.New(5*time.Minute, 1000)

	// Set up dependencies (Repository -> Service -> Handler)
	adminRepo := repository.NewAdminUserRepository(db)
	customUserRepo := repository.NewCustomUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	txManager := repository.NewTransactionManager(db)

	activityService := service.NewActivityService(activityRepo, wsHub)
	authService := service.NewAuthService(adminRepo, customUserRepo, tokenRepo, activityService)
	customUserService := service.NewCustomUserService(customUserRepo, activityService, sessions)
	bookingService := service.NewBookingService(bookingRepo, txManager, activityService)
	reportService := service.NewReportService(bookingRepo, activityService)

	seedAdmin(authService)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(customUserService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	activityHandler := handler.NewActivityHandler(activityService)
	reportHandler := handler.NewReportHandler(reportService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Every request resolves its identity from cookies; failures degrade to
	// an anonymous actor, endpoints gate access themselves.
	router.Use(middleware.ResolveIdentity(adminRepo, customUserRepo, sessions))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for the admin live activity feed
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	authHandler.RegisterRoutes(root)
	userHandler.RegisterRoutes(root)
	bookingHandler.RegisterRoutes(root)
	activityHandler.RegisterRoutes(root)
	reportHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// seedAdmin provisions the first administrative account when the admin table
// is empty. Credentials come from the environment so no default password
// ships in the binary.
func seedAdmin(authService service.AuthService) {
	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := authService.EnsureSeedAdmin(ctx, username, email, password); err != nil {
		log.Printf("Admin seeding failed: %v", err)
	}
}
