package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"edu-game-system/handlers"
	"edu-game-system/middleware"
	"edu-game-system/models"
	"edu-game-system/services"
	"edu-game-system/utils"
	"edu-game-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — catalog logos are the only uploads
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Game{},
		&models.School{},
		&models.PlayerMirror{},
		&models.LevelProgress{},
		&models.LevelRecord{},
		&models.ScoreEntry{},
		&models.DailyActivity{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	catalogService := services.NewCatalogService(db)
	sessionService := services.NewSessionService(db, catalogService)
	leaderboardService := services.NewLeaderboardService(db)
	directoryService := services.NewDirectoryService(db)

	directoryURL := os.Getenv("DIRECTORY_SERVICE_URL")
	if directoryURL == "" {
		log.Fatal("DIRECTORY_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("GAME_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("GAME_SERVICE_TOKEN environment variable not set")
	}

	syncWorker := workers.NewDirectorySyncWorker(db, directoryURL, serviceToken)
	activityRecomputer := workers.NewActivityRecomputer(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Starting Directory Sync Worker...")
		syncWorker.Start(ctx)
	}()
	go workers.PollActivity(ctx, activityRecomputer, 5*time.Minute)

	sessionService.StartMaintenanceScheduler()

	handlers.SetupSessionRoutes(app, sessionService, leaderboardService, directoryService)
	handlers.SetupCatalogRoutes(app, catalogService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Directory Sync Worker running")
	log.Println("✅ Activity recompute running (every 5m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
