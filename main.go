package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/george11642/BlackPill-sub000/handlers"
	"github.com/george11642/BlackPill-sub000/middleware"
	"github.com/george11642/BlackPill-sub000/models"
	"github.com/george11642/BlackPill-sub000/services"
	"github.com/george11642/BlackPill-sub000/utils"
	"github.com/george11642/BlackPill-sub000/workers"

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
		BodyLimit: 20 * 1024 * 1024, // selfie uploads
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
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
		&models.Analysis{},
		&models.UserAchievement{},
		&models.Goal{},
		&models.Milestone{},
		&models.Referral{},
		&models.ReferralCode{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	visionService := services.NewVisionService()
	achievementService := services.NewAchievementService(db)
	goalService := services.NewGoalService(db, achievementService)
	referralService := services.NewReferralService(db, achievementService)
	moderationService := services.NewModerationService()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Leaderboard ranking lives in an external service; we only poll it for
	// achievement triggers.
	leaderboardURL := os.Getenv("LEADERBOARD_SERVICE_URL")
	serviceToken := os.Getenv("ANALYSIS_SERVICE_TOKEN")
	if leaderboardURL != "" {
		leaderboardWorker := workers.NewLeaderboardSyncWorker(achievementService, leaderboardURL, serviceToken)
		go func() {
			log.Println("Starting Leaderboard Sync Worker...")
			leaderboardWorker.Start(ctx)
		}()
	} else {
		log.Println("⚠️  LEADERBOARD_SERVICE_URL not set — leaderboard achievements disabled")
	}

	achievementService.StartStreakScheduler()

	handlers.SetupAnalysisRoutes(app, visionService, achievementService, goalService)
	handlers.SetupAchievementRoutes(app, achievementService, referralService)
	handlers.SetupGoalRoutes(app, goalService, moderationService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Streak scheduler running (daily)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
