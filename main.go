package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"roster-rank-system/handlers"
	"roster-rank-system/middleware"
	"roster-rank-system/models"
	"roster-rank-system/services"
	"roster-rank-system/utils"
	"roster-rank-system/workers"

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

	app := fiber.New(fiber.Config{})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
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

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Rank{},
		&models.RankTransitionRequirement{},
		&models.UserRankState{},
		&models.RankHistoryEntry{},
		&models.PromotionProposal{},
		&models.RosterUser{},
		&models.Operation{},
		&models.AttendanceRecord{},
		&models.Training{},
		&models.TrainingCompletion{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	policy := services.LoadTrainingPolicy()

	rankService := services.NewRankService(db)
	rankStateService := services.NewRankStateService(db)
	historyService := services.NewHistoryService(db)
	requirementService := services.NewRequirementService(db)
	proposalService := services.NewProposalService(db, policy)

	// --- CONFIGURE profile service sync ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("ROSTER_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("ROSTER_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	syncWorker := workers.NewRosterSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Starting Roster Sync Worker...")
		syncWorker.Start(ctx)
	}()

	if utils.R2Configured() {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		archiveWorker := workers.NewHistoryArchiveWorker(historyService, 5*time.Minute)
		archiveWorker.Start(ctx)
	} else {
		log.Println("⚠️  R2 archive env vars not set — history archive worker disabled")
	}

	proposalService.StartAutoPromotionSweep(10 * time.Minute)

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ prefix for admin
	handlers.SetupRankRoutes(app, rankService, requirementService)
	handlers.SetupMemberRoutes(app, rankStateService, historyService)
	handlers.SetupProposalRoutes(app, proposalService)
	handlers.SetupUserRoutes(app, rankStateService, historyService, proposalService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Roster Sync Worker running")
	log.Println("✅ Auto-promotion sweep running (every 10m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
