package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"volley-predict-system/handlers"
	"volley-predict-system/middleware"
	"volley-predict-system/models"
	"volley-predict-system/services"
	"volley-predict-system/utils"
	"volley-predict-system/workers"

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
		BodyLimit: 10 * 1024 * 1024, // emblem uploads only
	})

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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token",
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
		&models.Group{},
		&models.GroupMember{},
		&models.Match{},
		&models.Prediction{},
		&models.RiskyCooldown{},
		&models.GroupStanding{},
		&models.MemberProfile{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	matchRepo := services.NewMatchRepo(db)
	predictionRepo := services.NewPredictionRepo(db)
	cooldownRepo := services.NewCooldownRepo(db)
	groupRepo := services.NewGroupRepo(db)

	scorer := services.NewScoringService(predictionRepo)
	sourceClient := workers.NewSourceClient()
	reconciler := services.NewReconciler(matchRepo, scorer, sourceClient)
	sweeps := services.NewSweepService(matchRepo, groupRepo, reconciler, scorer)

	groupService := services.NewGroupService(db, reconciler)
	matchService := services.NewMatchService(db, scorer)
	predictionService := services.NewPredictionService(db, services.NewCooldownService(cooldownRepo))

	// --- CONFIGURE Profile Service details for the member mirror ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("PREDICT_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("PREDICT_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	memberSync := workers.NewMemberSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)
	memberSync.Start(ctx)

	go workers.PollStandings(ctx, db, 1*time.Minute)

	sweeps.StartLifecycleScheduler(ctx)

	// ✅ Setup routes — all behind enforced Gateway auth
	handlers.SetupGroupRoutes(app, groupService)
	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupPredictionRoutes(app, predictionService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Member Sync Worker running")
	log.Println("✅ Standings recompute running (every 1m)")
	log.Println("✅ Lifecycle scheduler running (lock 1m / sync 10m / scoring 5m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
