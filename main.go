package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"agent-arena/handlers"
	"agent-arena/models"
	"agent-arena/services"
	"agent-arena/utils"
	"agent-arena/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, turn payloads are JSON
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.GameType{},
		&models.Agent{},
		&models.Match{},
		&models.Participation{},
		&models.AgentCommitment{},
		&models.TurnLog{},
		&models.StatsEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	// Optional Redis mirror for rankings. The service degrades to DB-only
	// reads when the address is absent.
	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("⚠️  Redis unreachable at %s, continuing without rank mirror: %v", addr, err)
			rdb = nil
		}
	}

	gameTypeService := services.NewGameTypeService(db)
	if err := gameTypeService.SeedDefaults(); err != nil {
		log.Fatal("failed to seed game type catalog:", err)
	}

	authService := services.NewAuthService(db, jwtSecret, 24*time.Hour)
	agentService := services.NewAgentService(db)
	statsService := services.NewStatsService(db, rdb)
	matchService := services.NewMatchService(db, statsService, envDuration("MATCH_LOCK_WAIT", 2*time.Second))
	turnService := services.NewTurnService(db, matchService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Completed-match archival runs only when R2 credentials are present.
	r2Enabled, err := utils.InitR2()
	if err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}
	if r2Enabled {
		archiveWorker := workers.NewArchiveWorker(db, envInt("ARCHIVE_QUEUE_SIZE", 64))
		matchService.ArchiveQueue = archiveWorker.Queue()
		go archiveWorker.Run(ctx)
	} else {
		log.Println("⚠️  R2 credentials not set, match archival disabled")
	}

	matchService.StartMaintenanceScheduler(statsService, envDuration("MATCH_PENDING_TTL", 24*time.Hour))

	handlers.SetupAuthRoutes(app, authService, jwtSecret)
	handlers.SetupAgentRoutes(app, agentService, gameTypeService, jwtSecret)
	handlers.SetupMatchRoutes(app, matchService, turnService, jwtSecret)
	handlers.SetupStatsRoutes(app, statsService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Maintenance scheduler running (stale sweep, archive retry, hourly stats rebuild)")
	if r2Enabled {
		log.Println("✅ Match archival worker running")
	}
	if rdb != nil {
		log.Println("✅ Redis rank mirror enabled")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("⚠️  Invalid duration in %s, using default %s", key, fallback)
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("⚠️  Invalid integer in %s, using default %d", key, fallback)
	}
	return fallback
}
