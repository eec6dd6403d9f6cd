package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"quest-verify-system/handlers"
	"quest-verify-system/middleware"
	"quest-verify-system/models"
	"quest-verify-system/repository"
	"quest-verify-system/services"
	"quest-verify-system/utils"
	"quest-verify-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, reading environment variables directly")
	}

	setupLogging()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logrus.Fatal("DATABASE_URL environment variable not set")
	}

	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey, which the services rely on to resolve
	// check-then-act races.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.QuestCompletion{},
		&models.LinkRecord{},
	); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database")
	}

	if err := utils.InitR2(); err != nil {
		logrus.WithError(err).Fatal("failed to initialize R2 client")
	}

	verifierURL := os.Getenv("VERIFIER_URL")
	if verifierURL == "" {
		verifierURL = "http://localhost:8080"
		logrus.Warn("VERIFIER_URL not set, using default http://localhost:8080")
	}
	verifierTimeout := 30 * time.Second
	if raw := os.Getenv("VERIFIER_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			verifierTimeout = time.Duration(secs) * time.Second
		}
	}
	verifier := services.NewVerifierClient(services.VerifierConfig{
		BaseURL: verifierURL,
		Timeout: verifierTimeout,
	})

	userRepo := repository.NewUserRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	linkRepo := repository.NewLinkRepository(db)

	questService := services.NewQuestService(userRepo, completionRepo, services.NewSignatureService(), verifier)
	linkService := services.NewLinkService(linkRepo, verifier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if utils.R2Enabled() {
		archiver := workers.NewProofArchiver(128)
		questService.Archive = archiver
		go archiver.Run(ctx)
	} else {
		logrus.Info("R2 not configured, proof archival disabled")
	}

	services.StartRegistryAudit(db)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // proofs are JSON blobs, not uploads
	})
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins(),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.SetupQuestRoutes(app, questService)
	handlers.SetupVerificationRoutes(app, linkService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()
	logrus.WithField("port", port).Info("Quest verification service listening")

	<-ctx.Done()
	logrus.Info("Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
}

func setupLogging() {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if os.Getenv("LOG_FORMAT") == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func allowedOrigins() string {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		return "http://localhost:3000"
	}
	parts := strings.Split(raw, ",")
	for i, origin := range parts {
		parts[i] = strings.TrimSpace(origin)
	}
	return strings.Join(parts, ",")
}
