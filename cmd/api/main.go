package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/civicsafe/civicsafe-api/internal/config"
	"github.com/civicsafe/civicsafe-api/internal/domain/auth"
	"github.com/civicsafe/civicsafe-api/internal/domain/classification"
	"github.com/civicsafe/civicsafe-api/internal/domain/dashboard"
	"github.com/civicsafe/civicsafe-api/internal/domain/notification"
	"github.com/civicsafe/civicsafe-api/internal/domain/report"
	"github.com/civicsafe/civicsafe-api/internal/domain/upload"
	"github.com/civicsafe/civicsafe-api/internal/domain/user"
	"github.com/civicsafe/civicsafe-api/internal/middleware"
	"github.com/civicsafe/civicsafe-api/internal/pkg/database"
	"github.com/civicsafe/civicsafe-api/internal/pkg/email"
	"github.com/civicsafe/civicsafe-api/internal/pkg/imaging"
	"github.com/civicsafe/civicsafe-api/internal/pkg/jwt"
	"github.com/civicsafe/civicsafe-api/internal/pkg/logger"
	"github.com/civicsafe/civicsafe-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting CivicSafe API")

	ctx := context.Background()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Classification ----------
	upstream, err := newUpstream(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create classification upstream")
	}
	if upstream == nil {
		log.Warn().Msg("No classifier API key configured, classification will fall back")
	}
	classifier := classification.NewService(upstream, redis, cfg.ClassifierTimeout, cfg.ClassifierCacheTTL)

	// ---------- Tracking hub ----------
	hub := notification.NewHub(redis)
	go hub.Run()

	// ---------- Reports ----------
	policy, ok := report.PolicyByName(cfg.ReportTransitionPolicy)
	if !ok {
		log.Fatal().Str("policy", cfg.ReportTransitionPolicy).Msg("Unknown report transition policy")
	}
	reportRepo := report.NewRepository(db)
	accountRepo := user.NewRepository(db)

	reportService := report.NewService(reportRepo, policy)
	reportService.SetClassifier(classifier)

	if cfg.SendGridAPIKey != "" {
		mail := email.NewService(email.NewSendGridClient(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}))
		defer mail.Close()

		notifier := notification.NewEmailNotifier(reportRepo, accountRepo, mail, cfg.SiteURL)
		reportService.SetPublisher(report.Publishers{hub, notifier})
		reportService.SetSubmissionNotifier(notifier)
	} else {
		reportService.SetPublisher(hub)
	}

	// ---------- Accounts ----------
	authService := auth.NewService(accountRepo, jwtService)
	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure admin account")
	}

	// ---------- Evidence storage ----------
	store, err := storage.New(ctx, storage.Config{
		Driver:      cfg.StorageDriver,
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		S3PublicURL: cfg.S3PublicURL,
		LocalPath:   cfg.LocalStoragePath,
		LocalURL:    cfg.LocalStorageURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage")
	}
	checkCtx, cancelCheck := context.WithTimeout(ctx, 10*time.Second)
	if err := store.Check(checkCtx); err != nil {
		log.Warn().Err(err).Str("driver", cfg.StorageDriver).Msg("Evidence storage is not ready, uploads will fail")
	}
	cancelCheck()
	uploadService := upload.NewService(store, imaging.NewProcessor(imaging.DefaultConfig()))

	var files http.Handler
	if local, ok := store.(*storage.LocalStorage); ok {
		files = http.FileServer(http.Dir(local.BasePath()))
	}

	r := newRouter(cfg, routes{
		jwt:       jwtService,
		auth:      auth.NewHandler(authService, auth.CookieConfig{Name: cfg.SessionCookie, Secure: cfg.IsProduction()}),
		reports:   report.NewHandler(reportService),
		classify:  classification.NewHandler(classifier),
		uploads:   upload.NewHandler(uploadService),
		tracking:  notification.NewHandler(hub, reportService, cfg.AllowedOrigins),
		dashboard: dashboard.NewHandler(dashboard.NewService(reportService)),
		limits: limiters{
			tracking: middleware.NewRateLimiter(redis, "tracking", cfg.TrackingRateLimit, time.Minute),
			ai:       middleware.NewRateLimiter(redis, "ai", cfg.AIRateLimit, time.Minute),
			uploads:  middleware.NewRateLimiter(redis, "uploads", cfg.UploadRateLimit, time.Minute),
		},
		files: files,
		ping:  db.PingContext,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Shutdown()
	reportService.Wait()

	log.Info().Msg("Server exited properly")
}

// newUpstream picks the classification backend; nil means none is configured
func newUpstream(ctx context.Context, cfg *config.Config) (classification.Upstream, error) {
	switch cfg.ClassifierProvider {
	case "openrouter", "":
		if cfg.OpenRouterAPIKey == "" {
			return nil, nil
		}
		return classification.NewOpenRouterClient(classification.OpenRouterConfig{
			BaseURL:     cfg.OpenRouterBaseURL,
			APIKey:      cfg.OpenRouterAPIKey,
			Model:       cfg.OpenRouterModel,
			VisionModel: cfg.OpenRouterVisionModel,
			SiteURL:     cfg.SiteURL,
			SiteName:    cfg.SiteName,
		}), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		client, err := classification.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s", cfg.ClassifierProvider)
	}
}
