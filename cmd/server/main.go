// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard/internal/common/auth"
	"jobboard/internal/common/aws"
	"jobboard/internal/common/config"
	"jobboard/internal/common/database"
	"jobboard/internal/common/genai"
	"jobboard/internal/common/logger"
	"jobboard/internal/common/observability"
	"jobboard/internal/common/storage"
	"jobboard/internal/handlers"
	"jobboard/internal/services/admin"
	"jobboard/internal/services/analysis"
	"jobboard/internal/services/applications"
	"jobboard/internal/services/candidates"
	"jobboard/internal/services/jobs"
	"jobboard/internal/services/matchscore"
	"jobboard/internal/services/notifications"
	"jobboard/internal/services/recruiters"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// disabledSES stands in when SES is switched off so the service layer still
// has something to call; every send errors.
type disabledSES struct{}

func (disabledSES) SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return nil, fmt.Errorf("ses is disabled")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting server...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Postgres with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}

	// --- Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis unavailable", zap.Error(err))
	}
	defer redisClient.Close()

	// --- File storage ---
	store := storage.NewLocalStorage(cfg.Storage.Root, cfg.Storage.BaseURL)

	// --- External clients ---
	genaiClient := genai.NewClient(
		cfg.APIs.GenAI.BaseURL,
		cfg.APIs.GenAI.APIKey,
		cfg.APIs.GenAI.Model,
		config.GetDuration(cfg.APIs.GenAI.Timeout),
		log,
	)

	var sesAPI notifications.SESAPI
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client setup failed", zap.Error(err))
		}
		sesAPI = sesClient
	} else {
		zapLog.Warn("SES disabled, job alert emails will fail")
		sesAPI = disabledSES{}
	}

	authAdmin := auth.NewAdminClient(
		cfg.Auth.Admin.BaseURL,
		cfg.Auth.Admin.Realm,
		cfg.Auth.Admin.ClientID,
		cfg.Auth.Admin.ClientSecret,
	)

	// --- Services ---
	candidateSvc := candidates.NewService(pg.DB, store, log)

	h := &handlers.Handler{
		Applications:  applications.NewService(pg.DB, store, log),
		Jobs:          jobs.NewService(pg.DB, log),
		Recruiters:    recruiters.NewService(pg.DB, store, log),
		Candidates:    candidateSvc,
		MatchScore:    matchscore.NewService(pg.DB, matchscore.NewRedisCache(redisClient.Client), genaiClient, log),
		Analysis:      analysis.NewService(pg.DB, genaiClient, candidateSvc, log),
		Admin:         admin.NewService(pg.DB, authAdmin, log),
		Notifications: notifications.NewService(pg.DB, sesAPI, cfg.Integrations.AWS.SES.FromEmail, log),
		Obs:           obs,
		Logger:        log,
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(h)
	router.Static("/files", cfg.Storage.Root)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("forced shutdown", zap.Error(err))
	}
	zapLog.Info("Server stopped")
}
