package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/voceapacientilor/vocea/internal/config"
	"github.com/voceapacientilor/vocea/internal/db"
	"github.com/voceapacientilor/vocea/internal/middleware"
	"github.com/voceapacientilor/vocea/internal/repository"
	"github.com/voceapacientilor/vocea/internal/scheduler"
	"github.com/voceapacientilor/vocea/internal/service"
	"github.com/voceapacientilor/vocea/internal/storage"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	Storage           storage.Storage
	AuthService       *service.AuthService
	SessionService    *service.SessionService
	ProfileService    *service.ProfileService
	EmailService      *service.EmailService
	PostService       *service.PostService
	ModerationService *service.ModerationService
	LegalService      *service.LegalService
	SitemapService    *service.SitemapService
	AuthRateLimit     middleware.RateStore
	Scheduler         *scheduler.Scheduler

	redis *redis.Client
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	postRepository := repository.NewPostRepository(database)
	replyRepository := repository.NewReplyRepository(database)
	attachmentRepository := repository.NewAttachmentRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Cfg:     cfg,
		DB:      database,
		Storage: fileStorage,
	}

	// Services
	a.EmailService = service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	a.AuthService = service.NewAuthService(
		userRepository,
		profileRepository,
		tokenRepository,
		a.EmailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.TokenEmailVerifyExpiry,
		cfg.TokenMagicLinkExpiry,
	)
	a.SessionService = service.NewSessionService(userRepository, profileRepository)
	a.ProfileService = service.NewProfileService(profileRepository)
	a.PostService = service.NewPostService(postRepository, replyRepository, attachmentRepository, fileStorage)
	a.ModerationService = service.NewModerationService(
		postRepository,
		attachmentRepository,
		userRepository,
		fileStorage,
		a.EmailService,
		cfg.ModerationEmails,
	)
	a.LegalService = service.NewLegalService(cfg.ContentPath)
	a.SitemapService = service.NewSitemapService(a.PostService, a.LegalService, cfg.AppURL)

	// Rate limiting: Redis when configured so limits hold across instances
	if cfg.RedisURL != "" {
		client, err := middleware.NewRedisClient(cfg.RedisURL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redis = client
		a.AuthRateLimit = middleware.NewRedisRateStore(client, "ratelimit:auth:", cfg.RateLimitAuth, cfg.RateLimitWindow)
		slog.Info("rate limiting backed by redis")
	} else {
		a.AuthRateLimit = middleware.NewMemoryRateStore(cfg.RateLimitAuth, cfg.RateLimitWindow)
	}

	a.Scheduler, err = scheduler.New(tokenRepository, cfg.TokenRetention)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	return a, nil
}

// Close releases every resource New opened. The scheduler is stopped by its owner.
func (a *App) Close() error {
	var errs []error

	if store, ok := a.AuthRateLimit.(*middleware.MemoryRateStore); ok {
		store.Close()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.Storage != nil {
		errs = append(errs, a.Storage.Close())
	}
	if a.DB != nil {
		errs = append(errs, db.Close(a.DB))
	}

	return errors.Join(errs...)
}
