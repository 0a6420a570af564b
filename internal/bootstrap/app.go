package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/extract"
	"outreach-backend/internal/generations"
	"outreach-backend/internal/llm"
	"outreach-backend/internal/llm/gemini"
	"outreach-backend/internal/llm/openai"
	"outreach-backend/internal/outreach"
	"outreach-backend/internal/payments"
	"outreach-backend/internal/profiles"
	"outreach-backend/internal/services/health"
	"outreach-backend/internal/shared/auth"
	"outreach-backend/internal/shared/config"
	"outreach-backend/internal/shared/server"
	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/storage/db"
	"outreach-backend/internal/shared/storage/object"
	localstore "outreach-backend/internal/shared/storage/object/local"
	s3store "outreach-backend/internal/shared/storage/object/s3"
	"outreach-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	LLM      llm.Client
	Verifier auth.Verifier

	ProfilesRepo    profiles.Repo
	GenerationsRepo generations.Repo
	PaymentsRepo    payments.Repo

	ProfilesService    *profiles.Service
	GenerationsService *generations.Service
	PaymentsService    *payments.Service
	OutreachService    *outreach.Service
}

// Option overrides a dependency Build would otherwise construct.
type Option func(*App)

// WithLLM replaces the configured provider client.
func WithLLM(client llm.Client) Option {
	return func(a *App) { a.LLM = client }
}

// WithDB uses an already opened database instead of DATABASE_URL.
func WithDB(sqlDB *sql.DB) Option {
	return func(a *App) { a.DB = sqlDB }
}

// Build prepares every dependency and wires the router.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	if app.DB == nil {
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.DB = sqlDB
	}

	store, err := BuildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store

	if app.LLM == nil {
		client, err := buildLLM(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.LLM = client
	}

	verifier, err := buildVerifier(cfg)
	if err != nil {
		return nil, err
	}
	app.Verifier = verifier

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Verifier:          app.Verifier,
		Health:            health.NewService(pinger(app.DB)),
		OutreachHandler:   outreach.NewHandler(app.OutreachService),
		ProfilesHandler:   profiles.NewHandler(app.ProfilesService),
		GenerationHandler: generations.NewHandler(app.GenerationsService),
		PaymentsHandler:   payments.NewHandler(app.PaymentsService),
		ExtractHandler:    extract.NewHandler(),
		RateLimiter:       middleware.NewRateLimiter(nil),
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

// BuildStore returns the object store selected by OBJECT_STORE.
func BuildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return gemini.NewClient(ctx, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	case config.ProviderOpenAI, "":
		return openai.NewClient(openai.Options{
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
			Timeout: cfg.LLMTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func buildVerifier(cfg config.Config) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeRemote:
		if cfg.AuthUserinfoURL == "" {
			return nil, errors.New("AUTH_USERINFO_URL is required for remote auth")
		}
		return &auth.RemoteVerifier{
			URL:    cfg.AuthUserinfoURL,
			APIKey: cfg.AuthAPIKey,
			Admins: cfg.AdminUserIDs,
		}, nil
	default:
		return auth.NewJWTVerifier(cfg.AuthJWTSecret, cfg.AdminUserIDs)
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.ProfilesRepo = &profiles.PGRepo{DB: app.DB}
		app.GenerationsRepo = &generations.PGRepo{DB: app.DB}
		app.PaymentsRepo = &payments.PGRepo{DB: app.DB}
	} else {
		app.ProfilesRepo = profiles.NewMemoryRepo()
		app.GenerationsRepo = generations.NewMemoryRepo()
		app.PaymentsRepo = payments.NewMemoryRepo()
	}

	app.ProfilesService = profiles.NewService(app.ProfilesRepo, app.Config.FreeCredits, app.Config.ProfileAutoProvision)
	app.GenerationsService = generations.NewService(app.GenerationsRepo)
	app.PaymentsService = payments.NewService(app.PaymentsRepo, app.Store, app.ProfilesService)
	app.OutreachService = outreach.NewService(app.ProfilesService, app.LLM, app.GenerationsService)
}

func pinger(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}
