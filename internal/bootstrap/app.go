package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-builder/internal/generation"
	"resume-builder/internal/llm"
	openai "resume-builder/internal/llm/openai"
	"resume-builder/internal/llm/vertex"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Redis             *redis.Client
	Store             object.ObjectStore
	LLM               llm.Completer
	Sessions          *auth.Sessions
	UsersRepo         users.Repo
	ResumesRepo       resumes.Repo
	UsersService      *users.Service
	ResumesService    *resumes.Service
	GenerationService *generation.Service
	UsersHandler      *users.Handler
	ResumesHandler    *resumes.Handler
	GenerationHandler *generation.Handler
}

// Option overrides a dependency before services are built.
type Option func(*App)

// WithLLM replaces the configured model provider.
func WithLLM(c llm.Completer) Option {
	return func(a *App) { a.LLM = c }
}

// WithStore replaces the configured object store.
func WithStore(s object.ObjectStore) Option {
	return func(a *App) { a.Store = s }
}

// Build connects dependencies and wires routes.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()
	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	if app.Store == nil {
		if app.Store, err = buildStore(ctx, cfg); err != nil {
			return nil, err
		}
	}
	if app.LLM == nil {
		if app.LLM, err = buildLLM(ctx, cfg); err != nil {
			return nil, err
		}
	}

	revocations, err := buildRevocations(app)
	if err != nil {
		return nil, err
	}
	app.Sessions, err = auth.NewSessions(cfg.JWTSecret, cfg.Env, cfg.SessionTTL, revocations)
	if err != nil {
		return nil, err
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   app.Config,
		Sessions: app.Sessions,
		Features: []server.RouteRegistrar{app.UsersHandler, app.ResumesHandler, app.GenerationHandler},
	})
	return app, nil
}

// Close releases pooled connections.
func (a *App) Close() {
	if closer, ok := a.LLM.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			telemetry.Warn("bootstrap.llm_close_failed", map[string]any{"err": err})
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" && cfg.IsDevLike() {
			telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"reason": "OPENAI_API_KEY empty"})
			return llm.PlaceholderClient{}, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "vertex":
		return vertex.NewGemini(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func buildRevocations(app *App) (auth.RevocationStore, error) {
	if strings.TrimSpace(app.Config.RedisURL) == "" {
		return auth.NewMemoryRevocations(), nil
	}
	rdb, err := auth.NewRedisClient(app.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	app.Redis = rdb
	return auth.NewRedisRevocations(rdb), nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.ResumesService = resumes.NewService(app.ResumesRepo, app.Store)
	app.GenerationService = generation.NewService(app.LLM, app.Config.GenerationTimeout)

	limit := middleware.RateLimitRule{Rate: app.Config.GenerationRate, Burst: app.Config.GenerationBurst}
	app.UsersHandler = users.NewHandler(app.UsersService, app.Sessions, app.Config.CookieSecure)
	app.ResumesHandler = resumes.NewHandler(app.ResumesService)
	app.GenerationHandler = generation.NewHandler(app.GenerationService, limit, middleware.NewRateLimiter(nil))
}
