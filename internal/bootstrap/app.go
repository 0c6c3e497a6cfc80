package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"cutquote-backend/internal/analyses"
	"cutquote-backend/internal/design"
	"cutquote-backend/internal/pricing"
	"cutquote-backend/internal/quotes"
	"cutquote-backend/internal/shared/config"
	"cutquote-backend/internal/shared/server"
	"cutquote-backend/internal/shared/storage/db"
	"cutquote-backend/internal/shared/storage/object"
	localstore "cutquote-backend/internal/shared/storage/object/local"
	s3store "cutquote-backend/internal/shared/storage/object/s3"
	"cutquote-backend/internal/shared/telemetry"
	"cutquote-backend/internal/training"
)

// App holds shared dependencies and the router built from them.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	AnalysesRepo    analyses.Repo
	QuotesRepo      quotes.Repo
	TrainingRepo    training.Repo
	PricingService  *pricing.Service
	AnalysesService *analyses.Service
	QuotesService   *quotes.Service
	TrainingService *training.Service
	AnalysisHandler *analyses.Handler
	PricingHandler  *pricing.Handler
	QuoteHandler    *quotes.Handler
	TrainingHandler *training.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		DB:              app.DB,
		Pricing:         app.PricingService,
		AnalysisHandler: app.AnalysisHandler,
		PricingHandler:  app.PricingHandler,
		QuoteHandler:    app.QuoteHandler,
		TrainingHandler: app.TrainingHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
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
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err})
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

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// buildPricing loads the price model. A missing or broken model leaves the
// service running with pricing disabled.
func buildPricing(path string) *pricing.Service {
	if strings.TrimSpace(path) == "" {
		telemetry.Warn("pricing.model_unavailable", map[string]any{"reason": "PRICING_MODEL_PATH empty"})
		return pricing.NewService(nil)
	}
	model, err := pricing.LoadLinearModel(path)
	if err != nil {
		telemetry.Warn("pricing.model_unavailable", map[string]any{"path": path, "error": err})
		return pricing.NewService(nil)
	}
	telemetry.Info("pricing.model_loaded", map[string]any{
		"path":       path,
		"total_jobs": model.Metadata.TotalJobs,
		"r2_score":   model.Metadata.R2Score,
	})
	return pricing.NewService(model)
}

func buildServices(app *App) error {
	var analysisRepo analyses.Repo
	var quoteRepo quotes.Repo
	var trainingRepo training.Repo

	if app.DB != nil {
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		quoteRepo = &quotes.PGRepo{DB: app.DB}
		trainingRepo = &training.PGRepo{DB: app.DB}
	} else {
		analysisRepo = analyses.NewMemoryRepo()
		quoteRepo = quotes.NewMemoryRepo()
		trainingRepo = training.NewMemoryRepo()
	}

	pricingSvc := buildPricing(app.Config.PricingModelPath)
	analyzer := design.Analyzer{Threshold: app.Config.ClusterThresholdMM}

	app.AnalysesRepo = analysisRepo
	app.QuotesRepo = quoteRepo
	app.TrainingRepo = trainingRepo
	app.PricingService = pricingSvc
	app.AnalysesService = analyses.NewService(analysisRepo, app.Store, analyzer, pricingSvc)
	app.QuotesService = quotes.NewService(quoteRepo, pricingSvc)
	app.TrainingService = training.NewService(trainingRepo, pricingSvc)
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, app.Config.UploadLimit())
	app.PricingHandler = pricing.NewHandler(pricingSvc)
	app.QuoteHandler = quotes.NewHandler(app.QuotesService)
	app.TrainingHandler = training.NewHandler(app.TrainingService)

	if app.AnalysisHandler == nil || app.PricingHandler == nil || app.QuoteHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
