package main

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluer-api/internal/repository"
	"github.com/noah-isme/evaluer-api/internal/service"
	"github.com/noah-isme/evaluer-api/pkg/cache"
	"github.com/noah-isme/evaluer-api/pkg/config"
	"github.com/noah-isme/evaluer-api/pkg/database"
	"github.com/noah-isme/evaluer-api/pkg/jobs"
	"github.com/noah-isme/evaluer-api/pkg/weights"
)

// app holds the process-wide dependencies, built once at start-up.
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	db          *sqlx.DB
	redis       *redis.Client
	cacheRepo   *repository.CacheRepository
	metrics     *service.MetricsService
	tokens      *service.TokenService
	weights     *service.WeightProvider
	calc        *service.GradingCalculator
	validate    *validator.Validate
	grades      *service.GradeService
	transcripts *service.TranscriptService
	recalc      *service.RecalculationService
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	weightsCfg, err := weights.Load(cfg.Grading.WeightsConfigPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("grade cache disabled, redis unavailable", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logger)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logger, cfg.Cache.Enabled && redisClient != nil)

	responses := repository.NewResponseGradeRepository(db, metrics)
	assignments := repository.NewAssignmentGradeRepository(db, metrics)
	modules := repository.NewModuleGradeRepository(db, metrics)
	subjects := repository.NewSubjectGradeRepository(db, metrics)
	overall := repository.NewOverallGradeRepository(db, metrics)

	validate := validator.New()
	weightProvider := service.NewWeightProvider(weightsCfg)
	calc := service.NewGradingCalculator(cfg.Grading.BaseScore, cfg.Grading.MinimumScore)
	grades := service.NewGradeService(
		service.GradeStores{Responses: responses, Assignments: assignments, Modules: modules, Subjects: subjects, Overall: overall},
		weightProvider,
		calc,
		cacheSvc,
		metrics,
		validate,
		logger,
	)
	transcripts := service.NewTranscriptService(
		service.TranscriptSources{Responses: responses, Assignments: assignments, Modules: modules, Subjects: subjects, Overall: overall},
		cacheSvc,
		logger,
	)

	recalc := service.NewRecalculationService(grades, validate, jobs.QueueConfig{
		Workers:    cfg.Recalc.Workers,
		BufferSize: cfg.Recalc.QueueSize,
		MaxRetries: cfg.Recalc.MaxRetries,
		RetryDelay: cfg.Recalc.RetryDelay,
	}, logger)

	logger.Info("grading configured",
		zap.String("weights", cfg.Grading.WeightsConfigPath),
		zap.Int("subjects", len(weightProvider.SubjectWeights())),
		zap.Float64("base_score", calc.BaseScore()),
		zap.Float64("minimum_score", calc.MinimumScore()),
		zap.Bool("cache", cacheSvc.Enabled()),
	)

	return &app{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		redis:       redisClient,
		cacheRepo:   cacheRepo,
		metrics:     metrics,
		tokens:      service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Expiration: cfg.JWT.Expiration}),
		weights:     weightProvider,
		calc:        calc,
		validate:    validate,
		grades:      grades,
		transcripts: transcripts,
		recalc:      recalc,
	}, nil
}

// Start launches background workers bound to ctx.
func (a *app) Start(ctx context.Context) {
	a.recalc.Start(ctx)
}

// Close drains the workers and releases the database and Redis connections.
func (a *app) Close() {
	a.recalc.Stop()
	if err := a.cacheRepo.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
}
