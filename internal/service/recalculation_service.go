package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluer-api/internal/dto"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
	"github.com/noah-isme/evaluer-api/pkg/jobs"
)

type moduleRecalculator interface {
	RecalculateModuleGrade(ctx context.Context, req dto.RecalculateModuleRequest) (*dto.RecalculateResult, error)
}

// RecalculationService runs module recalculations on a background worker pool and retries
// stage failures, which the cascade itself never does.
type RecalculationService struct {
	queue    *jobs.Queue[dto.RecalculateModuleRequest]
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRecalculationService wires grades into a worker pool sized by cfg.
func NewRecalculationService(grades moduleRecalculator, validate *validator.Validate, cfg jobs.QueueConfig, logger *zap.Logger) *RecalculationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger

	svc := &RecalculationService{validate: validate, logger: logger}
	svc.queue = jobs.NewQueue("grade-recalculation", func(ctx context.Context, job jobs.Job[dto.RecalculateModuleRequest]) error {
		result, err := grades.RecalculateModuleGrade(ctx, job.Payload)
		if err != nil {
			return err
		}
		logger.Info("module recalculated",
			zap.String("job_id", job.ID),
			zap.Int64("student_id", job.Payload.StudentID),
			zap.Int64("module_id", job.Payload.ModuleID),
			zap.Float64("overall_grade", result.OverallGrade),
		)
		return nil
	}, cfg)
	return svc
}

// Start launches the workers; they stop when ctx is cancelled or Stop is called.
func (s *RecalculationService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop waits for in-flight recalculations.
func (s *RecalculationService) Stop() { s.queue.Stop() }

// Submit validates req and queues it, returning the job id.
func (s *RecalculationService) Submit(ctx context.Context, req dto.RecalculateModuleRequest) (string, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return "", appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload")
	}
	id, err := s.queue.Enqueue(req)
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			return "", appErrors.WrapAs(err, appErrors.ErrUnavailable, "recalculation queue is full")
		}
		return "", appErrors.WrapAs(err, appErrors.ErrUnavailable, "recalculation queue is not running")
	}
	return id, nil
}
