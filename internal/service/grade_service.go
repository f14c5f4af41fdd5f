package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/noah-isme/evaluer-api/internal/dto"
	"github.com/noah-isme/evaluer-api/internal/models"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
)

const (
	gradeTracerName     = "github.com/noah-isme/evaluer-api/internal/service"
	invalidationTimeout = 3 * time.Second
)

// Cascade stage names, used for spans, metrics and logs.
const (
	StageResponse   = "response"
	StageAssignment = "assignment"
	StageModule     = "module"
	StageSubject    = "subject"
	StageOverall    = "overall"
)

// ResponseGradeStore persists leaf grades.
type ResponseGradeStore interface {
	Upsert(ctx context.Context, studentID, responseID, assignmentID int64, grade float64) error
	ListForAssignment(ctx context.Context, assignmentID, studentID int64) ([]models.ResponseGrade, error)
	GetGrade(ctx context.Context, studentID, assignmentID, responseID int64) (float64, error)
}

// AssignmentGradeStore persists assignment aggregates.
type AssignmentGradeStore interface {
	Upsert(ctx context.Context, studentID, assignmentID, moduleID int64, grade float64) error
	ListForModule(ctx context.Context, moduleID, studentID int64) ([]models.AssignmentGrade, error)
	GetGrade(ctx context.Context, studentID, assignmentID int64) (float64, error)
}

// ModuleGradeStore persists module aggregates.
type ModuleGradeStore interface {
	Upsert(ctx context.Context, studentID, moduleID, subjectID int64, grade float64) error
	ListForSubject(ctx context.Context, subjectID, studentID int64) ([]models.ModuleGrade, error)
	GetGrade(ctx context.Context, studentID, moduleID int64) (float64, error)
}

// SubjectGradeStore persists subject aggregates.
type SubjectGradeStore interface {
	Upsert(ctx context.Context, studentID, subjectID int64, grade float64) error
	ListForStudent(ctx context.Context, studentID int64) ([]models.SubjectGrade, error)
	GetGrade(ctx context.Context, studentID, subjectID int64) (float64, error)
}

// OverallGradeStore persists the per-student overall grade.
type OverallGradeStore interface {
	Upsert(ctx context.Context, studentID int64, grade float64) error
	Get(ctx context.Context, studentID int64) (float64, error)
}

// GradeStores groups one store per hierarchy level.
type GradeStores struct {
	Responses   ResponseGradeStore
	Assignments AssignmentGradeStore
	Modules     ModuleGradeStore
	Subjects    SubjectGradeStore
	Overall     OverallGradeStore
}

type weightLookup interface {
	WeightsForItems(level models.WeightLevel, ids []int64) (map[int64]float64, error)
}

// GradeService writes leaf grades and recomputes every ancestor bottom-up.
// Each stage commits on its own; a failing stage leaves earlier stages committed and later ones unrun.
// Concurrent cascades over the same student are not serialized, the last writer wins.
type GradeService struct {
	stores    GradeStores
	weights   weightLookup
	calc      *GradingCalculator
	cache     *CacheService
	metrics   *MetricsService
	tracer    trace.Tracer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs GradeService. cache and metrics may be nil.
func NewGradeService(stores GradeStores, weights weightLookup, calc *GradingCalculator, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if calc == nil {
		calc = NewGradingCalculator(DefaultBaseScore, DefaultMinimumScore)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		stores:    stores,
		weights:   weights,
		calc:      calc,
		cache:     cache,
		metrics:   metrics,
		tracer:    otel.Tracer(gradeTracerName),
		validator: validate,
		logger:    logger,
	}
}

// UpdateResponseGrade stores a response grade and cascades it to the assignment, module, subject and overall grades.
func (s *GradeService) UpdateResponseGrade(ctx context.Context, req dto.UpdateResponseGradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload")
	}
	defer s.invalidate(ctx, req.StudentID)

	err := s.runStage(ctx, StageResponse, req.StudentID, func(ctx context.Context) error {
		return s.stores.Responses.Upsert(ctx, req.StudentID, req.ResponseID, req.AssignmentID, req.NewGrade)
	})
	if err != nil {
		return stageError(StageResponse, err)
	}

	if _, err := s.recomputeAssignment(ctx, req.StudentID, req.AssignmentID, req.ModuleID); err != nil {
		return err
	}
	_, err = s.cascadeFromModule(ctx, req.StudentID, req.ModuleID, req.SubjectID)
	return err
}

// SetAssignmentGradeBypass overwrites an assignment grade directly. It neither reads the assignment's
// responses nor recomputes the module, subject or overall grades, which stay stale until the next
// cascade through this assignment or a RecalculateModuleGrade call.
func (s *GradeService) SetAssignmentGradeBypass(ctx context.Context, req dto.SetAssignmentGradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload")
	}
	defer s.invalidate(ctx, req.StudentID)

	s.logger.Warn("assignment grade written through cascade bypass",
		zap.Int64("student_id", req.StudentID),
		zap.Int64("assignment_id", req.AssignmentID),
		zap.Int64("module_id", req.ModuleID),
		zap.Float64("grade", req.Grade),
	)
	if err := s.stores.Assignments.Upsert(ctx, req.StudentID, req.AssignmentID, req.ModuleID, req.Grade); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to set assignment grade")
	}
	return nil
}

// RecalculateModuleGrade re-runs the module, subject and overall stages from the stored assignment grades.
func (s *GradeService) RecalculateModuleGrade(ctx context.Context, req dto.RecalculateModuleRequest) (*dto.RecalculateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload")
	}
	defer s.invalidate(ctx, req.StudentID)

	return s.cascadeFromModule(ctx, req.StudentID, req.ModuleID, req.SubjectID)
}

func (s *GradeService) cascadeFromModule(ctx context.Context, studentID, moduleID, subjectID int64) (*dto.RecalculateResult, error) {
	result := &dto.RecalculateResult{}
	var err error
	if result.ModuleGrade, err = s.recomputeModule(ctx, studentID, moduleID, subjectID); err != nil {
		return nil, err
	}
	if result.SubjectGrade, err = s.recomputeSubject(ctx, studentID, subjectID); err != nil {
		return nil, err
	}
	if result.OverallGrade, err = s.recomputeOverall(ctx, studentID); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GradeService) recomputeAssignment(ctx context.Context, studentID, assignmentID, moduleID int64) (float64, error) {
	var grade float64
	err := s.runStage(ctx, StageAssignment, studentID, func(ctx context.Context) error {
		rows, err := s.stores.Responses.ListForAssignment(ctx, assignmentID, studentID)
		if err != nil {
			return err
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].ResponseID < rows[j].ResponseID })
		responses := make([]float64, len(rows))
		for i, row := range rows {
			responses[i] = row.Grade
		}
		grade = s.calc.AssignmentGrade(responses)
		return s.stores.Assignments.Upsert(ctx, studentID, assignmentID, moduleID, grade)
	})
	if err != nil {
		return 0, stageError(StageAssignment, err)
	}
	return grade, nil
}

func (s *GradeService) recomputeModule(ctx context.Context, studentID, moduleID, subjectID int64) (float64, error) {
	var grade float64
	err := s.runStage(ctx, StageModule, studentID, func(ctx context.Context) error {
		rows, err := s.stores.Assignments.ListForModule(ctx, moduleID, studentID)
		if err != nil {
			return err
		}
		grades := make(map[int64]float64, len(rows))
		for _, row := range rows {
			grades[row.AssignmentID] = row.Grade
		}
		if grade, err = s.weightedAverage(models.WeightLevelExercise, grades); err != nil {
			return err
		}
		return s.stores.Modules.Upsert(ctx, studentID, moduleID, subjectID, grade)
	})
	if err != nil {
		return 0, stageError(StageModule, err)
	}
	return grade, nil
}

func (s *GradeService) recomputeSubject(ctx context.Context, studentID, subjectID int64) (float64, error) {
	var grade float64
	err := s.runStage(ctx, StageSubject, studentID, func(ctx context.Context) error {
		rows, err := s.stores.Modules.ListForSubject(ctx, subjectID, studentID)
		if err != nil {
			return err
		}
		grades := make(map[int64]float64, len(rows))
		for _, row := range rows {
			grades[row.ModuleID] = row.Grade
		}
		if grade, err = s.weightedAverage(models.WeightLevelModule, grades); err != nil {
			return err
		}
		return s.stores.Subjects.Upsert(ctx, studentID, subjectID, grade)
	})
	if err != nil {
		return 0, stageError(StageSubject, err)
	}
	return grade, nil
}

func (s *GradeService) recomputeOverall(ctx context.Context, studentID int64) (float64, error) {
	var grade float64
	err := s.runStage(ctx, StageOverall, studentID, func(ctx context.Context) error {
		rows, err := s.stores.Subjects.ListForStudent(ctx, studentID)
		if err != nil {
			return err
		}
		grades := make(map[int64]float64, len(rows))
		for _, row := range rows {
			grades[row.SubjectID] = row.Grade
		}
		if grade, err = s.weightedAverage(models.WeightLevelSubject, grades); err != nil {
			return err
		}
		return s.stores.Overall.Upsert(ctx, studentID, grade)
	})
	if err != nil {
		return 0, stageError(StageOverall, err)
	}
	return grade, nil
}

func (s *GradeService) weightedAverage(level models.WeightLevel, grades map[int64]float64) (float64, error) {
	ids := make([]int64, 0, len(grades))
	for id := range grades {
		ids = append(ids, id)
	}
	weights, err := s.weights.WeightsForItems(level, ids)
	if err != nil {
		return 0, err
	}
	return s.calc.WeightedAverage(grades, weights), nil
}

// GetAssignmentResponseGrade returns a stored response grade, 0 when absent.
func (s *GradeService) GetAssignmentResponseGrade(ctx context.Context, q dto.ResponseGradeQuery) (float64, error) {
	if err := s.validator.Struct(q); err != nil {
		return 0, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query")
	}
	key := GradeCacheKey(q.StudentID, StageResponse, q.AssignmentID, q.ResponseID)
	return s.read(ctx, key, "failed to load response grade", func(ctx context.Context) (float64, error) {
		return s.stores.Responses.GetGrade(ctx, q.StudentID, q.AssignmentID, q.ResponseID)
	})
}

// GetAssignmentGrade returns a stored assignment grade, 0 when absent.
func (s *GradeService) GetAssignmentGrade(ctx context.Context, q dto.AssignmentGradeQuery) (float64, error) {
	if err := s.validator.Struct(q); err != nil {
		return 0, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query")
	}
	key := GradeCacheKey(q.StudentID, StageAssignment, q.AssignmentID)
	return s.read(ctx, key, "failed to load assignment grade", func(ctx context.Context) (float64, error) {
		return s.stores.Assignments.GetGrade(ctx, q.StudentID, q.AssignmentID)
	})
}

// GetModuleGrade returns a stored module grade, 0 when absent.
func (s *GradeService) GetModuleGrade(ctx context.Context, q dto.ModuleGradeQuery) (float64, error) {
	if err := s.validator.Struct(q); err != nil {
		return 0, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query")
	}
	key := GradeCacheKey(q.StudentID, StageModule, q.ModuleID)
	return s.read(ctx, key, "failed to load module grade", func(ctx context.Context) (float64, error) {
		return s.stores.Modules.GetGrade(ctx, q.StudentID, q.ModuleID)
	})
}

// GetSubjectGrade returns a stored subject grade, 0 when absent.
func (s *GradeService) GetSubjectGrade(ctx context.Context, q dto.SubjectGradeQuery) (float64, error) {
	if err := s.validator.Struct(q); err != nil {
		return 0, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query")
	}
	key := GradeCacheKey(q.StudentID, StageSubject, q.SubjectID)
	return s.read(ctx, key, "failed to load subject grade", func(ctx context.Context) (float64, error) {
		return s.stores.Subjects.GetGrade(ctx, q.StudentID, q.SubjectID)
	})
}

// GetOverallGrade returns a student's overall grade, 0 when absent.
func (s *GradeService) GetOverallGrade(ctx context.Context, q dto.OverallGradeQuery) (float64, error) {
	if err := s.validator.Struct(q); err != nil {
		return 0, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query")
	}
	key := GradeCacheKey(q.StudentID, StageOverall)
	return s.read(ctx, key, "failed to load overall grade", func(ctx context.Context) (float64, error) {
		return s.stores.Overall.Get(ctx, q.StudentID)
	})
}

func (s *GradeService) read(ctx context.Context, key, failure string, load func(context.Context) (float64, error)) (float64, error) {
	grade, err := s.cache.Remember(ctx, key, load)
	if err != nil {
		return 0, appErrors.WrapAs(err, appErrors.ErrInternal, failure)
	}
	return grade, nil
}

func (s *GradeService) runStage(ctx context.Context, stage string, studentID int64, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "grades."+stage, trace.WithAttributes(
		attribute.String("grades.stage", stage),
		attribute.Int64("grades.student_id", studentID),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveCascadeStage(stage, elapsed, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("grade cascade stage failed",
			zap.String("stage", stage),
			zap.Int64("student_id", studentID),
			zap.Error(err),
		)
		return err
	}
	s.logger.Debug("grade cascade stage committed",
		zap.String("stage", stage),
		zap.Int64("student_id", studentID),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

// invalidate runs after partial cascades too since earlier stages have committed. It is detached from
// the caller's cancellation: a request that dies after a commit must still drop the stale entries.
func (s *GradeService) invalidate(ctx context.Context, studentID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidationTimeout)
	defer cancel()
	if err := s.cache.InvalidateStudent(ctx, studentID); err != nil {
		s.logger.Error("grade cache invalidation failed", zap.Int64("student_id", studentID), zap.Error(err))
	}
}

// stageError keeps typed errors such as ErrInvalidLevel and wraps storage failures.
func stageError(stage string, err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if stage == StageResponse {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to store response grade")
	}
	return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to recompute "+stage+" grade")
}
