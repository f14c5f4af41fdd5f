package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/evaluer-api/internal/models"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
	"github.com/noah-isme/evaluer-api/pkg/export"
)

type studentResponseGrades interface {
	ListForStudent(ctx context.Context, studentID int64) ([]models.ResponseGrade, error)
}

type studentAssignmentGrades interface {
	ListForStudent(ctx context.Context, studentID int64) ([]models.AssignmentGrade, error)
}

type studentModuleGrades interface {
	ListForStudent(ctx context.Context, studentID int64) ([]models.ModuleGrade, error)
}

type studentSubjectGrades interface {
	ListForStudent(ctx context.Context, studentID int64) ([]models.SubjectGrade, error)
}

type studentOverallGrades interface {
	ListForStudent(ctx context.Context, studentID int64) ([]models.OverallGrade, error)
}

// TranscriptSources groups the per-level student listings.
type TranscriptSources struct {
	Responses   studentResponseGrades
	Assignments studentAssignmentGrades
	Modules     studentModuleGrades
	Subjects    studentSubjectGrades
	Overall     studentOverallGrades
}

// ExportFile is a rendered transcript ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// TranscriptService lists every stored grade of a student and renders it for download.
type TranscriptService struct {
	sources TranscriptSources
	cache   *CacheService
	logger  *zap.Logger
}

// NewTranscriptService constructs TranscriptService. cache may be nil.
func NewTranscriptService(sources TranscriptSources, cache *CacheService, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{sources: sources, cache: cache, logger: logger}
}

// Transcript returns the student's grades, overall first, then subjects, modules, assignments and responses,
// each level ordered by id.
func (s *TranscriptService) Transcript(ctx context.Context, studentID int64) (*models.StudentTranscript, error) {
	if studentID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id must be positive")
	}

	key := GradeCacheKey(studentID, "transcript")
	var cached models.StudentTranscript
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	gen := s.cache.currentGeneration()
	transcript, err := s.collect(ctx, studentID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load transcript")
	}
	s.cache.fill(ctx, key, transcript, gen)
	return transcript, nil
}

func (s *TranscriptService) collect(ctx context.Context, studentID int64) (*models.StudentTranscript, error) {
	transcript := &models.StudentTranscript{StudentID: studentID, Rows: []models.TranscriptRow{}}

	overall, err := s.sources.Overall.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	transcript.Rows = appendLevel(transcript.Rows, overall, func(g models.OverallGrade) models.TranscriptRow {
		return models.TranscriptRow{Level: models.TranscriptOverall, ID: g.StudentID, UpdatedAt: g.UpdatedAt}
	})

	subjects, err := s.sources.Subjects.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	transcript.Rows = appendLevel(transcript.Rows, subjects, func(g models.SubjectGrade) models.TranscriptRow {
		return models.TranscriptRow{Level: models.TranscriptSubject, ID: g.SubjectID, UpdatedAt: g.UpdatedAt}
	})

	modules, err := s.sources.Modules.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	transcript.Rows = appendLevel(transcript.Rows, modules, func(g models.ModuleGrade) models.TranscriptRow {
		return models.TranscriptRow{Level: models.TranscriptModule, ID: g.ModuleID, ParentID: parent(g.SubjectID), UpdatedAt: g.UpdatedAt}
	})

	assignments, err := s.sources.Assignments.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	transcript.Rows = appendLevel(transcript.Rows, assignments, func(g models.AssignmentGrade) models.TranscriptRow {
		return models.TranscriptRow{Level: models.TranscriptAssignment, ID: g.AssignmentID, ParentID: parent(g.ModuleID), UpdatedAt: g.UpdatedAt}
	})

	responses, err := s.sources.Responses.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	transcript.Rows = appendLevel(transcript.Rows, responses, func(g models.ResponseGrade) models.TranscriptRow {
		return models.TranscriptRow{Level: models.TranscriptResponse, ID: g.ResponseID, ParentID: parent(g.AssignmentID), UpdatedAt: g.UpdatedAt}
	})

	return transcript, nil
}

// Export renders the transcript as csv or pdf.
func (s *TranscriptService) Export(ctx context.Context, studentID int64, format string) (*ExportFile, error) {
	exporter, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "unsupported transcript format")
	}

	transcript, err := s.Transcript(ctx, studentID)
	if err != nil {
		return nil, err
	}

	body, err := exporter.Render(transcriptDataset(transcript))
	if err != nil {
		s.logger.Error("render transcript", zap.Int64("student_id", studentID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render transcript")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("transcript-%d.%s", studentID, exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

func transcriptDataset(t *models.StudentTranscript) export.Dataset {
	data := export.Dataset{
		Title: fmt.Sprintf("Grade transcript for student %d", t.StudentID),
		Columns: []export.Column{
			{Title: "level"},
			{Title: "id", Numeric: true},
			{Title: "parent_id", Numeric: true},
			{Title: "grade", Numeric: true},
			{Title: "updated_at"},
		},
		Rows: make([][]string, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		parentID := ""
		if row.ParentID != nil {
			parentID = strconv.FormatInt(*row.ParentID, 10)
		}
		updated := ""
		if !row.UpdatedAt.IsZero() {
			updated = row.UpdatedAt.UTC().Format(time.RFC3339)
		}
		data.Rows = append(data.Rows, []string{
			string(row.Level),
			strconv.FormatInt(row.ID, 10),
			parentID,
			strconv.FormatFloat(row.Grade, 'f', 2, 64),
			updated,
		})
	}
	return data
}

// appendLevel converts one hierarchy level to rows ordered by id. The grade always comes from the record itself.
func appendLevel[T models.HasGrade](rows []models.TranscriptRow, items []T, convert func(T) models.TranscriptRow) []models.TranscriptRow {
	level := make([]models.TranscriptRow, len(items))
	for i, item := range items {
		level[i] = convert(item)
		level[i].Grade = item.GradeValue()
	}
	sort.SliceStable(level, func(i, j int) bool { return level[i].ID < level[j].ID })
	return append(rows, level...)
}

func parent(id int64) *int64 {
	return &id
}
