package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evaluer-api/internal/models"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
)

type studentRows[T any] struct {
	rows  []T
	err   error
	calls int
}

func (s *studentRows[T]) ListForStudent(ctx context.Context, studentID int64) ([]T, error) {
	s.calls++
	return s.rows, s.err
}

func newTranscriptFixture() (TranscriptSources, *studentRows[models.OverallGrade]) {
	updated := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	overall := &studentRows[models.OverallGrade]{rows: []models.OverallGrade{{StudentID: 5, Grade: 7.2, UpdatedAt: updated}}}
	return TranscriptSources{
		Overall: overall,
		Subjects: &studentRows[models.SubjectGrade]{rows: []models.SubjectGrade{
			{SubjectID: 2, StudentID: 5, Grade: 6},
			{SubjectID: 1, StudentID: 5, Grade: 8},
		}},
		Modules: &studentRows[models.ModuleGrade]{rows: []models.ModuleGrade{
			{ModuleID: 10, StudentID: 5, SubjectID: 1, Grade: 8},
		}},
		Assignments: &studentRows[models.AssignmentGrade]{rows: []models.AssignmentGrade{
			{AssignmentID: 100, StudentID: 5, ModuleID: 10, Grade: 8},
		}},
		Responses: &studentRows[models.ResponseGrade]{rows: []models.ResponseGrade{
			{ResponseID: 1000, StudentID: 5, AssignmentID: 100, Grade: 9},
		}},
	}, overall
}

func TestTranscriptOrdersLevels(t *testing.T) {
	sources, _ := newTranscriptFixture()
	svc := NewTranscriptService(sources, nil, nil)

	transcript, err := svc.Transcript(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, transcript.Rows, 6)

	var levels []models.TranscriptLevel
	for _, row := range transcript.Rows {
		levels = append(levels, row.Level)
	}
	assert.Equal(t, []models.TranscriptLevel{
		models.TranscriptOverall, models.TranscriptSubject, models.TranscriptSubject,
		models.TranscriptModule, models.TranscriptAssignment, models.TranscriptResponse,
	}, levels)
	assert.Equal(t, int64(1), transcript.Rows[1].ID)
	assert.Nil(t, transcript.Rows[1].ParentID)
	require.NotNil(t, transcript.Rows[5].ParentID)
	assert.Equal(t, int64(100), *transcript.Rows[5].ParentID)
}

func TestTranscriptUsesCache(t *testing.T) {
	sources, overall := newTranscriptFixture()
	cache := NewCacheService(&memCacheRepo{}, nil, time.Minute, nil, true)
	svc := NewTranscriptService(sources, cache, nil)

	for i := 0; i < 2; i++ {
		transcript, err := svc.Transcript(context.Background(), 5)
		require.NoError(t, err)
		assert.Len(t, transcript.Rows, 6)
	}
	assert.Equal(t, 1, overall.calls)

	require.NoError(t, cache.InvalidateStudent(context.Background(), 5))
	_, err := svc.Transcript(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, overall.calls)
}

func TestTranscriptPropagatesStorageErrors(t *testing.T) {
	sources, _ := newTranscriptFixture()
	sources.Modules = &studentRows[models.ModuleGrade]{err: errors.New("timeout")}
	svc := NewTranscriptService(sources, nil, nil)

	_, err := svc.Transcript(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestTranscriptExportFormats(t *testing.T) {
	sources, _ := newTranscriptFixture()
	svc := NewTranscriptService(sources, nil, nil)

	csvFile, err := svc.Export(context.Background(), 5, "csv")
	require.NoError(t, err)
	assert.Equal(t, "transcript-5.csv", csvFile.Filename)
	assert.Equal(t, "text/csv", csvFile.ContentType)
	lines := strings.Split(strings.TrimSpace(string(csvFile.Body)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "level,id,parent_id,grade,updated_at", lines[0])
	assert.Equal(t, "overall,5,,7.20,2026-03-01T08:00:00Z", lines[1])
	assert.Equal(t, "response,1000,100,9.00,", lines[6])

	pdfFile, err := svc.Export(context.Background(), 5, "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfFile.Body, []byte("%PDF-")))

	_, err = svc.Export(context.Background(), 5, "docx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTranscriptRejectsInvalidStudent(t *testing.T) {
	sources, _ := newTranscriptFixture()
	_, err := NewTranscriptService(sources, nil, nil).Transcript(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAppendLevelTakesGradeFromRecord(t *testing.T) {
	grades := []models.ModuleGrade{
		{StudentID: 1, ModuleID: 20, SubjectID: 2, Grade: 4.5},
		{StudentID: 1, ModuleID: 10, SubjectID: 2, Grade: 7.25},
	}

	rows := appendLevel(nil, grades, func(g models.ModuleGrade) models.TranscriptRow {
		return models.TranscriptRow{Level: models.TranscriptModule, ID: g.ModuleID, Grade: -1}
	})

	require.Len(t, rows, 2)
	assert.Equal(t, int64(10), rows[0].ID)
	assert.Equal(t, 7.25, rows[0].Grade)
	assert.Equal(t, 4.5, rows[1].Grade)
}
