package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evaluer-api/internal/dto"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
)

type gradeServiceMock struct {
	updateReq    dto.UpdateResponseGradeRequest
	updateErr    error
	overrideReq  dto.SetAssignmentGradeRequest
	recalcResult *dto.RecalculateResult
	responseQ    dto.ResponseGradeQuery
	assignmentQ  dto.AssignmentGradeQuery
	moduleQ      dto.ModuleGradeQuery
	grade        float64
	readErr      error
}

func (m *gradeServiceMock) UpdateResponseGrade(ctx context.Context, req dto.UpdateResponseGradeRequest) error {
	m.updateReq = req
	return m.updateErr
}

func (m *gradeServiceMock) SetAssignmentGradeBypass(ctx context.Context, req dto.SetAssignmentGradeRequest) error {
	m.overrideReq = req
	return nil
}

func (m *gradeServiceMock) RecalculateModuleGrade(ctx context.Context, req dto.RecalculateModuleRequest) (*dto.RecalculateResult, error) {
	return m.recalcResult, nil
}

func (m *gradeServiceMock) GetAssignmentResponseGrade(ctx context.Context, q dto.ResponseGradeQuery) (float64, error) {
	m.responseQ = q
	return m.grade, m.readErr
}

func (m *gradeServiceMock) GetAssignmentGrade(ctx context.Context, q dto.AssignmentGradeQuery) (float64, error) {
	m.assignmentQ = q
	return m.grade, m.readErr
}

func (m *gradeServiceMock) GetModuleGrade(ctx context.Context, q dto.ModuleGradeQuery) (float64, error) {
	m.moduleQ = q
	return m.grade, m.readErr
}

func (m *gradeServiceMock) GetSubjectGrade(ctx context.Context, q dto.SubjectGradeQuery) (float64, error) {
	return m.grade, m.readErr
}

func (m *gradeServiceMock) GetOverallGrade(ctx context.Context, q dto.OverallGradeQuery) (float64, error) {
	return m.grade, m.readErr
}

func newGradeRouter(svc gradeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewGradeHandler(svc)
	r := gin.New()
	r.PUT("/grades/assignment", h.UpdateResponseGrade)
	r.PUT("/grades/assignments/:assignmentId/override", h.OverrideAssignmentGrade)
	r.POST("/grades/recalculate", h.Recalculate)
	r.GET("/grades/assignments/:assignmentId/responses/:responseId", h.ResponseGrade)
	r.GET("/grades/assignments/:assignmentId", h.AssignmentGrade)
	r.GET("/grades/modules", h.ModuleGrade)
	r.GET("/grades/subjects", h.SubjectGrade)
	r.GET("/grades/overall", h.OverallGrade)
	return r
}

func TestGradeHandlerUpdateResponseGrade(t *testing.T) {
	svc := &gradeServiceMock{}
	r := newGradeRouter(svc)

	body := `{"student_id":1,"response_id":2,"assignment_id":3,"module_id":4,"subject_id":5,"new_grade":8.5}`
	req := httptest.NewRequest(http.MethodPut, "/grades/assignment", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, dto.UpdateResponseGradeRequest{StudentID: 1, ResponseID: 2, AssignmentID: 3, ModuleID: 4, SubjectID: 5, NewGrade: 8.5}, svc.updateReq)
}

func TestGradeHandlerUpdateResponseGradeErrors(t *testing.T) {
	svc := &gradeServiceMock{updateErr: appErrors.Clone(appErrors.ErrValidation, "invalid payload")}
	r := newGradeRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/grades/assignment", bytes.NewBufferString(`{"student_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPut, "/grades/assignment", bytes.NewBufferString(`{"student_id":`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradeHandlerOverrideUsesPathAssignment(t *testing.T) {
	svc := &gradeServiceMock{}
	r := newGradeRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/grades/assignments/42/override", bytes.NewBufferString(`{"student_id":1,"assignment_id":7,"module_id":3,"grade":9}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(42), svc.overrideReq.AssignmentID)
	assert.Equal(t, 9.0, svc.overrideReq.Grade)
}

func TestGradeHandlerRecalculate(t *testing.T) {
	svc := &gradeServiceMock{recalcResult: &dto.RecalculateResult{ModuleGrade: 7, SubjectGrade: 6, OverallGrade: 5}}
	r := newGradeRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/grades/recalculate", bytes.NewBufferString(`{"student_id":1,"module_id":2,"subject_id":3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"module_grade":7,"subject_grade":6,"overall_grade":5}}`, w.Body.String())
}

func TestGradeHandlerReadsReturnGradeEnvelope(t *testing.T) {
	svc := &gradeServiceMock{grade: 7.25}
	r := newGradeRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/assignments/3/responses/9?student_id=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"grade":7.25}}`, w.Body.String())
	assert.Equal(t, dto.ResponseGradeQuery{StudentID: 1, AssignmentID: 3, ResponseID: 9}, svc.responseQ)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/assignments/3?student_id=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), svc.assignmentQ.AssignmentID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/modules?student_id=1&module_id=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ModuleGradeQuery{StudentID: 1, ModuleID: 10}, svc.moduleQ)

	for _, path := range []string{"/grades/subjects?student_id=1&subject_id=2", "/grades/overall?student_id=1"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
		var body struct {
			Data dto.GradeValue `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 7.25, body.Data.Grade)
	}
}

func TestGradeHandlerRejectsBadIdentifiers(t *testing.T) {
	r := newGradeRouter(&gradeServiceMock{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/assignments/abc?student_id=1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/overall?student_id=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
