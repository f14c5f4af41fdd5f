package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evaluer-api/internal/models"
	"github.com/noah-isme/evaluer-api/internal/service"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
)

type transcriptServiceMock struct {
	format string
}

func (m *transcriptServiceMock) Transcript(ctx context.Context, studentID int64) (*models.StudentTranscript, error) {
	return &models.StudentTranscript{StudentID: studentID, Rows: []models.TranscriptRow{{Level: models.TranscriptOverall, ID: studentID, Grade: 6}}}, nil
}

func (m *transcriptServiceMock) Export(ctx context.Context, studentID int64, format string) (*service.ExportFile, error) {
	m.format = format
	if format != "csv" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported transcript format")
	}
	return &service.ExportFile{Filename: "transcript-3.csv", ContentType: "text/csv", Body: []byte("level\n")}, nil
}

func TestTranscriptHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &transcriptServiceMock{}
	r := gin.New()
	r.GET("/grades/students/:studentId/transcript", NewTranscriptHandler(svc).Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/students/3/transcript", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"student_id":3`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/students/3/transcript?format=CSV", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.format)
	assert.Equal(t, "level\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transcript-3.csv")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/students/3/transcript?format=xml", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/students/0/transcript", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
	})
	r := gin.New()
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines_total")

	degraded := NewMetricsHandler(nil, map[string]Pinger{
		"redis": PingFunc(func(context.Context) error { return errors.New("refused") }),
	})
	r = gin.New()
	r.GET("/ready", degraded.Ready)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "refused")
}
