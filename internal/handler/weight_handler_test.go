package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evaluer-api/internal/dto"
)

type weightCatalogStub struct {
	subjectArg int64
	moduleArg  int64
}

func (s *weightCatalogStub) SubjectWeights() map[int64]float64 {
	return map[int64]float64{1: 0.6, 2: 0.4}
}

func (s *weightCatalogStub) ModuleWeightsForSubject(subjectID int64) map[int64]float64 {
	s.subjectArg = subjectID
	return map[int64]float64{10: 0.5}
}

func (s *weightCatalogStub) ExerciseWeightsForModule(moduleID int64) map[int64]float64 {
	s.moduleArg = moduleID
	return map[int64]float64{100: 0.7}
}

type scaleStub struct{}

func (scaleStub) BaseScore() float64    { return 10 }
func (scaleStub) MinimumScore() float64 { return 0 }

func getWeights(t *testing.T, r *gin.Engine, query string) (*httptest.ResponseRecorder, dto.WeightsView) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades/weights"+query, nil))
	var envelope struct {
		Data dto.WeightsView `json:"data"`
	}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope.Data
}

func TestWeightHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	catalog := &weightCatalogStub{}
	r := gin.New()
	r.GET("/grades/weights", NewWeightHandler(catalog, scaleStub{}, nil).Get)

	w, view := getWeights(t, r, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "subject", view.Level)
	assert.Equal(t, 10.0, view.BaseScore)
	assert.Zero(t, view.MinimumScore)
	assert.Equal(t, map[int64]float64{1: 0.6, 2: 0.4}, view.Weights)

	w, view = getWeights(t, r, "?subject_id=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "module", view.Level)
	assert.Equal(t, int64(3), catalog.subjectArg)
	assert.Equal(t, map[int64]float64{10: 0.5}, view.Weights)

	w, view = getWeights(t, r, "?module_id=10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "exercise", view.Level)
	assert.Equal(t, int64(10), catalog.moduleArg)
}

func TestWeightHandlerRejectsBadScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/grades/weights", NewWeightHandler(&weightCatalogStub{}, scaleStub{}, nil).Get)

	for _, query := range []string{"?subject_id=1&module_id=10", "?module_id=-4", "?subject_id=abc"} {
		w, _ := getWeights(t, r, query)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}
