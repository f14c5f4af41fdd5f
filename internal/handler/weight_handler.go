package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/evaluer-api/internal/dto"
	"github.com/noah-isme/evaluer-api/internal/models"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
	"github.com/noah-isme/evaluer-api/pkg/response"
)

type weightCatalog interface {
	SubjectWeights() map[int64]float64
	ModuleWeightsForSubject(subjectID int64) map[int64]float64
	ExerciseWeightsForModule(moduleID int64) map[int64]float64
}

type gradingScale interface {
	BaseScore() float64
	MinimumScore() float64
}

// WeightHandler exposes the loaded weights tree and grading scale.
type WeightHandler struct {
	weights   weightCatalog
	scale     gradingScale
	validator *validator.Validate
}

// NewWeightHandler constructs handler.
func NewWeightHandler(weights weightCatalog, scale gradingScale, validate *validator.Validate) *WeightHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &WeightHandler{weights: weights, scale: scale, validator: validate}
}

// Get godoc
// @Summary Get configured weights
// @Description Returns subject weights, or the module weights of subject_id, or the exercise weights of module_id.
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param subject_id query int false "Subject ID"
// @Param module_id query int false "Module ID"
// @Success 200 {object} response.Envelope{data=dto.WeightsView}
// @Failure 400 {object} response.Envelope
// @Router /grades/weights [get]
func (h *WeightHandler) Get(c *gin.Context) {
	var q dto.WeightsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query"))
		return
	}
	if err := h.validator.Struct(q); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "set at most one of subject_id and module_id"))
		return
	}

	view := dto.WeightsView{BaseScore: h.scale.BaseScore(), MinimumScore: h.scale.MinimumScore()}
	switch {
	case q.ModuleID > 0:
		view.Level = string(models.WeightLevelExercise)
		view.Weights = h.weights.ExerciseWeightsForModule(q.ModuleID)
	case q.SubjectID > 0:
		view.Level = string(models.WeightLevelModule)
		view.Weights = h.weights.ModuleWeightsForSubject(q.SubjectID)
	default:
		view.Level = string(models.WeightLevelSubject)
		view.Weights = h.weights.SubjectWeights()
	}
	response.JSON(c, http.StatusOK, view)
}
