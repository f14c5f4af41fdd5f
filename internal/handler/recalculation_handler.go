package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/evaluer-api/internal/dto"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
	"github.com/noah-isme/evaluer-api/pkg/response"
)

type recalculationQueue interface {
	Submit(ctx context.Context, req dto.RecalculateModuleRequest) (string, error)
}

// RecalculationHandler accepts background recalculation requests.
type RecalculationHandler struct {
	queue recalculationQueue
}

func NewRecalculationHandler(queue recalculationQueue) *RecalculationHandler {
	return &RecalculationHandler{queue: queue}
}

// Enqueue godoc
// @Summary Queue a module recalculation
// @Description Runs the module, subject and overall stages in the background with retries.
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecalculateModuleRequest true "Scope"
// @Success 202 {object} response.Envelope{data=dto.RecalculationAccepted}
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /grades/recalculate/async [post]
func (h *RecalculationHandler) Enqueue(c *gin.Context) {
	var req dto.RecalculateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return
	}
	id, err := h.queue.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, dto.RecalculationAccepted{JobID: id})
}
