package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/evaluer-api/internal/dto"
	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
	"github.com/noah-isme/evaluer-api/pkg/response"
)

type gradeService interface {
	UpdateResponseGrade(ctx context.Context, req dto.UpdateResponseGradeRequest) error
	SetAssignmentGradeBypass(ctx context.Context, req dto.SetAssignmentGradeRequest) error
	RecalculateModuleGrade(ctx context.Context, req dto.RecalculateModuleRequest) (*dto.RecalculateResult, error)
	GetAssignmentResponseGrade(ctx context.Context, q dto.ResponseGradeQuery) (float64, error)
	GetAssignmentGrade(ctx context.Context, q dto.AssignmentGradeQuery) (float64, error)
	GetModuleGrade(ctx context.Context, q dto.ModuleGradeQuery) (float64, error)
	GetSubjectGrade(ctx context.Context, q dto.SubjectGradeQuery) (float64, error)
	GetOverallGrade(ctx context.Context, q dto.OverallGradeQuery) (float64, error)
}

// GradeHandler exposes the grade hierarchy endpoints.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// UpdateResponseGrade godoc
// @Summary Update a response grade
// @Description Stores the response grade and recomputes the assignment, module, subject and overall grades.
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateResponseGradeRequest true "Response grade"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /grades/assignment [put]
func (h *GradeHandler) UpdateResponseGrade(c *gin.Context) {
	var req dto.UpdateResponseGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return
	}
	if err := h.grades.UpdateResponseGrade(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// OverrideAssignmentGrade godoc
// @Summary Override an assignment grade
// @Description Writes the assignment grade directly. Module, subject and overall grades are not recomputed.
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path int true "Assignment ID"
// @Param payload body dto.SetAssignmentGradeRequest true "Assignment grade"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /grades/assignments/{assignmentId}/override [put]
func (h *GradeHandler) OverrideAssignmentGrade(c *gin.Context) {
	assignmentID, err := int64Param(c, "assignmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SetAssignmentGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return
	}
	req.AssignmentID = assignmentID
	if err := h.grades.SetAssignmentGradeBypass(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Recalculate godoc
// @Summary Recalculate module, subject and overall grades
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecalculateModuleRequest true "Scope"
// @Success 200 {object} response.Envelope{data=dto.RecalculateResult}
// @Failure 400 {object} response.Envelope
// @Router /grades/recalculate [post]
func (h *GradeHandler) Recalculate(c *gin.Context) {
	var req dto.RecalculateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payload"))
		return
	}
	result, err := h.grades.RecalculateModuleGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ResponseGrade godoc
// @Summary Get a response grade
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param assignmentId path int true "Assignment ID"
// @Param responseId path int true "Response ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} response.Envelope{data=dto.GradeValue}
// @Router /grades/assignments/{assignmentId}/responses/{responseId} [get]
func (h *GradeHandler) ResponseGrade(c *gin.Context) {
	var q dto.ResponseGradeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query"))
		return
	}
	var err error
	if q.AssignmentID, err = int64Param(c, "assignmentId"); err != nil {
		response.Error(c, err)
		return
	}
	if q.ResponseID, err = int64Param(c, "responseId"); err != nil {
		response.Error(c, err)
		return
	}
	h.respondGrade(c, func(ctx context.Context) (float64, error) { return h.grades.GetAssignmentResponseGrade(ctx, q) })
}

// AssignmentGrade godoc
// @Summary Get an assignment grade
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param assignmentId path int true "Assignment ID"
// @Param student_id query int true "Student ID"
// @Success 200 {object} response.Envelope{data=dto.GradeValue}
// @Router /grades/assignments/{assignmentId} [get]
func (h *GradeHandler) AssignmentGrade(c *gin.Context) {
	var q dto.AssignmentGradeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query"))
		return
	}
	var err error
	if q.AssignmentID, err = int64Param(c, "assignmentId"); err != nil {
		response.Error(c, err)
		return
	}
	h.respondGrade(c, func(ctx context.Context) (float64, error) { return h.grades.GetAssignmentGrade(ctx, q) })
}

// ModuleGrade godoc
// @Summary Get a module grade
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param student_id query int true "Student ID"
// @Param module_id query int true "Module ID"
// @Success 200 {object} response.Envelope{data=dto.GradeValue}
// @Router /grades/modules [get]
func (h *GradeHandler) ModuleGrade(c *gin.Context) {
	var q dto.ModuleGradeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query"))
		return
	}
	h.respondGrade(c, func(ctx context.Context) (float64, error) { return h.grades.GetModuleGrade(ctx, q) })
}

// SubjectGrade godoc
// @Summary Get a subject grade
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param student_id query int true "Student ID"
// @Param subject_id query int true "Subject ID"
// @Success 200 {object} response.Envelope{data=dto.GradeValue}
// @Router /grades/subjects [get]
func (h *GradeHandler) SubjectGrade(c *gin.Context) {
	var q dto.SubjectGradeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query"))
		return
	}
	h.respondGrade(c, func(ctx context.Context) (float64, error) { return h.grades.GetSubjectGrade(ctx, q) })
}

// OverallGrade godoc
// @Summary Get a student's overall grade
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param student_id query int true "Student ID"
// @Success 200 {object} response.Envelope{data=dto.GradeValue}
// @Router /grades/overall [get]
func (h *GradeHandler) OverallGrade(c *gin.Context) {
	var q dto.OverallGradeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid query"))
		return
	}
	h.respondGrade(c, func(ctx context.Context) (float64, error) { return h.grades.GetOverallGrade(ctx, q) })
}

func (h *GradeHandler) respondGrade(c *gin.Context, read func(context.Context) (float64, error)) {
	grade, err := read(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.GradeValue{Grade: grade})
}

func int64Param(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return id, nil
}
