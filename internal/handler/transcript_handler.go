package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/evaluer-api/internal/models"
	"github.com/noah-isme/evaluer-api/internal/service"
	"github.com/noah-isme/evaluer-api/pkg/response"
)

type transcriptService interface {
	Transcript(ctx context.Context, studentID int64) (*models.StudentTranscript, error)
	Export(ctx context.Context, studentID int64, format string) (*service.ExportFile, error)
}

// TranscriptHandler serves student transcripts.
type TranscriptHandler struct {
	transcripts transcriptService
}

// NewTranscriptHandler constructs handler.
func NewTranscriptHandler(transcripts transcriptService) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts}
}

// Get godoc
// @Summary Get a student's grade transcript
// @Description Returns every stored grade of the student as JSON, or as a CSV/PDF download.
// @Tags Transcripts
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param format query string false "json (default), csv or pdf"
// @Success 200 {object} response.Envelope{data=models.StudentTranscript}
// @Failure 400 {object} response.Envelope
// @Router /grades/students/{studentId}/transcript [get]
func (h *TranscriptHandler) Get(c *gin.Context) {
	studentID, err := int64Param(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format == "json" {
		transcript, err := h.transcripts.Transcript(c.Request.Context(), studentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, transcript)
		return
	}

	file, err := h.transcripts.Export(c.Request.Context(), studentID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Body)
}
