package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thinkable-edu/worksheet-service/internal/services"
	"github.com/thinkable-edu/worksheet-service/internal/utils"
	"github.com/thinkable-edu/worksheet-service/internal/validator"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// SubmitAnswerResponse is returned for an accepted first answer
type SubmitAnswerResponse struct {
	Message  string                    `json:"message"`
	Result   services.AnswerResult     `json:"result"`
	Progress services.ProgressSnapshot `json:"progress"`
}

type ProgressResponse struct {
	Progress *services.ProgressSummary `json:"progress"`
}

// SubmitAnswer records a student's answer to one worksheet question
// @Summary Submit answer
// @Tags progress
// @Accept json
// @Produce json
// @Param submission body validator.SubmitAnswerRequest true "Answer submission"
// @Success 200 {object} SubmitAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} object
// @Failure 500 {object} ErrorResponse
// @Router /progress/submit-answer [post]
func (h *ProgressHandler) SubmitAnswer(c *gin.Context) {
	var req validator.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, services.MsgMissingFields, err)
		return
	}

	h.LogRequest(c, "Submitting answer",
		"student_id", req.StudentID,
		"worksheet_id", req.WorksheetID,
		"question_id", req.QuestionID)

	result, err := h.progressService.SubmitAnswer(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SubmitAnswerResponse{
		Message:  services.MsgAnswerSubmitted,
		Result:   result.Result,
		Progress: result.Progress,
	})
}

// GetProgress returns the progress of a student on a worksheet
// @Summary Get progress
// @Tags progress
// @Produce json
// @Param studentId path string true "Student ID"
// @Param worksheetId path string true "Worksheet ID"
// @Success 200 {object} ProgressResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /progress/{studentId}/{worksheetId} [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	studentID := c.Param("studentId")
	worksheetID := c.Param("worksheetId")

	h.LogRequest(c, "Getting progress", "student_id", studentID, "worksheet_id", worksheetID)

	summary, err := h.progressService.GetProgress(c.Request.Context(), studentID, worksheetID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProgressResponse{Progress: summary})
}
