package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thinkable-edu/worksheet-service/internal/models"
	"github.com/thinkable-edu/worksheet-service/internal/repositories"
	"github.com/thinkable-edu/worksheet-service/internal/services"
	"github.com/thinkable-edu/worksheet-service/internal/utils"
	"github.com/thinkable-edu/worksheet-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type WorksheetHandler struct {
	BaseHandler
	worksheetService services.WorksheetService
	exportService    services.ExportService
}

func NewWorksheetHandler(
	worksheetService services.WorksheetService,
	exportService services.ExportService,
	logger utils.Logger,
) *WorksheetHandler {
	return &WorksheetHandler{
		BaseHandler:      NewBaseHandler(logger),
		worksheetService: worksheetService,
		exportService:    exportService,
	}
}

// ListWorksheets lists worksheets with optional filters
// @Summary List worksheets
// @Tags admin
// @Produce json
// @Param topic query string false "Topic"
// @Param level query string false "Level"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Param sort_by query string false "created_at, title or topic"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} services.WorksheetListResponse
// @Router /admin/worksheets [get]
func (h *WorksheetHandler) ListWorksheets(c *gin.Context) {
	filters, err := parseWorksheetFilters(c)
	if err != nil {
		h.badRequest(c, "Invalid query parameters", err)
		return
	}

	response, err := h.worksheetService.ListWorksheets(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetWorksheet retrieves a worksheet by ID
// @Summary Get worksheet
// @Tags admin
// @Produce json
// @Param id path string true "Worksheet ID"
// @Success 200 {object} models.Worksheet
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/worksheets/{id} [get]
func (h *WorksheetHandler) GetWorksheet(c *gin.Context) {
	worksheet, err := h.worksheetService.GetWorksheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, worksheet)
}

// CreateWorksheet creates a new worksheet
// @Summary Create worksheet
// @Tags admin
// @Accept json
// @Produce json
// @Param worksheet body validator.WorksheetCreateRequest true "Worksheet data"
// @Success 201 {object} models.Worksheet
// @Failure 400 {object} ErrorResponse
// @Router /admin/worksheets [post]
func (h *WorksheetHandler) CreateWorksheet(c *gin.Context) {
	var req validator.WorksheetCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating worksheet", "title", req.Title)

	worksheet, err := h.worksheetService.CreateWorksheet(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, worksheet)
}

// UpdateWorksheet applies a partial update to a worksheet
// @Summary Update worksheet
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Worksheet ID"
// @Param worksheet body validator.WorksheetUpdateRequest true "Fields to change"
// @Success 200 {object} models.Worksheet
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/worksheets/{id} [put]
func (h *WorksheetHandler) UpdateWorksheet(c *gin.Context) {
	id := c.Param("id")

	var req validator.WorksheetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Updating worksheet", "worksheet_id", id)

	worksheet, err := h.worksheetService.UpdateWorksheet(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, worksheet)
}

// DeleteWorksheet deletes a worksheet and its questions
// @Summary Delete worksheet
// @Tags admin
// @Param id path string true "Worksheet ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/worksheets/{id} [delete]
func (h *WorksheetHandler) DeleteWorksheet(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting worksheet", "worksheet_id", id)

	if err := h.worksheetService.DeleteWorksheet(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Worksheet deleted."})
}

// ListQuestions lists the questions of a worksheet in display order
// @Summary List worksheet questions
// @Tags admin
// @Produce json
// @Param id path string true "Worksheet ID"
// @Success 200 {array} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/worksheets/{id}/questions [get]
func (h *WorksheetHandler) ListQuestions(c *gin.Context) {
	questions, err := h.worksheetService.ListQuestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if questions == nil {
		questions = []*models.Question{}
	}
	c.JSON(http.StatusOK, questions)
}

// CreateQuestion adds a question to a worksheet
// @Summary Create question
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Worksheet ID"
// @Param question body validator.QuestionCreateRequest true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/worksheets/{id}/questions [post]
func (h *WorksheetHandler) CreateQuestion(c *gin.Context) {
	worksheetID := c.Param("id")

	var req validator.QuestionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating question", "worksheet_id", worksheetID)

	question, err := h.worksheetService.CreateQuestion(c.Request.Context(), worksheetID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// DeleteQuestion deletes a question
// @Summary Delete question
// @Tags admin
// @Param id path string true "Question ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/questions/{id} [delete]
func (h *WorksheetHandler) DeleteQuestion(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.worksheetService.DeleteQuestion(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Question deleted."})
}

// ExportProgress downloads the progress of every student on a worksheet as xlsx
// @Summary Export worksheet progress
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Worksheet ID"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/worksheets/{id}/progress/export [get]
func (h *WorksheetHandler) ExportProgress(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Exporting progress", "worksheet_id", id)

	export, err := h.exportService.ExportWorksheetProgress(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Data(http.StatusOK, xlsxContentType, export.Data)
}

func parseWorksheetFilters(c *gin.Context) (repositories.WorksheetFilters, error) {
	filters := repositories.WorksheetFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if topic := c.Query("topic"); topic != "" {
		filters.Topic = &topic
	}
	if level := c.Query("level"); level != "" {
		l := models.WorksheetLevel(level)
		filters.Level = &l
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filters, fmt.Errorf("limit must be an integer")
		}
		filters.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return filters, fmt.Errorf("offset must be an integer")
		}
		filters.Offset = offset
	}

	return filters, nil
}
