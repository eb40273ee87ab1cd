package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thinkable-edu/worksheet-service/internal/services"
	"github.com/thinkable-edu/worksheet-service/internal/utils"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse is the body of requests that only report an outcome
type MessageResponse struct {
	Message string `json:"message"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming operation with the request scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c, h.logger).Error(msg, args...)
}

func (h *BaseHandler) badRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: message,
		Details: err.Error(),
	})
}

// handleServiceError maps service errors to HTTP responses. Unknown errors are logged
// and reported without internals.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var inputErr *services.InputError
	if errors.As(err, &inputErr) {
		resp := ErrorResponse{Message: inputErr.Message}
		if len(inputErr.Fields) > 0 {
			resp.Details = inputErr.Fields
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	var answered *services.AlreadyAnsweredError
	if errors.As(err, &answered) {
		c.JSON(http.StatusConflict, gin.H{
			"message":  services.MsgAlreadyAnswered,
			"progress": answered.Progress,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrWorksheetNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: services.MsgWorksheetNotFound})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: services.MsgQuestionNotFound})
	default:
		h.LogError(c, err, "Unhandled service error", "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: services.MsgServerError})
	}
}
