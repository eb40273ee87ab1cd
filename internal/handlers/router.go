package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thinkable-edu/worksheet-service/internal/services"
	"github.com/thinkable-edu/worksheet-service/internal/utils"
)

type HandlerManager struct {
	progressHandler  *ProgressHandler
	worksheetHandler *WorksheetHandler
	serviceManager   services.ServiceManager
	logger           utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		progressHandler:  NewProgressHandler(serviceManager.Progress(), logger),
		worksheetHandler: NewWorksheetHandler(serviceManager.Worksheet(), serviceManager.Export(), logger),
		serviceManager:   serviceManager,
		logger:           logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// Progress routes - worksheet player
		progress := api.Group("/progress")
		{
			progress.POST("/submit-answer", hm.progressHandler.SubmitAnswer)
			progress.GET("/:studentId/:worksheetId", hm.progressHandler.GetProgress)
		}

		// Admin routes - worksheet catalog and reports
		admin := api.Group("/admin")
		{
			worksheets := admin.Group("/worksheets")
			{
				worksheets.GET("", hm.worksheetHandler.ListWorksheets)
				worksheets.POST("", hm.worksheetHandler.CreateWorksheet)
				worksheets.GET("/:id", hm.worksheetHandler.GetWorksheet)
				worksheets.PUT("/:id", hm.worksheetHandler.UpdateWorksheet)
				worksheets.DELETE("/:id", hm.worksheetHandler.DeleteWorksheet)

				worksheets.GET("/:id/questions", hm.worksheetHandler.ListQuestions)
				worksheets.POST("/:id/questions", hm.worksheetHandler.CreateQuestion)

				worksheets.GET("/:id/progress/export", hm.worksheetHandler.ExportProgress)
			}

			admin.DELETE("/questions/:id", hm.worksheetHandler.DeleteQuestion)
		}
	}

	// Health check endpoint
	router.GET("/health", hm.HealthCheck)
}

// HealthCheck reports database reachability
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		utils.FromContext(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "worksheet-service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "worksheet-service",
	})
}
