package services

import (
	"context"

	"github.com/thinkable-edu/worksheet-service/internal/models"
	"github.com/thinkable-edu/worksheet-service/internal/repositories"
	"github.com/thinkable-edu/worksheet-service/internal/validator"
)

// ===== PROGRESS =====

// ProgressSnapshot is the aggregate view returned to the worksheet player
type ProgressSnapshot struct {
	Answered       int  `json:"answered"`
	Score          int  `json:"score"`
	Completed      bool `json:"completed"`
	TotalQuestions int  `json:"totalQuestions"`
	Percent        int  `json:"percent"`
}

// ProgressSummary is the snapshot returned by the progress query
type ProgressSummary struct {
	ProgressSnapshot
	AnswersCount int `json:"answersCount"`
}

// AnswerResult is the grading feedback of one submission
type AnswerResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
}

type SubmissionResult struct {
	Result   AnswerResult     `json:"result"`
	Progress ProgressSnapshot `json:"progress"`
}

type ProgressService interface {
	// SubmitAnswer records and scores a first answer to a question. A repeated question
	// fails with *AlreadyAnsweredError and leaves the aggregate unchanged.
	SubmitAnswer(ctx context.Context, req *validator.SubmitAnswerRequest) (*SubmissionResult, error)

	// GetProgress never creates a record; an unknown pair yields the zero state
	GetProgress(ctx context.Context, studentID, worksheetID string) (*ProgressSummary, error)
}

// ===== CATALOG =====

type WorksheetListResponse struct {
	Worksheets []*models.Worksheet `json:"worksheets"`
	Total      int64               `json:"total"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

type WorksheetService interface {
	ListWorksheets(ctx context.Context, filters repositories.WorksheetFilters) (*WorksheetListResponse, error)
	GetWorksheet(ctx context.Context, id string) (*models.Worksheet, error)
	CreateWorksheet(ctx context.Context, req *validator.WorksheetCreateRequest) (*models.Worksheet, error)
	UpdateWorksheet(ctx context.Context, id string, req *validator.WorksheetUpdateRequest) (*models.Worksheet, error)
	DeleteWorksheet(ctx context.Context, id string) error

	ListQuestions(ctx context.Context, worksheetID string) ([]*models.Question, error)
	CreateQuestion(ctx context.Context, worksheetID string, req *validator.QuestionCreateRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

// ===== EXPORT =====

type ProgressExport struct {
	FileName string
	Data     []byte
}

type ExportService interface {
	// ExportWorksheetProgress renders every progress record of a worksheet as an xlsx workbook
	ExportWorksheetProgress(ctx context.Context, worksheetID string) (*ProgressExport, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Progress() ProgressService
	Worksheet() WorksheetService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
