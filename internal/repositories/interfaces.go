package repositories

import (
	"context"

	"github.com/thinkable-edu/worksheet-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type WorksheetFilters struct {
	Topic     *string                `json:"topic"`
	Level     *models.WorksheetLevel `json:"level"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
	SortBy    string                 `json:"sort_by"`    // "created_at", "title", "topic"
	SortOrder string                 `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====
// Every method accepts an optional transaction; nil runs against the default connection.

type WorksheetRepository interface {
	Create(ctx context.Context, tx *gorm.DB, worksheet *models.Worksheet) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Worksheet, error)
	Update(ctx context.Context, tx *gorm.DB, worksheet *models.Worksheet) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters WorksheetFilters) ([]*models.Worksheet, int64, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	ListByWorksheet(ctx context.Context, tx *gorm.DB, worksheetID string) ([]*models.Question, error)
	DeleteByWorksheet(ctx context.Context, tx *gorm.DB, worksheetID string) error
}

type ProgressRepository interface {
	// GetByStudentAndWorksheet returns the aggregate without its answers
	GetByStudentAndWorksheet(ctx context.Context, tx *gorm.DB, studentID, worksheetID string) (*models.Progress, error)

	// GetOrCreateForUpdate creates the record if absent and returns it locked for the
	// lifetime of tx, with its answers loaded. tx must be a transaction.
	GetOrCreateForUpdate(ctx context.Context, tx *gorm.DB, studentID, worksheetID string) (*models.Progress, error)

	// AppendAnswer inserts the answer and persists the aggregate fields of progress,
	// failing with ErrVersionConflict when the stored version moved.
	AppendAnswer(ctx context.Context, tx *gorm.DB, progress *models.Progress, answer *models.ProgressAnswer) error

	CountAnswers(ctx context.Context, tx *gorm.DB, progressID string) (int64, error)
	ListByWorksheet(ctx context.Context, tx *gorm.DB, worksheetID string) ([]*models.Progress, error)
}

