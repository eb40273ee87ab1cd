package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thinkable-edu/worksheet-service/internal/models"
	"github.com/thinkable-edu/worksheet-service/internal/repositories"
)

// ProgressPostgreSQL stores progress aggregates. Nothing here is cached: a snapshot read
// right after an accepted submission must include it.
type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p *ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func orderAnswers(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// GetByStudentAndWorksheet returns the aggregate of a (student, worksheet) pair
func (p *ProgressPostgreSQL) GetByStudentAndWorksheet(ctx context.Context, tx *gorm.DB, studentID, worksheetID string) (*models.Progress, error) {
	db := p.getDB(tx)
	var progress models.Progress
	if err := db.WithContext(ctx).
		Where("student_id = ? AND worksheet_id = ?", studentID, worksheetID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("progress", studentID+"/"+worksheetID)
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &progress, nil
}

// GetOrCreateForUpdate inserts an empty aggregate unless one exists, then locks the row.
// Concurrent first submissions race on the unique (student_id, worksheet_id) index; the
// loser's insert becomes a no-op and it waits on the row lock held by the winner.
func (p *ProgressPostgreSQL) GetOrCreateForUpdate(ctx context.Context, tx *gorm.DB, studentID, worksheetID string) (*models.Progress, error) {
	if tx == nil {
		return nil, fmt.Errorf("get or create progress: transaction required")
	}
	db := tx.WithContext(ctx)

	fresh := &models.Progress{
		StudentID:   studentID,
		WorksheetID: worksheetID,
		Version:     1,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "worksheet_id"}},
		DoNothing: true,
	}).Create(fresh).Error; err != nil {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}

	var progress models.Progress
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Answers", orderAnswers).
		Where("student_id = ? AND worksheet_id = ?", studentID, worksheetID).
		First(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to lock progress: %w", err)
	}

	return &progress, nil
}

// AppendAnswer records the answer and writes the aggregate fields of progress under an
// optimistic version check. On success progress.Version is advanced.
func (p *ProgressPostgreSQL) AppendAnswer(ctx context.Context, tx *gorm.DB, progress *models.Progress, answer *models.ProgressAnswer) error {
	db := p.getDB(tx).WithContext(ctx)

	answer.ProgressID = progress.ID
	if answer.AnsweredAt.IsZero() {
		answer.AnsweredAt = time.Now().UTC()
	}
	if err := db.Create(answer).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("question %s: %w", answer.QuestionID, repositories.ErrDuplicateAnswer)
		}
		return fmt.Errorf("failed to insert answer: %w", err)
	}

	result := db.Model(&models.Progress{}).
		Where("id = ? AND version = ?", progress.ID, progress.Version).
		Updates(map[string]interface{}{
			"answered":   progress.Answered,
			"score":      progress.Score,
			"completed":  progress.Completed,
			"version":    progress.Version + 1,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update progress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("progress %s: %w", progress.ID, repositories.ErrVersionConflict)
	}

	progress.Version++
	progress.Answers = append(progress.Answers, *answer)
	return nil
}

// CountAnswers counts the recorded answers of an aggregate
func (p *ProgressPostgreSQL) CountAnswers(ctx context.Context, tx *gorm.DB, progressID string) (int64, error) {
	var count int64
	err := p.getDB(tx).WithContext(ctx).
		Model(&models.ProgressAnswer{}).
		Where("progress_id = ?", progressID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return count, nil
}

// ListByWorksheet returns every aggregate of a worksheet with answers, ordered by student
func (p *ProgressPostgreSQL) ListByWorksheet(ctx context.Context, tx *gorm.DB, worksheetID string) ([]*models.Progress, error) {
	var progress []*models.Progress
	if err := p.getDB(tx).WithContext(ctx).
		Preload("Answers", orderAnswers).
		Where("worksheet_id = ?", worksheetID).
		Order("student_id ASC").
		Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return progress, nil
}

// isUniqueViolation recognises unique index failures with or without TranslateError
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
