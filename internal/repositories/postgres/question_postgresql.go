package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/thinkable-edu/worksheet-service/internal/cache"
	"github.com/thinkable-edu/worksheet-service/internal/models"
	"github.com/thinkable-edu/worksheet-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// Create creates a new question and invalidates the listing of its worksheet
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	cache.SafeDelete(ctx, q.cacheManager.Question, cache.QuestionListKey(question.WorksheetID))
	return nil
}

// GetByID retrieves a question by ID with caching
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cache.QuestionKey(id), &question, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestion models.Question
		if err := db.WithContext(ctx).Where("id = ?", id).First(&dbQuestion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("question", id)
			}
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		return &dbQuestion, nil
	})
	if err != nil {
		return nil, err
	}

	return &question, nil
}

// Delete removes a question. Answers already recorded against it are kept.
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := q.getDB(tx)

	// Get question info before deleting for cache invalidation
	var question models.Question
	if err := db.WithContext(ctx).Select("id", "worksheet_id").Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("question", id)
		}
		return fmt.Errorf("failed to get question before delete: %w", err)
	}

	if err := db.WithContext(ctx).Where("id = ?", id).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id, question.WorksheetID)
	return nil
}

// ListByWorksheet returns the questions of a worksheet in display order
func (q *QuestionPostgreSQL) ListByWorksheet(ctx context.Context, tx *gorm.DB, worksheetID string) ([]*models.Question, error) {
	db := q.getDB(tx)
	var questions []*models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cache.QuestionListKey(worksheetID), &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestions []*models.Question
		if err := db.WithContext(ctx).
			Where("worksheet_id = ?", worksheetID).
			Order("position ASC").
			Order("created_at ASC").
			Find(&dbQuestions).Error; err != nil {
			return nil, fmt.Errorf("failed to list questions: %w", err)
		}
		return dbQuestions, nil
	})
	if err != nil {
		return nil, err
	}

	return questions, nil
}

// DeleteByWorksheet removes every question of a worksheet
func (q *QuestionPostgreSQL) DeleteByWorksheet(ctx context.Context, tx *gorm.DB, worksheetID string) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Where("worksheet_id = ?", worksheetID).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete questions of worksheet: %w", err)
	}

	cache.InvalidateWorksheetCache(ctx, q.cacheManager, worksheetID)
	return nil
}
