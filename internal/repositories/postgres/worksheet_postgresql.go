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

type WorksheetPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewWorksheetPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.WorksheetRepository {
	return &WorksheetPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(),
		cacheManager: cacheManager,
	}
}

func (w *WorksheetPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return w.db
}

// Create inserts a worksheet
func (w *WorksheetPostgreSQL) Create(ctx context.Context, tx *gorm.DB, worksheet *models.Worksheet) error {
	db := w.getDB(tx)
	if err := db.WithContext(ctx).Omit("Questions").Create(worksheet).Error; err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}
	return nil
}

// GetByID retrieves a worksheet by ID with caching
func (w *WorksheetPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Worksheet, error) {
	db := w.getDB(tx)
	var worksheet models.Worksheet

	err := w.cacheManager.Worksheet.CacheOrExecute(ctx, cache.WorksheetKey(id), &worksheet, cache.WorksheetCacheConfig.TTL, func() (interface{}, error) {
		var dbWorksheet models.Worksheet
		if err := db.WithContext(ctx).Where("id = ?", id).First(&dbWorksheet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("worksheet", id)
			}
			return nil, fmt.Errorf("failed to get worksheet: %w", err)
		}
		return &dbWorksheet, nil
	})
	if err != nil {
		return nil, err
	}

	return &worksheet, nil
}

// Update overwrites the editable fields of a worksheet
func (w *WorksheetPostgreSQL) Update(ctx context.Context, tx *gorm.DB, worksheet *models.Worksheet) error {
	db := w.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Worksheet{ID: worksheet.ID}).
		Select("title", "topic", "level", "description", "total_questions", "updated_at").
		Updates(worksheet)
	if result.Error != nil {
		return fmt.Errorf("failed to update worksheet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("worksheet", worksheet.ID)
	}

	cache.InvalidateWorksheetCache(ctx, w.cacheManager, worksheet.ID)
	return nil
}

// Delete removes a worksheet row. Callers remove its questions in the same transaction.
func (w *WorksheetPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := w.getDB(tx)

	result := db.WithContext(ctx).Where("id = ?", id).Delete(&models.Worksheet{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete worksheet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("worksheet", id)
	}

	cache.InvalidateWorksheetCache(ctx, w.cacheManager, id)
	return nil
}

// List returns a page of worksheets and the total count matching the filters
func (w *WorksheetPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.WorksheetFilters) ([]*models.Worksheet, int64, error) {
	db := w.getDB(tx)
	query := w.helpers.ApplyWorksheetFilters(db.WithContext(ctx).Model(&models.Worksheet{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count worksheets: %w", err)
	}

	var worksheets []*models.Worksheet
	query = w.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&worksheets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list worksheets: %w", err)
	}

	return worksheets, total, nil
}
