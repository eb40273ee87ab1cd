package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/thinkable-edu/worksheet-service/internal/repositories"
)

// SharedHelpers contains common query building
type SharedHelpers struct{}

func NewSharedHelpers() *SharedHelpers {
	return &SharedHelpers{}
}

// ApplyWorksheetFilters applies the catalog filters to worksheet queries
func (h *SharedHelpers) ApplyWorksheetFilters(query *gorm.DB, filters repositories.WorksheetFilters) *gorm.DB {
	if filters.Topic != nil {
		query = query.Where("topic = ?", *filters.Topic)
	}
	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"title":      true,
		"topic":      true,
		"level":      true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// notFound wraps repositories.ErrNotFound with the missing entity
func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, repositories.ErrNotFound)
}
