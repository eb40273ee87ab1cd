package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

func WorksheetKey(worksheetID string) string {
	return "id:" + worksheetID
}

func QuestionKey(questionID string) string {
	return "id:" + questionID
}

// QuestionListKey is the key of the ordered question list of a worksheet
func QuestionListKey(worksheetID string) string {
	return "worksheet:" + worksheetID + ":list"
}

// InvalidateWorksheetCache drops a worksheet and every question listing derived from it
func InvalidateWorksheetCache(ctx context.Context, cm *CacheManager, worksheetID string) {
	SafeDelete(ctx, cm.Worksheet, WorksheetKey(worksheetID))
	SafeInvalidatePattern(ctx, cm.Question, "worksheet:"+worksheetID+":*")
}

// InvalidateQuestionCache drops a question and the listing of its worksheet
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, questionID, worksheetID string) {
	SafeDelete(ctx, cm.Question, QuestionKey(questionID), QuestionListKey(worksheetID))
}
