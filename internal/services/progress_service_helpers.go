package services

import (
	"github.com/thinkable-edu/worksheet-service/internal/models"
)

// DefaultTotalQuestions applies when a worksheet does not declare its size
const DefaultTotalQuestions = 20

// ResolveTotalQuestions returns the declared size of a worksheet, or fallback when it is
// unset or not positive
func ResolveTotalQuestions(worksheet *models.Worksheet, fallback int) int {
	if worksheet != nil && worksheet.TotalQuestions != nil && *worksheet.TotalQuestions > 0 {
		return *worksheet.TotalQuestions
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTotalQuestions
}

// Percent is 100*answered/total rounded half up
func Percent(answered, total int) int {
	if total <= 0 || answered <= 0 {
		return 0
	}
	return (answered*200 + total) / (2 * total)
}

// IsCompleted reports whether answered reaches the worksheet size
func IsCompleted(answered, total int) bool {
	return answered >= total
}

func snapshotOf(progress *models.Progress, total int) ProgressSnapshot {
	if progress == nil {
		return ProgressSnapshot{TotalQuestions: total}
	}
	return ProgressSnapshot{
		Answered:       progress.Answered,
		Score:          progress.Score,
		Completed:      progress.Completed,
		TotalQuestions: total,
		Percent:        Percent(progress.Answered, total),
	}
}

// applyAnswer updates the aggregate fields for one new answer. Answers must hold every
// previously recorded answer.
func applyAnswer(progress *models.Progress, isCorrect bool, total int) {
	progress.Answered = len(progress.Answers) + 1
	if isCorrect {
		progress.Score++
	}
	progress.Completed = IsCompleted(progress.Answered, total)
}
