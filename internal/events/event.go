package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Source identifies this service in every envelope
	Source = "worksheet-service"

	EventVersion = "1.0"
)

// Event types
const (
	TypeAnswerSubmitted    = "progress.answer_submitted"
	TypeWorksheetCompleted = "progress.worksheet_completed"
)

// Event is the envelope of every published message
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    Source,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// AnswerSubmittedEvent is emitted after a submission is committed
type AnswerSubmittedEvent struct {
	StudentID   string `json:"studentId"`
	WorksheetID string `json:"worksheetId"`
	QuestionID  string `json:"questionId"`
	IsCorrect   bool   `json:"isCorrect"`
	Answered    int    `json:"answered"`
	Score       int    `json:"score"`
	Total       int    `json:"total"`
	Percent     int    `json:"percent"`
	Completed   bool   `json:"completed"`
}

// WorksheetCompletedEvent is emitted once, by the submission that completes a worksheet
type WorksheetCompletedEvent struct {
	StudentID   string `json:"studentId"`
	WorksheetID string `json:"worksheetId"`
	Score       int    `json:"score"`
	Total       int    `json:"total"`
}
