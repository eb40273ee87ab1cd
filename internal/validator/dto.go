package validator

import (
	"errors"

	"github.com/thinkable-edu/worksheet-service/internal/models"
)

// Request parsing failures, in the order they are checked
var (
	ErrMissingFields     = errors.New("missing or invalid fields")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// SubmitAnswerRequest is the body of POST /api/progress/submit-answer. SelectedAnswer is a
// pointer so an absent field can be told apart from an empty string.
type SubmitAnswerRequest struct {
	StudentID      string  `json:"studentId" validate:"required"`
	WorksheetID    string  `json:"worksheetId" validate:"required"`
	QuestionID     string  `json:"questionId" validate:"required"`
	SelectedAnswer *string `json:"selectedAnswer" validate:"required"`
}

// SubmitAnswerCommand is a submission whose fields are present and well formed
type SubmitAnswerCommand struct {
	StudentID      string `json:"studentId" validate:"object_id"`
	WorksheetID    string `json:"worksheetId" validate:"object_id"`
	QuestionID     string `json:"questionId" validate:"object_id"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// RequestError reports which parsing step rejected a request
type RequestError struct {
	Err    error
	Fields ValidationErrors
}

func (e *RequestError) Error() string {
	return e.Err.Error() + ": " + e.Fields.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseSubmitAnswer checks presence first and identifier format second
func (v *Validator) ParseSubmitAnswer(req *SubmitAnswerRequest) (*SubmitAnswerCommand, error) {
	if req == nil {
		return nil, &RequestError{Err: ErrMissingFields, Fields: ValidationErrors{{Field: "body", Message: "is required", Rule: "required"}}}
	}
	if errs := v.Validate(req); len(errs) > 0 {
		return nil, &RequestError{Err: ErrMissingFields, Fields: errs}
	}

	cmd := &SubmitAnswerCommand{
		StudentID:      req.StudentID,
		WorksheetID:    req.WorksheetID,
		QuestionID:     req.QuestionID,
		SelectedAnswer: *req.SelectedAnswer,
	}
	if errs := v.Validate(cmd); len(errs) > 0 {
		return nil, &RequestError{Err: ErrInvalidIdentifier, Fields: errs}
	}
	return cmd, nil
}

// WorksheetCreateRequest represents the request structure for creating worksheets
type WorksheetCreateRequest struct {
	Title          string                `json:"title" validate:"required,not_blank,max=200"`
	Topic          string                `json:"topic" validate:"omitempty,max=100"`
	Level          models.WorksheetLevel `json:"level" validate:"required,worksheet_level"`
	Description    *string               `json:"description" validate:"omitempty,max=2000"`
	TotalQuestions *int                  `json:"totalQuestions" validate:"omitempty,min=1,max=500"`
}

// WorksheetUpdateRequest represents a partial worksheet update
type WorksheetUpdateRequest struct {
	Title          *string                `json:"title" validate:"omitempty,not_blank,max=200"`
	Topic          *string                `json:"topic" validate:"omitempty,max=100"`
	Level          *models.WorksheetLevel `json:"level" validate:"omitempty,worksheet_level"`
	Description    *string                `json:"description" validate:"omitempty,max=2000"`
	TotalQuestions *int                   `json:"totalQuestions" validate:"omitempty,min=1,max=500"`
}

// QuestionCreateRequest represents the request structure for creating questions.
// An empty Options list creates a free-response question.
type QuestionCreateRequest struct {
	Text          string   `json:"text" validate:"required,not_blank,max=2000"`
	Options       []string `json:"options" validate:"omitempty,max=10,unique,dive,required,max=500"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required,max=500"`
	Order         *int     `json:"order" validate:"omitempty,min=0"`
}
