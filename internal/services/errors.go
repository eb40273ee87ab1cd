package services

import (
	"errors"

	"github.com/thinkable-edu/worksheet-service/internal/validator"
)

// Service errors
var (
	ErrValidationFailed       = errors.New("validation failed")
	ErrWorksheetNotFound      = errors.New("worksheet not found")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionNotInWorksheet = errors.New("question does not belong to this worksheet")
	ErrInvalidOption          = errors.New("selected answer is not a valid option")
	ErrAlreadyAnswered        = errors.New("question already answered for this worksheet")
	ErrSubmissionContention   = errors.New("submission retries exhausted")
)

// Client facing messages
const (
	MsgMissingFields      = "Missing/invalid fields."
	MsgInvalidIdentifier  = "Invalid identifier provided."
	MsgWorksheetNotFound  = "Worksheet not found."
	MsgQuestionNotFound   = "Question not found."
	MsgQuestionNotInSheet = "Question does not belong to this worksheet."
	MsgInvalidOption      = "Selected answer is not a valid option."
	MsgAlreadyAnswered    = "Question already answered for this worksheet."
	MsgAnswerSubmitted    = "Answer submitted."
	MsgServerError        = "Server error."
	MsgValidationFailed   = "Validation failed."
)

// InputError is a rejected request. It matches ErrValidationFailed and unwraps to the
// specific cause.
type InputError struct {
	Message string
	Err     error
	Fields  validator.ValidationErrors
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func (e *InputError) Is(target error) bool {
	return target == ErrValidationFailed
}

func newInputError(message string, cause error, fields validator.ValidationErrors) *InputError {
	return &InputError{Message: message, Err: cause, Fields: fields}
}

// AlreadyAnsweredError carries the unchanged progress of a rejected resubmission
type AlreadyAnsweredError struct {
	Progress ProgressSnapshot
}

func (e *AlreadyAnsweredError) Error() string {
	return ErrAlreadyAnswered.Error()
}

func (e *AlreadyAnsweredError) Is(target error) bool {
	return target == ErrAlreadyAnswered
}
