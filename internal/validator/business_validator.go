package validator

import "slices"

// ValidateWorksheetCreate validates worksheet creation
func (v *Validator) ValidateWorksheetCreate(req *WorksheetCreateRequest) ValidationErrors {
	return v.Validate(req)
}

// ValidateWorksheetUpdate validates a partial update; an empty update is rejected
func (v *Validator) ValidateWorksheetUpdate(req *WorksheetUpdateRequest) ValidationErrors {
	errs := v.Validate(req)

	if req.Title == nil && req.Topic == nil && req.Level == nil && req.Description == nil && req.TotalQuestions == nil {
		errs = append(errs, ValidationError{
			Field:   "body",
			Message: "at least one field must be provided",
			Rule:    "business_logic",
		})
	}

	return errs
}

// ValidateQuestionCreate validates question creation business rules
func (v *Validator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	errs := v.Validate(req)

	// A multiple choice question must be answerable
	if len(req.Options) > 0 && req.CorrectAnswer != "" && !slices.Contains(req.Options, req.CorrectAnswer) {
		errs = append(errs, ValidationError{
			Field:   "correctAnswer",
			Message: "must be one of the options",
			Value:   req.CorrectAnswer,
			Rule:    "business_logic",
		})
	}

	return errs
}
