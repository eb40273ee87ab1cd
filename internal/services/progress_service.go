package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/thinkable-edu/worksheet-service/internal/events"
	"github.com/thinkable-edu/worksheet-service/internal/models"
	"github.com/thinkable-edu/worksheet-service/internal/repositories"
	"github.com/thinkable-edu/worksheet-service/internal/validator"
)

// ProgressConfig holds the tunables of the progress service
type ProgressConfig struct {
	DefaultTotalQuestions int
	// MaxRetries bounds re-running a submission whose version check lost a race
	MaxRetries int
	Timeout    time.Duration
}

type progressService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	config    ProgressConfig
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, config ProgressConfig) ProgressService {
	if config.DefaultTotalQuestions <= 0 {
		config.DefaultTotalQuestions = DefaultTotalQuestions
	}
	return &progressService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		config:    config,
	}
}

// ===== SUBMISSION =====

func (s *progressService) SubmitAnswer(ctx context.Context, req *validator.SubmitAnswerRequest) (*SubmissionResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cmd, err := s.validator.ParseSubmitAnswer(req)
	if err != nil {
		return nil, requestInputError(err)
	}

	s.logger.Info("Submitting answer",
		"student_id", cmd.StudentID,
		"worksheet_id", cmd.WorksheetID,
		"question_id", cmd.QuestionID)

	worksheet, err := s.getWorksheet(ctx, cmd.WorksheetID)
	if err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, cmd.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if question.WorksheetID != cmd.WorksheetID {
		return nil, newInputError(MsgQuestionNotInSheet, ErrQuestionNotInWorksheet, nil)
	}

	options, err := question.OptionList()
	if err != nil {
		return nil, err
	}
	if len(options) > 0 && !slices.Contains(options, cmd.SelectedAnswer) {
		return nil, newInputError(MsgInvalidOption, ErrInvalidOption, nil)
	}

	total := ResolveTotalQuestions(worksheet, s.config.DefaultTotalQuestions)
	isCorrect := cmd.SelectedAnswer == question.CorrectAnswer

	progress, completedNow, err := s.recordAnswer(ctx, cmd, isCorrect, total)
	if err != nil {
		return nil, err
	}

	snapshot := snapshotOf(progress, total)
	s.publishSubmission(ctx, cmd, isCorrect, snapshot, completedNow)

	s.logger.Info("Answer recorded",
		"student_id", cmd.StudentID,
		"worksheet_id", cmd.WorksheetID,
		"question_id", cmd.QuestionID,
		"is_correct", isCorrect,
		"answered", snapshot.Answered,
		"completed", snapshot.Completed)

	return &SubmissionResult{
		Result: AnswerResult{
			IsCorrect:     isCorrect,
			CorrectAnswer: question.CorrectAnswer,
		},
		Progress: snapshot,
	}, nil
}

// recordAnswer appends the answer under the row lock of the (student, worksheet) record,
// re-running the transaction when the optimistic version check fails
func (s *progressService) recordAnswer(ctx context.Context, cmd *validator.SubmitAnswerCommand, isCorrect bool, total int) (*models.Progress, bool, error) {
	var (
		progress     *models.Progress
		completedNow bool
	)

	for attempt := 0; ; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			current, err := s.repo.Progress().GetOrCreateForUpdate(ctx, tx, cmd.StudentID, cmd.WorksheetID)
			if err != nil {
				return err
			}

			if current.HasAnswerFor(cmd.QuestionID) {
				return &AlreadyAnsweredError{Progress: snapshotOf(current, total)}
			}

			wasCompleted := current.Completed
			applyAnswer(current, isCorrect, total)

			answer := &models.ProgressAnswer{
				QuestionID:     cmd.QuestionID,
				SelectedAnswer: cmd.SelectedAnswer,
				IsCorrect:      isCorrect,
				AnsweredAt:     time.Now().UTC(),
			}
			if err := s.repo.Progress().AppendAnswer(ctx, tx, current, answer); err != nil {
				return err
			}

			progress = current
			completedNow = !wasCompleted && current.Completed
			return nil
		})

		switch {
		case err == nil:
			return progress, completedNow, nil
		case errors.Is(err, ErrAlreadyAnswered):
			return nil, false, err
		case repositories.IsDuplicateError(err):
			// The unique answer index caught a submission the lock did not serialize
			return nil, false, s.alreadyAnswered(ctx, cmd, total)
		case errors.Is(err, repositories.ErrVersionConflict) && attempt < s.config.MaxRetries:
			s.logger.Warn("Progress version conflict, retrying submission",
				"student_id", cmd.StudentID,
				"worksheet_id", cmd.WorksheetID,
				"attempt", attempt+1)
			continue
		case errors.Is(err, repositories.ErrVersionConflict):
			return nil, false, fmt.Errorf("%w: %v", ErrSubmissionContention, err)
		default:
			return nil, false, fmt.Errorf("failed to record answer: %w", err)
		}
	}
}

// alreadyAnswered builds the conflict error from the committed state
func (s *progressService) alreadyAnswered(ctx context.Context, cmd *validator.SubmitAnswerCommand, total int) error {
	current, err := s.repo.Progress().GetByStudentAndWorksheet(ctx, nil, cmd.StudentID, cmd.WorksheetID)
	if err != nil {
		return fmt.Errorf("failed to read progress after duplicate answer: %w", err)
	}
	return &AlreadyAnsweredError{Progress: snapshotOf(current, total)}
}

func (s *progressService) publishSubmission(ctx context.Context, cmd *validator.SubmitAnswerCommand, isCorrect bool, snapshot ProgressSnapshot, completedNow bool) {
	if s.publisher == nil {
		return
	}

	submitted := events.AnswerSubmittedEvent{
		StudentID:   cmd.StudentID,
		WorksheetID: cmd.WorksheetID,
		QuestionID:  cmd.QuestionID,
		IsCorrect:   isCorrect,
		Answered:    snapshot.Answered,
		Score:       snapshot.Score,
		Total:       snapshot.TotalQuestions,
		Percent:     snapshot.Percent,
		Completed:   snapshot.Completed,
	}
	if err := s.publisher.Publish(ctx, events.TypeAnswerSubmitted, submitted); err != nil {
		s.logger.Error("Failed to publish event", "event_type", events.TypeAnswerSubmitted, "error", err)
	}

	if !completedNow {
		return
	}
	completed := events.WorksheetCompletedEvent{
		StudentID:   cmd.StudentID,
		WorksheetID: cmd.WorksheetID,
		Score:       snapshot.Score,
		Total:       snapshot.TotalQuestions,
	}
	if err := s.publisher.Publish(ctx, events.TypeWorksheetCompleted, completed); err != nil {
		s.logger.Error("Failed to publish event", "event_type", events.TypeWorksheetCompleted, "error", err)
	}
}

// ===== QUERY =====

func (s *progressService) GetProgress(ctx context.Context, studentID, worksheetID string) (*ProgressSummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if !validator.IsValidObjectID(studentID) || !validator.IsValidObjectID(worksheetID) {
		return nil, newInputError(MsgInvalidIdentifier, validator.ErrInvalidIdentifier, nil)
	}

	worksheet, err := s.getWorksheet(ctx, worksheetID)
	if err != nil {
		return nil, err
	}
	total := ResolveTotalQuestions(worksheet, s.config.DefaultTotalQuestions)

	progress, err := s.repo.Progress().GetByStudentAndWorksheet(ctx, nil, studentID, worksheetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &ProgressSummary{ProgressSnapshot: snapshotOf(nil, total)}, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	count, err := s.repo.Progress().CountAnswers(ctx, nil, progress.ID)
	if err != nil {
		return nil, err
	}

	return &ProgressSummary{
		ProgressSnapshot: snapshotOf(progress, total),
		AnswersCount:     int(count),
	}, nil
}

// ===== HELPERS =====

func (s *progressService) getWorksheet(ctx context.Context, id string) (*models.Worksheet, error) {
	worksheet, err := s.repo.Worksheet().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorksheetNotFound
		}
		return nil, fmt.Errorf("failed to get worksheet: %w", err)
	}
	return worksheet, nil
}

func (s *progressService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

// requestInputError maps a request parsing failure to the client message of its step
func requestInputError(err error) error {
	var reqErr *validator.RequestError
	if !errors.As(err, &reqErr) {
		return newInputError(MsgMissingFields, err, nil)
	}
	if errors.Is(reqErr, validator.ErrInvalidIdentifier) {
		return newInputError(MsgInvalidIdentifier, reqErr.Err, reqErr.Fields)
	}
	return newInputError(MsgMissingFields, reqErr.Err, reqErr.Fields)
}
