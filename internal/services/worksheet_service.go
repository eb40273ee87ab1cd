package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thinkable-edu/worksheet-service/internal/models"
	"github.com/thinkable-edu/worksheet-service/internal/repositories"
	"github.com/thinkable-edu/worksheet-service/internal/validator"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type worksheetService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewWorksheetService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) WorksheetService {
	return &worksheetService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== WORKSHEETS =====

func (s *worksheetService) ListWorksheets(ctx context.Context, filters repositories.WorksheetFilters) (*WorksheetListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}
	if filters.Limit > maxListLimit {
		filters.Limit = maxListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	worksheets, total, err := s.repo.Worksheet().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}

	return &WorksheetListResponse{
		Worksheets: worksheets,
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}, nil
}

func (s *worksheetService) GetWorksheet(ctx context.Context, id string) (*models.Worksheet, error) {
	if err := requireObjectID(id); err != nil {
		return nil, err
	}

	worksheet, err := s.repo.Worksheet().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorksheetNotFound
		}
		return nil, fmt.Errorf("failed to get worksheet: %w", err)
	}
	return worksheet, nil
}

func (s *worksheetService) CreateWorksheet(ctx context.Context, req *validator.WorksheetCreateRequest) (*models.Worksheet, error) {
	if errs := s.validator.ValidateWorksheetCreate(req); len(errs) > 0 {
		return nil, newInputError(MsgValidationFailed, errs, errs)
	}

	worksheet := &models.Worksheet{
		Title:          req.Title,
		Topic:          req.Topic,
		Level:          req.Level,
		Description:    req.Description,
		TotalQuestions: req.TotalQuestions,
	}
	if err := s.repo.Worksheet().Create(ctx, nil, worksheet); err != nil {
		return nil, err
	}

	s.logger.Info("Worksheet created", "worksheet_id", worksheet.ID, "title", worksheet.Title)
	return worksheet, nil
}

func (s *worksheetService) UpdateWorksheet(ctx context.Context, id string, req *validator.WorksheetUpdateRequest) (*models.Worksheet, error) {
	if errs := s.validator.ValidateWorksheetUpdate(req); len(errs) > 0 {
		return nil, newInputError(MsgValidationFailed, errs, errs)
	}

	worksheet, err := s.GetWorksheet(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		worksheet.Title = *req.Title
	}
	if req.Topic != nil {
		worksheet.Topic = *req.Topic
	}
	if req.Level != nil {
		worksheet.Level = *req.Level
	}
	if req.Description != nil {
		worksheet.Description = req.Description
	}
	if req.TotalQuestions != nil {
		worksheet.TotalQuestions = req.TotalQuestions
	}

	if err := s.repo.Worksheet().Update(ctx, nil, worksheet); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorksheetNotFound
		}
		return nil, err
	}

	s.logger.Info("Worksheet updated", "worksheet_id", id)
	return worksheet, nil
}

// DeleteWorksheet removes the worksheet and its questions. Student progress is kept.
func (s *worksheetService) DeleteWorksheet(ctx context.Context, id string) error {
	if err := requireObjectID(id); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Question().DeleteByWorksheet(ctx, nil, id); err != nil {
			return err
		}
		return tx.Worksheet().Delete(ctx, nil, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrWorksheetNotFound
		}
		return err
	}

	s.logger.Info("Worksheet deleted", "worksheet_id", id)
	return nil
}

// ===== QUESTIONS =====

func (s *worksheetService) ListQuestions(ctx context.Context, worksheetID string) ([]*models.Question, error) {
	if _, err := s.GetWorksheet(ctx, worksheetID); err != nil {
		return nil, err
	}
	return s.repo.Question().ListByWorksheet(ctx, nil, worksheetID)
}

func (s *worksheetService) CreateQuestion(ctx context.Context, worksheetID string, req *validator.QuestionCreateRequest) (*models.Question, error) {
	if errs := s.validator.ValidateQuestionCreate(req); len(errs) > 0 {
		return nil, newInputError(MsgValidationFailed, errs, errs)
	}

	if _, err := s.GetWorksheet(ctx, worksheetID); err != nil {
		return nil, err
	}

	question := &models.Question{
		WorksheetID:   worksheetID,
		Text:          req.Text,
		CorrectAnswer: req.CorrectAnswer,
	}
	if req.Order != nil {
		question.Order = *req.Order
	}
	if err := question.SetOptions(req.Options); err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, err
	}

	s.logger.Info("Question created", "question_id", question.ID, "worksheet_id", worksheetID)
	return question, nil
}

func (s *worksheetService) DeleteQuestion(ctx context.Context, id string) error {
	if err := requireObjectID(id); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return err
	}

	s.logger.Info("Question deleted", "question_id", id)
	return nil
}

func requireObjectID(id string) error {
	if !validator.IsValidObjectID(id) {
		return newInputError(MsgInvalidIdentifier, validator.ErrInvalidIdentifier, nil)
	}
	return nil
}
