package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/thinkable-edu/worksheet-service/internal/models"
	"github.com/thinkable-edu/worksheet-service/internal/repositories"
	"github.com/thinkable-edu/worksheet-service/internal/repositories/postgres"
	"github.com/thinkable-edu/worksheet-service/internal/testutil"
	"github.com/thinkable-edu/worksheet-service/internal/validator"
)

func newWorksheetService(t *testing.T) (WorksheetService, repositories.Repository) {
	t.Helper()
	db := testutil.DB(t)
	client, _ := testutil.Redis(t)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, RedisClient: client})
	return NewWorksheetService(repo, discardLogger(), validator.New()), repo
}

func strPtr(s string) *string { return &s }

func TestWorksheetService_CRUD(t *testing.T) {
	svc, _ := newWorksheetService(t)
	ctx := context.Background()

	created, err := svc.CreateWorksheet(ctx, &validator.WorksheetCreateRequest{
		Title:          "Fractions",
		Topic:          "math",
		Level:          models.LevelElementary,
		TotalQuestions: intPtr(10),
	})
	if err != nil {
		t.Fatalf("CreateWorksheet() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateWorksheet() did not assign an id")
	}

	// Warm the cache, then make sure the update is visible
	if _, err := svc.GetWorksheet(ctx, created.ID); err != nil {
		t.Fatalf("GetWorksheet() error = %v", err)
	}
	updated, err := svc.UpdateWorksheet(ctx, created.ID, &validator.WorksheetUpdateRequest{
		Title:          strPtr("Fractions II"),
		TotalQuestions: intPtr(12),
	})
	if err != nil {
		t.Fatalf("UpdateWorksheet() error = %v", err)
	}
	if updated.Title != "Fractions II" || updated.Topic != "math" {
		t.Errorf("UpdateWorksheet() = %+v", updated)
	}

	got, err := svc.GetWorksheet(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetWorksheet() error = %v", err)
	}
	if got.Title != "Fractions II" || got.TotalQuestions == nil || *got.TotalQuestions != 12 {
		t.Errorf("GetWorksheet() after update = %+v", got)
	}

	list, err := svc.ListWorksheets(ctx, repositories.WorksheetFilters{Limit: 1000})
	if err != nil {
		t.Fatalf("ListWorksheets() error = %v", err)
	}
	if list.Total != 1 || len(list.Worksheets) != 1 || list.Limit != maxListLimit {
		t.Errorf("ListWorksheets() = total %d, %d items, limit %d", list.Total, len(list.Worksheets), list.Limit)
	}

	if err := svc.DeleteWorksheet(ctx, created.ID); err != nil {
		t.Fatalf("DeleteWorksheet() error = %v", err)
	}
	if _, err := svc.GetWorksheet(ctx, created.ID); !errors.Is(err, ErrWorksheetNotFound) {
		t.Errorf("GetWorksheet() after delete error = %v, want ErrWorksheetNotFound", err)
	}
	if err := svc.DeleteWorksheet(ctx, created.ID); !errors.Is(err, ErrWorksheetNotFound) {
		t.Errorf("second DeleteWorksheet() error = %v, want ErrWorksheetNotFound", err)
	}
}

func TestWorksheetService_Validation(t *testing.T) {
	svc, _ := newWorksheetService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"blank title", func() error {
			_, err := svc.CreateWorksheet(ctx, &validator.WorksheetCreateRequest{Title: "  ", Level: models.LevelExpert})
			return err
		}},
		{"unknown level", func() error {
			_, err := svc.CreateWorksheet(ctx, &validator.WorksheetCreateRequest{Title: "T", Level: "Impossible"})
			return err
		}},
		{"empty update", func() error {
			_, err := svc.UpdateWorksheet(ctx, uuid.NewString(), &validator.WorksheetUpdateRequest{})
			return err
		}},
		{"malformed id", func() error {
			_, err := svc.GetWorksheet(ctx, "42")
			return err
		}},
		{"correct answer outside options", func() error {
			_, err := svc.CreateQuestion(ctx, uuid.NewString(), &validator.QuestionCreateRequest{
				Text: "2+2", Options: []string{"3", "5"}, CorrectAnswer: "4",
			})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrValidationFailed) {
				t.Errorf("error = %v, want ErrValidationFailed", err)
			}
		})
	}
}

func TestWorksheetService_Questions(t *testing.T) {
	svc, repo := newWorksheetService(t)
	ctx := context.Background()

	w, err := svc.CreateWorksheet(ctx, &validator.WorksheetCreateRequest{Title: "Shapes", Level: models.LevelIntermediate})
	if err != nil {
		t.Fatalf("CreateWorksheet() error = %v", err)
	}

	if _, err := svc.CreateQuestion(ctx, uuid.NewString(), &validator.QuestionCreateRequest{Text: "Q", CorrectAnswer: "a"}); !errors.Is(err, ErrWorksheetNotFound) {
		t.Errorf("CreateQuestion() on unknown worksheet error = %v, want ErrWorksheetNotFound", err)
	}

	second, err := svc.CreateQuestion(ctx, w.ID, &validator.QuestionCreateRequest{
		Text: "Sides of a triangle?", Options: []string{"3", "4"}, CorrectAnswer: "3", Order: intPtr(2),
	})
	if err != nil {
		t.Fatalf("CreateQuestion() error = %v", err)
	}
	first, err := svc.CreateQuestion(ctx, w.ID, &validator.QuestionCreateRequest{
		Text: "Name a shape", CorrectAnswer: "circle", Order: intPtr(1),
	})
	if err != nil {
		t.Fatalf("CreateQuestion() error = %v", err)
	}

	questions, err := svc.ListQuestions(ctx, w.ID)
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}
	if len(questions) != 2 || questions[0].ID != first.ID || questions[1].ID != second.ID {
		t.Fatalf("ListQuestions() order wrong: %+v", questions)
	}

	if err := svc.DeleteQuestion(ctx, first.ID); err != nil {
		t.Fatalf("DeleteQuestion() error = %v", err)
	}
	if err := svc.DeleteQuestion(ctx, first.ID); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("second DeleteQuestion() error = %v, want ErrQuestionNotFound", err)
	}
	questions, err = svc.ListQuestions(ctx, w.ID)
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("ListQuestions() after delete = %d questions, want 1", len(questions))
	}

	// Deleting the worksheet removes its questions
	if err := svc.DeleteWorksheet(ctx, w.ID); err != nil {
		t.Fatalf("DeleteWorksheet() error = %v", err)
	}
	if _, err := repo.Question().GetByID(ctx, nil, second.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("question after worksheet delete error = %v, want not found", err)
	}
}
