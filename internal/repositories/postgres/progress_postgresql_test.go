package postgres

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/thinkable-edu/worksheet-service/internal/cache"
	"github.com/thinkable-edu/worksheet-service/internal/models"
	"github.com/thinkable-edu/worksheet-service/internal/repositories"
	"github.com/thinkable-edu/worksheet-service/internal/testutil"
)

const (
	studentA    = "6f1c1f0e-3a52-4c1e-9d0b-0a5f1d2c3b4a"
	worksheetID = "0b7e5c1a-8f4d-4e2b-9a6c-1d3e5f7a9b2c"
)

func TestProgressPostgreSQL_GetOrCreateForUpdate(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProgressPostgreSQL(db)
	ctx := context.Background()

	if _, err := repo.GetOrCreateForUpdate(ctx, nil, studentA, worksheetID); err == nil {
		t.Fatal("GetOrCreateForUpdate() without transaction should fail")
	}

	var firstID string
	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			progress, err := repo.GetOrCreateForUpdate(ctx, tx, studentA, worksheetID)
			if err != nil {
				return err
			}
			if firstID == "" {
				firstID = progress.ID
			}
			if progress.ID != firstID {
				t.Errorf("call %d returned id %s, want %s", i, progress.ID, firstID)
			}
			if progress.Answered != 0 || progress.Score != 0 || progress.Completed || progress.Version != 1 {
				t.Errorf("fresh progress = %+v, want zero aggregate at version 1", progress)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("transaction %d error = %v", i, err)
		}
	}

	var count int64
	db.Model(&models.Progress{}).Count(&count)
	if count != 1 {
		t.Errorf("progress rows = %d, want 1", count)
	}
}

func TestProgressPostgreSQL_AppendAnswer(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProgressPostgreSQL(db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		progress, err := repo.GetOrCreateForUpdate(ctx, tx, studentA, worksheetID)
		if err != nil {
			return err
		}
		progress.Answered, progress.Score = 1, 1
		return repo.AppendAnswer(ctx, tx, progress, &models.ProgressAnswer{
			QuestionID:     "q1",
			SelectedAnswer: "4",
			IsCorrect:      true,
		})
	})
	if err != nil {
		t.Fatalf("AppendAnswer() error = %v", err)
	}

	stored, err := repo.GetByStudentAndWorksheet(ctx, nil, studentA, worksheetID)
	if err != nil {
		t.Fatalf("GetByStudentAndWorksheet() error = %v", err)
	}
	if stored.Answered != 1 || stored.Score != 1 || stored.Version != 2 {
		t.Errorf("stored = %+v, want answered 1 score 1 version 2", stored)
	}
	if n, _ := repo.CountAnswers(ctx, nil, stored.ID); n != 1 {
		t.Errorf("CountAnswers() = %d, want 1", n)
	}

	t.Run("duplicate question", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			progress, err := repo.GetOrCreateForUpdate(ctx, tx, studentA, worksheetID)
			if err != nil {
				return err
			}
			progress.Answered = 2
			return repo.AppendAnswer(ctx, tx, progress, &models.ProgressAnswer{QuestionID: "q1", SelectedAnswer: "5"})
		})
		if !errors.Is(err, repositories.ErrDuplicateAnswer) || !repositories.IsDuplicateError(err) {
			t.Fatalf("error = %v, want ErrDuplicateAnswer", err)
		}
	})

	t.Run("stale version", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			progress, err := repo.GetOrCreateForUpdate(ctx, tx, studentA, worksheetID)
			if err != nil {
				return err
			}
			progress.Version--
			return repo.AppendAnswer(ctx, tx, progress, &models.ProgressAnswer{QuestionID: "q2", SelectedAnswer: "x"})
		})
		if !errors.Is(err, repositories.ErrVersionConflict) {
			t.Fatalf("error = %v, want ErrVersionConflict", err)
		}
		if n, _ := repo.CountAnswers(ctx, nil, stored.ID); n != 1 {
			t.Errorf("rolled back answer was persisted, count = %d", n)
		}
	})
}

func TestProgressPostgreSQL_GetByStudentAndWorksheet_NotFound(t *testing.T) {
	repo := NewProgressPostgreSQL(testutil.DB(t))

	_, err := repo.GetByStudentAndWorksheet(context.Background(), nil, studentA, worksheetID)
	if !repositories.IsNotFoundError(err) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestProgressPostgreSQL_ListByWorksheet(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProgressPostgreSQL(db)
	ctx := context.Background()

	for _, student := range []string{"s-2", "s-1"} {
		err := db.Transaction(func(tx *gorm.DB) error {
			progress, err := repo.GetOrCreateForUpdate(ctx, tx, student, worksheetID)
			if err != nil {
				return err
			}
			progress.Answered = 1
			return repo.AppendAnswer(ctx, tx, progress, &models.ProgressAnswer{QuestionID: "q1", SelectedAnswer: "a"})
		})
		if err != nil {
			t.Fatalf("seed %s: %v", student, err)
		}
	}

	list, err := repo.ListByWorksheet(ctx, nil, worksheetID)
	if err != nil {
		t.Fatalf("ListByWorksheet() error = %v", err)
	}
	if len(list) != 2 || list[0].StudentID != "s-1" || len(list[0].Answers) != 1 {
		t.Fatalf("ListByWorksheet() = %+v", list)
	}
}

func TestWorksheetPostgreSQL_CacheInvalidation(t *testing.T) {
	db := testutil.DB(t)
	client, mr := testutil.Redis(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db, RedisClient: client})
	ctx := context.Background()

	total := 2
	worksheet := &models.Worksheet{Title: "Fractions", Topic: "Math", Level: models.LevelElementary, TotalQuestions: &total}
	if err := repo.Worksheet().Create(ctx, nil, worksheet); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := repo.Worksheet().GetByID(ctx, nil, worksheet.ID); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !mr.Exists(cache.WorksheetCacheConfig.Prefix + cache.WorksheetKey(worksheet.ID)) {
		t.Fatal("worksheet should be cached after first read")
	}

	worksheet.Title = "Fractions II"
	if err := repo.Worksheet().Update(ctx, nil, worksheet); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := repo.Worksheet().GetByID(ctx, nil, worksheet.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Fractions II" || got.TotalQuestions == nil || *got.TotalQuestions != 2 {
		t.Errorf("GetByID() after update = %+v", got)
	}

	err = repo.WithTransaction(ctx, func(r repositories.Repository) error {
		if err := r.Question().DeleteByWorksheet(ctx, nil, worksheet.ID); err != nil {
			return err
		}
		return r.Worksheet().Delete(ctx, nil, worksheet.ID)
	})
	if err != nil {
		t.Fatalf("delete transaction error = %v", err)
	}
	if _, err := repo.Worksheet().GetByID(ctx, nil, worksheet.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("GetByID() after delete error = %v, want not found", err)
	}
	if err := repo.Worksheet().Delete(ctx, nil, worksheet.ID); !repositories.IsNotFoundError(err) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}

func TestQuestionPostgreSQL_ListByWorksheetOrder(t *testing.T) {
	db := testutil.DB(t)
	client, _ := testutil.Redis(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db, RedisClient: client})
	ctx := context.Background()

	for i, text := range []string{"third", "first", "second"} {
		q := &models.Question{WorksheetID: worksheetID, Text: text, Order: []int{3, 1, 2}[i], CorrectAnswer: "x"}
		if err := q.SetOptions([]string{"x", "y"}); err != nil {
			t.Fatal(err)
		}
		if err := repo.Question().Create(ctx, nil, q); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		// Populate the listing cache between writes to check Create invalidates it
		if _, err := repo.Question().ListByWorksheet(ctx, nil, worksheetID); err != nil {
			t.Fatal(err)
		}
	}

	list, err := repo.Question().ListByWorksheet(ctx, nil, worksheetID)
	if err != nil {
		t.Fatalf("ListByWorksheet() error = %v", err)
	}
	if len(list) != 3 || list[0].Text != "first" || list[2].Text != "third" {
		t.Fatalf("ListByWorksheet() order = %v", list)
	}
	options, err := list[0].OptionList()
	if err != nil || len(options) != 2 {
		t.Errorf("OptionList() = %v, %v", options, err)
	}

	if err := repo.Question().Delete(ctx, nil, list[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	list, _ = repo.Question().ListByWorksheet(ctx, nil, worksheetID)
	if len(list) != 2 {
		t.Errorf("ListByWorksheet() after delete len = %d, want 2", len(list))
	}
	if _, err := repo.Question().GetByID(ctx, nil, "missing"); !repositories.IsNotFoundError(err) {
		t.Errorf("GetByID(missing) error = %v, want not found", err)
	}
}
