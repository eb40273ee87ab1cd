package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportWorksheetProgress(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()
	export := NewExportService(f.repo, discardLogger(), DefaultTotalQuestions)

	w := f.worksheet(t, intPtr(2))
	q1 := f.question(t, w.ID, "A", "A", "B")
	q2 := f.question(t, w.ID, "B", "A", "B")

	alice, bob := uuid.NewString(), uuid.NewString()
	for _, req := range []struct{ student, question, answer string }{
		{alice, q1.ID, "A"},
		{alice, q2.ID, "B"},
		{bob, q1.ID, "B"},
	} {
		if _, err := f.service.SubmitAnswer(ctx, submission(req.student, w.ID, req.question, req.answer)); err != nil {
			t.Fatalf("SubmitAnswer() error = %v", err)
		}
	}

	out, err := export.ExportWorksheetProgress(ctx, w.ID)
	if err != nil {
		t.Fatalf("ExportWorksheetProgress() error = %v", err)
	}
	if out.FileName != "progress-"+w.ID+".xlsx" {
		t.Errorf("FileName = %q", out.FileName)
	}

	book, err := excelize.OpenReader(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(progressSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if rows[0][0] != "Student ID" || rows[0][4] != "Percent" {
		t.Errorf("header = %v", rows[0])
	}

	byStudent := map[string][]string{}
	for _, row := range rows[1:] {
		byStudent[row[0]] = row
	}
	if row := byStudent[alice]; len(row) < 6 || row[1] != "2" || row[2] != "2" || row[4] != "100" || !cellTrue(row[5]) {
		t.Errorf("alice row = %v", row)
	}
	if row := byStudent[bob]; len(row) < 6 || row[1] != "1" || row[2] != "0" || row[4] != "50" || cellTrue(row[5]) {
		t.Errorf("bob row = %v", row)
	}
}

func TestExportService_Errors(t *testing.T) {
	f := newProgressFixture(t)
	export := NewExportService(f.repo, discardLogger(), DefaultTotalQuestions)

	if _, err := export.ExportWorksheetProgress(context.Background(), "bad"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("malformed id error = %v, want ErrValidationFailed", err)
	}
	if _, err := export.ExportWorksheetProgress(context.Background(), uuid.NewString()); !errors.Is(err, ErrWorksheetNotFound) {
		t.Errorf("unknown worksheet error = %v, want ErrWorksheetNotFound", err)
	}
}

func cellTrue(v string) bool {
	return v == "TRUE" || v == "1"
}
