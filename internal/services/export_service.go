package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/thinkable-edu/worksheet-service/internal/repositories"
)

const progressSheet = "Progress"

var progressExportHeader = []interface{}{
	"Student ID", "Answered", "Score", "Total Questions", "Percent", "Completed", "Last Updated",
}

type exportService struct {
	repo                  repositories.Repository
	logger                *slog.Logger
	defaultTotalQuestions int
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, defaultTotalQuestions int) ExportService {
	return &exportService{
		repo:                  repo,
		logger:                logger,
		defaultTotalQuestions: defaultTotalQuestions,
	}
}

func (s *exportService) ExportWorksheetProgress(ctx context.Context, worksheetID string) (*ProgressExport, error) {
	if err := requireObjectID(worksheetID); err != nil {
		return nil, err
	}

	worksheet, err := s.repo.Worksheet().GetByID(ctx, nil, worksheetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWorksheetNotFound
		}
		return nil, fmt.Errorf("failed to get worksheet: %w", err)
	}
	total := ResolveTotalQuestions(worksheet, s.defaultTotalQuestions)

	records, err := s.repo.Progress().ListByWorksheet(ctx, nil, worksheetID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), progressSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(progressSheet, "A1", &progressExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			p.StudentID,
			p.Answered,
			p.Score,
			total,
			Percent(p.Answered, total),
			p.Completed,
			p.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(progressSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(progressSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Progress exported", "worksheet_id", worksheetID, "rows", len(records))
	return &ProgressExport{
		FileName: fmt.Sprintf("progress-%s.xlsx", worksheetID),
		Data:     buf.Bytes(),
	}, nil
}
