package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/invoicevault/template-engine/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	templates repository.TemplateRepository
	results   repository.TestResultRepository
	logger    *slog.Logger
}

func NewService(templates repository.TemplateRepository, results repository.TestResultRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{templates: templates, results: results, logger: logger}
}

// ExportTestResultsXLSX returns an XLSX workbook (as bytes) with the most
// recent test runs for the given template, newest first. limit <= 0 falls
// back to the repository default.
func (s *Service) ExportTestResultsXLSX(ctx context.Context, templateID uuid.UUID, limit int) ([]byte, error) {
	start := time.Now()

	rec, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	runs, err := s.results.ListByTemplate(ctx, templateID, limit)
	if err != nil {
		return nil, fmt.Errorf("query test results: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Test Results"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Tested At",
		"Template",
		"Success",
		"Match Score",
		"Fields Matched",
		"Fields Total",
		"Notes",
		"Extracted Data",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range runs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if !r.TestedAt.IsZero() {
			write(1, r.TestedAt.Format("2006-01-02 15:04:05"))
		} else {
			write(1, "")
		}
		write(2, rec.Name)
		write(3, r.Success)
		write(4, fmt.Sprintf("%.2f", r.MatchScore))
		write(5, r.FieldsMatched)
		write(6, r.FieldsTotal)
		if r.Notes != nil {
			write(7, truncate(*r.Notes, 140))
		} else {
			write(7, "")
		}
		write(8, truncate(string(r.ExtractedJSON), 500))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 20) // timestamp
	_ = f.SetColWidth(sheet, "B", "B", 28) // template name
	_ = f.SetColWidth(sheet, "C", "F", 14) // score and counts
	_ = f.SetColWidth(sheet, "G", "G", 48) // notes
	_ = f.SetColWidth(sheet, "H", "H", 80) // extracted payload

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"template_id", templateID.String(),
		"rows", len(runs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// truncate cuts on a rune boundary so cell values stay valid UTF-8.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n - 1
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
