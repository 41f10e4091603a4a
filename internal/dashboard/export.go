package dashboard

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gokatarajesh/lgs-tracker/internal/listing"
	"github.com/gokatarajesh/lgs-tracker/internal/scoring"
)

// Workbook sheet names.
const (
	TestsSheet = "Tests"
	ExamsSheet = "Exams"
)

const exportDateLayout = "2006-01-02 15:04"

// Report is everything the caller has logged, newest first.
type Report struct {
	Tests []ResultRow
	Exams []ExamView
}

// Export collects the caller's practice tests and exams for download.
func (s *Service) Export(ctx context.Context, ownerID string) (Report, error) {
	results, err := s.stores.Results.ListByOwner(ctx, ownerID)
	if err != nil {
		return Report{}, err
	}
	exams, err := s.stores.Exams.ListByOwner(ctx, ownerID)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Tests: make([]ResultRow, 0, len(results)),
		Exams: make([]ExamView, 0, len(exams)),
	}
	for _, r := range newestFirst(results) {
		row, err := s.row(r)
		if err != nil {
			return Report{}, err
		}
		rep.Tests = append(rep.Tests, row)
	}
	for _, e := range newestFirst(exams) {
		v, err := s.examView(e)
		if err != nil {
			return Report{}, err
		}
		rep.Exams = append(rep.Exams, v)
	}
	return rep, nil
}

// WriteWorkbook renders the report as an .xlsx file with one sheet for
// tests and one for exams. Exam columns follow subjects in curriculum order.
func (s *Service) WriteWorkbook(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TestsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ExamsSheet); err != nil {
		return err
	}

	testHeader := []interface{}{"Date", "Subject", "Correct", "Wrong", "Empty", "Net", "Success %", "Band", "Topics"}
	if err := setRow(f, TestsSheet, 1, testHeader); err != nil {
		return err
	}
	for i, r := range rep.Tests {
		cells := []interface{}{
			formatDate(r), r.Subject, r.Score.Correct, r.Score.Wrong, r.Score.Empty,
			r.Net, r.SuccessRate, string(r.Band), strings.Join(r.Topics, ", "),
		}
		if err := setRow(f, TestsSheet, i+2, cells); err != nil {
			return err
		}
	}

	names := s.catalog.Names()
	examHeader := []interface{}{"Date", "Name", "Publisher"}
	for _, name := range names {
		examHeader = append(examHeader, name+" Net")
	}
	examHeader = append(examHeader, "Total Net", "Composite")
	if err := setRow(f, ExamsSheet, 1, examHeader); err != nil {
		return err
	}
	for i, e := range rep.Exams {
		nets := make(map[string]float64, len(e.Breakdown))
		for _, b := range e.Breakdown {
			nets[b.Subject] = b.Net
		}
		cells := []interface{}{formatDate(e), e.Name, e.Publisher}
		for _, name := range names {
			cells = append(cells, roundNet(nets[name]))
		}
		cells = append(cells, roundNet(e.TotalNet), e.Composite.Score)
		if err := setRow(f, ExamsSheet, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func formatDate(t listing.Timed) string {
	ts := t.Timestamp()
	if ts.IsZero() {
		return ""
	}
	return ts.Format(exportDateLayout)
}

func roundNet(v float64) float64 {
	return scoring.RoundTo(v, 2)
}
