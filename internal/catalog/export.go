package catalog

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const weightageSheet = "Weightage"

// WriteWeightageWorkbook writes an .xlsx workbook with the exam's subject
// weightage, highest first, and a pie chart of the split.
func WriteWeightageWorkbook(w io.Writer, exam Exam) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", weightageSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := []any{"Subject", "Weightage %"}
	if err := f.SetSheetRow(weightageSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	rows := SortedWeightage(exam)
	for i, sw := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{sw.Subject, sw.Weightage}
		if err := f.SetSheetRow(weightageSheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s: %w", sw.Subject, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetCellStyle(weightageSheet, "A1", "B1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetColWidth(weightageSheet, "A", "A", 24); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if len(rows) > 0 {
		last := len(rows) + 1
		chart := &excelize.Chart{
			Type: excelize.Pie,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$B$1", weightageSheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", weightageSheet, last),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", weightageSheet, last),
			}},
			Title: []excelize.RichTextRun{{Text: exam.Name + " subject weightage"}},
		}
		if err := f.AddChart(weightageSheet, "D2", chart); err != nil {
			return fmt.Errorf("adding chart: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
