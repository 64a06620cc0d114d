package performance

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderHistoryPDF lays out a performance history as an A4 report.
func RenderHistoryPDF(history History) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Performance history", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Performance history")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Employee: %s", history.EmployeeName)))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Goals")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	if len(history.Goals) == 0 {
		pdf.Cell(0, 6, "No goals recorded.")
		pdf.Ln(8)
	}
	for _, goal := range history.Goals {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, tr(fmt.Sprintf("%s  [%s]  due %s", goal.Title, goal.Status, goal.DueDate.Format("2006-01-02"))))
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 5, tr("Manager: "+goal.ManagerName))
		pdf.Ln(5)
		if goal.Description != "" {
			pdf.MultiCell(0, 5, tr(goal.Description), "", "L", false)
		}
		pdf.Ln(3)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Feedback")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	if len(history.Feedback) == 0 {
		pdf.Cell(0, 6, "No feedback recorded.")
		pdf.Ln(8)
	}
	for _, fb := range history.Feedback {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, tr(fmt.Sprintf("%s by %s on %s", fb.GoalTitle, fb.ManagerName, fb.CreatedAt.Format("2006-01-02"))))
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(fb.Content), "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render history pdf: %w", err)
	}
	return buf.Bytes(), nil
}
