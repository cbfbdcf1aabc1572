package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/qgen/internal/supervisor"
)

// Sheet names in the exported workbook.
const (
	QuestionsSheet = "Questions"
	AuditSheet     = "Audit"
)

var questionHeader = []any{"#", "Type", "Difficulty", "Question", "Options", "Answer", "Solution", "Knowledge Points"}

var auditHeader = []any{"Round", "Index", "Question", "Accepted", "Valid", "Score", "Issues", "Suggestions", "Corrected Solution", "Summary", "Degraded"}

// Workbook builds an xlsx workbook with the accepted questions and the
// full audit log. The caller must Close it.
func Workbook(res *supervisor.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", QuestionsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(AuditSheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	rows := make([][]any, 0, len(res.Accepted)+1)
	rows = append(rows, questionHeader)
	for i, q := range res.Accepted {
		rec := q.Record()
		rows = append(rows, []any{
			i + 1,
			q.Type().Label(),
			q.Difficulty().Label(),
			rec.QuestionText,
			strings.Join(rec.Options, "\n"),
			rec.CorrectAnswer,
			rec.Solution,
			strings.Join(rec.KnowledgePoints, "、"),
		})
	}
	if err := writeRows(f, QuestionsSheet, rows, bold); err != nil {
		f.Close()
		return nil, err
	}

	rows = make([][]any, 0, len(res.AuditResults)+1)
	rows = append(rows, auditHeader)
	for _, o := range res.AuditResults {
		v := o.Verdict
		rows = append(rows, []any{
			o.Round,
			o.Index + 1,
			o.Question.Text(),
			o.Accepted,
			v.IsValid,
			v.Score,
			strings.Join(v.Issues, "\n"),
			strings.Join(v.Suggestions, "\n"),
			v.CorrectedSolution,
			v.Summary,
			v.Degraded,
		})
	}
	if err := writeRows(f, AuditSheet, rows, bold); err != nil {
		f.Close()
		return nil, err
	}

	for _, sheet := range []string{QuestionsSheet, AuditSheet} {
		if err := f.SetColWidth(sheet, "C", "D", 48); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetRowStyle(sheet, 1, 1, headerStyle)
}

// WriteWorkbook saves the workbook for res to path.
func WriteWorkbook(path string, res *supervisor.Result) error {
	f, err := Workbook(res)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
