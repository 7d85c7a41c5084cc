package results

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

// ExportXLSX writes a workbook with a "Results" summary sheet and an
// "Answers" sheet listing every question of every session. Answers are
// raw labels; no scoring is applied.
func ExportXLSX(w io.Writer, results []store.ResultRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Results"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("create results sheet: %w", err)
	}
	headers := []any{
		"Session ID", "Topic", "Status", "Reason", "Started At", "Finished At",
		"Elapsed (s)", "Questions", "Answered", "Mode Exits", "Violations", "Degraded",
	}
	if err := f.SetSheetRow(summarySheet, "A1", &headers); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}

	const answerSheet = "Answers"
	if _, err := f.NewSheet(answerSheet); err != nil {
		return fmt.Errorf("create answers sheet: %w", err)
	}
	answerHeaders := []any{"Session ID", "#", "Tier", "Source", "Question", "Chosen", "Key"}
	if err := f.SetSheetRow(answerSheet, "A1", &answerHeaders); err != nil {
		return fmt.Errorf("write answers header: %w", err)
	}

	answerRow := 2
	for i, res := range results {
		started := ""
		if !res.StartedAt.IsZero() {
			started = res.StartedAt.Format(timeLayout)
		}
		row := []any{
			res.SessionID, res.Topic, res.Status, res.Reason, started,
			res.FinishedAt.Format(timeLayout), res.ElapsedSeconds, res.QuestionCount,
			res.AnsweredCount, res.ModeExits, res.Violations, res.Degraded,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write result %s: %w", res.SessionID, err)
		}

		if len(res.Payload) == 0 {
			continue
		}
		rec, err := Decode(res.Payload)
		if err != nil {
			return fmt.Errorf("result %s: %w", res.SessionID, err)
		}
		for n, q := range rec.Questions {
			arow := []any{
				res.SessionID, n + 1, string(q.Tier), string(q.Source), q.Text,
				string(rec.Answers[q.ID]), string(q.Correct),
			}
			cell, _ := excelize.CoordinatesToCellName(1, answerRow)
			if err := f.SetSheetRow(answerSheet, cell, &arow); err != nil {
				return fmt.Errorf("write answers for %s: %w", res.SessionID, err)
			}
			answerRow++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
