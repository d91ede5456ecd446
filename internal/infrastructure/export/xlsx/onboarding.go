package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
)

const (
	overviewSheet = "Onboarding"
	tasksSheet    = "Tasks"
)

var overviewColumns = []string{
	"Applicant", "Stage", "Department", "Manager", "Expected Start",
	"Tasks", "Completed", "Progress %", "Overdue", "Bottleneck", "Next Task", "Outstanding Documents",
}

var taskColumns = []string{
	"Applicant", "Task ID", "Title", "Type", "Status", "Priority", "Due Date", "Overdue",
}

// WriteOnboardingOverview renders one overview row per applicant and one row
// per task, evaluated at now.
func WriteOnboardingOverview(w io.Writer, records []domain.OnboardingRecord, now time.Time) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(tasksSheet); err != nil {
		return fmt.Errorf("create tasks sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	overview := make([][]any, 0, len(records))
	tasks := make([][]any, 0)
	for _, record := range records {
		summary := record.Summary(now)
		nextTask := ""
		if summary.NextTask != nil {
			nextTask = summary.NextTask.Title
		}
		overview = append(overview, []any{
			record.ApplicantID,
			summary.StageLabel,
			record.AssignedDepartment,
			record.AssignedManager,
			dateCell(record.ExpectedStartDate),
			summary.TotalTasks,
			summary.CompletedTasks,
			summary.Progress,
			summary.OverdueTasks,
			yesNo(summary.Bottleneck),
			nextTask,
			summary.OutstandingDocuments,
		})
		for _, task := range record.Tasks {
			tasks = append(tasks, []any{
				record.ApplicantID,
				task.ID,
				task.Title,
				string(task.Type),
				string(task.Status),
				string(task.Priority),
				dateCell(task.DueDate),
				yesNo(task.Overdue(now)),
			})
		}
	}

	if err := writeSheet(f, overviewSheet, overviewColumns, overview, headerStyle); err != nil {
		return err
	}
	if err := writeSheet(f, tasksSheet, taskColumns, tasks, headerStyle); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, columns []string, rows [][]any, headerStyle int) error {
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze %s header: %w", sheet, err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	if len(rows) > 0 {
		if err := f.AutoFilter(sheet, "A1:"+lastHeader, nil); err != nil {
			return fmt.Errorf("filter %s: %w", sheet, err)
		}
	}
	return nil
}

func dateCell(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
