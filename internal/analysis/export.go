package analysis

import (
	"fmt"
	"io"
	"time"

	"complaintdesk/dashboard/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	complaintsSheet = "Complaints"
	summarySheet    = "Summary"
)

var exportHeader = []any{
	"ID", "Title", "Category", "Status", "Department Status", "Department Remarks",
	"Student Email", "Submitted", "Resolved", "Unattended",
}

// WriteWorkbook writes the complaint list and the stats to an XLSX workbook.
func WriteWorkbook(w io.Writer, complaints []models.Complaint, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", complaintsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(complaintsSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, c := range complaints {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			c.ID.String(),
			c.Title,
			FormatCategoryLabel(c.Category),
			StatusText(c.Status),
			c.DeptStatus(),
			c.DepartmentRemarks,
			c.StudentEmail,
			c.SubmittedAt.String(),
			c.ResolvedAt.String(),
			yesNo(c.IsUnattended()),
		}
		if err := f.SetSheetRow(complaintsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	st := ComputeStats(complaints)
	summary := [][]any{
		{"Generated", now.Format(time.RFC3339)},
		{"Total", st.Total},
		{"Pending", st.Pending},
		{"In Progress", st.InProgress},
		{"Resolved", st.Resolved},
		{},
		{"Category", "Complaints"},
	}
	for _, cc := range CategoryDistribution(complaints) {
		summary = append(summary, []any{FormatCategoryLabel(cc.Category), cc.Count})
	}
	for i := range summary {
		if len(summary[i]) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &summary[i]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
