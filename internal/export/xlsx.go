// Package export writes generated study plans to spreadsheet files
// students can download and edit.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/studyflowhq/studyflow/internal/planner"
)

const dateLayout = "2006-01-02"

// WriteXLSX writes the plan as an .xlsx workbook with a summary
// sheet, a per-day sheet, and a per-item sheet.
func WriteXLSX(plan *planner.Plan, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, plan); err != nil {
		return err
	}
	if err := writeDays(f, plan); err != nil {
		return err
	}
	if err := writeItems(f, plan); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, plan *planner.Plan) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating %s sheet: %w", sheet, err)
	}

	d := plan.Diagnostics
	rows := [][]interface{}{
		{"Student", plan.StudentID},
		{"Status", string(plan.Status)},
		{"Generated", plan.GeneratedAt.Format(dateLayout)},
		{"Horizon days", plan.HorizonDays},
		{"Coverage", fmt.Sprintf("%.0f%%", d.CoverageRatio*100)},
		{"Required hours", d.RequiredHours},
		{"Available hours", d.AvailableHours},
		{"Workload", d.Intensity},
		{"Topics scheduled", fmt.Sprintf("%d of %d", d.TopicsScheduled, d.TopicsTotal)},
	}
	if d.EstimatedCompletion != nil {
		rows = append(rows, []interface{}{"Estimated completion", d.EstimatedCompletion.Format(dateLayout)})
	}
	for _, w := range d.Warnings {
		rows = append(rows, []interface{}{"Warning", w})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func writeDays(f *excelize.File, plan *planner.Plan) error {
	const sheet = "Days"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating %s sheet: %w", sheet, err)
	}

	header := []interface{}{"Date", "Weekday", "Hours", "Day off"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	for i, d := range plan.Days {
		row := []interface{}{
			d.Date.Format(dateLayout),
			d.Date.Weekday().String(),
			d.TotalHours,
			d.DayOff,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func writeItems(f *excelize.File, plan *planner.Plan) error {
	const sheet = "Items"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating %s sheet: %w", sheet, err)
	}

	header := []interface{}{"Date", "Course", "Topic", "Hours", "Order"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	for i, it := range plan.Items {
		row := []interface{}{
			it.Date.Format(dateLayout),
			it.CourseID,
			it.TopicID,
			it.Hours,
			it.Order,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
