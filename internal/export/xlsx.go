package export

import (
	"fmt"
	"io"

	"github.com/Dan9191/loan-appraisal/internal/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	scheduleSheet = "Schedule"
	infoSheet     = "Appraisal"

	// built-in number formats: #,##0 and #,##0.00
	numFmtWhole = 3
	numFmtCents = 4
)

var scheduleHeader = []interface{}{"Period", "Opening balance", "Principal due", "Interest due", "Total due", "Closing balance"}

// ScheduleXLSX writes the repayment schedule as a single-sheet workbook
func ScheduleXLSX(w io.Writer, schedule *models.ScheduleResponse, places int32) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSchedule(f, scheduleSheet, schedule, places); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// AppraisalXLSX writes the appraisal fields, ratios and schedule as a two-sheet workbook
func AppraisalXLSX(w io.Writer, report *models.AppraisalReport, places int32) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", infoSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(infoSheet, "A1", &[]interface{}{"Field", "Value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, field := range reportFields(report) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{field.name, cellValue(field.value)}
		if err := f.SetSheetRow(infoSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s: %w", field.name, err)
		}
	}
	if err := f.SetColWidth(infoSheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(infoSheet, "B", "B", 40); err != nil {
		return err
	}

	if report.Schedule != nil {
		if _, err := f.NewSheet(scheduleSheet); err != nil {
			return fmt.Errorf("failed to add sheet: %w", err)
		}
		if err := writeSchedule(f, scheduleSheet, report.Schedule, places); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSchedule(f *excelize.File, sheet string, schedule *models.ScheduleResponse, places int32) error {
	if err := f.SetSheetRow(sheet, "A1", &scheduleHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range schedule.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.PeriodIndex,
			r.OpeningBalance.InexactFloat64(),
			r.PrincipalDue.InexactFloat64(),
			r.InterestDue.InexactFloat64(),
			r.TotalDue.InexactFloat64(),
			r.ClosingBalance.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write period %d: %w", r.PeriodIndex, err)
		}
	}

	totalRow := len(schedule.Rows) + 2
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return err
	}
	s := schedule.Summary
	totals := []interface{}{"Total", nil, s.TotalPrincipal.InexactFloat64(), s.TotalInterest.InexactFloat64(), s.TotalPaid.InexactFloat64(), nil}
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}

	numFmt := numFmtCents
	if places == 0 {
		numFmt = numFmtWhole
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: numFmt})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(6, totalRow)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B2", last, style); err != nil {
		return fmt.Errorf("failed to style schedule: %w", err)
	}
	return f.SetColWidth(sheet, "B", "F", 18)
}

func cellValue(v interface{}) interface{} {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}
