// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package summary

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/crewclock/models"
)

// Sheet names in the exported workbook
const (
	SummarySheet = "Summary"
	LogSheet     = "Logs"
)

var (
	summaryHeaders = []any{"Crew Member", "Store", "Clock-ins", "Repeated In/Out"}
	logHeaders     = []any{"Crew Member", "Store", "Type", "Shift", "Time", "Notes"}
)

// WriteWorkbook writes summaries as an .xlsx file: one row per crew member
// on the first sheet and every log line on the second. Times are shown in loc.
func WriteWorkbook(w io.Writer, summaries []models.CrewSummary, loc *time.Location) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SummarySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(LogSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeRow(f, SummarySheet, 1, summaryHeaders); err != nil {
		return err
	}
	if err := writeRow(f, LogSheet, 1, logHeaders); err != nil {
		return err
	}
	f.SetRowStyle(SummarySheet, 1, 1, bold)
	f.SetRowStyle(LogSheet, 1, 1, bold)
	f.SetColWidth(SummarySheet, "A", "B", 28)
	f.SetColWidth(LogSheet, "A", "B", 28)
	f.SetColWidth(LogSheet, "E", "E", 20)

	logRow := 2
	for i, s := range summaries {
		row := []any{s.CrewMemberName, s.LocationName, s.ClockInCount, s.RepeatedPairs}
		if err := writeRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}

		for _, ev := range s.Logs {
			notes := ""
			if ev.Notes != nil {
				notes = *ev.Notes
			}
			row := []any{
				ev.CrewMemberName,
				ev.LocationName,
				ev.Type.Label(),
				ev.Shift,
				ev.Timestamp.In(loc).Format(time.DateTime),
				notes,
			}
			if err := writeRow(f, LogSheet, logRow, row); err != nil {
				return err
			}
			logRow++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, val := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return fmt.Errorf("failed to set cell value: %w", err)
		}
	}
	return nil
}
