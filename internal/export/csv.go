package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/saati/saati/internal/service"
	"github.com/saati/saati/internal/timecalc"
	"github.com/saati/saati/pkg/entity"
)

// WriteCSV renders a report as CSV: a summary block, a blank separator, and
// one row per log entry in date order.
func WriteCSV(w io.Writer, report *service.Report) error {
	cw := csv.NewWriter(w)

	summary := [][]string{
		{"Report For", report.UserName},
		{"Date Range", report.DisplayDateRange},
		{"Total Work Hours", timecalc.FormatDuration(report.TotalWork.Duration())},
		{"Total Overtime", timecalc.FormatDuration(report.TotalOvertime.Duration())},
		{"Sick Days", strconv.Itoa(report.SickDays)},
		{"Vacation Days", strconv.Itoa(report.VacationDays)},
		{},
		{"Date", "Type", "Start", "End", "Break", "Duration", "Overtime", "Notes"},
	}
	for _, row := range summary {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	for _, row := range report.Rows {
		entry := row.Entry
		start, end, breakStr, durStr, otStr := "—", "—", "—", "—", "—"
		if entry.Type == entity.LogTypeWork {
			if entry.StartTime != nil {
				start = entry.StartTime.Format("15:04:05")
			}
			if entry.EndTime != nil {
				end = entry.EndTime.Format("15:04:05")
			}
			breakStr = timecalc.FormatDurationHHMM(minutesToDuration(entry.BreakMinutes))
			durStr = timecalc.FormatDuration(row.Duration.Duration())
			otStr = timecalc.FormatDuration(row.Overtime.Duration())
		}
		record := []string{
			timecalc.FormatDisplayDate(entry.Date),
			string(entry.Type),
			start,
			end,
			breakStr,
			durStr,
			otStr,
			entry.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
