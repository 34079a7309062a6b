// Package export renders range listings into tabular artifacts: a fixed
// column layout shared by the CSV and XLSX sinks.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

// Header is the fixed column order of every exported table.
var Header = []string{
	"Date", "Day", "Name", "Company",
	"Clock In", "Lunch Out", "End Lunch", "Clock Out",
	"Lunch (mins)", "Total Hours", "Notes",
}

// Row renders one record view. Absent derived values render as empty
// strings, never zero.
func Row(v ports.TimeLogView) []string {
	lunch := ""
	if v.LunchMinutes != nil {
		lunch = strconv.Itoa(*v.LunchMinutes)
	}
	total := ""
	if v.TotalHours != nil {
		total = formatHours(*v.TotalHours)
	}
	return []string{
		v.Date, v.Day, v.Name, v.Company,
		v.ClockIn, v.LunchOut, v.EndLunch, v.ClockOut,
		lunch, total, v.Notes,
	}
}

// Rows renders a full detail listing, preserving the input order.
func Rows(views []ports.TimeLogView) [][]string {
	out := make([][]string, 0, len(views))
	for _, v := range views {
		out = append(out, Row(v))
	}
	return out
}

// formatHours prints with minimal digits: 7.5 not 7.50, 8 not 8.00.
func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// EmployeeFilename names a single person's export, e.g.
// timeclock_Ana_Torres_2024-03-04.csv.
func EmployeeFilename(name, dateISO, ext string) string {
	return fmt.Sprintf("timeclock_%s_%s.%s", strings.ReplaceAll(name, " ", "_"), dateISO, ext)
}

// MasterFilename names the manager's cross-person export.
func MasterFilename(fromISO, toISO, ext string) string {
	return fmt.Sprintf("master_time_log_%s_to_%s.%s", fromISO, toISO, ext)
}
