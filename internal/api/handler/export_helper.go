package handler

import (
	"bytes"

	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
	"github.com/ZaspDragon/timeclock-api/internal/export"
)

// renderTable serializes a detail listing (plus an optional per-person
// summary, XLSX only) into the requested format. The caller has already
// validated format.
func renderTable(views []ports.TimeLogView, summary []ports.PersonSummary, format string) (*bytes.Buffer, string, error) {
	if format == "xlsx" {
		buf, err := export.WriteWorkbook(views, summary)
		return buf, contentTypeXLSX, err
	}
	buf, err := export.WriteCSV(views)
	return buf, contentTypeCSV, err
}
