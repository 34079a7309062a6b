package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

// WriteCSV renders the header plus detail rows as comma-separated text.
func WriteCSV(views []ports.TimeLogView) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, v := range views {
		if err := w.Write(Row(v)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return &buf, nil
}
