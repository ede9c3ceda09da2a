package lead

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gforma/lead-assistant/internal/model"
)

var csvHeader = []string{
	"ID", "Fecha", "Empresa", "Sector", "Departamento",
	"Reto/Necesidad", "Temario", "Nombre", "Email", "Teléfono",
}

// WriteCSV writes leads as CSV with a header row. Syllabus line breaks are
// flattened to " | " so each lead stays on one row.
func WriteCSV(w io.Writer, leads []model.Lead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, l := range leads {
		record := []string{
			l.ID,
			l.Date,
			l.CompanyName,
			l.Sector,
			l.Department,
			l.Challenge,
			flattenLines(l.Syllabus),
			l.ContactName,
			l.ContactEmail,
			l.ContactPhone,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write lead %s: %w", l.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename returns the download name for an export taken at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("gforma_leads_%s.csv", t.Format("2006-01-02"))
}

func flattenLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", " | ")
}
