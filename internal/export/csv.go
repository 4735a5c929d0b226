// Package export renders the admin submission log as CSV for
// download or the -export CLI flag.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ahcc-digital/oncoscreen/internal/store"
)

// utf8BOM makes Excel detect the encoding; the data is Indonesian text.
const utf8BOM = "\uFEFF"

var csvHeaders = []string{"Tanggal", "Jam", "Nama", "WhatsApp", "Email", "Jenis Kanker", "Tingkat Risiko", "Sumber Info"}

// SubmissionsCSV writes the submission log, newest first as given, as
// a BOM-prefixed CSV document.
func SubmissionsCSV(w io.Writer, subs []store.Submission) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, sub := range subs {
		row := []string{
			sub.CreatedAt.Format("02/01/2006"),
			sub.CreatedAt.Format("15:04"),
			sub.Name,
			sub.WhatsApp,
			sub.Email,
			sub.CancerLabel,
			sub.RiskLevel,
			sub.InfoSource,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", sub.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
