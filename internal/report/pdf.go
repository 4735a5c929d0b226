package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/ahcc-digital/oncoscreen/internal/store"
)

// PDF writes a printable snapshot of the report. The layout mirrors
// the web report page: identity block, risk verdict, then the
// narrative sections.
func PDF(w io.Writer, rep *store.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Laporan Skrining Awal", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Laporan Skrining Awal", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Adi Husada Cancer Center", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Nomor laporan: %s", rep.ID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Data Pasien", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Nama: %s", rep.User.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Usia: %s", rep.User.Age), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Jenis kelamin: %s", rep.User.Gender), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Tanggal: %s", rep.CreatedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Hasil Penilaian", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, fmt.Sprintf("Tingkat Risiko: %s (%d/100)", rep.Data.RiskLevel, rep.Data.RiskScore), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, rep.Data.Summary, "", "L", false)
	pdf.Ln(4)

	section(pdf, "Analisis Anamnesis", rep.Data.AnamnesisReasoning)

	if len(rep.Data.SuspectedConditions) > 0 {
		section(pdf, "Kemungkinan Kondisi", bulleted(rep.Data.SuspectedConditions))
	}
	section(pdf, "Rekomendasi", bulleted(rep.Data.Recommendations))

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Laporan ini adalah hasil skrining awal berbasis AI dan bukan diagnosis medis. "+
		"Silakan konsultasikan hasil ini dengan dokter.", "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render report PDF: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(4)
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
