// Package report renders the shareable chat report: the public URL,
// the WhatsApp handoff to a human advisor, and the QR/PDF exports.
package report

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ahcc-digital/oncoscreen/internal/config"
	"github.com/ahcc-digital/oncoscreen/internal/store"
	"github.com/ahcc-digital/oncoscreen/internal/validate"
)

// URL is the public address of a report page.
func URL(reportID string) string {
	return strings.TrimRight(config.AppConfig.PublicBaseURL, "/") + "/report/" + reportID
}

// Salutation picks the Indonesian honorific for a respondent: Adik for
// minors, Kakak for young adults, Ibu/Bapak otherwise.
func Salutation(age, gender string) string {
	n, err := strconv.Atoi(strings.TrimSpace(age))
	if err == nil {
		if n < 18 {
			return "Adik"
		}
		if n <= 30 {
			return "Kakak"
		}
	}
	if gender == "Perempuan" {
		return "Ibu"
	}
	return "Bapak"
}

// AdvisorLink builds the wa.me deep link that opens a chat with the
// patient advisor, prefilled with the respondent's report context.
func AdvisorLink(user validate.ChatProfile, data store.ReportData, reportID string) string {
	cfg := config.AppConfig
	msg := fmt.Sprintf(
		"Halo Kak %s, saya %s %s (usia %s). Saya baru saja menyelesaikan skrining dengan hasil risiko %s (skor %d). Mohon bantuannya untuk langkah selanjutnya. Laporan saya: %s",
		cfg.AdvisorName,
		Salutation(user.Age, user.Gender),
		user.Name,
		user.Age,
		data.RiskLevel,
		data.RiskScore,
		URL(reportID),
	)
	return "https://wa.me/" + cfg.AdvisorPhone + "?text=" + url.QueryEscape(msg)
}
