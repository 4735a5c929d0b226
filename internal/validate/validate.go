// Package validate holds the synchronous form validation used before
// any screening data is submitted. Validation is pure: it produces a
// field -> message map and has no side effects.
package validate

import (
	"regexp"
	"strings"
)

var (
	// Indonesian mobile numbers: 08..., 628..., +628... after
	// stripping spaces and dashes.
	phoneRe = regexp.MustCompile(`^(\+62|62|0)8[1-9][0-9]{6,11}$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s.'\-]{3,}$`)
)

// LeadForm is the contact form collected after the quiz.
type LeadForm struct {
	Name           string `json:"name"`
	WhatsApp       string `json:"whatsapp"`
	Email          string `json:"email"`
	InfoSource     string `json:"infoSource"`
	MarketingOptIn bool   `json:"marketingOptIn"`
}

// normalizePhone strips spaces and dashes before pattern matching.
func normalizePhone(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}

// ValidPhone reports whether s is an acceptable Indonesian mobile number.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(normalizePhone(s))
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// Lead validates the post-quiz contact form. The returned map is empty
// when the form is acceptable.
func Lead(f LeadForm) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Nama lengkap wajib diisi"
	}

	if strings.TrimSpace(f.WhatsApp) == "" {
		errs["whatsapp"] = "Nomor WhatsApp wajib diisi"
	} else if !ValidPhone(f.WhatsApp) {
		errs["whatsapp"] = "Format nomor tidak valid (contoh: 08123456789)"
	}

	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = "Email wajib diisi"
	} else if !ValidEmail(f.Email) {
		errs["email"] = "Format email tidak valid"
	}

	if f.InfoSource == "" {
		errs["infoSource"] = "Wajib dipilih"
	}

	return errs
}

// ChatProfile is the profile collected before the conversational flow.
type ChatProfile struct {
	Name           string `json:"name"`
	Age            string `json:"age"`
	Gender         string `json:"gender"`
	WhatsApp       string `json:"whatsapp"`
	Email          string `json:"email"`
	ChiefComplaint string `json:"chiefComplaint"`
}

// Chat validates the conversational-flow profile. In relaxed mode the
// contact fields are deferred to the mid-conversation hook prompt and
// are not required here.
func Chat(p ChatProfile, mode string) map[string]string {
	errs := map[string]string{}

	if !nameRe.MatchString(p.Name) {
		errs["name"] = "Nama tidak valid (minimal 3 huruf)"
	}
	if strings.TrimSpace(p.Age) == "" {
		errs["age"] = "Usia wajib diisi"
	}
	if p.Gender != "Laki-laki" && p.Gender != "Perempuan" {
		errs["gender"] = "Jenis kelamin wajib dipilih"
	}
	if strings.TrimSpace(p.ChiefComplaint) == "" {
		errs["chiefComplaint"] = "Keluhan utama wajib diisi"
	}

	if mode == "strict" {
		if !ValidPhone(p.WhatsApp) {
			errs["whatsapp"] = "Nomor WhatsApp tidak valid"
		}
		if !ValidEmail(p.Email) {
			errs["email"] = "Format alamat email tidak valid"
		}
	}

	return errs
}

// Contact validates the hook form shown mid-conversation in relaxed
// mode, once the assistant is about to produce a report.
func Contact(whatsapp, email string) map[string]string {
	errs := map[string]string{}
	if !ValidPhone(whatsapp) {
		errs["whatsapp"] = "Nomor WhatsApp tidak valid"
	}
	if !ValidEmail(email) {
		errs["email"] = "Format alamat email tidak valid"
	}
	return errs
}
