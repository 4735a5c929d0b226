package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ahcc-digital/oncoscreen/internal/quiz"
	"github.com/ahcc-digital/oncoscreen/internal/store"
)

// analysisGenerator is the slice of LLMService the analysis gateway
// needs; narrowed to an interface so the fallback path is testable.
type analysisGenerator interface {
	GenerateAnalysis(ctx context.Context, prompt string) (string, error)
}

// AnalysisService packages quiz responses into a prompt and parses the
// structured result. It never returns an error: any failure degrades
// to the safe fallback so the caller always reaches a result state.
type AnalysisService struct {
	llm analysisGenerator
}

func NewAnalysisService(llm analysisGenerator) *AnalysisService {
	return &AnalysisService{llm: llm}
}

// BuildPrompt renders the oncologist prompt embedding every recorded
// response. Multi-select answers are joined with ", ".
func BuildPrompt(responses []quiz.Response, name string, category quiz.Category) string {
	var formatted strings.Builder
	for _, r := range responses {
		formatted.WriteString(fmt.Sprintf("- Tanya: %s\n  Jawab: %s\n", r.QuestionText, strings.Join(r.Values(), ", ")))
	}

	return fmt.Sprintf(`Anda adalah onkolog (dokter ahli kanker) AI. Pengguna bernama %s sedang melakukan screening mandiri khusus untuk risiko %s.

Data Profil Pengguna:
%s
Instruksi:
1. Analisis risiko pengguna secara spesifik terhadap %s.
2. Jika pengguna memilih gejala yang spesifik mengarah ke %s (misal batuk darah untuk paru, benjolan untuk payudara), naikkan tingkat risiko.
3. Gunakan bahasa yang empatik, profesional, dan personal (sapa pengguna dengan nama %s).
4. Berikan rekomendasi yang relevan dengan %s.`,
		name, category.Label, formatted.String(), category.Label, category.Label, name, category.Label)
}

// FallbackResult is the canned lowest-tier result used whenever the
// analysis call or its output cannot be trusted.
func FallbackResult(name string) store.AnalysisResult {
	return store.AnalysisResult{
		RiskLevel: store.RiskLow,
		Summary: fmt.Sprintf("Halo %s, mohon maaf sistem sedang sibuk. Namun berdasarkan data umum, "+
			"jika Anda tidak memiliki gejala berat, risiko cenderung rendah.", name),
		Recommendations:   []string{"Silakan konsultasi ke dokter spesialis onkologi terdekat."},
		MedicalDisclaimer: quiz.DisclaimerText,
	}
}

// Analyze runs the AI evaluation for a completed quiz. Transport
// errors, malformed JSON, and out-of-enum values all fall back.
func (s *AnalysisService) Analyze(ctx context.Context, responses []quiz.Response, name string, category quiz.Category) store.AnalysisResult {
	prompt := BuildPrompt(responses, name, category)

	raw, err := s.llm.GenerateAnalysis(ctx, prompt)
	if err != nil {
		log.Printf("Analysis call failed for category %s: %v. Using fallback result.", category.ID, err)
		return FallbackResult(name)
	}

	var result store.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Printf("Analysis response was not valid JSON (%.80s...): %v. Using fallback result.", raw, err)
		return FallbackResult(name)
	}

	if !validRiskLevel(result.RiskLevel) || strings.TrimSpace(result.Summary) == "" || len(result.Recommendations) == 0 {
		log.Printf("Analysis response incomplete (riskLevel=%q, %d recommendations). Using fallback result.",
			result.RiskLevel, len(result.Recommendations))
		return FallbackResult(name)
	}

	if strings.TrimSpace(result.MedicalDisclaimer) == "" {
		result.MedicalDisclaimer = quiz.DisclaimerText
	}
	return result
}

func validRiskLevel(level string) bool {
	switch level {
	case store.RiskLow, store.RiskMedium, store.RiskHigh:
		return true
	}
	return false
}
