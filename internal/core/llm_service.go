package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ahcc-digital/oncoscreen/internal/config"
	"github.com/ahcc-digital/oncoscreen/internal/store"
)

const (
	defaultAnalysisModelName = "gemini-1.5-flash-latest"
	defaultChatModelName     = "gemini-1.5-flash-latest"

	chatSystemInstruction = "Anda adalah H.A.N.A (Health Assessment & Navigation AHCC), asisten medis virtual " +
		"Adi Husada Cancer Center. Anda melakukan anamnesis awal lewat percakapan singkat. " +
		"Ajukan pertanyaan lanjutan yang relevan dengan keluhan pasien, satu topik per giliran. " +
		"Jika foto keluhan (benjolan, ruam, luka) akan membantu, minta pasien mengirim gambar. " +
		"Jika input pasien kasar, main-main, atau tidak berhubungan dengan kesehatan, hentikan sesi. " +
		"Jika informasi sudah cukup, atau jika diminta menutup sesi, susun laporan akhir terstruktur. " +
		"Selalu balas dalam bahasa Indonesia yang empatik dan profesional."
)

// LLMService wraps the Gemini client. Both flows share one client;
// response shapes are constrained with JSON response schemas so the
// parser never has to guess.
type LLMService struct {
	client *genai.Client
}

func NewLLMService() *LLMService {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}

	return &LLMService{
		client: client,
	}
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		} else {
			log.Println("GenAI client closed.")
		}
	}
}

var analysisResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"riskLevel": {
			Type: genai.TypeString,
			Enum: []string{store.RiskLow, store.RiskMedium, store.RiskHigh},
		},
		"summary": {Type: genai.TypeString},
		"recommendations": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"medicalDisclaimer": {Type: genai.TypeString},
	},
	Required: []string{"riskLevel", "summary", "recommendations", "medicalDisclaimer"},
}

// GenerateAnalysis sends the screening prompt and returns the raw JSON
// text of the structured result.
func (s *LLMService) GenerateAnalysis(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(defaultAnalysisModelName)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisResponseSchema,
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini analysis request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", fmt.Errorf("gemini analysis response unusable: %w", err)
	}
	return text, nil
}

var turnResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"type": {
			Type: genai.TypeString,
			Enum: []string{TurnChat, TurnAskImage, TurnRejected, TurnFinalReport},
		},
		"message": {Type: genai.TypeString},
		"report": {
			Type:     genai.TypeObject,
			Nullable: true,
			Properties: map[string]*genai.Schema{
				"risk_level": {
					Type: genai.TypeString,
					Enum: []string{store.RiskLow, store.RiskMedium, store.RiskHigh},
				},
				"risk_score":          {Type: genai.TypeInteger},
				"summary":             {Type: genai.TypeString},
				"anamnesis_reasoning": {Type: genai.TypeString},
				"suspected_conditions": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"recommendations": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"risk_level", "risk_score", "summary", "anamnesis_reasoning", "recommendations"},
		},
	},
	Required: []string{"type", "message"},
}

// GenerateTurn runs one conversational exchange: the full running
// history plus the latest user message, classified into the tagged
// turn shape. When isFinalTurn is set the model is told to close the
// session with a final report regardless of how complete the
// anamnesis feels.
func (s *LLMService) GenerateTurn(ctx context.Context, history []*genai.Content, isFinalTurn bool) (string, error) {
	model := s.client.GenerativeModel(defaultChatModelName)

	instruction := chatSystemInstruction
	if isFinalTurn {
		instruction += " Ini adalah giliran terakhir sesi: balas dengan type \"final_report\" dan laporan lengkap, apapun isi pesan pasien."
	}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(instruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   turnResponseSchema,
	}

	if len(history) == 0 {
		return "", fmt.Errorf("history is empty for chat turn")
	}
	last := history[len(history)-1]
	if last.Role != "user" {
		return "", fmt.Errorf("last message in history is not from 'user', cannot run turn")
	}

	chatSession := model.StartChat()
	chatSession.History = history[:len(history)-1]

	resp, err := chatSession.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", fmt.Errorf("gemini chat response unusable: %w", err)
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response or no valid candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("response contained no text parts")
	}
	return b.String(), nil
}
