package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type geminiProvider struct {
	client *genai.Client
	model  string
}

func newGeminiProvider(ctx context.Context, apiKey, model string) (*geminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiProvider{client: client, model: model}, nil
}

func (p *geminiProvider) complete(ctx context.Context, req ChatRequest) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(float32(req.Temperature))
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}

	history, last := geminiHistory(req.Messages)
	if last == nil {
		return "", fmt.Errorf("gemini request has no user message")
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	text, ok := extractText(resp)
	if !ok {
		return "", errNoContent
	}
	return text, nil
}

func (p *geminiProvider) close() {
	p.client.Close()
}

// geminiHistory splits turns into prior history and the parts of the final
// message, mapping "assistant" to Gemini's "model" role.
func geminiHistory(turns []ChatTurn) ([]*genai.Content, []genai.Part) {
	if len(turns) == 0 {
		return nil, nil
	}
	history := make([]*genai.Content, 0, len(turns)-1)
	for _, t := range turns[:len(turns)-1] {
		role := "user"
		if t.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Content)}})
	}
	return history, []genai.Part{genai.Text(turns[len(turns)-1].Content)}
}

// extractText joins the text parts of every candidate. ok is false when no
// candidate carried a text part at all.
func extractText(resp *genai.GenerateContentResponse) (string, bool) {
	var text strings.Builder
	found := false
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
					found = true
				}
			}
		}
	}
	return text.String(), found
}
