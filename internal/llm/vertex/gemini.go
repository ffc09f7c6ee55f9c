package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/telemetry"
)

const defaultModel = "gemini-1.5-flash"

// Gemini implements llm.Completer on Vertex AI.
type Gemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
	name   string
}

func NewGemini(ctx context.Context, projectID, location, modelName string) (*Gemini, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("VERTEX_PROJECT is required for Vertex AI")
	}
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = defaultModel
	}

	m := c.GenerativeModel(modelName)
	m.SetTemperature(0.4)
	m.ResponseMIMEType = "application/json"
	return &Gemini{client: c, model: m, name: modelName}, nil
}

func (g *Gemini) Close() error { return g.client.Close() }

// Complete concatenates the text parts of the first candidate.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("vertex generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("vertex response missing candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(vertexgenai.Text); ok {
			b.WriteString(string(t))
		}
	}
	fields := map[string]any{"provider": "vertex", "model": g.name}
	if resp.UsageMetadata != nil {
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("vertex response empty content")
	}
	return out, nil
}

var _ llm.Completer = (*Gemini)(nil)
