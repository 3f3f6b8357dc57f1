package ai

import (
	"context"
	"errors"
)

// Message is one turn of a conversation. Role is "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client interface {
	// Chat continues history under the given system instructions.
	Chat(ctx context.Context, system string, history []Message) (string, error)

	// Diagnose describes a crop photo. An empty mimeType is sniffed from the data.
	Diagnose(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)

	// Name identifies the backend in logs and health output.
	Name() string
}

var ErrNoContent = errors.New("no content returned from AI")

// Options selects and configures a backend.
type Options struct {
	GeminiAPIKey      string
	GeminiModel       string
	GeminiVisionModel string

	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string
}

// New picks Gemini when a Gemini key is set, then an OpenAI-compatible
// endpoint, and falls back to the mock.
func New(ctx context.Context, o Options) (Client, error) {
	switch {
	case o.GeminiAPIKey != "":
		return NewGemini(ctx, o.GeminiAPIKey, o.GeminiModel, o.GeminiVisionModel)
	case o.LLMEndpoint != "" && o.LLMAPIKey != "":
		return NewOpenAI(o.LLMEndpoint, o.LLMAPIKey, o.LLMModel), nil
	default:
		return NewMock(), nil
	}
}
