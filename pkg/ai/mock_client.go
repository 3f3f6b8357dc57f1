package ai

import (
	"context"
	"fmt"
	"strings"
)

type mockClient struct{}

func NewMock() Client { return &mockClient{} }

func (m *mockClient) Name() string { return "mock" }

// Chat answers from keywords in the last user message so the dashboard works
// without an LLM.
func (m *mockClient) Chat(ctx context.Context, system string, history []Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	last := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			last = strings.ToLower(history[i].Content)
			break
		}
	}

	tips := make([]string, 0, 3)
	if strings.Contains(last, "water") || strings.Contains(last, "irrigat") || strings.Contains(last, "moisture") {
		tips = append(tips, "- Irrigate fields marked IMMEDIATE first, early morning or evening to limit evaporation.")
	}
	if strings.Contains(last, "fertil") || strings.Contains(last, "urea") || strings.Contains(last, "npk") {
		tips = append(tips, "- Split nitrogen doses and apply after irrigation, not before heavy rain.")
	}
	if strings.Contains(last, "pest") || strings.Contains(last, "insect") || strings.Contains(last, "disease") {
		tips = append(tips, "- Scout 5 spots per field and photograph affected leaves for diagnosis.")
	}
	// always add a monitoring tip
	tips = append(tips, "- Check soil moisture again after the afternoon heat peak.")

	return fmt.Sprintf("**Advice (mock)**\n\n%s\n\n_Context lines: %d_", strings.Join(tips, "\n"), strings.Count(system, "\n")+1), nil
}

func (m *mockClient) Diagnose(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if mimeType == "" {
		mimeType = DetectImageMIMEType(image)
	}
	return fmt.Sprintf("**Diagnosis (mock)**\n\nReceived a %s image of %d bytes. No disease detected; re-check in 3 days.", mimeType, len(image)), nil
}
