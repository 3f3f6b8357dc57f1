package ai

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsBackend(t *testing.T) {
	c, err := New(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())

	c, err = New(context.Background(), Options{LLMEndpoint: "http://llm", LLMModel: "m"})
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name(), "endpoint without key falls back to mock")

	c, err = New(context.Background(), Options{LLMEndpoint: "http://llm", LLMAPIKey: "k", LLMModel: "m"})
	require.NoError(t, err)
	assert.Equal(t, "openai:m", c.Name())
}

func TestMockChat(t *testing.T) {
	out, err := NewMock().Chat(context.Background(), "a\nb", []Message{
		{Role: "user", Content: "When should I irrigate and which fertilizer?"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "IMMEDIATE")
	assert.Contains(t, out, "nitrogen")
	assert.Contains(t, out, "Context lines: 2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewMock().Chat(ctx, "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockDiagnose(t *testing.T) {
	out, err := NewMock().Diagnose(context.Background(), "p", []byte("GIF89a.."), "")
	require.NoError(t, err)
	assert.Contains(t, out, "image/gif")
	assert.Contains(t, out, "8 bytes")
}

func TestDetectImageMIMEType(t *testing.T) {
	tests := map[string][]byte{
		"image/png":  {0x89, 'P', 'N', 'G', 0, 0, 0, 0},
		"image/jpeg": {0xFF, 0xD8, 0xFF, 0xE0},
		"image/gif":  []byte("GIF87a"),
		"image/webp": []byte("RIFF\x00\x00\x00\x00WEBPVP8 "),
		"image/bmp":  []byte("BM\x00\x00"),
	}
	for want, data := range tests {
		assert.Equal(t, want, DetectImageMIMEType(data))
	}
	assert.Equal(t, "image/jpeg", DetectImageMIMEType([]byte("RIFF\x00\x00\x00\x00WAVEfmt ")))
	assert.Equal(t, "image/jpeg", DetectImageMIMEType(nil))
}

func TestGeminiHelpers(t *testing.T) {
	h := toGeminiHistory([]Message{{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"}})
	require.Len(t, h, 2)
	assert.Equal(t, "user", h[0].Role)
	assert.Equal(t, "model", h[1].Role)

	_, err := responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrNoContent)

	text, err := responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Leaf "), genai.Text("blight.")}},
	}}})
	require.NoError(t, err)
	assert.Equal(t, "Leaf blight.", text)
}
