package service

import (
	"context"
	"errors"

	"agrisentry/entities"
	"agrisentry/pkg/ai"
	kbservice "agrisentry/pkg/kb/service"
	"agrisentry/pkg/simulation"
)

// MaxImageBytes caps the photo accepted by Diagnose.
const MaxImageBytes = 8 << 20

var (
	ErrEmptyConversation = errors.New("conversation must end with a user message")
	ErrInvalidSession    = errors.New("session id must be a uuid")
	ErrEmptyImage        = errors.New("image is empty")
	ErrImageTooLarge     = errors.New("image exceeds 8 MiB")
	// ErrUpstream wraps failures of the AI backend.
	ErrUpstream = errors.New("ai backend failed")
)

// Engine is the part of the simulation the advisor reads.
type Engine interface {
	Snapshot() simulation.Snapshot
	FieldIDs() []string
	ReferenceField() string
}

type ActivitySource interface {
	Recent(uid string, n int) ([]entities.Activity, error)
}

type KBSearcher interface {
	Search(ctx context.Context, query string, k int) ([]kbservice.Hit, error)
}

type Reply struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type AdvisorService interface {
	Chat(ctx context.Context, uid, sessionID string, msgs []ai.Message) (*Reply, error)
	Diagnose(ctx context.Context, image []byte, mimeType, note string) (string, error)
	Transcript(uid, sessionID string) ([]entities.ChatMessage, error)

	// Context renders the farm state given to the model. query selects
	// knowledge-base notes and may be empty.
	Context(ctx context.Context, uid, query string) string
}
