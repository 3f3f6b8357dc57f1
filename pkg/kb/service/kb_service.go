package service

import (
	"context"
	"errors"

	"agrisentry/entities"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrTextRequired  = errors.New("text is required")
)

type DocumentInput struct {
	Title     string
	Tags      string
	Text      string
	SourceURL string
}

// Hit is a search result with its document's metadata.
type Hit struct {
	ChunkID   uint    `json:"chunk_id"`
	DocID     uint    `json:"doc_id"`
	Ord       int     `json:"ord"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	DocTitle  string  `json:"doc_title,omitempty"`
	SourceURL string  `json:"source_url,omitempty"`
}

type KBService interface {
	UpsertDocument(ctx context.Context, in DocumentInput) (*entities.KBDocument, int, error)
	Search(ctx context.Context, query string, k int) ([]Hit, error)
	ListDocs() ([]entities.KBDocument, error)
}
