package entities

import "time"

type KBDocument struct {
	DocID     uint      `gorm:"primaryKey" json:"doc_id"`
	Title     string    `json:"title"`
	SourceURL string    `json:"source_url,omitempty"`
	Tags      string    `json:"tags,omitempty"` // comma separated crop/topic tags
	Chunks    int       `json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
}

type KBChunk struct {
	ChunkID   uint      `gorm:"primaryKey" json:"chunk_id"`
	DocID     uint      `gorm:"index" json:"doc_id"`
	Ord       int       `json:"ord"`
	Text      string    `json:"text"`
	Embedding []byte    `json:"-"` // little-endian float32, empty when no embedder
	CreatedAt time.Time `json:"created_at"`
}
