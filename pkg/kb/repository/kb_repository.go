package repository

import "agrisentry/entities"

type KBRepository interface {
	// CreateDocWithChunks stores the document and its chunks atomically and
	// fills in their ids.
	CreateDocWithChunks(d *entities.KBDocument, chunks []entities.KBChunk) error
	ListDocs() ([]entities.KBDocument, error)
	AllChunks() ([]entities.KBChunk, error)
	DocsByIDs(ids []uint) (map[uint]entities.KBDocument, error)
}
