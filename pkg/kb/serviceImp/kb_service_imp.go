package serviceImp

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"agrisentry/entities"
	"agrisentry/pkg/kb/embedder"
	"agrisentry/pkg/kb/repository"
	"agrisentry/pkg/kb/service"
)

const chunkRunes = 1000

type Svc struct {
	r   repository.KBRepository
	emb embedder.Embedder
	log *zap.Logger
}

// New accepts a nil embedder, in which case search is keyword based.
func New(r repository.KBRepository, e embedder.Embedder, log *zap.Logger) service.KBService {
	return &Svc{r: r, emb: e, log: log}
}

// chunkText cuts at the first line break after maxRunes, or hard at
// 2*maxRunes when a line runs on.
func chunkText(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = chunkRunes
	}
	var parts []string
	var cur strings.Builder
	count := 0
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
		count = 0
	}
	for _, r := range text {
		cur.WriteRune(r)
		count++
		if (count >= maxRunes && r == '\n') || count >= 2*maxRunes {
			flush()
		}
	}
	flush()
	return parts
}

func (s *Svc) UpsertDocument(ctx context.Context, in service.DocumentInput) (*entities.KBDocument, int, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, 0, service.ErrTitleRequired
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, 0, service.ErrTextRequired
	}

	chs := chunkText(in.Text, chunkRunes)
	var embs [][]float32
	if s.emb != nil {
		var err error
		embs, err = s.emb.Embed(ctx, chs)
		if err != nil {
			// keep chunks without vectors
			s.log.Warn("kb embed failed, storing without embeddings", zap.Error(err))
			embs = nil
		}
	}

	rows := make([]entities.KBChunk, len(chs))
	for i := range chs {
		rows[i] = entities.KBChunk{Ord: i, Text: chs[i]}
		if i < len(embs) {
			rows[i].Embedding = embedder.FloatsToBytes(embs[i])
		}
	}

	d := &entities.KBDocument{Title: title, Tags: strings.TrimSpace(in.Tags), SourceURL: in.SourceURL}
	if err := s.r.CreateDocWithChunks(d, rows); err != nil {
		return nil, 0, err
	}
	s.log.Info("kb document stored", zap.Uint("doc_id", d.DocID), zap.Int("chunks", len(rows)), zap.Bool("embedded", embs != nil))
	return d, len(rows), nil
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// keywordScore is the share of distinct query terms found in text.
func keywordScore(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 0
	}
	have := map[string]bool{}
	for _, t := range tokens(text) {
		have[t] = true
	}
	hit := 0
	for _, t := range terms {
		if have[t] {
			hit++
		}
	}
	return float64(hit) / float64(len(terms))
}

func (s *Svc) Search(ctx context.Context, query string, k int) ([]service.Hit, error) {
	q := strings.TrimSpace(query)
	if q == "" || k <= 0 {
		return nil, nil
	}

	var qvec []float32
	if s.emb != nil {
		if vec, err := s.emb.Embed(ctx, []string{q}); err == nil && len(vec) > 0 {
			qvec = vec[0]
		} else if err != nil {
			s.log.Debug("kb query embed failed, using keywords", zap.Error(err))
		}
	}

	chunks, err := s.r.AllChunks()
	if err != nil {
		return nil, err
	}

	terms := uniq(tokens(q))
	hits := make([]service.Hit, 0, len(chunks))
	for _, ch := range chunks {
		var sc float64
		if vec := embedder.BytesToFloats(ch.Embedding); len(qvec) > 0 && len(vec) == len(qvec) {
			sc = embedder.Cosine(qvec, vec)
		} else {
			sc = keywordScore(terms, ch.Text)
		}
		if sc <= 0 {
			continue
		}
		hits = append(hits, service.Hit{ChunkID: ch.ChunkID, DocID: ch.DocID, Ord: ch.Ord, Text: ch.Text, Score: sc})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}

	ids := make([]uint, 0, len(hits))
	seen := map[uint]bool{}
	for _, h := range hits {
		if !seen[h.DocID] {
			seen[h.DocID] = true
			ids = append(ids, h.DocID)
		}
	}
	meta, err := s.r.DocsByIDs(ids)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		if d, ok := meta[hits[i].DocID]; ok {
			hits[i].DocTitle = d.Title
			hits[i].SourceURL = d.SourceURL
		}
	}
	return hits, nil
}

func (s *Svc) ListDocs() ([]entities.KBDocument, error) { return s.r.ListDocs() }

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
