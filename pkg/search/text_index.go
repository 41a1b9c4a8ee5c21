package search

import (
	"context"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/pkg/errors"
)

type textDocument struct {
	Text string `json:"text"`
}

// TextIndex is an in-memory bleve index over the searchable text of documents,
// keyed by document id.
type TextIndex struct {
	mu    sync.Mutex
	index bleve.Index
	batch *bleve.Batch
}

func NewTextIndex() (*TextIndex, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, errors.Wrap(err, "create text index")
	}
	return &TextIndex{index: index}, nil
}

// Add queues a document; Flush writes queued changes in one batch.
func (t *TextIndex) Add(id, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.batch == nil {
		t.batch = t.index.NewBatch()
	}
	if strings.TrimSpace(text) == "" {
		t.batch.Delete(id)
		return nil
	}
	return t.batch.Index(id, textDocument{Text: text})
}

func (t *TextIndex) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.batch == nil {
		t.batch = t.index.NewBatch()
	}
	t.batch.Delete(id)
}

func (t *TextIndex) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.batch == nil || t.batch.Size() == 0 {
		return nil
	}
	err := t.index.Batch(t.batch)
	t.batch = nil
	return errors.Wrap(err, "flush text index")
}

// Search returns the ids of every document containing all terms of text,
// with their relevance score.
func (t *TextIndex) Search(ctx context.Context, text string) (map[string]float64, error) {
	count, err := t.index.DocCount()
	if err != nil {
		return nil, errors.Wrap(err, "count text index")
	}
	result := make(map[string]float64)
	if count == 0 || strings.TrimSpace(text) == "" {
		return result, nil
	}
	match := bleve.NewMatchQuery(text)
	match.SetField("text")
	match.SetOperator(query.MatchQueryOperatorAnd)
	req := bleve.NewSearchRequest(match)
	req.Size = int(count)

	res, err := t.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "search text index")
	}
	for _, hit := range res.Hits {
		result[hit.ID] = hit.Score
	}
	return result, nil
}

func (t *TextIndex) Close() error {
	return t.index.Close()
}
