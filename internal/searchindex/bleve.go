// Package searchindex maintains a Bleve index over file names and
// previews. It powers the related-files lookup; the list filter's
// free-text search stays a plain substring match and never goes through
// here.
package searchindex

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hyperjump/erabu/internal/models"
)

// Hit is a single ranked index match.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Index wraps a Bleve index keyed by file ID.
type Index struct {
	index bleve.Index
}

type indexDoc struct {
	Name    string `json:"name"`
	Preview string `json:"preview"`
}

// New creates or opens an index at path. An empty path builds an
// in-memory index, which tests use. An existing index directory is
// reopened as-is; delete it to force a mapping rebuild.
func New(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &Index{index: idx}, nil
	}
	if _, err := os.Stat(path); err == nil {
		idx, err := bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open index: %w", err)
		}
		return &Index{index: idx}, nil
	}
	idx, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx}, nil
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	// Standard analyzer only lowercases and tokenizes. Stemming would
	// break exact-word lookups for non-English file names.
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	doc.AddFieldMappingsAt("name", text)
	doc.AddFieldMappingsAt("preview", text)
	im.DefaultMapping = doc
	return im
}

// Put indexes or reindexes one file.
func (ix *Index) Put(f *models.File) error {
	return ix.index.Index(f.ID, indexDoc{Name: f.Name, Preview: f.PreviewText()})
}

// Rebuild indexes the whole set in one batch. Existing ids are
// overwritten; ids absent from files are left behind and need an
// explicit Delete.
func (ix *Index) Rebuild(files []models.File) error {
	batch := ix.index.NewBatch()
	for i := range files {
		if err := batch.Index(files[i].ID, indexDoc{Name: files[i].Name, Preview: files[i].PreviewText()}); err != nil {
			return fmt.Errorf("batch index %s: %w", files[i].ID, err)
		}
	}
	return ix.index.Batch(batch)
}

// Delete removes one file from the index.
func (ix *Index) Delete(id string) error {
	return ix.index.Delete(id)
}

// Search runs a match query over name and preview and returns up to
// limit ranked hits.
func (ix *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	res, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	hits := make([]Hit, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = Hit{ID: h.ID, Score: h.Score}
	}
	return hits, nil
}

// DocCount returns how many files are indexed.
func (ix *Index) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	return ix.index.Close()
}
