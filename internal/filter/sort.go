package filter

import (
	"sort"
	"strings"

	"github.com/hyperjump/erabu/internal/models"
)

// SortField names a sortable file attribute.
type SortField string

const (
	SortByName      SortField = "name"
	SortBySize      SortField = "size"
	SortByModified  SortField = "modified"
	SortByRelevance SortField = "relevance"
)

// Sort is a sort order for the filtered list.
type Sort struct {
	Field SortField `json:"field"`
	Desc  bool      `json:"desc"`
}

// DefaultSort orders by name ascending.
func DefaultSort() Sort {
	return Sort{Field: SortByName}
}

// Sort orders files in place by s. Unknown fields fall back to name. The
// sort is stable so equal keys keep their discovery order.
func (e *Engine) Sort(files []models.File, s Sort) {
	less := e.lessFunc(s.Field)
	sort.SliceStable(files, func(i, j int) bool {
		if s.Desc {
			return less(&files[j], &files[i])
		}
		return less(&files[i], &files[j])
	})
}

func (e *Engine) lessFunc(field SortField) func(a, b *models.File) bool {
	switch field {
	case SortBySize:
		return func(a, b *models.File) bool { return a.Size < b.Size }
	case SortByModified:
		return func(a, b *models.File) bool { return a.LastModified.Before(b.LastModified) }
	case SortByRelevance:
		return func(a, b *models.File) bool { return e.scorer.DisplayScore(a) < e.scorer.DisplayScore(b) }
	default:
		return func(a, b *models.File) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
}
