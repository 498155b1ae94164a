// Package models defines core data structures for curated files and categories.
package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/erabu/internal/fileid"
)

// Status is the curation status of a file. It is derived from the analyzed,
// approved, and archived fields, never stored.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusArchived Status = "archived"
)

// AnalysisType identifies which analysis pass produced a file's current analysis.
type AnalysisType string

const (
	AnalysisNone     AnalysisType = ""
	AnalysisQuick    AnalysisType = "quick"
	AnalysisStandard AnalysisType = "standard"
	AnalysisDeep     AnalysisType = "deep"
)

// AnalysisSnapshot is one entry in a file's append-only analysis history.
type AnalysisSnapshot struct {
	Version    int          `json:"version"`
	Type       AnalysisType `json:"type"`
	Score      int          `json:"score"`
	AnalyzedAt time.Time    `json:"analyzed_at"`
}

// Preview holds extracted preview text and an optional pre-computed
// relevance score carried alongside it.
type Preview struct {
	Text           string   `json:"text"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

// File represents one discovered document and its curation state.
//
// RelevanceScore, when set, is either a percentage (>1) or a [0,1] fraction;
// the relevance scorer normalizes it. Approved is a tri-state: nil means
// never decided, which still counts as approved once the file is analyzed.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	RelativePath string    `json:"relative_path,omitempty"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	Content      string    `json:"content,omitempty"`
	Preview      *Preview  `json:"preview,omitempty"`

	Categories      []string           `json:"categories"`
	Analyzed        bool               `json:"analyzed"`
	AnalysisType    AnalysisType       `json:"analysis_type,omitempty"`
	AnalysisHistory []AnalysisSnapshot `json:"analysis_history,omitempty"`
	RelevanceScore  *float64           `json:"relevance_score,omitempty"`
	Approved        *bool              `json:"approved,omitempty"`
	Archived        bool               `json:"archived"`

	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`
	RestoredAt *time.Time `json:"restored_at,omitempty"`

	IsDuplicate        bool `json:"is_duplicate,omitempty"`
	IsPrimaryDuplicate bool `json:"is_primary_duplicate,omitempty"`
}

// Normalize applies ingestion-time defaulting. Every record leaves with a
// stable ID (derived from the path, falling back to the name) and a non-nil
// category list, so downstream code never needs a name-based lookup or a
// nil guard.
func (f *File) Normalize() {
	if f.Name == "" && f.Path != "" {
		f.Name = filepath.Base(f.Path)
	}
	if f.ID == "" {
		if f.Path != "" {
			f.ID = fileid.FromPath(f.Path)
		} else {
			f.ID = f.Name
		}
	}
	if f.Categories == nil {
		f.Categories = []string{}
	}
}

// Status derives the curation status from the analyzed/approved/archived
// fields. "Analyzed" (a heuristic pass completed) is distinct from
// "approved" (curator sign-off): a file analyzed and never rejected counts
// as approved, a file explicitly rejected is pending again.
func (f *File) Status() Status {
	if f.Archived {
		return StatusArchived
	}
	if f.Analyzed && (f.Approved == nil || *f.Approved) {
		return StatusApproved
	}
	return StatusPending
}

// Approve marks the file approved at now.
func (f *File) Approve(now time.Time) {
	t := true
	f.Analyzed = true
	f.Approved = &t
	f.ApprovedAt = &now
}

// Reject withdraws approval. Analyzed is intentionally left unchanged:
// analysis history is independent of approval history.
func (f *File) Reject(now time.Time) {
	v := false
	f.Approved = &v
	f.RejectedAt = &now
}

// Archive soft-archives the file. Categories and analysis metadata are
// preserved for a later restore.
func (f *File) Archive(now time.Time) {
	f.Archived = true
	f.ArchivedAt = &now
}

// Restore brings an archived file back as approved.
func (f *File) Restore(now time.Time) {
	t := true
	f.Archived = false
	f.Analyzed = true
	f.Approved = &t
	f.RestoredAt = &now
}

// RecordAnalysis marks the file analyzed with the given type and appends a
// snapshot to the history. It never touches Approved or Archived.
func (f *File) RecordAnalysis(t AnalysisType, score int, now time.Time) {
	f.Analyzed = true
	f.AnalysisType = t
	f.AnalysisHistory = append(f.AnalysisHistory, AnalysisSnapshot{
		Version:    len(f.AnalysisHistory) + 1,
		Type:       t,
		Score:      score,
		AnalyzedAt: now,
	})
}

// AddCategory appends a category ID if not already present. Returns true
// when the file changed. Assignment is idempotent.
func (f *File) AddCategory(categoryID string) bool {
	for _, c := range f.Categories {
		if c == categoryID {
			return false
		}
	}
	f.Categories = append(f.Categories, categoryID)
	return true
}

// RemoveCategory removes a category ID. Returns true when the file changed.
func (f *File) RemoveCategory(categoryID string) bool {
	for i, c := range f.Categories {
		if c == categoryID {
			f.Categories = append(f.Categories[:i], f.Categories[i+1:]...)
			return true
		}
	}
	return false
}

// Ext returns the lowercase file extension without the dot, or "" when the
// name has no dot.
func (f *File) Ext() string {
	ext := filepath.Ext(f.Name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// PreviewText returns the best available text: preview when present,
// otherwise raw content.
func (f *File) PreviewText() string {
	if f.Preview != nil && f.Preview.Text != "" {
		return f.Preview.Text
	}
	return f.Content
}
