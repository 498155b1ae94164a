package filter

import (
	"strings"
	"time"

	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/relevance"
)

// Engine applies filter criteria to file lists. It is pure: same input,
// same output. Relevance bucketing uses the scorer's display score.
type Engine struct {
	scorer *relevance.Scorer
	now    func() time.Time
}

// NewEngine creates an Engine backed by the given scorer.
func NewEngine(scorer *relevance.Scorer) *Engine {
	return &Engine{scorer: scorer, now: time.Now}
}

// WithClock overrides the time source. Used in tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Apply reduces files to those matching every dimension of c. Dimensions
// are applied in a fixed order; all are conjunctive, so the order carries
// no semantic weight.
func (e *Engine) Apply(files []models.File, c Criteria) []models.File {
	types := c.typeSet()
	search := strings.ToLower(strings.TrimSpace(c.Search))
	now := e.now()

	out := make([]models.File, 0, len(files))
	for i := range files {
		f := &files[i]
		if !e.matchRelevance(f, c.Relevance) {
			continue
		}
		if !matchStatus(f, c.Status) {
			continue
		}
		if !matchPeriod(f, c.Period, now) {
			continue
		}
		if !matchSize(f, c) {
			continue
		}
		if !matchType(f, types) {
			continue
		}
		if !matchSearch(f, search) {
			continue
		}
		if matchExclusion(f, c.Exclusions) {
			continue
		}
		if !matchDuplicates(f, c.Duplicates) {
			continue
		}
		out = append(out, *f)
	}
	return out
}

func (e *Engine) matchRelevance(f *models.File, b RelevanceBucket) bool {
	switch b {
	case RelevanceAll, "":
		return true
	default:
		return bucketForScore(e.scorer.DisplayScore(f)) == b
	}
}

// bucketForScore maps a score to its band. The three bands partition
// [0,100] with no gaps: 49 is low, 50 and 69 are medium, 70 is high.
func bucketForScore(score int) RelevanceBucket {
	switch {
	case score >= 70:
		return RelevanceHigh
	case score >= 50:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

func matchStatus(f *models.File, b StatusBucket) bool {
	switch b {
	case StatusAll, "":
		return true
	default:
		return string(f.Status()) == string(b)
	}
}

// matchPeriod passes files modified within the window. A file with no
// resolvable date is treated as recent and included; silently hiding
// undated files is worse than over-showing them.
func matchPeriod(f *models.File, p Period, now time.Time) bool {
	if p == PeriodAll {
		return true
	}
	if f.LastModified.IsZero() {
		return true
	}
	cutoff := now.AddDate(0, 0, -int(p))
	return !f.LastModified.Before(cutoff)
}

func matchSize(f *models.File, c Criteria) bool {
	switch c.Size {
	case SizeAll, "":
		return true
	case SizeSmall:
		return f.Size < smallMaxBytes
	case SizeMedium:
		return f.Size >= smallMaxBytes && f.Size < mediumMaxBytes
	case SizeLarge:
		return f.Size >= mediumMaxBytes
	case SizeCustom:
		kb := float64(f.Size) / 1024
		if c.MinKB != nil && kb < *c.MinKB {
			return false
		}
		if c.MaxKB != nil && kb > *c.MaxKB {
			return false
		}
		return true
	default:
		return true
	}
}

// matchType tests extension membership. An empty active set passes every
// file (fail-open).
func matchType(f *models.File, types map[string]bool) bool {
	if types == nil {
		return true
	}
	return types[f.Ext()]
}

func matchSearch(f *models.File, search string) bool {
	if search == "" {
		return true
	}
	blob := strings.ToLower(f.Name + " " + f.Path + " " + f.Content + " " + previewText(f))
	return strings.Contains(blob, search)
}

func previewText(f *models.File) string {
	if f.Preview != nil {
		return f.Preview.Text
	}
	return ""
}

// matchExclusion reports whether the file hits any exclusion pattern,
// matched as a case-insensitive substring of the name or path/name.
// Exclusion wins over every other dimension, search included.
func matchExclusion(f *models.File, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	name := strings.ToLower(f.Name)
	full := strings.ToLower(f.Path + "/" + f.Name)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.Contains(name, p) || strings.Contains(full, p) {
			return true
		}
	}
	return false
}

func matchDuplicates(f *models.File, mode DuplicateMode) bool {
	switch mode {
	case DuplicatesOnly:
		return f.IsDuplicate || f.IsPrimaryDuplicate
	case DuplicatesHide:
		return !f.IsDuplicate
	default:
		return true
	}
}
