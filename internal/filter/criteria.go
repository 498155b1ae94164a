// Package filter reduces the canonical file list by the active criteria.
package filter

import "strings"

// RelevanceBucket selects files by relevance score band. The three bands
// partition [0,100]: low is everything below 50, not a separate floor.
type RelevanceBucket string

const (
	RelevanceAll    RelevanceBucket = "all"
	RelevanceHigh   RelevanceBucket = "high"   // score >= 70
	RelevanceMedium RelevanceBucket = "medium" // 50 <= score < 70
	RelevanceLow    RelevanceBucket = "low"    // score < 50
)

// StatusBucket selects files by derived curation status.
type StatusBucket string

const (
	StatusAll      StatusBucket = "all"
	StatusPending  StatusBucket = "pending"
	StatusApproved StatusBucket = "approved"
	StatusArchived StatusBucket = "archived"
)

// Period is a fixed day window; files modified within the window pass.
// Windows are cumulative for counters: a file in Today is also in Week.
type Period int

const (
	PeriodAll      Period = 0
	PeriodToday    Period = 1
	PeriodWeek     Period = 7
	PeriodMonth    Period = 30
	PeriodQuarter  Period = 90
	PeriodHalfYear Period = 180
	PeriodYear     Period = 365
)

// Periods lists the selectable windows in ascending order, excluding All.
var Periods = []Period{PeriodToday, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodHalfYear, PeriodYear}

// SizeBucket selects files by byte size.
type SizeBucket string

const (
	SizeAll    SizeBucket = "all"
	SizeSmall  SizeBucket = "small"  // < 50KB
	SizeMedium SizeBucket = "medium" // 50KB <= size < 500KB
	SizeLarge  SizeBucket = "large"  // >= 500KB
	SizeCustom SizeBucket = "custom" // [MinKB, MaxKB], either bound optional
)

const (
	smallMaxBytes  = 50 * 1024
	mediumMaxBytes = 500 * 1024
)

// DuplicateMode controls duplicate visibility. The zero value applies no
// duplicate filtering; that default is deliberate.
type DuplicateMode string

const (
	DuplicatesUnset DuplicateMode = ""
	DuplicatesOnly  DuplicateMode = "show_only_duplicates"
	DuplicatesHide  DuplicateMode = "hide_duplicates"
)

// Criteria is the single active filter configuration. All dimensions are
// conjunctive.
type Criteria struct {
	Relevance  RelevanceBucket `json:"relevance"`
	Status     StatusBucket    `json:"status"`
	Period     Period          `json:"period"`
	Size       SizeBucket      `json:"size"`
	MinKB      *float64        `json:"min_kb,omitempty"`
	MaxKB      *float64        `json:"max_kb,omitempty"`
	Types      []string        `json:"types,omitempty"`
	Search     string          `json:"search,omitempty"`
	Exclusions []string        `json:"exclusions,omitempty"`
	Duplicates DuplicateMode   `json:"duplicates,omitempty"`
}

// DefaultCriteria returns criteria that pass every file.
func DefaultCriteria() Criteria {
	return Criteria{
		Relevance: RelevanceAll,
		Status:    StatusAll,
		Period:    PeriodAll,
		Size:      SizeAll,
	}
}

// typeSet returns the lowercase extension set, nil when empty (fail-open).
func (c *Criteria) typeSet() map[string]bool {
	if len(c.Types) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.Types))
	for _, t := range c.Types {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t != "" {
			set[t] = true
		}
	}
	return set
}

// Equal reports whether two criteria select the same files.
func (c Criteria) Equal(o Criteria) bool {
	if c.Relevance != o.Relevance || c.Status != o.Status || c.Period != o.Period ||
		c.Size != o.Size || c.Search != o.Search || c.Duplicates != o.Duplicates {
		return false
	}
	if !floatPtrEqual(c.MinKB, o.MinKB) || !floatPtrEqual(c.MaxKB, o.MaxKB) {
		return false
	}
	return stringsEqual(c.Types, o.Types) && stringsEqual(c.Exclusions, o.Exclusions)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
