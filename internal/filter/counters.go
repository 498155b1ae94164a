package filter

import (
	"time"

	"github.com/hyperjump/erabu/internal/models"
)

// Counts holds per-bucket counters for filter UI badges. Each dimension is
// counted over the full unfiltered set with every other dimension held at
// "all", so the badges are independent of the active selection. Period
// counters are cumulative: a file modified today is counted in every
// larger window.
type Counts struct {
	Relevance  map[RelevanceBucket]int `json:"relevance"`
	Status     map[StatusBucket]int    `json:"status"`
	Period     map[Period]int          `json:"period"`
	Size       map[SizeBucket]int      `json:"size"`
	Types      map[string]int          `json:"types"`
	Duplicates int                     `json:"duplicates"`
	Total      int                     `json:"total"`
}

// Counts recomputes all bucket counters from the full unfiltered set.
func (e *Engine) Counts(files []models.File) Counts {
	now := e.now()
	c := Counts{
		Relevance: map[RelevanceBucket]int{RelevanceHigh: 0, RelevanceMedium: 0, RelevanceLow: 0},
		Status:    map[StatusBucket]int{StatusPending: 0, StatusApproved: 0, StatusArchived: 0},
		Period:    make(map[Period]int, len(Periods)),
		Size:      map[SizeBucket]int{SizeSmall: 0, SizeMedium: 0, SizeLarge: 0},
		Types:     make(map[string]int),
		Total:     len(files),
	}
	for _, p := range Periods {
		c.Period[p] = 0
	}

	for i := range files {
		f := &files[i]
		c.Relevance[bucketForScore(e.scorer.DisplayScore(f))]++
		c.Status[StatusBucket(f.Status())]++
		countPeriods(c.Period, f, now)
		c.Size[sizeBucketFor(f.Size)]++
		if ext := f.Ext(); ext != "" {
			c.Types[ext]++
		}
		if f.IsDuplicate || f.IsPrimaryDuplicate {
			c.Duplicates++
		}
	}
	return c
}

func countPeriods(counts map[Period]int, f *models.File, now time.Time) {
	for _, p := range Periods {
		if matchPeriod(f, p, now) {
			counts[p]++
		}
	}
}

func sizeBucketFor(size int64) SizeBucket {
	switch {
	case size < smallMaxBytes:
		return SizeSmall
	case size < mediumMaxBytes:
		return SizeMedium
	default:
		return SizeLarge
	}
}
