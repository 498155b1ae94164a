package filter

import (
	"testing"
	"time"

	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/relevance"
)

func fptr(v float64) *float64 { return &v }

func newTestEngine() *Engine {
	return NewEngine(relevance.NewScorer(nil))
}

func names(files []models.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestApply_relevanceBuckets(t *testing.T) {
	e := newTestEngine()
	files := []models.File{
		{ID: "h", Name: "h", RelevanceScore: fptr(70)},
		{ID: "m1", Name: "m1", RelevanceScore: fptr(50)},
		{ID: "m2", Name: "m2", RelevanceScore: fptr(69)},
		{ID: "l", Name: "l", RelevanceScore: fptr(49)},
		{ID: "z", Name: "z", RelevanceScore: fptr(0)},
	}

	c := DefaultCriteria()
	c.Relevance = RelevanceHigh
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "h" {
		t.Errorf("high = %v", got)
	}
	c.Relevance = RelevanceMedium
	if got := names(e.Apply(files, c)); len(got) != 2 {
		t.Errorf("medium = %v, want m1 m2", got)
	}
	// "low" is inclusive of everything below medium, including score 0.
	c.Relevance = RelevanceLow
	if got := names(e.Apply(files, c)); len(got) != 2 {
		t.Errorf("low = %v, want l z", got)
	}
}

func TestBucketForScore_partition(t *testing.T) {
	for score := 0; score <= 100; score++ {
		b := bucketForScore(score)
		matches := 0
		for _, want := range []RelevanceBucket{RelevanceHigh, RelevanceMedium, RelevanceLow} {
			if b == want {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("score %d matched %d buckets", score, matches)
		}
	}
	if bucketForScore(49) != RelevanceLow {
		t.Error("49 should be low")
	}
	if bucketForScore(50) != RelevanceMedium {
		t.Error("50 should be medium")
	}
	if bucketForScore(69) != RelevanceMedium {
		t.Error("69 should be medium")
	}
	if bucketForScore(70) != RelevanceHigh {
		t.Error("70 should be high")
	}
}

func TestApply_status(t *testing.T) {
	e := newTestEngine()
	now := time.Now()
	approved := models.File{ID: "a", Name: "a"}
	approved.Approve(now)
	archived := models.File{ID: "b", Name: "b"}
	archived.Archive(now)
	pending := models.File{ID: "c", Name: "c"}
	files := []models.File{approved, archived, pending}

	c := DefaultCriteria()
	c.Status = StatusApproved
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "a" {
		t.Errorf("approved = %v", got)
	}
	c.Status = StatusArchived
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "b" {
		t.Errorf("archived = %v", got)
	}
	c.Status = StatusPending
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "c" {
		t.Errorf("pending = %v", got)
	}
}

func TestApply_period(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	e := newTestEngine().WithClock(func() time.Time { return now })
	files := []models.File{
		{ID: "today", Name: "today", LastModified: now.Add(-2 * time.Hour)},
		{ID: "old", Name: "old", LastModified: now.AddDate(0, 0, -40)},
		{ID: "undated", Name: "undated"},
	}

	c := DefaultCriteria()
	c.Period = PeriodWeek
	got := names(e.Apply(files, c))
	// Undated files default to included.
	if len(got) != 2 || got[0] != "today" || got[1] != "undated" {
		t.Errorf("week = %v, want [today undated]", got)
	}
	c.Period = PeriodQuarter
	if got := names(e.Apply(files, c)); len(got) != 3 {
		t.Errorf("quarter = %v, want all three", got)
	}
}

func TestApply_size(t *testing.T) {
	e := newTestEngine()
	files := []models.File{
		{ID: "s", Name: "s", Size: 10 * 1024},
		{ID: "m", Name: "m", Size: 100 * 1024},
		{ID: "l", Name: "l", Size: 600 * 1024},
	}

	c := DefaultCriteria()
	c.Size = SizeSmall
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "s" {
		t.Errorf("small = %v", got)
	}
	c.Size = SizeLarge
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "l" {
		t.Errorf("large = %v", got)
	}
	c.Size = SizeCustom
	c.MinKB = fptr(50)
	c.MaxKB = fptr(500)
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "m" {
		t.Errorf("custom = %v", got)
	}
	c.MinKB = fptr(50)
	c.MaxKB = nil
	if got := names(e.Apply(files, c)); len(got) != 2 {
		t.Errorf("open-ended custom = %v", got)
	}
}

func TestApply_types(t *testing.T) {
	e := newTestEngine()
	files := []models.File{
		{ID: "a", Name: "a.MD"},
		{ID: "b", Name: "b.pdf"},
		{ID: "c", Name: "README"},
	}

	c := DefaultCriteria()
	c.Types = []string{"md"}
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "a.MD" {
		t.Errorf("md filter = %v (extension match must be case-insensitive)", got)
	}
	// Empty type set fails open.
	c.Types = nil
	if got := e.Apply(files, c); len(got) != 3 {
		t.Errorf("empty set should pass all, got %v", names(got))
	}
}

func TestApply_search(t *testing.T) {
	e := newTestEngine()
	files := []models.File{
		{ID: "a", Name: "meeting.md", Content: "Quarterly Planning"},
		{ID: "b", Name: "b.txt", Path: "/notes/planning/b.txt"},
		{ID: "c", Name: "c.txt", Preview: &models.Preview{Text: "no plans here... actually planning"}},
		{ID: "d", Name: "d.txt"},
	}
	c := DefaultCriteria()
	c.Search = "PLANNING"
	if got := names(e.Apply(files, c)); len(got) != 3 {
		t.Errorf("search should span name+path+content+preview, got %v", got)
	}
}

func TestApply_exclusionWinsOverSearch(t *testing.T) {
	e := newTestEngine()
	files := []models.File{
		{ID: "keep", Name: "planning.md"},
		{ID: "drop", Name: "planning-draft.md"},
		{ID: "deep", Name: "notes.md", Path: "/tmp/drafts"},
	}
	c := DefaultCriteria()
	c.Search = "planning"
	c.Exclusions = []string{"Draft"}
	got := names(e.Apply(files, c))
	if len(got) != 1 || got[0] != "planning.md" {
		t.Errorf("got %v, want only planning.md (exclusion wins, matches path too)", got)
	}
}

func TestApply_duplicates(t *testing.T) {
	e := newTestEngine()
	files := []models.File{
		{ID: "p", Name: "p", IsPrimaryDuplicate: true},
		{ID: "d", Name: "d", IsDuplicate: true},
		{ID: "u", Name: "u"},
	}

	c := DefaultCriteria()
	// Unset is the default: no duplicate filtering applied.
	if got := e.Apply(files, c); len(got) != 3 {
		t.Errorf("unset mode filtered files: %v", names(got))
	}
	c.Duplicates = DuplicatesOnly
	if got := names(e.Apply(files, c)); len(got) != 2 {
		t.Errorf("only = %v, want primary and duplicate", got)
	}
	c.Duplicates = DuplicatesHide
	got := names(e.Apply(files, c))
	if len(got) != 2 || got[0] != "p" || got[1] != "u" {
		t.Errorf("hide = %v, want [p u] (primary stays visible)", got)
	}
}

func TestApply_scenarioSizeAndType(t *testing.T) {
	e := newTestEngine()
	files := []models.File{
		{ID: "a", Name: "a.md", Content: "decisão importante", Size: 1000},
		{ID: "b", Name: "b.pdf", Content: "", Size: 600000},
	}

	c := DefaultCriteria()
	c.Size = SizeLarge
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "b.pdf" {
		t.Errorf("large = %v, want only b.pdf", got)
	}
	c = DefaultCriteria()
	c.Types = []string{"md"}
	if got := names(e.Apply(files, c)); len(got) != 1 || got[0] != "a.md" {
		t.Errorf("md = %v, want only a.md", got)
	}
}

func TestApply_isPure(t *testing.T) {
	e := newTestEngine()
	files := []models.File{{ID: "a", Name: "a.md"}, {ID: "b", Name: "b.txt"}}
	c := DefaultCriteria()
	c.Types = []string{"md"}
	_ = e.Apply(files, c)
	if len(files) != 2 {
		t.Error("Apply must not mutate its input")
	}
	first := e.Apply(files, c)
	second := e.Apply(files, c)
	if len(first) != len(second) {
		t.Error("Apply must be deterministic")
	}
}
