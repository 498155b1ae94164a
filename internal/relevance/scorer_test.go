package relevance

import (
	"errors"
	"testing"

	"github.com/hyperjump/erabu/internal/models"
)

func fptr(v float64) *float64 { return &v }

func TestScore_persistedScoreNormalization(t *testing.T) {
	s := NewScorer(nil)
	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"percentage passes through", 80, 80},
		{"percentage rounds", 79.6, 80},
		{"fraction scales to percent", 0.8, 80},
		{"fraction rounds", 0.456, 46},
		{"exactly one is a fraction", 1, 100},
		{"overflow clamps", 150, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &models.File{Name: "a.md", RelevanceScore: fptr(tt.value)}
			if got := s.Score(f); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_previewScore(t *testing.T) {
	s := NewScorer(nil)
	f := &models.File{
		Name:    "a.pdf",
		Preview: &models.Preview{Text: "x", RelevanceScore: fptr(62.4)},
	}
	if got := s.Score(f); got != 62 {
		t.Errorf("Score() = %d, want preview score 62", got)
	}
}

type stubContentScorer struct {
	score int
	err   error
}

func (s stubContentScorer) ScoreContent(name, content string, keywords []string) (int, error) {
	return s.score, s.err
}

func TestScore_contentDelegate(t *testing.T) {
	t.Run("delegate wins when it succeeds", func(t *testing.T) {
		s := NewScorer(nil).WithContentScorer(stubContentScorer{score: 91})
		f := &models.File{Name: "a.md", Content: "whatever"}
		if got := s.Score(f); got != 91 {
			t.Errorf("Score() = %d, want 91", got)
		}
	})
	t.Run("delegate failure falls back to heuristic", func(t *testing.T) {
		s := NewScorer(nil).WithContentScorer(stubContentScorer{err: errors.New("boom")})
		f := &models.File{Name: "a.md", Content: "nothing special"}
		// Heuristic: base 25 + format bonus 5.
		if got := s.Score(f); got != 30 {
			t.Errorf("Score() = %d, want heuristic 30", got)
		}
	})
}

func TestScore_heuristic(t *testing.T) {
	s := NewScorer(nil)
	tests := []struct {
		name string
		file models.File
		want int
	}{
		{
			"no keywords, no format bonus",
			models.File{Name: "b.pdf", Content: ""},
			25,
		},
		{
			"localized keywords and prose format",
			models.File{Name: "a.md", Content: "decisão importante"},
			// 25 base + 3 distinct keywords (decisão, importante, and the
			// English substring "important") + format bonus.
			60,
		},
		{
			"streak bonus above three matches",
			models.File{Name: "notes.txt", Content: "decision insight learning breakthrough"},
			85, // 25 + 4*10 + 15 streak + 5 format
		},
		{
			"deep streak clamps at 100",
			models.File{Name: "all.md", Content: "decision insight learning breakthrough transformation growth"},
			100, // 25 + 60 + 15 + 10 + 5 = 115 -> clamp
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(&tt.file); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_degradesGracefully(t *testing.T) {
	s := NewScorer(nil)
	// Missing name and content must not panic; dot-less name earns no format bonus.
	if got := s.Score(&models.File{}); got != 25 {
		t.Errorf("empty file Score() = %d, want base 25", got)
	}
	if got := s.Score(&models.File{Name: "Makefile"}); got != 25 {
		t.Errorf("dot-less name Score() = %d, want 25", got)
	}
	if got := s.Score(nil); got != 0 {
		t.Errorf("nil file Score() = %d, want 0", got)
	}
}

func TestScore_clampRange(t *testing.T) {
	s := NewScorer(nil)
	files := []models.File{
		{},
		{Name: "a.md", Content: "decision insight learning breakthrough transformation growth importante descoberta"},
		{RelevanceScore: fptr(-10)},
		{RelevanceScore: fptr(9999)},
		{Preview: &models.Preview{RelevanceScore: fptr(-1)}},
	}
	for i := range files {
		got := s.Score(&files[i])
		if got < 0 || got > 100 {
			t.Errorf("Score(%d) = %d, out of [0,100]", i, got)
		}
	}
}

func TestEnhancedScore_noAccumulation(t *testing.T) {
	s := NewScorer(nil)
	f := &models.File{
		Name:           "a.md",
		RelevanceScore: fptr(80),
		Categories:     []string{"c1", "c2"},
	}

	// Two consecutive re-analysis passes must yield identical boosted values.
	first := CategoryBoost(s.EnhancedScore(f), len(f.Categories))
	second := CategoryBoost(s.EnhancedScore(f), len(f.Categories))
	if first != second {
		t.Errorf("boost accumulated: first=%d second=%d", first, second)
	}
	if first <= 80 {
		t.Errorf("boost should raise the score: got %d", first)
	}
}

func TestCategoryBoost(t *testing.T) {
	if CategoryBoost(60, 0) != 60 {
		t.Error("no categories means no boost")
	}
	if CategoryBoost(100, 5) != 100 {
		t.Error("boost must clamp at 100")
	}
	// ln(3)*0.05 ≈ 0.0549 -> 80 * 1.0549 ≈ 84
	if got := CategoryBoost(80, 2); got != 84 {
		t.Errorf("CategoryBoost(80, 2) = %d, want 84", got)
	}
	if CategoryBoost(0, 3) != 0 {
		t.Error("zero base stays zero")
	}
}

func TestDisplayScore(t *testing.T) {
	s := NewScorer(nil)
	f := &models.File{Name: "a.md", RelevanceScore: fptr(80), Categories: []string{"c1", "c2"}}
	if got := s.DisplayScore(f); got != 84 {
		t.Errorf("DisplayScore() = %d, want 84", got)
	}
	// Idempotent across calls: always derived from the base.
	if s.DisplayScore(f) != s.DisplayScore(f) {
		t.Error("DisplayScore should be stable")
	}
}

func TestConfig_userKeywordsUnion(t *testing.T) {
	s := NewScorer(&Config{Keywords: []string{"Quantum", "decision"}})
	f := &models.File{Name: "q.txt", Content: "quantum effects"}
	// 25 base + 1 keyword (user "quantum", deduped against defaults) + format.
	if got := s.Score(f); got != 40 {
		t.Errorf("Score() = %d, want 40", got)
	}
}
