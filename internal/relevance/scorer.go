package relevance

import (
	"math"
	"strings"

	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/pkg/utils"
)

func lower(s string) string { return strings.ToLower(s) }

// ContentScorer is an optional delegate that scores raw content with the
// configured keywords. It is the seam for an external analysis provider;
// the default assembly runs without one, since discovery precomputes
// preview text and scores. Failures fall back to the local heuristic and
// never surface as errors.
type ContentScorer interface {
	ScoreContent(name, content string, keywords []string) (int, error)
}

// Scorer maps a file record to an integer relevance score in [0,100].
type Scorer struct {
	config  *Config
	content ContentScorer
}

// NewScorer creates a Scorer with the given configuration.
func NewScorer(config *Config) *Scorer {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &Scorer{config: config}
}

// WithContentScorer sets the content-scoring delegate.
func (s *Scorer) WithContentScorer(cs ContentScorer) *Scorer {
	s.content = cs
	return s
}

// Score returns the relevance score for f, in priority order: the persisted
// score (normalized), a preview-carried score, the content delegate, then
// the local keyword heuristic.
func (s *Scorer) Score(f *models.File) int {
	if f == nil {
		return 0
	}
	if f.RelevanceScore != nil {
		return normalizeScore(*f.RelevanceScore)
	}
	if f.Preview != nil && f.Preview.RelevanceScore != nil {
		return utils.ClampInt(int(math.Round(*f.Preview.RelevanceScore)), 0, 100)
	}
	if s.content != nil && f.Content != "" {
		if score, err := s.content.ScoreContent(f.Name, f.Content, s.config.allKeywords()); err == nil {
			return utils.ClampInt(score, 0, 100)
		}
		// Delegate failed; fall through to the heuristic.
	}
	return s.heuristic(f)
}

// EnhancedScore returns the current score for a file that has been through
// an analysis pass. It deliberately applies no analysis-type boost:
// re-adding a boost on every re-analysis would inflate scores monotonically.
// The only boost layer allowed on top of this is CategoryBoost, computed
// fresh from this base each time.
func (s *Scorer) EnhancedScore(f *models.File) int {
	return s.Score(f)
}

// DisplayScore is the boosted score shown in lists and used for relevance
// bucketing: the base score with the category boost applied once.
func (s *Scorer) DisplayScore(f *models.File) int {
	if f == nil {
		return 0
	}
	return CategoryBoost(s.EnhancedScore(f), len(f.Categories))
}

// CategoryBoost applies a logarithmic boost for assigned categories:
// min(100, score * (1 + ln(n+1) * 0.05)). It must always be fed the base
// score, never a previously boosted value.
func CategoryBoost(score, categoryCount int) int {
	if categoryCount <= 0 {
		return score
	}
	boosted := float64(score) * (1 + math.Log(float64(categoryCount)+1)*0.05)
	return utils.ClampInt(int(math.Round(boosted)), 0, 100)
}

// heuristic computes the fallback keyword score: base plus a bonus per
// distinct keyword found in name+content, streak bonuses for many matches,
// and a prose-format bonus.
func (s *Scorer) heuristic(f *models.File) int {
	haystack := lower(f.Name + " " + f.Content)
	matches := 0
	for _, kw := range s.config.allKeywords() {
		if strings.Contains(haystack, kw) {
			matches++
		}
	}

	score := s.config.BaseScore + matches*s.config.KeywordBonus
	if matches > 3 {
		score += s.config.StreakBonus
	}
	if matches > 5 {
		score += s.config.DeepStreakBonus
	}
	if proseFormats[f.Ext()] {
		score += s.config.FormatBonus
	}
	return utils.ClampInt(score, 0, 100)
}

// normalizeScore interprets a persisted score: values above 1 are already
// percentages, values in [0,1] are fractions.
func normalizeScore(v float64) int {
	if v > 1 {
		return utils.ClampInt(int(math.Round(v)), 0, 100)
	}
	return utils.ClampInt(int(math.Round(v*100)), 0, 100)
}
