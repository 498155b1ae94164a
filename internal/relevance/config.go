// Package relevance scores files against a knowledge-mining goal.
package relevance

// defaultKeywords are domain terms signaling insight, with Portuguese
// localization alongside the English forms.
var defaultKeywords = []string{
	"decision", "decisão",
	"insight",
	"transformation", "transformação",
	"learning", "aprendizado",
	"breakthrough", "descoberta",
	"important", "importante",
	"growth", "crescimento",
}

// proseFormats are extensions that earn the prose-format bonus.
var proseFormats = map[string]bool{
	"md": true, "txt": true, "doc": true, "docx": true,
}

// Config holds the heuristic weights and the user-configured keyword list.
// User keywords are unioned with the built-in defaults at scoring time.
type Config struct {
	BaseScore       int      `yaml:"base_score"`
	KeywordBonus    int      `yaml:"keyword_bonus"`
	StreakBonus     int      `yaml:"streak_bonus"`
	DeepStreakBonus int      `yaml:"deep_streak_bonus"`
	FormatBonus     int      `yaml:"format_bonus"`
	Keywords        []string `yaml:"keywords"`
}

// DefaultConfig returns the standard heuristic weights.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func (c *Config) ApplyDefaults() {
	if c.BaseScore == 0 {
		c.BaseScore = 25
	}
	if c.KeywordBonus == 0 {
		c.KeywordBonus = 10
	}
	if c.StreakBonus == 0 {
		c.StreakBonus = 15
	}
	if c.DeepStreakBonus == 0 {
		c.DeepStreakBonus = 10
	}
	if c.FormatBonus == 0 {
		c.FormatBonus = 5
	}
}

// allKeywords returns the deduplicated lowercase union of defaults and
// configured keywords.
func (c *Config) allKeywords() []string {
	seen := make(map[string]struct{}, len(defaultKeywords)+len(c.Keywords))
	out := make([]string, 0, len(defaultKeywords)+len(c.Keywords))
	for _, lists := range [][]string{defaultKeywords, c.Keywords} {
		for _, k := range lists {
			k = lower(k)
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
