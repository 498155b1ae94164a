package models

import "regexp"

// entityPattern matches adjacent capitalized words ("Machine Learning",
// "Ada Lovelace") in preview text. These pairs feed the graph view.
var entityPattern = regexp.MustCompile(`\b\p{Lu}\p{Ll}+ \p{Lu}\p{Ll}+\b`)

// ExtractEntities returns up to limit distinct capitalized word pairs from
// text, in order of first appearance. limit <= 0 means no limit.
func ExtractEntities(text string, limit int) []string {
	matches := entityPattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	entities := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		entities = append(entities, m)
		if limit > 0 && len(entities) >= limit {
			break
		}
	}
	return entities
}
