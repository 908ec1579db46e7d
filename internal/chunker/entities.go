package chunker

import (
	"regexp"
	"strings"
)

// Entity extraction is a simple rule-based procedure used to drive the
// entity-boost heuristic during enhanced search. It is applied both to
// chunk text at build time and to free-text queries at search time.
var (
	quotedPattern  = regexp.MustCompile(`"([^"]+)"`)
	callPattern    = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\(`)
	camelPattern   = regexp.MustCompile(`\b[a-z]+(?:[A-Z][a-z0-9]*)+\b`)
	capitalPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9]{2,}\b`)
)

// ExtractEntities pulls entity terms from free text: quoted phrases,
// call-shaped identifiers, camelCase/PascalCase tokens and capitalized
// words. Results are lower-cased, deduplicated and returned in order of
// first appearance.
func ExtractEntities(text string) []string {
	var entities []string
	seen := make(map[string]bool)

	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		entities = append(entities, term)
	}

	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range callPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range camelPattern.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range capitalPattern.FindAllString(text, -1) {
		add(m)
	}

	return entities
}
