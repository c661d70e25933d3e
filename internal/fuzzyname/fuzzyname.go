// Package fuzzyname provides approximate matching over a ScopeIndex's
// rendered scope names, for a "find the scope I roughly remember the
// name of" search path. This pairs the same two libraries the teacher
// codebase's internal/semantic package uses for its own fuzzy symbol
// search — go-edlib's Jaro-Winkler similarity (fuzzy_matcher.go) and a
// Porter2 stemmer (stemmer.go) to normalize identifier tokens before
// comparing them — trimmed to the one algorithm and no
// runtime-configurable dictionary this engine's search needs.
package fuzzyname

import (
	"sort"
	"strings"

	edlib "github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// Stem normalizes word to its lowercased Porter2 stem. Tokens shorter
// than 3 characters are only lowercased, not stemmed — stemming "id"
// or "db" destroys the token without normalizing anything meaningful.
func Stem(word string) string {
	if len(word) < 3 {
		return strings.ToLower(word)
	}
	return porter2.Stem(strings.ToLower(word))
}

// Similarity scores how alike a and b are on a 0-1 scale via
// Jaro-Winkler distance. An edlib error (e.g. on empty input) is
// treated as no similarity, matching the teacher's own fuzzy
// matcher's fallback.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(score)
}

// Match is one candidate scope name ranked against a search query.
type Match struct {
	Name  string
	Score float64
}

// tokenize splits a rendered scope name ("Klass.prototype.method") on
// the separators ScopeName joins components with, so each component
// stems and scores independently of the others.
func tokenize(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == ' '
	})
}

// Search ranks candidates against query by the best stemmed-token
// similarity, returning at most limit matches sorted by descending
// score. Candidates with no token scoring above zero are dropped. A
// non-positive limit returns every scoring candidate.
func Search(candidates []string, query string, limit int) []Match {
	queryTokens := tokenize(query)
	stemmedQuery := make([]string, len(queryTokens))
	for i, t := range queryTokens {
		stemmedQuery[i] = Stem(t)
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		best := 0.0
		for _, ct := range tokenize(c) {
			stemmedCand := Stem(ct)
			for _, qt := range stemmedQuery {
				if s := Similarity(stemmedCand, qt); s > best {
					best = s
				}
			}
		}
		if best > 0 {
			matches = append(matches, Match{Name: c, Score: best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
