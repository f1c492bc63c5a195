package bulletin

import (
	"regexp"
	"strings"
)

// keywordCascade is ordered from most to least specific. Every tier anchors
// on the "matrícula" keyword.
var keywordCascade = []*regexp.Regexp{
	regexp.MustCompile(`(?i)matrícula\s+número\s+(\d{6,}-?\d{2,})`),
	regexp.MustCompile(`(?i)matrícula\s+número\s+(\d{6,}(?:\s*-?\s*F)?)`),
	regexp.MustCompile(`(?i)matrícula\s+(\d{6,}-\d{2,})`),
}

// bareMatricula is the last-resort tier: any long digit run.
var bareMatricula = regexp.MustCompile(`\d{6,}(?:\s*-?\s*\d{2,})?`)

var (
	separatedSuffix = regexp.MustCompile(`^(\d+)(?:\s*-\s*|\s+)(\d+|[Ff])$`)
	gluedFSuffix    = regexp.MustCompile(`^(\d+)([Ff])$`)
)

// Match is a matrícula found in a notice. Keyword reports whether it sat
// next to the "matrícula" keyword; a bare digit run is only a guess.
type Match struct {
	ID      string
	Keyword bool
}

// MatchMatricula runs the cascade over a notice and returns the first hit in
// canonical form. The bare tier skips the notice's own reference number.
func MatchMatricula(text string) (Match, bool) {
	for _, re := range keywordCascade {
		if m := re.FindStringSubmatch(text); m != nil {
			if id := CanonicalMatricula(m[1]); id != "" {
				return Match{ID: id, Keyword: true}, true
			}
		}
	}
	ref, _ := Reference(text)
	for _, hit := range bareMatricula.FindAllString(text, -1) {
		if ref != "" && strings.HasPrefix(hit, ref) {
			continue
		}
		if id := CanonicalMatricula(hit); id != "" {
			return Match{ID: id}, true
		}
	}
	return Match{}, false
}

// ExtractMatricula returns the registry identifier of a notice. It never
// fails; a miss routes the notice to the AI extractor.
func ExtractMatricula(text string) (string, bool) {
	m, ok := MatchMatricula(text)
	return m.ID, ok
}

// CanonicalMatricula joins a matrícula's number and suffix with a single
// dash and upper-cases the "F" suffix, so "627947 F", "627947F" and
// "627947 - f" all become "627947-F". Other shapes are only trimmed.
func CanonicalMatricula(id string) string {
	id = strings.TrimSpace(id)
	m := separatedSuffix.FindStringSubmatch(id)
	if m == nil {
		m = gluedFSuffix.FindStringSubmatch(id)
	}
	if m == nil {
		return id
	}
	return m[1] + "-" + strings.ToUpper(m[2])
}
