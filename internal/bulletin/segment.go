// Package bulletin splits judicial bulletin text into auction notices and
// pulls the deterministic fields (reference, matrícula) out of each one.
package bulletin

import (
	"iter"
	"regexp"
	"strings"
)

// Anchor separates the entries of a bulletin.
const Anchor = "Referencia N°:"

// Candidate is one bulletin entry classified as a real-estate auction notice.
type Candidate struct {
	// Index is the 1-based position among accepted candidates.
	Index int `json:"index"`
	// Entry is the 0-based position among all split entries.
	Entry     int    `json:"entry"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

var includeRules = compileAll(
	`(?i)sáquese a remate la finca`,
	`(?i)finca del partido de`,
	`(?i)matrícula número`,
	`(?i)EJECUCIÓN HIPOTECARIA`,
	`(?i)COLINDA:`,
	`(?i)MIDE:.*METROS CUADRADOS`,
)

var excludeRules = compileAll(
	`(?i)sáquese a remate el vehículo`,
	`(?i)placa [A-Z]{3}\d{3,4}`,
	`(?i)Marca: [A-Z]`,
	`(?i)# de Chasis:`,
	`(?i)Cilindrada:`,
	`(?i)INFORMACIÓN POSESORIA`,
	`(?i)Juzgado Notarial`,
	`(?i)proceso disciplinario`,
	`(?i)denuncia por el mal actuar`,
	`(?i)Dirección Nacional de Notariado`,
	`(?i)Sucesorio`,
	`(?i)CAUSAHABIENTES`,
)

var referenceRe = regexp.MustCompile(`\d{10,}`)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func matchesAny(rules []*regexp.Regexp, text string) bool {
	for _, re := range rules {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsPropertyAuction reports whether an entry is a real-estate auction notice:
// at least one include rule matches and no exclude rule does.
func IsPropertyAuction(entry string) bool {
	return matchesAny(includeRules, entry) && !matchesAny(excludeRules, entry)
}

// Reference returns the first run of ten or more digits in the entry.
func Reference(entry string) (string, bool) {
	ref := referenceRe.FindString(entry)
	return ref, ref != ""
}

// SplitEntries splits the bulletin on the anchor phrase. Joining the result
// with Anchor reconstructs the input.
func SplitEntries(text string) []string {
	return strings.Split(text, Anchor)
}

// Segment yields the property-auction candidates of a bulletin in document
// order. The sequence is lazy and can be ranged over more than once.
func Segment(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		idx := 0
		for i, entry := range SplitEntries(text) {
			trimmed := strings.TrimSpace(entry)
			if trimmed == "" || !IsPropertyAuction(trimmed) {
				continue
			}
			idx++
			ref, _ := Reference(trimmed)
			if !yield(Candidate{Index: idx, Entry: i, Reference: ref, Text: trimmed}) {
				return
			}
		}
	}
}

// CountEntries returns the number of non-empty entries in the bulletin.
func CountEntries(text string) int {
	n := 0
	for _, entry := range SplitEntries(text) {
		if strings.TrimSpace(entry) != "" {
			n++
		}
	}
	return n
}
