package bulletin

import "unicode/utf8"

const previewRunes = 300

// PreviewItem summarizes one candidate without extracting it.
type PreviewItem struct {
	Index     int    `json:"index"`
	Reference string `json:"reference"`
	Preview   string `json:"preview"`
	Chars     int    `json:"chars"`
	Matricula string `json:"matricula,omitempty"`
}

// PreviewResult is the classification pre-check of a bulletin.
type PreviewResult struct {
	Entries    int           `json:"entries"`
	Total      int           `json:"total"`
	Candidates []PreviewItem `json:"candidates"`
}

// Preview classifies the bulletin and returns a short prefix of every
// candidate. No network calls are made.
func Preview(text string) PreviewResult {
	res := PreviewResult{Entries: CountEntries(text), Candidates: []PreviewItem{}}
	for c := range Segment(text) {
		mat, _ := ExtractMatricula(c.Text)
		res.Candidates = append(res.Candidates, PreviewItem{
			Index:     c.Index,
			Reference: c.Reference,
			Preview:   truncate(c.Text, previewRunes),
			Chars:     utf8.RuneCountInString(c.Text),
			Matricula: mat,
		})
	}
	res.Total = len(res.Candidates)
	return res
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
