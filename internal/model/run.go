package model

import (
	"fmt"
	"time"
)

// RunOutcome is the overall result recorded for a processing run.
type RunOutcome string

const (
	RunOutcomeSuccess RunOutcome = "exitoso"
	RunOutcomePartial RunOutcome = "parcial"
	RunOutcomeFailed  RunOutcome = "fallido"
)

// OutcomeFor derives the run outcome from write counters. A run with failures
// that wrote nothing is failed; with failures and some writes it is partial.
func OutcomeFor(inserted, updated, failed int) RunOutcome {
	switch {
	case failed > 0 && inserted == 0 && updated == 0:
		return RunOutcomeFailed
	case failed > 0:
		return RunOutcomePartial
	default:
		return RunOutcomeSuccess
	}
}

// RunSummary is the append-only audit record of one bulletin ingestion.
type RunSummary struct {
	ID              string     `json:"id"`
	BulletinNumber  string     `json:"bulletin_number"`
	FileName        string     `json:"file_name"`
	TotalEntries    int        `json:"total_entries"`
	TotalProperties int        `json:"total_properties"`
	Deduplicated    int        `json:"deduplicated"`
	Inserted        int        `json:"inserted"`
	Updated         int        `json:"updated"`
	Failed          int        `json:"failed"`
	Status          RunOutcome `json:"status"`
	Notes           string     `json:"notes"`
	ProcessedBy     string     `json:"processed_by"`
	ProcessedAt     time.Time  `json:"processed_at"`
}

// BulletinFileName returns the conventional file name recorded for a
// bulletin number, or "" when the number is unknown.
func BulletinFileName(bulletin string) string {
	if bulletin == "" {
		return ""
	}
	return fmt.Sprintf("Boletin_%s.txt", bulletin)
}
