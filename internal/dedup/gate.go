// Package dedup skips notices whose matrícula is already stored, so they
// never reach the completion service.
package dedup

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/remates-cli/internal/bulletin"
	"github.com/sells-group/remates-cli/internal/model"
)

// Finder is the store lookup the gate needs.
type Finder interface {
	FindExisting(ctx context.Context, matriculas []string) (map[string]*model.Remate, error)
}

// Record is a candidate notice, with its matrícula when the deterministic
// extractor found one. Keyword is false when the matrícula came from the
// bare digit tier and is only good enough to key the lookup.
type Record struct {
	Candidate bulletin.Candidate
	Matricula string
	Keyword   bool
}

// Existing pairs a candidate with the stored notice it duplicates.
type Existing struct {
	Record
	Stored *model.Remate
}

// Partition splits resolved records into already-stored and new ones.
// Input order is kept within each side.
type Partition struct {
	Existing []Existing
	New      []Record
}

// Gate partitions records with a single batched lookup.
type Gate struct {
	finder Finder
}

// New returns a Gate over finder.
func New(finder Finder) *Gate {
	return &Gate{finder: finder}
}

// Resolve runs the matrícula cascade over candidates and splits them into
// resolved and unresolved records.
func Resolve(cands []bulletin.Candidate) (resolved, unresolved []Record) {
	for _, c := range cands {
		if m, ok := bulletin.MatchMatricula(c.Text); ok {
			resolved = append(resolved, Record{Candidate: c, Matricula: m.ID, Keyword: m.Keyword})
			continue
		}
		unresolved = append(unresolved, Record{Candidate: c})
	}
	return resolved, unresolved
}

// Partition issues one FindExisting call for all resolved matrículas. If the
// lookup fails every record is routed as new and the error is returned for
// the caller's stats: a redundant completion call is cheaper than a skipped
// notice.
func (g *Gate) Partition(ctx context.Context, resolved []Record) (Partition, error) {
	if len(resolved) == 0 {
		return Partition{}, nil
	}

	seen := make(map[string]bool, len(resolved))
	keys := make([]string, 0, len(resolved))
	for _, r := range resolved {
		if !seen[r.Matricula] {
			seen[r.Matricula] = true
			keys = append(keys, r.Matricula)
		}
	}

	stored, err := g.finder.FindExisting(ctx, keys)
	if err != nil {
		zap.L().Warn("dedup: lookup failed, treating all records as new",
			zap.Int("records", len(resolved)), zap.Error(err))
		return Partition{New: resolved}, eris.Wrap(err, "dedup: find existing")
	}

	var p Partition
	for _, r := range resolved {
		if s, ok := stored[r.Matricula]; ok {
			p.Existing = append(p.Existing, Existing{Record: r, Stored: s})
			continue
		}
		p.New = append(p.New, r)
	}
	return p, nil
}
