// Package ingest runs one bulletin through segmentation, dedup, extraction,
// normalization and optional persistence, reporting progress as an ordered
// event stream.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/remates-cli/internal/bulletin"
	"github.com/sells-group/remates-cli/internal/dedup"
	"github.com/sells-group/remates-cli/internal/extract"
	"github.com/sells-group/remates-cli/internal/model"
	"github.com/sells-group/remates-cli/internal/normalize"
	"github.com/sells-group/remates-cli/internal/reconcile"
)

// DefaultBatchSize bounds concurrent completion calls when none is set.
const DefaultBatchSize = 2

// Extractor turns one notice into a structured record.
type Extractor interface {
	Extract(ctx context.Context, req extract.Request) (*model.Remate, error)
}

// Saver persists a run's records.
type Saver interface {
	Save(ctx context.Context, records []model.Remate, info reconcile.RunInfo) (*reconcile.Result, error)
}

// Config tunes a Pipeline.
type Config struct {
	BatchSize int
	// RunTimeout caps the whole run. Zero means no cap.
	RunTimeout  time.Duration
	ProcessedBy string
}

// Input is one bulletin to process.
type Input struct {
	Text     string
	Bulletin string
	// Persist reconciles the new records into the store after extraction.
	Persist     bool
	ProcessedBy string
}

// Pipeline wires the stages of a run together.
type Pipeline struct {
	gate       *dedup.Gate
	extractor  Extractor
	normalizer *normalize.Normalizer
	saver      Saver
	cfg        Config
	now        func() time.Time
}

// New returns a Pipeline. saver may be nil when runs never persist.
func New(gate *dedup.Gate, extractor Extractor, normalizer *normalize.Normalizer, saver Saver, cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Pipeline{
		gate:       gate,
		extractor:  extractor,
		normalizer: normalizer,
		saver:      saver,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run starts the run in its own goroutine and returns its event stream.
// Cancelling ctx, or hitting the run timeout, stops between batches and ends
// the stream with a cancelled complete event.
func (p *Pipeline) Run(ctx context.Context, in Input) *Stream {
	s := newStream()
	log := zap.L().With(zap.String("component", "ingest"), zap.String("bulletin", in.Bulletin))
	em := &emitter{s: s, log: log}

	go func() {
		defer em.close()

		runCtx := ctx
		if p.cfg.RunTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, p.cfg.RunTimeout)
			defer cancel()
		}
		p.run(runCtx, in, em, log)
	}()
	return s
}

// outcome is one extraction result, kept in record order.
type outcome struct {
	rec    dedup.Record
	remate *model.Remate
	err    error
}

func (p *Pipeline) run(ctx context.Context, in Input, em *emitter, log *zap.Logger) {
	start := time.Now()
	cands := slices.Collect(bulletin.Segment(in.Text))
	resolved, unresolved := dedup.Resolve(cands)

	stats := Stats{
		TotalEntries: bulletin.CountEntries(in.Text),
		Candidates:   len(cands),
		Resolved:     len(resolved),
		Unresolved:   len(unresolved),
	}

	part, err := p.gate.Partition(ctx, resolved)
	if err != nil {
		stats.LookupFailed = true
	}
	stats.Existing = len(part.Existing)
	stats.New = len(part.New)

	toExtract := append(slices.Clone(part.New), unresolved...)
	batches := chunk(toExtract, p.cfg.BatchSize)

	em.send(TotalEvent{
		Type:                KindTotal,
		Total:               len(cands),
		Resolved:            len(resolved),
		Unresolved:          len(unresolved),
		Existing:            len(part.Existing),
		New:                 len(part.New),
		UnresolvedToExtract: len(unresolved),
		ToExtract:           len(toExtract),
		Batches:             len(batches),
	})

	if len(cands) == 0 {
		log.Warn("ingest: no auction notices in bulletin", zap.Int("entries", stats.TotalEntries))
		em.send(ErrorEvent{Type: KindError, Message: "No hay remates en el boletín"})
		return
	}

	var (
		extracted []model.Remate
		failures  []model.FailedRecord
		cancelled bool
		current   int
	)

	for bi, batch := range batches {
		if err := ctx.Err(); err != nil {
			cancelled = true
			for _, rest := range batches[bi:] {
				for _, rec := range rest {
					stats.Cancelled++
					failures = append(failures, p.failedRecord(rec, in.Bulletin, extract.KindCancelled, err))
				}
			}
			break
		}

		em.send(BatchStartEvent{
			Type:         KindBatchStart,
			Batch:        bi + 1,
			TotalBatches: len(batches),
			BatchSize:    len(batch),
			Info:         fmt.Sprintf("Procesando %d remates", len(batch)),
		})

		first := current + 1
		for range batch {
			current++
			em.send(ProgressEvent{
				Type:    KindProgress,
				Current: current,
				Total:   len(toExtract),
				Info:    fmt.Sprintf("Extracción: %d/%d", current, len(toExtract)),
			})
		}

		results := p.extractBatch(ctx, batch, in.Bulletin)

		for i, res := range results {
			if res.err == nil {
				rec := *res.remate
				if rec.BulletinNumber == nil && in.Bulletin != "" {
					b := in.Bulletin
					rec.BulletinNumber = &b
				}
				extracted = append(extracted, p.normalizer.Normalize(rec))
				continue
			}
			if ctx.Err() != nil && isContextErr(res.err) {
				cancelled = true
				stats.Cancelled++
				failures = append(failures, p.failedRecord(res.rec, in.Bulletin, extract.KindCancelled, res.err))
				continue
			}

			kind := extract.Classify(res.err)
			stats.Errors++
			ev := RecordErrorEvent{
				Type:      KindErrorRemate,
				Record:    first + i,
				Reference: res.rec.Candidate.Reference,
				Error:     res.err.Error(),
				ErrorKind: string(kind),
			}
			if extract.Critical(res.err) {
				stats.CriticalErrors++
				ev.Type = KindErrorCritico
				ev.Diagnostic = kind.Diagnostic()
			}
			log.Warn("ingest: record failed",
				zap.Int("record", ev.Record),
				zap.String("reference", ev.Reference),
				zap.String("kind", ev.ErrorKind),
				zap.Error(res.err),
			)
			em.send(ev)

			failures = append(failures, p.failedRecord(res.rec, in.Bulletin, kind, res.err))
		}
	}
	stats.Extracted = len(extracted)

	csvData, err := ExportCSV(extracted)
	if err != nil {
		log.Error("ingest: csv export failed", zap.Error(err))
	}

	complete := CompleteEvent{
		Type:          KindComplete,
		Success:       true,
		Stats:         stats,
		Data:          extracted,
		CSV:           csvData,
		TotalNew:      len(extracted),
		TotalExisting: len(part.Existing),
		Cancelled:     cancelled,
		Summary: Summary{
			Total:        len(cands),
			Resolved:     len(resolved),
			Skipped:      len(part.Existing),
			SentToAI:     len(toExtract),
			Extracted:    len(extracted),
			Errors:       stats.Errors,
			AICallsSaved: len(part.Existing),
		},
	}
	if complete.Data == nil {
		complete.Data = []model.Remate{}
	}

	if in.Persist && p.saver != nil {
		processedBy := in.ProcessedBy
		if processedBy == "" {
			processedBy = p.cfg.ProcessedBy
		}
		res, err := p.saver.Save(ctx, extracted, reconcile.RunInfo{
			BulletinNumber:  in.Bulletin,
			TotalEntries:    stats.TotalEntries,
			TotalProperties: len(cands),
			Deduplicated:    len(part.Existing),
			ProcessedBy:     processedBy,
			Failures:        failures,
		})
		if err != nil {
			cancelled = true
			log.Warn("ingest: persistence interrupted", zap.Error(err))
		}
		complete.Persist = res
		complete.Cancelled = cancelled
	}

	log.Info("ingest: run complete",
		zap.Int("candidates", len(cands)),
		zap.Int("existing", len(part.Existing)),
		zap.Int("extracted", len(extracted)),
		zap.Int("errors", stats.Errors),
		zap.Int("cancelled_records", stats.Cancelled),
		zap.Bool("cancelled", cancelled),
		zap.Duration("elapsed", time.Since(start)),
	)
	em.send(complete)
}

// failedRecord builds the dead-letter entry for a record that produced no
// output.
func (p *Pipeline) failedRecord(rec dedup.Record, bulletinNumber string, kind extract.Kind, err error) model.FailedRecord {
	return model.FailedRecord{
		ID:             uuid.NewString(),
		BulletinNumber: bulletinNumber,
		Reference:      rec.Candidate.Reference,
		Matricula:      rec.Matricula,
		ErrorKind:      string(kind),
		Error:          err.Error(),
		RawText:        rec.Candidate.Text,
		CreatedAt:      p.now(),
	}
}

// extractBatch extracts every record of batch concurrently. Failures stay
// with their record; the batch always runs to completion.
func (p *Pipeline) extractBatch(ctx context.Context, batch []dedup.Record, bulletinNumber string) []outcome {
	results := make([]outcome, len(batch))
	var g errgroup.Group
	for i, rec := range batch {
		results[i].rec = rec
		g.Go(func() error {
			req := extract.Request{RawText: rec.Candidate.Text, Bulletin: bulletinNumber}
			if rec.Keyword {
				req.Matricula = rec.Matricula
			} else {
				req.Fallback = rec.Matricula
			}
			r, err := p.extractor.Extract(ctx, req)
			results[i].remate, results[i].err = r, err
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for i := 0; i < len(items); i += size {
		out = append(out, items[i:min(i+size, len(items))])
	}
	return out
}
