// Package reconcile writes normalized notices to the store and records one
// audit summary per run.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/remates-cli/internal/model"
)

// Writer is the part of the store the reconciler uses.
type Writer interface {
	GetByMatricula(ctx context.Context, matricula string) (*model.Remate, error)
	Insert(ctx context.Context, r *model.Remate) error
	Update(ctx context.Context, matricula string, u model.RemateUpdate) error
	CreateRunSummary(ctx context.Context, s *model.RunSummary) error
	AddFailures(ctx context.Context, failures []model.FailedRecord) error
}

// ErrorKindPersistence marks dead letters from failed store writes.
const ErrorKindPersistence = "persistence"

// RunInfo describes the run the records came from.
type RunInfo struct {
	BulletinNumber  string
	TotalEntries    int
	TotalProperties int
	Deduplicated    int
	ProcessedBy     string
	// Failures are records that never reached the reconciler, typically
	// extraction failures. They are dead-lettered and counted as failed.
	Failures []model.FailedRecord
}

// RecordError is one failed write.
type RecordError struct {
	Matricula string `json:"matricula"`
	Error     string `json:"error"`
}

// Result is the outcome of Save.
type Result struct {
	Inserted int              `json:"inserted"`
	Updated  int              `json:"updated"`
	Failed   int              `json:"failed"`
	Errors   []RecordError    `json:"errors,omitempty"`
	Summary  model.RunSummary `json:"summary"`
	// SummaryErr is set when the audit summary could not be written. Record
	// writes that already happened stand.
	SummaryErr error `json:"-"`
}

// Reconciler inserts new notices and merges duplicates.
type Reconciler struct {
	w   Writer
	now func() time.Time
	log *zap.Logger
}

// New returns a Reconciler over w.
func New(w Writer) *Reconciler {
	return &Reconciler{
		w:   w,
		now: func() time.Time { return time.Now().UTC() },
		log: zap.L().With(zap.String("component", "reconcile")),
	}
}

// Save writes records one at a time. A failed record is logged, counted and
// dead-lettered; it never stops the others. Exactly one run summary is
// written at the end. The returned error is non-nil only when ctx was
// cancelled, in which case the remaining records are skipped but the
// summary is still written.
func (r *Reconciler) Save(ctx context.Context, records []model.Remate, info RunInfo) (*Result, error) {
	res := &Result{}
	failures := append([]model.FailedRecord(nil), info.Failures...)

	var cancelErr error
	for i := range records {
		if err := ctx.Err(); err != nil {
			cancelErr = eris.Wrap(err, "reconcile: save")
			break
		}
		rec := &records[i]

		inserted, err := r.saveOne(ctx, rec, info.BulletinNumber)
		if err != nil {
			r.log.Error("reconcile: record failed", zap.String("matricula", rec.Matricula), zap.Error(err))
			res.Errors = append(res.Errors, RecordError{Matricula: rec.Matricula, Error: err.Error()})
			failures = append(failures, model.FailedRecord{
				ID:             uuid.NewString(),
				BulletinNumber: info.BulletinNumber,
				Matricula:      rec.Matricula,
				ErrorKind:      ErrorKindPersistence,
				Error:          err.Error(),
				RawText:        rec.RawText,
				CreatedAt:      r.now(),
			})
			continue
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	res.Failed = len(failures)

	// Bookkeeping outlives a cancelled run.
	bg := context.WithoutCancel(ctx)
	if len(failures) > 0 {
		if err := r.w.AddFailures(bg, failures); err != nil {
			r.log.Error("reconcile: dead-letter write failed", zap.Int("failures", len(failures)), zap.Error(err))
		}
	}

	res.Summary = r.summary(res, info, cancelErr != nil)
	if err := r.w.CreateRunSummary(bg, &res.Summary); err != nil {
		r.log.Error("reconcile: run summary write failed", zap.String("run_id", res.Summary.ID), zap.Error(err))
		res.SummaryErr = eris.Wrap(err, "reconcile: run summary")
	}

	r.log.Info("reconcile: run saved",
		zap.String("bulletin", info.BulletinNumber),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("failed", res.Failed),
		zap.String("status", string(res.Summary.Status)),
	)
	return res, cancelErr
}

// saveOne inserts rec or merges it into the stored notice. It reports
// whether the record was inserted.
func (r *Reconciler) saveOne(ctx context.Context, rec *model.Remate, bulletin string) (bool, error) {
	stored, err := r.w.GetByMatricula(ctx, rec.Matricula)
	if err != nil {
		return false, err
	}

	now := r.now()
	if stored != nil {
		return false, r.w.Update(ctx, rec.Matricula, MergeUpdate(stored, rec, now))
	}

	row := *rec
	if row.BulletinNumber == nil && bulletin != "" {
		b := bulletin
		row.BulletinNumber = &b
	}
	row.Status = model.StatusActive
	row.IsActive = true
	row.ExtractionDate = &now
	row.CreatedAt = now
	row.UpdatedAt = now
	return true, r.w.Insert(ctx, &row)
}

func (r *Reconciler) summary(res *Result, info RunInfo, cancelled bool) model.RunSummary {
	notes := "Procesado exitosamente"
	if res.Failed > 0 {
		notes = fmt.Sprintf("Procesado con %d errores", res.Failed)
	}
	if cancelled {
		notes += " (cancelado)"
	}
	return model.RunSummary{
		ID:              uuid.NewString(),
		BulletinNumber:  info.BulletinNumber,
		FileName:        model.BulletinFileName(info.BulletinNumber),
		TotalEntries:    info.TotalEntries,
		TotalProperties: info.TotalProperties,
		Deduplicated:    info.Deduplicated,
		Inserted:        res.Inserted,
		Updated:         res.Updated,
		Failed:          res.Failed,
		Status:          model.OutcomeFor(res.Inserted, res.Updated, res.Failed),
		Notes:           notes,
		ProcessedBy:     info.ProcessedBy,
		ProcessedAt:     r.now(),
	}
}
