package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/remates-cli/internal/bulletin"
	"github.com/sells-group/remates-cli/internal/dedup"
	"github.com/sells-group/remates-cli/internal/extract"
	"github.com/sells-group/remates-cli/internal/model"
	"github.com/sells-group/remates-cli/internal/normalize"
	"github.com/sells-group/remates-cli/internal/reconcile"
	"github.com/sells-group/remates-cli/internal/resilience"
	"github.com/sells-group/remates-cli/internal/store/mocks"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func str(s string) *string { return &s }

func entry(ref, matricula, place string) string {
	return fmt.Sprintf(" %s Con una base de cuatro millones de colones, sáquese a remate la finca del partido de %s, matrícula número %s. COLINDA: norte, calle pública.\n", ref, place, matricula)
}

// unresolvedEntry has no digit run long enough for the matrícula cascade.
func unresolvedEntry(place string) string {
	return fmt.Sprintf(" Sáquese a remate la finca del partido de %s, sin número inscrito. COLINDA: sur, río.\n", place)
}

func bulletinOf(entries ...string) string {
	var b strings.Builder
	b.WriteString("BOLETÍN JUDICIAL N° 45\n")
	for _, e := range entries {
		b.WriteString(bulletin.Anchor)
		b.WriteString(e)
	}
	return b.String()
}

func newTestPipeline(t *testing.T, ext Extractor, saver Saver, batchSize int) (*Pipeline, *mocks.MockStore) {
	t.Helper()
	st := mocks.NewMockStore(t)
	return New(dedup.New(st), ext, normalize.New(nil), saver, Config{BatchSize: batchSize}), st
}

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, e := range events {
		out[i] = e.EventKind()
	}
	return out
}

func lastComplete(t *testing.T, events []Event) CompleteEvent {
	t.Helper()
	require.NotEmpty(t, events)
	c, ok := events[len(events)-1].(CompleteEvent)
	require.True(t, ok, "last event is %s", events[len(events)-1].EventKind())
	return c
}

func TestRun_NoCandidatesEndsWithError(t *testing.T) {
	ext := &mockExtractor{}
	p, _ := newTestPipeline(t, ext, nil, 2)

	text := "BOLETÍN\n" + bulletin.Anchor + " 2025765432 sáquese a remate el vehículo placa ABC123."
	events := p.Run(context.Background(), Input{Text: text, Bulletin: "45"}).Collect()

	assert.Equal(t, []Kind{KindTotal, KindError}, kinds(events))
	assert.Equal(t, 0, events[0].(TotalEvent).Total)
	assert.NotEmpty(t, events[1].(ErrorEvent).Message)
	ext.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestRun_SkipsExistingAndExtractsTheRest(t *testing.T) {
	ext := &mockExtractor{}
	p, st := newTestPipeline(t, ext, nil, 2)

	text := bulletinOf(
		entry("2025000001", "627947-000", "San José"),
		entry("2025000002", "118800-001", "Heredia"),
		unresolvedEntry("Limón"),
	)

	st.On("FindExisting", mock.Anything, []string{"627947-000", "118800-001"}).
		Return(map[string]*model.Remate{"627947-000": {Matricula: "627947-000"}}, nil)
	ext.On("Extract", mock.Anything, byMatricula("118800-001")).
		Return(&model.Remate{Matricula: "118800-001", Canton: str("3-Desamparados"), RawText: "b"}, nil)
	ext.On("Extract", mock.Anything, byText("Limón")).
		Return(nil, extract.ErrNoIdentifier)

	events := p.Run(context.Background(), Input{Text: text, Bulletin: "45"}).Collect()

	assert.Equal(t, []Kind{KindTotal, KindBatchStart, KindProgress, KindProgress, KindErrorRemate, KindComplete}, kinds(events))

	total := events[0].(TotalEvent)
	assert.Equal(t, 3, total.Total)
	assert.Equal(t, 2, total.Resolved)
	assert.Equal(t, 1, total.Unresolved)
	assert.Equal(t, 1, total.Existing)
	assert.Equal(t, 1, total.New)
	assert.Equal(t, 2, total.ToExtract)
	assert.Equal(t, 1, total.Batches)

	errEv := events[4].(RecordErrorEvent)
	assert.Equal(t, 2, errEv.Record)
	assert.Equal(t, string(extract.KindNoIdentifier), errEv.ErrorKind)
	assert.Empty(t, errEv.Diagnostic)

	c := lastComplete(t, events)
	assert.True(t, c.Success)
	assert.False(t, c.Cancelled)
	require.Len(t, c.Data, 1)
	assert.Equal(t, "Desamparados", *c.Data[0].Canton)
	assert.Equal(t, "118800-001", *c.Data[0].FincaID)
	assert.Equal(t, 1, c.TotalNew)
	assert.Equal(t, 1, c.TotalExisting)
	assert.Equal(t, 1, c.Summary.AICallsSaved)
	assert.Equal(t, 1, c.Stats.Errors)
	assert.True(t, strings.HasPrefix(c.CSV, "matricula,finca_id,"))
	assert.Contains(t, c.CSV, "118800-001")
	assert.Nil(t, c.Persist)
}

func TestRun_TransportFailureIsCritical(t *testing.T) {
	ext := &mockExtractor{}
	p, st := newTestPipeline(t, ext, nil, 2)

	st.On("FindExisting", mock.Anything, mock.Anything).Return(map[string]*model.Remate{}, nil)
	ext.On("Extract", mock.Anything, mock.Anything).
		Return(nil, resilience.NewTransientError(errors.New("too many requests"), 429))

	events := p.Run(context.Background(), Input{Text: bulletinOf(entry("2025000001", "627947-000", "Cartago"))}).Collect()

	require.Equal(t, []Kind{KindTotal, KindBatchStart, KindProgress, KindErrorCritico, KindComplete}, kinds(events))
	ev := events[3].(RecordErrorEvent)
	assert.Equal(t, "2025000001", ev.Reference)
	assert.Equal(t, string(extract.KindRateLimit), ev.ErrorKind)
	assert.NotEmpty(t, ev.Diagnostic)

	c := lastComplete(t, events)
	assert.True(t, c.Success)
	assert.Empty(t, c.Data)
	assert.Equal(t, 1, c.Stats.CriticalErrors)
}

func TestRun_BatchesAreOrdered(t *testing.T) {
	ext := &mockExtractor{}
	p, st := newTestPipeline(t, ext, nil, 2)

	var entries []string
	for i := range 5 {
		entries = append(entries, entry(fmt.Sprintf("20250000%02d", i), fmt.Sprintf("10000%d-000", i), "Alajuela"))
	}
	st.On("FindExisting", mock.Anything, mock.Anything).Return(map[string]*model.Remate{}, nil)
	ext.On("Extract", mock.Anything, byMatricula("100002-000")).Return(nil, extract.ErrMalformedJSON)
	ext.On("Extract", mock.Anything, mock.Anything).Return(func(_ context.Context, r extract.Request) *model.Remate {
		return &model.Remate{Matricula: r.Matricula, RawText: r.RawText}
	}, nil)

	events := p.Run(context.Background(), Input{Text: bulletinOf(entries...)}).Collect()

	assert.Equal(t, []Kind{
		KindTotal,
		KindBatchStart, KindProgress, KindProgress,
		KindBatchStart, KindProgress, KindProgress, KindErrorRemate,
		KindBatchStart, KindProgress,
		KindComplete,
	}, kinds(events))

	var current []int
	for _, e := range events {
		if pe, ok := e.(ProgressEvent); ok {
			current = append(current, pe.Current)
			assert.Equal(t, 5, pe.Total)
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, current)
	assert.Equal(t, 3, events[7].(RecordErrorEvent).Record)

	c := lastComplete(t, events)
	require.Len(t, c.Data, 4)
	assert.Equal(t, "100000-000", c.Data[0].Matricula)
	assert.Equal(t, "100004-000", c.Data[3].Matricula)
}

func TestRun_LookupFailureRoutesEverythingToExtraction(t *testing.T) {
	ext := &mockExtractor{}
	p, st := newTestPipeline(t, ext, nil, 2)

	st.On("FindExisting", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	ext.On("Extract", mock.Anything, mock.Anything).Return(&model.Remate{Matricula: "627947-000"}, nil)

	events := p.Run(context.Background(), Input{Text: bulletinOf(entry("2025000001", "627947-000", "Cartago"))}).Collect()

	total := events[0].(TotalEvent)
	assert.Equal(t, 0, total.Existing)
	assert.Equal(t, 1, total.New)
	c := lastComplete(t, events)
	assert.True(t, c.Stats.LookupFailed)
	assert.Len(t, c.Data, 1)
}

func TestRun_CancelledBeforeFirstBatch(t *testing.T) {
	ext := &mockExtractor{}
	p, st := newTestPipeline(t, ext, nil, 2)
	st.On("FindExisting", mock.Anything, mock.Anything).Return(map[string]*model.Remate{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := p.Run(ctx, Input{Text: bulletinOf(entry("2025000001", "627947-000", "Cartago"))}).Collect()

	assert.Equal(t, []Kind{KindTotal, KindComplete}, kinds(events))
	c := lastComplete(t, events)
	assert.True(t, c.Cancelled)
	assert.Empty(t, c.Data)
	assert.Equal(t, 1, c.Stats.Cancelled)
	ext.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestRun_CancelledRecordsAreDeadLettered(t *testing.T) {
	ext := &mockExtractor{}
	saver := &mockSaver{}
	p, st := newTestPipeline(t, ext, saver, 1)
	st.On("FindExisting", mock.Anything, mock.Anything).Return(map[string]*model.Remate{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ext.On("Extract", mock.Anything, byMatricula("627947-000")).
		Return(func(context.Context, extract.Request) *model.Remate {
			cancel()
			return nil
		}, context.Canceled).Once()

	saver.On("Save", mock.Anything,
		mock.MatchedBy(func(r []model.Remate) bool { return len(r) == 0 }),
		mock.MatchedBy(func(info reconcile.RunInfo) bool {
			if len(info.Failures) != 2 {
				return false
			}
			for _, f := range info.Failures {
				if f.ErrorKind != string(extract.KindCancelled) || f.RawText == "" {
					return false
				}
			}
			return info.Failures[0].Matricula == "627947-000" && info.Failures[1].Matricula == "118800-001"
		}),
	).Return(&reconcile.Result{Failed: 2}, nil)

	text := bulletinOf(
		entry("2025000001", "627947-000", "Cartago"),
		entry("2025000002", "118800-001", "Heredia"),
	)
	events := p.Run(ctx, Input{Text: text, Bulletin: "45", Persist: true}).Collect()

	c := lastComplete(t, events)
	assert.True(t, c.Cancelled)
	assert.Equal(t, 2, c.Stats.Cancelled)
	assert.Zero(t, c.Stats.Errors)
	assert.Empty(t, c.Data)
	for _, ev := range events {
		assert.NotEqual(t, KindErrorRemate, ev.EventKind())
	}
	saver.AssertExpectations(t)
}

func TestRun_BareDigitMatriculaDoesNotOverrideCompletion(t *testing.T) {
	ext := &mockExtractor{}
	p, st := newTestPipeline(t, ext, nil, 2)

	notice := " 2025123456789, Con una base de cuatro millones de colones, sáquese a remate la finca del partido de San José, inscrita bajo el número 627947, derecho 000. COLINDA: norte, calle pública.\n"
	st.On("FindExisting", mock.Anything, []string{"627947"}).Return(map[string]*model.Remate{}, nil).Once()
	ext.On("Extract", mock.Anything, mock.MatchedBy(func(r extract.Request) bool {
		return r.Matricula == "" && r.Fallback == "627947"
	})).Return(&model.Remate{Matricula: "627947-000", Provincia: str("San José")}, nil).Once()

	events := p.Run(context.Background(), Input{Text: bulletinOf(notice), Bulletin: "45"}).Collect()

	c := lastComplete(t, events)
	require.Len(t, c.Data, 1)
	assert.Equal(t, "627947-000", c.Data[0].Matricula)
	assert.Equal(t, "627947", *c.Data[0].FincaID)
	ext.AssertExpectations(t)
}

func TestRun_PersistReconcilesNewRecords(t *testing.T) {
	ext := &mockExtractor{}
	saver := &mockSaver{}
	p, st := newTestPipeline(t, ext, saver, 2)

	text := bulletinOf(
		entry("2025000001", "627947-000", "Cartago"),
		unresolvedEntry("Limón"),
	)
	st.On("FindExisting", mock.Anything, mock.Anything).Return(map[string]*model.Remate{}, nil)
	ext.On("Extract", mock.Anything, byMatricula("627947-000")).Return(&model.Remate{Matricula: "627947-000"}, nil)
	ext.On("Extract", mock.Anything, byText("Limón")).Return(nil, extract.ErrMalformedJSON)

	want := &reconcile.Result{Inserted: 1, Failed: 1}
	saver.On("Save", mock.Anything,
		mock.MatchedBy(func(r []model.Remate) bool { return len(r) == 1 && r[0].Matricula == "627947-000" }),
		mock.MatchedBy(func(info reconcile.RunInfo) bool {
			return info.BulletinNumber == "45" &&
				info.TotalProperties == 2 &&
				info.ProcessedBy == "cli" &&
				len(info.Failures) == 1 &&
				info.Failures[0].ErrorKind == string(extract.KindMalformedJSON)
		}),
	).Return(want, nil)

	events := p.Run(context.Background(), Input{Text: text, Bulletin: "45", Persist: true, ProcessedBy: "cli"}).Collect()

	c := lastComplete(t, events)
	assert.Same(t, want, c.Persist)
	saver.AssertExpectations(t)
}

func TestRun_StopLetsProducerFinish(t *testing.T) {
	ext := &mockExtractor{}
	p, st := newTestPipeline(t, ext, nil, 1)
	st.On("FindExisting", mock.Anything, mock.Anything).Return(map[string]*model.Remate{}, nil)
	ext.On("Extract", mock.Anything, mock.Anything).Return(&model.Remate{Matricula: "x"}, nil)

	s := p.Run(context.Background(), Input{Text: bulletinOf(entry("2025000001", "627947-000", "Cartago"), entry("2025000002", "627948-000", "Cartago"))})
	first := <-s.Events()
	assert.Equal(t, KindTotal, first.EventKind())
	s.Stop()

	// The channel is closed once the producer gives up on the consumer.
	for range s.Events() {
	}
}

func TestEmitterDropsAfterTerminal(t *testing.T) {
	s := newStream()
	em := &emitter{s: s, log: zapNop()}

	go func() {
		defer em.close()
		em.send(ErrorEvent{Type: KindError, Message: "x"})
		assert.False(t, em.send(ProgressEvent{Type: KindProgress}))
		assert.False(t, em.send(CompleteEvent{Type: KindComplete}))
	}()

	assert.Equal(t, []Kind{KindError}, kinds(s.Collect()))
}
