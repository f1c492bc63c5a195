package ingest

import (
	"github.com/sells-group/remates-cli/internal/model"
	"github.com/sells-group/remates-cli/internal/reconcile"
)

// Kind names a stream event.
type Kind string

const (
	KindTotal        Kind = "total"
	KindBatchStart   Kind = "batch_start"
	KindProgress     Kind = "progress"
	KindErrorRemate  Kind = "error_remate"
	KindErrorCritico Kind = "error_critico"
	KindComplete     Kind = "complete"
	KindError        Kind = "error"
)

// Terminal reports whether no event may follow one of this kind.
func (k Kind) Terminal() bool {
	return k == KindComplete || k == KindError
}

// Event is one message of a run's progress stream. Each event marshals to a
// JSON object whose "type" field is its Kind.
type Event interface {
	EventKind() Kind
}

// TotalEvent announces the shape of the run before any extraction.
type TotalEvent struct {
	Type                Kind `json:"type"`
	Total               int  `json:"total"`
	Resolved            int  `json:"resolved"`
	Unresolved          int  `json:"unresolved"`
	Existing            int  `json:"existing"`
	New                 int  `json:"new"`
	UnresolvedToExtract int  `json:"unresolved_to_extract"`
	ToExtract           int  `json:"to_extract"`
	Batches             int  `json:"batches"`
}

func (TotalEvent) EventKind() Kind { return KindTotal }

// BatchStartEvent opens one extraction batch.
type BatchStartEvent struct {
	Type         Kind   `json:"type"`
	Batch        int    `json:"batch"`
	TotalBatches int    `json:"total_batches"`
	BatchSize    int    `json:"batch_size"`
	Info         string `json:"info"`
}

func (BatchStartEvent) EventKind() Kind { return KindBatchStart }

// ProgressEvent is emitted once per record sent to extraction.
type ProgressEvent struct {
	Type    Kind   `json:"type"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Info    string `json:"info"`
}

func (ProgressEvent) EventKind() Kind { return KindProgress }

// RecordErrorEvent reports a failed record. Its Type is error_remate for
// logical failures and error_critico for transport failures; neither ends
// the stream.
type RecordErrorEvent struct {
	Type       Kind   `json:"type"`
	Record     int    `json:"record"`
	Reference  string `json:"reference"`
	Error      string `json:"error"`
	ErrorKind  string `json:"kind"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

func (e RecordErrorEvent) EventKind() Kind { return e.Type }

// Stats are the aggregate counters of a run.
type Stats struct {
	TotalEntries   int  `json:"total_entries"`
	Candidates     int  `json:"candidates"`
	Resolved       int  `json:"resolved"`
	Unresolved     int  `json:"unresolved"`
	Existing       int  `json:"existing"`
	New            int  `json:"new"`
	Extracted      int  `json:"extracted"`
	Errors         int  `json:"errors"`
	CriticalErrors int  `json:"critical_errors"`
	Cancelled      int  `json:"cancelled"`
	LookupFailed   bool `json:"lookup_failed,omitempty"`
}

// Summary reports the cost saved by the dedup gate.
type Summary struct {
	Total        int `json:"total"`
	Resolved     int `json:"resolved"`
	Skipped      int `json:"skipped"`
	SentToAI     int `json:"sent_to_ai"`
	Extracted    int `json:"extracted"`
	Errors       int `json:"errors"`
	AICallsSaved int `json:"ai_calls_saved"`
}

// CompleteEvent ends a run that had something to process. Data holds only
// the newly extracted records.
type CompleteEvent struct {
	Type          Kind              `json:"type"`
	Success       bool              `json:"success"`
	Stats         Stats             `json:"stats"`
	Data          []model.Remate    `json:"data"`
	CSV           string            `json:"csv"`
	TotalNew      int               `json:"total_new"`
	TotalExisting int               `json:"total_existing"`
	Cancelled     bool              `json:"cancelled"`
	Persist       *reconcile.Result `json:"persist,omitempty"`
	Summary       Summary           `json:"summary"`
}

func (CompleteEvent) EventKind() Kind { return KindComplete }

// ErrorEvent ends a run with nothing to process.
type ErrorEvent struct {
	Type    Kind   `json:"type"`
	Message string `json:"message"`
}

func (ErrorEvent) EventKind() Kind { return KindError }
