package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
)

// WriteSSE writes e as one server-sent event, "data: <json>\n\n", and
// flushes w when it supports flushing.
func WriteSSE(w io.Writer, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return eris.Wrapf(err, "ingest: marshal %s event", e.EventKind())
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return eris.Wrap(err, "ingest: write event")
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
