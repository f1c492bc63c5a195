package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/remates-cli/internal/bulletin"
	"github.com/sells-group/remates-cli/internal/ingest"
	"github.com/sells-group/remates-cli/internal/model"
	"github.com/sells-group/remates-cli/internal/reconcile"
	"github.com/sells-group/remates-cli/internal/source"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// process streams an ingestion run as server-sent events.
func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	stream := s.deps.Runner.Run(r.Context(), ingest.Input{
		Text:        doc.Text,
		Bulletin:    doc.Bulletin,
		Persist:     boolParam(r, "persist"),
		ProcessedBy: s.opts.ProcessedBy,
	})
	defer stream.Stop()

	for e := range stream.Events() {
		if err := ingest.WriteSSE(w, e); err != nil {
			s.log.Warn("server: client went away", zap.String("bulletin", doc.Bulletin), zap.Error(err))
			return
		}
	}
}

// preview classifies the bulletin without calling the extractor.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := bulletin.Preview(doc.Text)
	writeJSON(w, http.StatusOK, map[string]any{
		"bulletin_number": doc.Bulletin,
		"entries":         res.Entries,
		"total":           res.Total,
		"candidates":      res.Candidates,
	})
}

type saveRequest struct {
	BulletinNumber  string         `json:"bulletin_number"`
	Remates         []model.Remate `json:"remates"`
	TotalEntries    int            `json:"total_entries"`
	TotalProperties int            `json:"total_properties"`
	ProcessedBy     string         `json:"processed_by"`
}

// save reconciles records reviewed by the caller.
func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Remates) == 0 {
		writeError(w, http.StatusBadRequest, "remates is required")
		return
	}

	records := make([]model.Remate, 0, len(req.Remates))
	for i, rec := range req.Remates {
		if strings.TrimSpace(rec.Matricula) == "" {
			writeError(w, http.StatusBadRequest, "remates["+strconv.Itoa(i)+"].matricula is required")
			return
		}
		records = append(records, s.deps.Normalizer.Normalize(rec))
	}

	processedBy := req.ProcessedBy
	if processedBy == "" {
		processedBy = s.opts.ProcessedBy
	}
	totalProps := req.TotalProperties
	if totalProps == 0 {
		totalProps = len(records)
	}

	res, err := s.deps.Saver.Save(r.Context(), records, reconcile.RunInfo{
		BulletinNumber:  req.BulletinNumber,
		TotalEntries:    req.TotalEntries,
		TotalProperties: totalProps,
		ProcessedBy:     processedBy,
	})
	if err != nil {
		s.log.Error("server: save failed", zap.String("bulletin", req.BulletinNumber), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "save interrupted")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  res,
	})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 0)
	offset := intParam(r, "offset", 0)
	runs, total, err := s.deps.Reader.ListRunSummaries(r.Context(), limit, offset)
	if err != nil {
		s.internalError(w, "list run summaries", err)
		return
	}
	if runs == nil {
		runs = []model.RunSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":   runs,
		"total":  total,
		"offset": offset,
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Reader.Stats(r.Context())
	if err != nil {
		s.internalError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) failures(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Reader.ListFailures(r.Context(), intParam(r, "limit", 0))
	if err != nil {
		s.internalError(w, "list failures", err)
		return
	}
	if list == nil {
		list = []model.FailedRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"failures": list})
}

// readDocument reads the bulletin from a multipart "file" field or, failing
// that, from the raw request body.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*source.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	var (
		name string
		data []byte
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, eris.Wrap(err, "parse multipart form")
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return nil, eris.Wrap(err, "file is required")
		}
		defer f.Close() //nolint:errcheck
		if data, err = io.ReadAll(f); err != nil {
			return nil, eris.Wrap(err, "read upload")
		}
		name = hdr.Filename
	} else {
		var err error
		if data, err = io.ReadAll(r.Body); err != nil {
			return nil, eris.Wrap(err, "read body")
		}
		name = r.URL.Query().Get("name")
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, eris.New("empty bulletin")
	}
	return s.deps.Loader.FromBytes(r.Context(), name, r.FormValue("bulletin"), data)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error("server: "+op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func intParam(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func boolParam(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.FormValue(key))
	return v
}
