// Package server exposes the ingestion pipeline and the stored run history
// over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/remates-cli/internal/ingest"
	"github.com/sells-group/remates-cli/internal/model"
	"github.com/sells-group/remates-cli/internal/normalize"
	"github.com/sells-group/remates-cli/internal/reconcile"
	"github.com/sells-group/remates-cli/internal/source"
)

// Runner starts an ingestion run.
type Runner interface {
	Run(ctx context.Context, in ingest.Input) *ingest.Stream
}

// Saver reconciles reviewed records into the store.
type Saver interface {
	Save(ctx context.Context, records []model.Remate, info reconcile.RunInfo) (*reconcile.Result, error)
}

// Reader is the read side of the store.
type Reader interface {
	Stats(ctx context.Context) (*model.Stats, error)
	ListRunSummaries(ctx context.Context, limit, offset int) ([]model.RunSummary, int, error)
	ListFailures(ctx context.Context, limit int) ([]model.FailedRecord, error)
}

// DocumentLoader turns uploaded bytes into bulletin text.
type DocumentLoader interface {
	FromBytes(ctx context.Context, name, bulletin string, data []byte) (*source.Document, error)
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Runner     Runner
	Saver      Saver
	Reader     Reader
	Loader     DocumentLoader
	Normalizer *normalize.Normalizer
}

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins    []string
	MaxUploadBytes int64
	ProcessedBy    string
}

// Server holds the HTTP handlers.
type Server struct {
	deps Deps
	opts Options
	log  *zap.Logger
}

// New returns a Server.
func New(deps Deps, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 64 << 20
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if deps.Normalizer == nil {
		deps.Normalizer = normalize.New(nil)
	}
	return &Server{
		deps: deps,
		opts: opts,
		log:  zap.L().With(zap.String("component", "server")),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api/remates", func(r chi.Router) {
		r.Post("/process", s.process)
		r.Post("/preview", s.preview)
		r.Post("/save", s.save)
		r.Get("/history", s.history)
		r.Get("/stats", s.stats)
		r.Get("/failures", s.failures)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
