package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/remates-cli/internal/dedup"
	"github.com/sells-group/remates-cli/internal/extract"
	"github.com/sells-group/remates-cli/internal/ingest"
	"github.com/sells-group/remates-cli/internal/location"
	"github.com/sells-group/remates-cli/internal/normalize"
	"github.com/sells-group/remates-cli/internal/reconcile"
	"github.com/sells-group/remates-cli/internal/source"
	"github.com/sells-group/remates-cli/internal/store"
	anthropicpkg "github.com/sells-group/remates-cli/pkg/anthropic"
)

// appEnv holds the store, clients and pipeline needed by the ingest and
// serve commands.
type appEnv struct {
	Store      store.Store
	Pipeline   *ingest.Pipeline
	Reconciler *reconcile.Reconciler
	Normalizer *normalize.Normalizer
	Loader     *source.Loader
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates the config for mode, opens and migrates the store and
// builds the pipeline. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	client := anthropicpkg.NewClient(cfg.Anthropic.Key,
		anthropicpkg.WithRequestTimeout(cfg.Anthropic.RequestTimeout),
		anthropicpkg.WithRateLimit(cfg.Anthropic.RPS),
	)
	extractor := extract.New(client, extract.Config{
		Model:            cfg.Anthropic.Model,
		MaxTokens:        cfg.Anthropic.MaxTokens,
		RequestTimeout:   cfg.Anthropic.RequestTimeout,
		MaxRetries:       cfg.Anthropic.MaxRetries,
		CircuitThreshold: cfg.Anthropic.CircuitThreshold,
	})

	normalizer := normalize.New(loadGazetteer())
	rec := reconcile.New(st)
	p := ingest.New(dedup.New(st), extractor, normalizer, rec, ingest.Config{
		BatchSize:   cfg.Pipeline.BatchSize,
		RunTimeout:  cfg.Pipeline.RunTimeout,
		ProcessedBy: cfg.Pipeline.ProcessedBy,
	})

	zap.L().Info("pipeline ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("model", cfg.Anthropic.Model),
		zap.Int("batch_size", cfg.Pipeline.BatchSize),
	)

	return &appEnv{
		Store:      st,
		Pipeline:   p,
		Reconciler: rec,
		Normalizer: normalizer,
		Loader:     newLoader(),
	}, nil
}

// loadGazetteer reads the configured override file, falling back to the
// embedded table when it cannot be loaded.
func loadGazetteer() *location.Gazetteer {
	g := location.NewFromFile(cfg.Location.GazetteerFile)
	if err := g.Err(); err != nil {
		zap.L().Warn("gazetteer file not loaded, using embedded table",
			zap.String("path", cfg.Location.GazetteerFile),
			zap.Error(err),
		)
		return location.New()
	}
	return g
}

func newLoader() *source.Loader {
	return source.NewLoader(source.Options{
		UserAgent:    cfg.Source.UserAgent,
		HTTPTimeout:  cfg.Source.HTTPTimeout,
		FTPTimeout:   cfg.Source.FTPTimeout,
		PdfToTextBin: cfg.Source.PdfToTextBin,
		RPS:          cfg.Source.RPS,
		MaxRetries:   cfg.Source.MaxRetries,
	})
}
