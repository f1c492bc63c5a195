// Package extract turns one auction notice into a structured record through
// a completion service.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/remates-cli/internal/model"
	"github.com/sells-group/remates-cli/internal/normalize"
	"github.com/sells-group/remates-cli/internal/resilience"
	"github.com/sells-group/remates-cli/pkg/anthropic"
)

// Config tunes the completion calls.
type Config struct {
	Model            string
	MaxTokens        int64
	RequestTimeout   time.Duration
	MaxRetries       int
	CircuitThreshold int
}

// Request is one notice to extract.
type Request struct {
	RawText  string
	Bulletin string
	// Matricula is the identifier found next to the "matrícula" keyword, if
	// any. It wins over whatever the completion returns.
	Matricula string
	// Fallback is a weaker guess from a bare digit run. It is used only
	// when the completion has no identifier either.
	Fallback string
}

// Extractor calls the completion service once per notice, retrying
// transient failures. It is safe for concurrent use.
type Extractor struct {
	client  anthropic.Client
	cfg     Config
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
	now     func() time.Time
	log     *zap.Logger
}

// New returns an Extractor over client.
func New(client anthropic.Client, cfg Config) *Extractor {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180 * time.Second
	}

	retry := resilience.WithRetries(cfg.MaxRetries)
	retry.OnRetry = resilience.RetryLogger("anthropic", "extract")

	return &Extractor{
		client: client,
		cfg:    cfg,
		retry:  retry,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.CircuitThreshold,
			ShouldTrip: func(err error) bool {
				return resilience.IsTransient(err) || Critical(err)
			},
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("extract: circuit state change",
					zap.Stringer("from", from), zap.Stringer("to", to))
			},
		}),
		now: time.Now,
		log: zap.L().With(zap.String("component", "extract")),
	}
}

// Extract returns the raw (un-normalized) record for req. It fails rather
// than returning partial data: transport errors after retries, a response
// without a JSON object (ErrMalformedJSON) and an empty object
// (ErrNoIdentifier) are all returned as errors.
func (e *Extractor) Extract(ctx context.Context, req Request) (*model.Remate, error) {
	msg := anthropic.MessageRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: buildPrompt(req.RawText, req.Bulletin)}},
		Temperature: ptr(0.0),
	}

	resp, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.ExecuteVal(ctx, e.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return e.attempt(ctx, msg)
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: completion")
	}
	resp.Usage.LogCost(resp.Model, "extract")

	raw := cleanJSON(resp.Text())
	if raw == "" {
		return nil, ErrMalformedJSON
	}
	var parsed response
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, eris.Wrapf(ErrMalformedJSON, "unmarshal: %v", err)
	}

	matricula := req.Matricula
	if matricula == "" {
		matricula = parsed.identifier()
	}
	if matricula == "" {
		matricula = req.Fallback
	}
	if matricula == "" {
		if !parsed.substantive() {
			return nil, ErrNoIdentifier
		}
		matricula = e.placeholder()
		e.log.Warn("notice without matrícula, using placeholder", zap.String("matricula", matricula))
	}

	out := parsed.toRemate(matricula)
	out.RawText = req.RawText
	if req.Bulletin != "" {
		b := req.Bulletin
		out.BulletinNumber = &b
	}
	return &out, nil
}

// attempt is a single bounded call. SDK statuses worth retrying and timeouts
// of this attempt alone are marked transient.
func (e *Extractor) attempt(ctx context.Context, msg anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	actx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	resp, err := e.client.CreateMessage(actx, msg)
	if err == nil {
		if resp == nil {
			return nil, ErrMalformedJSON
		}
		return resp, nil
	}

	if status, ok := anthropic.StatusCode(err); ok {
		if resilience.IsTransientHTTPStatus(status) && !isQuota(err) {
			return nil, resilience.NewTransientError(err, status)
		}
		return nil, err
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, resilience.NewTransientError(err, 0)
	}
	return nil, err
}

// placeholder synthesizes an identifier unique per call.
func (e *Extractor) placeholder() string {
	return fmt.Sprintf("%s%d-%s", normalize.PlaceholderPrefix, e.now().UnixNano(), uuid.NewString()[:8])
}

func ptr[T any](v T) *T { return &v }
