package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/remates-cli/internal/resilience"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"malformed", eris.Wrap(ErrMalformedJSON, "record 3"), KindMalformedJSON},
		{"no identifier", fmt.Errorf("record: %w", ErrNoIdentifier), KindNoIdentifier},
		{"quota", errors.New(`400 {"error":{"message":"Your credit balance is too low"}}`), KindQuotaExhausted},
		{"insufficient quota", errors.New("insufficient_quota"), KindQuotaExhausted},
		{"transient 429", resilience.NewTransientError(errors.New("x"), 429), KindRateLimit},
		{"transient 408", resilience.NewTransientError(errors.New("x"), 408), KindTimeout},
		{"deadline", eris.Wrap(context.DeadlineExceeded, "extract: completion"), KindTimeout},
		{"message 401", errors.New("POST /v1/messages: 401 Unauthorized"), KindAuth},
		{"message timeout", errors.New("net/http: request canceled (Client.Timeout exceeded)"), KindTimeout},
		{"transient 503", resilience.NewTransientError(errors.New("x"), 503), KindOverloaded},
		{"transient 529", resilience.NewTransientError(errors.New("x"), 529), KindOverloaded},
		{"transient 500", resilience.NewTransientError(errors.New("x"), 500), KindOverloaded},
		{"message overloaded", errors.New(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`), KindOverloaded},
		{"other status", resilience.NewTransientError(errors.New("x"), 418), KindUnknown},
		{"other", errors.New("something odd"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestKindDiagnostic(t *testing.T) {
	kinds := []Kind{
		KindRateLimit, KindAuth, KindQuotaExhausted, KindTimeout, KindOverloaded,
		KindCancelled, KindMalformedJSON, KindNoIdentifier, KindUnknown,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		d := k.Diagnostic()
		assert.NotEmpty(t, d, k)
		assert.False(t, seen[d], "duplicate diagnostic for %s", k)
		seen[d] = true
	}
}

func TestCritical(t *testing.T) {
	assert.False(t, Critical(nil))
	assert.False(t, Critical(ErrMalformedJSON))
	assert.False(t, Critical(ErrNoIdentifier))
	assert.True(t, Critical(resilience.NewTransientError(errors.New("x"), 429)))
	assert.True(t, Critical(errors.New("connection refused")))
	assert.True(t, Critical(resilience.NewTransientError(errors.New("x"), 529)))
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`Aquí está: {"a":{"b":2}} listo`, `{"a":{"b":2}}`},
		{"sin objeto", ""},
		{"} al revés {", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanJSON(tt.in), tt.in)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt("TEXTO", "")
	assert.Contains(t, p, "TEXTO DEL REMATE:\nTEXTO")
	assert.NotContains(t, p, "Boletín Judicial número")
	assert.Contains(t, p, `"third_auction_base"`)

	assert.Contains(t, buildPrompt("x", "12"), "Boletín Judicial número 12.")
}
