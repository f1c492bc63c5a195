package extract

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/remates-cli/internal/resilience"
	"github.com/sells-group/remates-cli/pkg/anthropic"
)

var (
	// ErrMalformedJSON means the completion held no parseable JSON object.
	ErrMalformedJSON = eris.New("extract: malformed json response")
	// ErrNoIdentifier means the completion was an object without a matrícula
	// or any other usable field.
	ErrNoIdentifier = eris.New("extract: response has no identifier")
)

// Kind is the closed set of failure classes reported per record.
type Kind string

const (
	KindRateLimit      Kind = "rate_limit"
	KindAuth           Kind = "auth"
	KindQuotaExhausted Kind = "quota_exhausted"
	KindTimeout        Kind = "timeout"
	KindOverloaded     Kind = "overloaded"
	KindCancelled      Kind = "cancelled"
	KindMalformedJSON  Kind = "malformed_json"
	KindNoIdentifier   Kind = "no_identifier"
	KindUnknown        Kind = "unknown"
)

// Diagnostic returns an actionable hint for the failure class.
func (k Kind) Diagnostic() string {
	switch k {
	case KindRateLimit:
		return "completion rate limit exceeded; lower anthropic.rps or pipeline.batch_size"
	case KindAuth:
		return "completion API key rejected; check anthropic.key"
	case KindQuotaExhausted:
		return "completion account has no credit left; review the billing plan"
	case KindTimeout:
		return "completion call timed out; raise anthropic.request_timeout or retry later"
	case KindOverloaded:
		return "completion service is overloaded or failing; retry the bulletin later"
	case KindCancelled:
		return "run stopped before the record was extracted; rerun the bulletin"
	case KindMalformedJSON:
		return "completion returned invalid JSON; retry the record"
	case KindNoIdentifier:
		return "no matrícula or usable data found in the notice; review it manually"
	default:
		return "unexpected completion failure; see logs"
	}
}

// Logical reports whether the kind is a content failure rather than a
// transport one.
func (k Kind) Logical() bool {
	return k == KindMalformedJSON || k == KindNoIdentifier
}

var quotaMarkers = []string{"insufficient_quota", "credit balance", "quota", "billing"}

func isQuota(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Classify maps an extraction error to its Kind. Status codes are read from
// the SDK error when present; the message is the fallback.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrMalformedJSON):
		return KindMalformedJSON
	case errors.Is(err, ErrNoIdentifier):
		return KindNoIdentifier
	case isQuota(err):
		return KindQuotaExhausted
	}

	status, ok := anthropic.StatusCode(err)
	if !ok {
		var te *resilience.TransientError
		if errors.As(err, &te) {
			status = te.StatusCode
		}
	}
	switch status {
	case 429:
		return KindRateLimit
	case 401, 403:
		return KindAuth
	case 408, 504:
		return KindTimeout
	case 500, 502, 503, 529:
		return KindOverloaded
	case 0:
	default:
		return KindUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"):
		return KindRateLimit
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"), strings.Contains(msg, "api key"):
		return KindAuth
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return KindTimeout
	case strings.Contains(msg, "overloaded"):
		return KindOverloaded
	}
	return KindUnknown
}

// Critical reports whether err should surface as a critical per-record
// event. Everything except content failures is critical.
func Critical(err error) bool {
	return err != nil && !Classify(err).Logical()
}
