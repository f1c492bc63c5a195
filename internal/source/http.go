package source

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/remates-cli/internal/resilience"
)

type httpFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
}

func newHTTPFetcher(opts Options) *httpFetcher {
	if opts.HTTPTimeout == 0 {
		opts.HTTPTimeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "remates-cli/1.0"
	}

	retry := resilience.WithRetries(opts.MaxRetries)
	if opts.RetryBackoff > 0 {
		retry.InitialBackoff = opts.RetryBackoff
	}
	retry.OnRetry = resilience.RetryLogger("source", "http get")

	f := &httpFetcher{
		client: &http.Client{
			Timeout: opts.HTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: opts.UserAgent,
		retry:     retry,
	}
	if opts.RPS > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	return f
}

// get downloads rawURL, retrying network errors and transient statuses.
func (f *httpFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	data, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]byte, error) {
		return f.attempt(ctx, rawURL)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "source: get %s", rawURL)
	}
	return data, nil
}

func (f *httpFetcher) attempt(ctx context.Context, rawURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(err, 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("unexpected status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	data, err := readAll(resp.Body, maxDocumentBytes)
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}
	return data, nil
}
