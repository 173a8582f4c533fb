package fetcher

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// HTTPOptions configures HTTPFetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RateLimit caps requests per second across all hosts; zero disables it.
	RateLimit float64
	// MaxBytes aborts downloads larger than this; zero means unlimited.
	MaxBytes int64
}

// HTTPFetcher downloads over http and https. Failures are returned as-is;
// there are no retries.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	maxBytes  int64
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
	}
	if f.client.Timeout == 0 {
		f.client.Timeout = 60 * time.Second
	}
	if f.userAgent == "" {
		f.userAgent = "envmap-cli/1.0"
	}
	if opts.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return f
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, dst io.Writer) (int64, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return 0, eris.Wrap(err, "http: rate limit")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, eris.Wrap(err, "http: build request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "http: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		snip, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return 0, eris.Errorf("http: %s returned status %d: %s", rawURL, resp.StatusCode, strings.TrimSpace(string(snip)))
	}

	return copyLimited(dst, resp.Body, f.maxBytes)
}

// copyLimited copies src to dst, failing once more than limit bytes arrive.
func copyLimited(dst io.Writer, src io.Reader, limit int64) (int64, error) {
	if limit <= 0 {
		n, err := io.Copy(dst, src)
		return n, eris.Wrap(err, "fetcher: copy body")
	}
	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		return n, eris.Wrap(err, "fetcher: copy body")
	}
	if n > limit {
		return n, eris.Errorf("fetcher: download exceeds %d bytes", limit)
	}
	return n, nil
}
