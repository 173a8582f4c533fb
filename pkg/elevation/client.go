// Package elevation samples terrain heights from an OpenTopoData server.
package elevation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public OpenTopoData instance.
	DefaultBaseURL = "https://api.opentopodata.org"
	// DefaultDataset is the 30 m SRTM digital elevation model.
	DefaultDataset = "srtm30m"
	// MaxBatch is the largest number of locations per request the public API accepts.
	MaxBatch = 100
)

// Location is a WGS84 coordinate.
type Location struct {
	Lat float64
	Lon float64
}

// Sample is the elevation at a location. Valid is false where the dataset
// has no coverage.
type Sample struct {
	Location  Location
	Elevation float64
	Valid     bool
}

// Client looks up elevations for a set of locations.
type Client interface {
	// Lookup returns one sample per location, in input order.
	Lookup(ctx context.Context, locs []Location) ([]Sample, error)
}

// Option configures the OpenTopoData client.
type Option func(*openTopo)

// WithBaseURL overrides the server host.
func WithBaseURL(base string) Option {
	return func(o *openTopo) {
		o.baseURL = strings.TrimRight(base, "/")
	}
}

// WithDataset selects the dataset name, e.g. srtm90m or aster30m.
func WithDataset(name string) Option {
	return func(o *openTopo) {
		if name != "" {
			o.dataset = name
		}
	}
}

// WithBatchSize caps locations per request at n (at most MaxBatch).
func WithBatchSize(n int) Option {
	return func(o *openTopo) {
		if n > 0 && n <= MaxBatch {
			o.batchSize = n
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *openTopo) {
		o.httpClient = hc
	}
}

// WithRateLimit sets requests per second. Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(o *openTopo) {
		if rps <= 0 {
			o.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type openTopo struct {
	baseURL    string
	dataset    string
	batchSize  int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an OpenTopoData Client.
func NewClient(opts ...Option) Client {
	o := &openTopo{
		baseURL:    DefaultBaseURL,
		dataset:    DefaultDataset,
		batchSize:  MaxBatch,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(1, 1), // public API: 1 req/s
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type lookupResponse struct {
	Status  string         `json:"status"`
	Error   string         `json:"error"`
	Results []lookupResult `json:"results"`
}

type lookupResult struct {
	Elevation *float64 `json:"elevation"`
}

// Lookup queries locations in batches and concatenates the results.
func (o *openTopo) Lookup(ctx context.Context, locs []Location) ([]Sample, error) {
	if len(locs) == 0 {
		return nil, nil
	}

	out := make([]Sample, 0, len(locs))
	for start := 0; start < len(locs); start += o.batchSize {
		end := min(start+o.batchSize, len(locs))
		batch, err := o.lookupBatch(ctx, locs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (o *openTopo) lookupBatch(ctx context.Context, locs []Location) ([]Sample, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "elevation: rate limit")
	}

	parts := make([]string, len(locs))
	for i, l := range locs {
		parts[i] = strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lon, 'f', -1, 64)
	}
	params := url.Values{"locations": {strings.Join(parts, "|")}}
	reqURL := o.baseURL + "/v1/" + url.PathEscape(o.dataset) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "elevation: build request")
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "elevation: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "elevation: read body")
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("elevation: unexpected status %d", resp.StatusCode)
		}
		return nil, eris.Wrap(err, "elevation: parse response")
	}
	if resp.StatusCode != http.StatusOK || parsed.Status != "OK" {
		return nil, eris.Errorf("elevation: status %d %s: %s", resp.StatusCode, parsed.Status, parsed.Error)
	}
	if len(parsed.Results) != len(locs) {
		return nil, eris.Errorf("elevation: got %d results for %d locations", len(parsed.Results), len(locs))
	}

	samples := make([]Sample, len(locs))
	for i, r := range parsed.Results {
		samples[i].Location = locs[i]
		if r.Elevation != nil {
			samples[i].Elevation = *r.Elevation
			samples[i].Valid = true
		}
	}
	return samples, nil
}
