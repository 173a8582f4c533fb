// Package xweather fetches current air quality readings from the Xweather
// (formerly Aeris) airquality endpoint.
package xweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Xweather API host.
const DefaultBaseURL = "https://api.aerisapi.com"

// ErrUnavailable is returned when the API answers but has no usable reading
// for the requested location.
var ErrUnavailable = eris.New("xweather: air quality unavailable")

// Reading is the most recent air quality period for a location.
type Reading struct {
	AQI float64
	// Category is the provider's category name, empty when the response
	// carried none.
	Category string
	Dominant string
	Time     time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit limits requests per second. Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Client queries the airquality endpoint with client credentials.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

// NewClient creates a Client authenticated with the given credentials.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		limiter:      rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	Success  bool           `json:"success"`
	Error    *apiError      `json:"error"`
	Response []locationData `json:"response"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type locationData struct {
	Periods []period `json:"periods"`
}

type period struct {
	AQI        *float64 `json:"aqi"`
	Category   *string  `json:"category"`
	Categories *struct {
		Value string `json:"value"`
	} `json:"categories"`
	Dominant    string `json:"dominant"`
	DateTimeISO string `json:"dateTimeISO"`
}

// Fetch returns the current reading nearest to lat/lon.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*Reading, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "xweather: rate limit")
	}

	params := url.Values{
		"p":             {fmt.Sprintf("%g,%g", lat, lon)},
		"limit":         {"1"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	reqURL := c.baseURL + "/airquality/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "xweather: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "xweather: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "xweather: read body")
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("xweather: unexpected status %d", resp.StatusCode)
		}
		return nil, eris.Wrap(err, "xweather: parse response")
	}

	if !parsed.Success {
		desc := "unknown error"
		if parsed.Error != nil && parsed.Error.Description != "" {
			desc = parsed.Error.Description
		}
		return nil, eris.Wrapf(ErrUnavailable, "api error (status %d): %s", resp.StatusCode, desc)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("xweather: unexpected status %d", resp.StatusCode)
	}

	if len(parsed.Response) == 0 || len(parsed.Response[0].Periods) == 0 {
		return nil, eris.Wrap(ErrUnavailable, "no periods in response")
	}
	p := parsed.Response[0].Periods[0]
	if p.AQI == nil {
		return nil, eris.Wrap(ErrUnavailable, "period has no aqi")
	}

	r := &Reading{
		AQI:      *p.AQI,
		Category: categoryOf(p),
		Dominant: p.Dominant,
	}
	if p.DateTimeISO != "" {
		if ts, err := time.Parse(time.RFC3339, p.DateTimeISO); err == nil {
			r.Time = ts
		}
	}
	return r, nil
}

// categoryOf prefers the period's own category over the categories object.
func categoryOf(p period) string {
	if p.Category != nil {
		return *p.Category
	}
	if p.Categories != nil {
		return p.Categories.Value
	}
	return ""
}
