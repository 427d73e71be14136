// Package geocoder is a client for the Nominatim place search API.
package geocoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/runnerr0/travelpins/internal/logging"
	"github.com/runnerr0/travelpins/internal/metrics"
)

// Provider is the provider name recorded on results from this client.
const Provider = "nominatim"

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 4 << 20

// Place is one upstream search hit.
type Place struct {
	PlaceID     string
	DisplayName string
	Lat         float64
	Lon         float64
	Class       string
	Type        string
}

// UpstreamError reports a failed upstream call. Status is the HTTP status
// returned by the geocoder, or 0 when no response was received.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("geocoder request failed: %v", e.Err)
	}
	return fmt.Sprintf("geocoder returned status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	UserAgent      string
	AcceptLanguage string
	Limit          int
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// Client calls the Nominatim /search endpoint.
type Client struct {
	baseURL        string
	userAgent      string
	acceptLanguage string
	limit          int
	http           *http.Client
}

// NewClient creates a Client. A nil HTTPClient gets one with opts.Timeout.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid geocoder base URL %q", opts.BaseURL)
	}
	if opts.UserAgent == "" {
		return nil, fmt.Errorf("geocoder user agent is required")
	}
	if opts.Limit <= 0 {
		opts.Limit = 8
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:        base.String(),
		userAgent:      opts.UserAgent,
		acceptLanguage: opts.AcceptLanguage,
		limit:          opts.Limit,
		http:           hc,
	}, nil
}

// searchURL builds the request URL for query.
func (c *Client) searchURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(c.limit))
	return c.baseURL + "/search?" + params.Encode()
}

// Search issues exactly one upstream request for query and returns the
// hits in upstream order. It never retries.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocoder request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstream(0, time.Since(start))
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes)) //nolint:errcheck
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	places, err := decodePlaces(body)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Err: err}
	}
	return places, nil
}

// rawPlace mirrors the jsonv2 fields we use. Nominatim sends place_id as a
// number and lat/lon as strings; both shapes are accepted.
type rawPlace struct {
	PlaceID     json.RawMessage `json:"place_id"`
	DisplayName string          `json:"display_name"`
	Lat         json.RawMessage `json:"lat"`
	Lon         json.RawMessage `json:"lon"`
	Class       string          `json:"class"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
}

func decodePlaces(body []byte) ([]Place, error) {
	var raw []rawPlace
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode geocoder response: %w", err)
	}

	places := make([]Place, 0, len(raw))
	for i, r := range raw {
		lat, latErr := parseCoordinate(r.Lat)
		lon, lonErr := parseCoordinate(r.Lon)
		if latErr != nil || lonErr != nil {
			logging.Debug().Int("index", i).Str("display_name", r.DisplayName).Msg("skipping geocoder hit without coordinates")
			continue
		}

		class := r.Class
		if class == "" {
			// jsonv2 names the field "category"; format=json calls it "class"
			class = r.Category
		}

		places = append(places, Place{
			PlaceID:     rawString(r.PlaceID),
			DisplayName: r.DisplayName,
			Lat:         lat,
			Lon:         lon,
			Class:       class,
			Type:        r.Type,
		})
	}
	return places, nil
}

// rawString renders a JSON scalar as plain text ("123" for 123 or "123").
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func parseCoordinate(raw json.RawMessage) (float64, error) {
	s := rawString(raw)
	if s == "" {
		return 0, fmt.Errorf("missing coordinate")
	}
	return strconv.ParseFloat(s, 64)
}
