package adsb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultFeedURL is where dump1090-fa and readsb publish their snapshot.
const DefaultFeedURL = "http://localhost:8080/data/aircraft.json"

// FeedClient implements the DataSource interface for the aircraft.json
// document served by a local ADS-B decoder.
type FeedClient struct {
	// url is the full URL of aircraft.json
	url string

	// httpClient is the HTTP client used for feed requests
	httpClient *http.Client
}

// NewFeedClient creates a client for the aircraft.json document at url.
// timeout bounds every request; 0 selects 10 seconds.
func NewFeedClient(url string, timeout time.Duration) *FeedClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FeedClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the feed address.
func (c *FeedClient) URL() string {
	return c.url
}

// GetAircraft fetches the current snapshot. Records without both lat and
// lon are dropped; the remaining order is the feed's order.
func (c *FeedClient) GetAircraft(ctx context.Context) ([]Aircraft, error) {
	resp, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var doc feedDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed response: %w", err)
	}

	snapshot := time.Now().UTC()
	if doc.Now > 0 {
		sec := int64(doc.Now)
		snapshot = time.Unix(sec, int64((doc.Now-float64(sec))*float64(time.Second))).UTC()
	}

	aircraft := make([]Aircraft, 0, len(doc.Aircraft))
	for _, ac := range doc.Aircraft {
		// Skip aircraft without a usable position
		if ac.Lat == nil || ac.Lon == nil {
			continue
		}
		aircraft = append(aircraft, convertFeedAircraft(ac, snapshot))
	}

	return aircraft, nil
}

// Ping issues a GET against the feed and succeeds only on HTTP 200.
func (c *FeedClient) Ping(ctx context.Context) error {
	resp, err := c.get(ctx)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	return nil
}

// Close cleanly shuts down the client.
func (c *FeedClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *FeedClient) get(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft data: %w", err)
	}
	return resp, nil
}

// checkStatus turns non-200 responses into errors. HTTP 429 becomes a
// *RateLimitError carrying the Retry-After hint.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "Rate limit exceeded",
			Headers:    extractRateLimitHeaders(resp.Header),
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("feed returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// feedDocument is the top level of aircraft.json.
type feedDocument struct {
	// Now is the snapshot time in Unix seconds
	Now float64 `json:"now"`

	// Aircraft is the array of aircraft records
	Aircraft []feedAircraft `json:"aircraft"`
}

// feedAircraft is a single record of aircraft.json. Every field is
// optional; pointers distinguish absent from zero.
type feedAircraft struct {
	// Hex is the ICAO Mode S address
	Hex string `json:"hex"`

	// Flight is the callsign, space padded to 8 characters
	Flight *string `json:"flight"`

	// FlightNumber is used by some aggregators instead of flight
	FlightNumber *string `json:"flight_number"`

	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	// AltBaro is a number of feet or the string "ground"
	AltBaro interface{} `json:"alt_baro"`

	Gs    *float64 `json:"gs"`
	Track *float64 `json:"track"`

	// Seen is seconds since the last message of any kind
	Seen *float64 `json:"seen"`
}

// convertFeedAircraft converts a feed record to our Aircraft type.
func convertFeedAircraft(ac feedAircraft, snapshot time.Time) Aircraft {
	aircraft := Aircraft{
		ICAO:     strings.TrimSpace(ac.Hex),
		Callsign: feedCallsign(ac),
	}

	if ac.Lat != nil {
		aircraft.Latitude = *ac.Lat
	}
	if ac.Lon != nil {
		aircraft.Longitude = *ac.Lon
	}
	if alt := parseAltitude(ac.AltBaro); alt != nil {
		aircraft.Altitude = *alt
	}
	if ac.Gs != nil {
		aircraft.GroundSpeed = *ac.Gs
	}
	if ac.Track != nil {
		aircraft.Track = *ac.Track
	}

	aircraft.LastSeen = snapshot
	if ac.Seen != nil {
		aircraft.LastSeen = snapshot.Add(-time.Duration(*ac.Seen * float64(time.Second)))
	}

	return aircraft
}

// feedCallsign prefers flight and falls back to flight_number when flight
// is absent or blank.
func feedCallsign(ac feedAircraft) string {
	if ac.Flight != nil {
		if cs := strings.TrimSpace(*ac.Flight); cs != "" {
			return cs
		}
	}
	if ac.FlightNumber != nil {
		return strings.TrimSpace(*ac.FlightNumber)
	}
	return ""
}

// parseAltitude safely extracts altitude from interface{} which can be float64 or string.
// Returns nil if the value is invalid.
func parseAltitude(val interface{}) *float64 {
	switch v := val.(type) {
	case float64:
		return &v
	case string:
		if v == "ground" {
			zero := 0.0
			return &zero
		}
	}
	return nil
}

// RateLimitError represents an HTTP 429 response with retry information.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
	Headers    RateLimitHeaders
}

// RateLimitHeaders contains rate limit information from response headers.
type RateLimitHeaders struct {
	Limit     int       // X-Rate-Limit-Limit: Maximum requests allowed
	Remaining int       // X-Rate-Limit-Remaining: Requests remaining in current window
	Reset     time.Time // X-Rate-Limit-Reset: When the rate limit resets
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// IsRateLimitError reports whether err wraps a *RateLimitError.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter extracts the Retry-After header value.
// Supports both delay-seconds and HTTP-date formats; returns 0 when absent.
func parseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(retryTime); d > 0 {
			return d
		}
	}

	return 0
}

// extractRateLimitHeaders reads the X-Rate-Limit-* (or X-RateLimit-*)
// headers. Missing counts are reported as -1.
func extractRateLimitHeaders(headers http.Header) RateLimitHeaders {
	rlh := RateLimitHeaders{
		Limit:     -1,
		Remaining: -1,
	}

	header := func(name string) string {
		if v := headers.Get("X-Rate-Limit-" + name); v != "" {
			return v
		}
		return headers.Get("X-RateLimit-" + name)
	}

	if val, err := strconv.Atoi(header("Limit")); err == nil {
		rlh.Limit = val
	}
	if val, err := strconv.Atoi(header("Remaining")); err == nil {
		rlh.Remaining = val
	}
	if ts, err := strconv.ParseInt(header("Reset"), 10, 64); err == nil {
		rlh.Reset = time.Unix(ts, 0)
	}

	return rlh
}
