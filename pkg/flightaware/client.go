// Package flightaware provides a client for the FlightAware AeroAPI v4.
//
// Only the flight lookup by identifier is used: it tells us where an
// aircraft spotted overhead came from, where it is going, and who operates
// it.
//
// API Documentation: https://www.flightaware.com/aeroapi/portal/documentation
package flightaware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the FlightAware AeroAPI v4 base URL
	BaseURL = "https://aeroapi.flightaware.com/aeroapi"

	// DefaultTimeout for API requests
	DefaultTimeout = 5 * time.Second
)

// Client represents a FlightAware AeroAPI client.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
}

// Config contains configuration for the FlightAware client.
type Config struct {
	APIKey string

	// BaseURL overrides the AeroAPI address (tests, proxies)
	BaseURL string

	// RequestsPerHour caps the request rate; 0 means unlimited
	RequestsPerHour int

	Timeout time.Duration
}

// NewClient creates a new FlightAware AeroAPI client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerHour > 0 {
		// Convert requests per hour to rate limiter; a minute's worth of
		// requests may go out back to back
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerHour)/3600.0), burstFor(cfg.RequestsPerHour))
	}

	return &Client{
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: limiter,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// burstFor allows one minute of the hourly budget at once, at least one.
func burstFor(requestsPerHour int) int {
	return max(1, requestsPerHour/60)
}

// Airport is the origin or destination block of a flight.
type Airport struct {
	Code     string `json:"code"`
	CodeICAO string `json:"code_icao"`
	CodeIATA string `json:"code_iata"`
	Name     string `json:"name"`
	City     string `json:"city"`
}

// Flight is one entry of the /flights/{ident} response.
// Origin and Destination are nil when AeroAPI sends null.
type Flight struct {
	Ident        string   `json:"ident"`
	FAFlightID   string   `json:"fa_flight_id"`
	Operator     string   `json:"operator"`      // ICAO operator code (e.g., "KLM")
	OperatorIATA string   `json:"operator_iata"` // e.g., "KL"
	Registration string   `json:"registration"`
	AircraftType string   `json:"aircraft_type"`
	Status       string   `json:"status"`
	Origin       *Airport `json:"origin"`
	Destination  *Airport `json:"destination"`
}

// APIError is returned for responses other than 200 and 404.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// GetFlights returns the flights AeroAPI knows for ident (a callsign such
// as "KLM123"), most recent first.
//
// Returns nil, nil if AeroAPI answers 404 (not an error).
// Returns error for API failures or network issues.
func (c *Client) GetFlights(ctx context.Context, ident string) ([]Flight, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/flights/%s", c.baseURL, url.PathEscape(ident))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var response struct {
		Flights []Flight `json:"flights"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return response.Flights, nil
}
