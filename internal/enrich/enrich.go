// Package enrich attaches route and carrier information to a detected
// callsign. Lookups never fail from the caller's point of view: any problem
// with the remote service yields "Unknown" placeholders.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/unklstewy/ads-flyby/pkg/flightaware"
)

// Unknown is shown for every field that could not be resolved.
const Unknown = "Unknown"

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 5 * time.Second

// FlightInfo is the enrichment result for one detection.
type FlightInfo struct {
	Origin      string
	Destination string
	CarrierName string
}

// UnknownFlight returns a FlightInfo with every field set to Unknown.
func UnknownFlight() FlightInfo {
	return FlightInfo{Origin: Unknown, Destination: Unknown, CarrierName: Unknown}
}

// FlightLookup is the remote flight information service.
type FlightLookup interface {
	GetFlights(ctx context.Context, ident string) ([]flightaware.Flight, error)
}

// OperatorNames resolves an operator code to a display name.
type OperatorNames interface {
	Lookup(code string) string
}

// Enricher queries FlightLookup and resolves the carrier name.
type Enricher struct {
	lookup    FlightLookup
	operators OperatorNames
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates an Enricher. operators may be nil, in which case carrier
// codes are shown as-is. timeout <= 0 selects DefaultTimeout.
func New(lookup FlightLookup, operators OperatorNames, timeout time.Duration, logger *slog.Logger) *Enricher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		lookup:    lookup,
		operators: operators,
		timeout:   timeout,
		logger:    logger,
	}
}

// Enrich looks up callsign and returns what is known about the flight.
// It makes at most one request and returns within the configured timeout.
func (e *Enricher) Enrich(ctx context.Context, callsign string) FlightInfo {
	ident := strings.ToUpper(strings.TrimSpace(callsign))
	if ident == "" || e.lookup == nil {
		return UnknownFlight()
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	flights, err := e.lookup.GetFlights(ctx, ident)
	if err != nil {
		e.logger.Warn("flight lookup failed", slog.String("callsign", ident), slog.Any("error", err))
		return UnknownFlight()
	}
	if len(flights) == 0 {
		e.logger.Warn("no flight found", slog.String("callsign", ident))
		return UnknownFlight()
	}

	f := flights[0]
	info := FlightInfo{
		Origin:      airportCity(f.Origin),
		Destination: airportCity(f.Destination),
		CarrierName: e.carrier(f.Operator),
	}
	e.logger.Debug("flight enriched",
		slog.String("callsign", ident),
		slog.String("origin", info.Origin),
		slog.String("destination", info.Destination),
		slog.String("carrier", info.CarrierName))

	return info
}

func (e *Enricher) carrier(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return Unknown
	}
	if e.operators == nil {
		return code
	}
	return e.operators.Lookup(code)
}

func airportCity(a *flightaware.Airport) string {
	if a == nil {
		return Unknown
	}
	if city := strings.TrimSpace(a.City); city != "" {
		return city
	}
	return Unknown
}
