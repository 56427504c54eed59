// Package adsb reads aircraft position reports from a local ADS-B decoder
// (dump1090, readsb, tar1090) that publishes an aircraft.json document.
package adsb

import (
	"context"
	"strings"
	"time"
)

// Aircraft is one position report from the feed.
// All position data is in WGS84 coordinate system.
type Aircraft struct {
	// ICAO is the 24-bit transponder address in hex (e.g., "484506")
	ICAO string

	// Callsign is the flight identifier with padding removed.
	// May be empty when the transponder has not sent one yet.
	Callsign string

	// Latitude in decimal degrees (-90 to +90)
	Latitude float64

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64

	// Altitude in feet (barometric), 0 when on the ground or unknown
	Altitude float64

	// GroundSpeed in knots
	GroundSpeed float64

	// Track is the ground track in degrees (0-359)
	Track float64

	// LastSeen is the timestamp of the last message from this aircraft
	LastSeen time.Time
}

// ICAOPrefix returns the airline designator part of the callsign: its first
// three characters, uppercased. Shorter callsigns are returned whole.
func (a Aircraft) ICAOPrefix() string {
	return CallsignPrefix(a.Callsign)
}

// CallsignPrefix returns the first three characters of callsign, uppercased.
func CallsignPrefix(callsign string) string {
	cs := []rune(strings.ToUpper(strings.TrimSpace(callsign)))
	if len(cs) > 3 {
		return string(cs[:3])
	}
	return string(cs)
}

// DataSource is the interface for position feeds.
type DataSource interface {
	// GetAircraft returns every aircraft in the current snapshot that has
	// a position, in feed order.
	GetAircraft(ctx context.Context) ([]Aircraft, error)

	// Ping checks that the feed answers with HTTP 200.
	Ping(ctx context.Context) error

	// Close cleanly shuts down the data source connection.
	Close() error
}
