// Package tracker decides which aircraft are worth showing.
//
// A callsign moves through unseen -> reported -> chimed. It is reported the
// first time it is seen inside the region and chimed the first time the
// alert sounds for it. Neither set ever shrinks, so within one run an
// aircraft is shown and announced at most once, however often it returns.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unklstewy/ads-flyby/internal/display"
	"github.com/unklstewy/ads-flyby/internal/enrich"
	"github.com/unklstewy/ads-flyby/internal/logos"
	"github.com/unklstewy/ads-flyby/pkg/adsb"
	"github.com/unklstewy/ads-flyby/pkg/geofence"
)

// Enricher supplies route and carrier information for a callsign.
type Enricher interface {
	Enrich(ctx context.Context, callsign string) enrich.FlightInfo
}

// LogoResolver finds the logo for an ICAO prefix, nil when there is none.
type LogoResolver interface {
	Resolve(prefix string) *logos.Logo
}

// AlertSink plays the audible alert.
type AlertSink interface {
	Play() error
}

// Detection is a callsign seen inside the region for the first time.
type Detection struct {
	Callsign   string
	ICAOPrefix string
}

// NewDetection builds a Detection from a position report.
func NewDetection(ac adsb.Aircraft) Detection {
	return Detection{Callsign: strings.TrimSpace(ac.Callsign), ICAOPrefix: ac.ICAOPrefix()}
}

// Tracker owns the dedup state. It is used from a single goroutine.
type Tracker struct {
	region   geofence.BoundingBox
	enricher Enricher
	logos    LogoResolver
	alerts   AlertSink
	logger   *slog.Logger
	now      func() time.Time

	reported map[string]struct{}
	chimed   map[string]struct{}
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogos sets the logo resolver.
func WithLogos(r LogoResolver) Option {
	return func(t *Tracker) { t.logos = r }
}

// WithAlerts sets the alert sink.
func WithAlerts(s AlertSink) Option {
	return func(t *Tracker) { t.alerts = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a tracker for region.
func New(region geofence.BoundingBox, enricher Enricher, opts ...Option) *Tracker {
	t := &Tracker{
		region:   region,
		enricher: enricher,
		logger:   slog.Default(),
		now:      time.Now,
		reported: make(map[string]struct{}),
		chimed:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Process handles one poll cycle. The first report, in feed order, with a
// callsign, inside the region, and not yet reported is promoted; others
// wait for a later cycle. It returns the display event for the promoted
// callsign, or false when nothing new was found.
func (t *Tracker) Process(ctx context.Context, reports []adsb.Aircraft) (display.Event, bool) {
	det, ac, ok := t.nextDetection(reports)
	if !ok {
		return display.Event{}, false
	}

	t.reported[det.Callsign] = struct{}{}
	attrs := []any{
		slog.String("callsign", det.Callsign),
		slog.String("icao", ac.ICAO),
		slog.Float64("lat", ac.Latitude),
		slog.Float64("lon", ac.Longitude),
		slog.Float64("altitude_ft", ac.Altitude),
		slog.Float64("ground_speed_kt", ac.GroundSpeed),
		slog.Float64("track", ac.Track),
	}
	if !ac.LastSeen.IsZero() {
		attrs = append(attrs, slog.Duration("age", t.now().Sub(ac.LastSeen)))
	}
	t.logger.Info("aircraft entered region", attrs...)

	var logo *logos.Logo
	if t.logos != nil && det.ICAOPrefix != "" {
		logo = t.logos.Resolve(det.ICAOPrefix)
	}

	info := enrich.UnknownFlight()
	if t.enricher != nil {
		info = t.enricher.Enrich(ctx, det.Callsign)
	}

	ev := display.Event{
		Callsign:  det.Callsign,
		Text:      FormatText(det.Callsign, info),
		Logo:      logo,
		CreatedAt: t.now(),
	}
	t.logger.Info("display event", slog.String("callsign", det.Callsign), slog.String("text", ev.Text), slog.Bool("logo", logo != nil))

	if !t.IsChimed(det.Callsign) {
		t.chimed[det.Callsign] = struct{}{}
		if t.alerts != nil {
			if err := t.alerts.Play(); err != nil {
				t.logger.Warn("alert failed", slog.String("callsign", det.Callsign), slog.Any("error", err))
			}
		}
	}

	return ev, true
}

func (t *Tracker) nextDetection(reports []adsb.Aircraft) (Detection, adsb.Aircraft, bool) {
	for _, r := range reports {
		det := NewDetection(r)
		if det.Callsign == "" {
			continue
		}
		if !t.region.Contains(r.Latitude, r.Longitude) {
			continue
		}
		if t.IsReported(det.Callsign) {
			continue
		}
		return det, r, true
	}
	return Detection{}, adsb.Aircraft{}, false
}

// FormatText renders the two display lines for a detection.
func FormatText(callsign string, info enrich.FlightInfo) string {
	return fmt.Sprintf("%s (%s)\n%s → %s", callsign, info.CarrierName, info.Origin, info.Destination)
}

// IsReported reports whether callsign has been promoted in this run.
func (t *Tracker) IsReported(callsign string) bool {
	_, ok := t.reported[strings.TrimSpace(callsign)]
	return ok
}

// IsChimed reports whether the alert has sounded for callsign in this run.
func (t *Tracker) IsChimed(callsign string) bool {
	_, ok := t.chimed[strings.TrimSpace(callsign)]
	return ok
}

// ReportedCount returns the size of the reported set.
func (t *Tracker) ReportedCount() int {
	return len(t.reported)
}

// ChimedCount returns the size of the chimed set.
func (t *Tracker) ChimedCount() int {
	return len(t.chimed)
}
