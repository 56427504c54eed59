// Package display hands detection results from the polling side to the
// presentation layer.
//
// The Feed is a single slot: publishing never blocks, and an event the
// presentation layer has not picked up yet is replaced by a newer one, since
// only the latest state matters on screen. The Consumer is polled by the
// presentation layer on a fixed cadence and turns a quiet period longer
// than the expiry window into an explicit clear.
package display

import (
	"time"

	"github.com/unklstewy/ads-flyby/internal/logos"
)

// DefaultExpiry is how long an event stays on screen without an update.
const DefaultExpiry = 60 * time.Second

// Event is one display update. An event with empty Text clears the display.
type Event struct {
	// Callsign the event was produced for, empty for a clear
	Callsign string

	// Text is the rendered two-line display text
	Text string

	// Logo is the carrier logo, nil when none is available
	Logo *logos.Logo

	// CreatedAt is when the tracker produced the event
	CreatedAt time.Time
}

// Clear returns the explicit "empty display" event.
func Clear() Event {
	return Event{}
}

// IsClear reports whether ev empties the display.
func (ev Event) IsClear() bool {
	return ev.Text == ""
}

// Feed is a latest-wins, single-producer/single-consumer hand-off.
type Feed struct {
	slot chan Event
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{slot: make(chan Event, 1)}
}

// Publish stores ev, replacing any event not yet received. It never blocks.
func (f *Feed) Publish(ev Event) {
	for {
		select {
		case f.slot <- ev:
			return
		default:
		}
		// Slot is full: drop the stale event and try again.
		select {
		case <-f.slot:
		default:
		}
	}
}

// TryReceive returns the pending event, if any, without blocking.
func (f *Feed) TryReceive() (Event, bool) {
	select {
	case ev := <-f.slot:
		return ev, true
	default:
		return Event{}, false
	}
}
