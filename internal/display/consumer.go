package display

import "time"

// Consumer is the presentation side of a Feed. It is not safe for
// concurrent use; the presentation layer owns it.
type Consumer struct {
	feed       *Feed
	expiry     time.Duration
	now        func() time.Time
	lastUpdate time.Time
	current    Event
}

// NewConsumer creates a consumer for feed. expiry <= 0 selects DefaultExpiry.
func NewConsumer(feed *Feed, expiry time.Duration) *Consumer {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Consumer{
		feed:   feed,
		expiry: expiry,
		now:    time.Now,
	}
}

// Poll checks the feed using the wall clock. See PollAt.
func (c *Consumer) Poll() (Event, bool) {
	return c.PollAt(c.now())
}

// PollAt checks the feed as of now. It returns the pending event if one
// arrived, which restarts the expiry window. Otherwise, once the shown
// event is at least expiry old, it returns a single Clear event. The
// boolean is false when the display should stay as it is.
func (c *Consumer) PollAt(now time.Time) (Event, bool) {
	if ev, ok := c.feed.TryReceive(); ok {
		c.current = ev
		if ev.IsClear() {
			c.lastUpdate = time.Time{}
		} else {
			c.lastUpdate = now
		}
		return ev, true
	}

	if !c.lastUpdate.IsZero() && now.Sub(c.lastUpdate) >= c.expiry {
		c.lastUpdate = time.Time{}
		c.current = Clear()
		return c.current, true
	}

	return Event{}, false
}

// Current returns the event on screen.
func (c *Consumer) Current() Event {
	return c.current
}

// LastUpdate returns when the shown event arrived, zero when the display is empty.
func (c *Consumer) LastUpdate() time.Time {
	return c.lastUpdate
}
