package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/unklstewy/ads-flyby/internal/display"
)

// runHeadless polls the consumer and prints each change to w until ctx is
// cancelled.
func runHeadless(ctx context.Context, consumer *display.Consumer, w io.Writer, refresh time.Duration) error {
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ev, ok := consumer.Poll(); ok {
				printEvent(w, ev, time.Now())
			}
		}
	}
}

func printEvent(w io.Writer, ev display.Event, now time.Time) {
	stamp := now.Format("15:04:05")
	if ev.IsClear() {
		fmt.Fprintf(w, "[%s] --\n", stamp)
		return
	}
	for i, line := range strings.Split(ev.Text, "\n") {
		if i == 0 {
			fmt.Fprintf(w, "[%s] %s\n", stamp, line)
			continue
		}
		fmt.Fprintf(w, "           %s\n", line)
	}
}
