package main

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/unklstewy/ads-flyby/internal/display"
	"github.com/unklstewy/ads-flyby/internal/logos"
	"github.com/unklstewy/ads-flyby/pkg/geofence"
)

// Logo thumbnail edge in pixels; two pixel rows share one terminal row.
const thumbSize = 24

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	callsignStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	routeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)
)

type tickMsg time.Time

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	consumer *display.Consumer
	region   geofence.BoundingBox
	refresh  time.Duration

	// thumb is the rendered logo of the event on screen
	thumb   string
	updated time.Time
}

func newModel(consumer *display.Consumer, region geofence.BoundingBox, refresh time.Duration) model {
	if refresh <= 0 {
		refresh = time.Second
	}
	return model{consumer: consumer, region: region, refresh: refresh}
}

func (m model) Init() tea.Cmd {
	return tick(m.refresh)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		now := time.Time(msg)
		if ev, ok := m.consumer.PollAt(now); ok {
			m = m.apply(ev, now)
		}
		return m, tick(m.refresh)
	}
	return m, nil
}

func (m model) apply(ev display.Event, now time.Time) model {
	m.updated = now
	m.thumb = ""
	if !ev.IsClear() {
		m.thumb = renderLogo(ev.Logo, thumbSize)
	}
	return m
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("✈ ADS-B Flyby"))
	b.WriteString("\n\n")

	current := m.consumer.Current()
	if current.IsClear() {
		b.WriteString(panelStyle.Render(idleStyle.Render("Waiting for aircraft in " + m.region.String())))
	} else {
		lines := strings.SplitN(current.Text, "\n", 2)
		text := callsignStyle.Render(lines[0])
		if len(lines) > 1 {
			text += "\n" + routeStyle.Render(lines[1])
		}
		body := text
		if m.thumb != "" {
			body = lipgloss.JoinHorizontal(lipgloss.Center, m.thumb, "   ", text)
		}
		b.WriteString(panelStyle.Render(body))
	}

	b.WriteString("\n\n")
	status := "no updates yet"
	switch {
	case !current.IsClear():
		status = "on screen since " + humanize.Time(m.consumer.LastUpdate())
	case !m.updated.IsZero():
		status = "cleared " + humanize.Time(m.updated)
	}
	b.WriteString(helpStyle.Render(status + " • q: quit"))
	b.WriteString("\n")

	return b.String()
}

// renderLogo draws the logo with upper half blocks: the foreground colours
// the top pixel of each cell and the background the one below it.
func renderLogo(logo *logos.Logo, size int) string {
	if logo == nil || logo.Image == nil {
		return ""
	}
	img := logos.Scale(logo.Image, size)
	bounds := img.Bounds()

	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		if y > bounds.Min.Y {
			b.WriteByte('\n')
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := cellColor(img.At(x, y))
			bottom := top
			if y+1 < bounds.Max.Y {
				bottom = cellColor(img.At(x, y+1))
			}
			b.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
	}
	return b.String()
}

// cellColor flattens c onto white so transparent logo areas blend in.
func cellColor(c color.Color) lipgloss.Color {
	r, g, bl, a := c.RGBA()
	r += 0xffff - a
	g += 0xffff - a
	bl += 0xffff - a
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, bl>>8))
}
