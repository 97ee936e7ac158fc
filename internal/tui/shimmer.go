package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ShimmerConfig holds configuration for the glint that sweeps across the
// selected title
type ShimmerConfig struct {
	Enabled    bool
	Speed      time.Duration // tick interval
	WidthRatio float64       // glint width relative to the text
	Cycle      time.Duration // time for one sweep
	Pause      time.Duration // rest between sweeps
}

// DefaultShimmerConfig returns default shimmer configuration
func DefaultShimmerConfig() ShimmerConfig {
	return ShimmerConfig{
		Enabled:    true,
		Speed:      100 * time.Millisecond,
		WidthRatio: 0.25,
		Cycle:      1800 * time.Millisecond,
		Pause:      500 * time.Millisecond,
	}
}

// ShimmerState is the position of the glint. It advances one step per
// Advance call, so the owning model drives it from its own tick.
type ShimmerState struct {
	config ShimmerConfig
	center float64
	paused time.Duration
	active bool
}

// NewShimmerState creates a new shimmer state
func NewShimmerState(config ShimmerConfig) *ShimmerState {
	return &ShimmerState{config: config, active: config.Enabled}
}

// Reset moves the glint back to the start (call when selection changes)
func (s *ShimmerState) Reset() {
	s.center = 0
	s.paused = 0
}

// SetActive enables/disables the glint
func (s *ShimmerState) SetActive(active bool) {
	s.active = active && s.config.Enabled
}

// Interval is the tick interval the owner should use.
func (s *ShimmerState) Interval() time.Duration {
	return s.config.Speed
}

// Advance moves the glint one tick along a text of n cells.
func (s *ShimmerState) Advance(n int) {
	if !s.active || n <= 0 {
		return
	}
	if s.paused > 0 {
		s.paused -= s.config.Speed
		if s.paused <= 0 {
			s.center = -float64(n) * s.config.WidthRatio
		}
		return
	}

	ticks := float64(s.config.Cycle) / float64(s.config.Speed)
	distance := float64(n) * (1 + 2*s.config.WidthRatio)
	s.center += distance / ticks

	if end := float64(n) * (1 + s.config.WidthRatio); s.center >= end {
		s.center = end
		s.paused = s.config.Pause
	}
}

// Render draws text truncated to width cells with the glint applied.
func (s *ShimmerState) Render(text string, width int) string {
	text = runewidth.Truncate(text, width, "…")
	if !s.active {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Render(text)
	}

	sigma := math.Max(1, s.config.WidthRatio*float64(runewidth.StringWidth(text))/2)
	var b strings.Builder
	col := 0
	for _, r := range text {
		dx := float64(col) - s.center
		weight := math.Exp(-(dx * dx) / (2 * sigma * sigma))
		color := blendHex(ColorSecondaryText, ColorHighlight, weight)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}

// blendHex mixes two #RRGGBB colors; w=0 gives a, w=1 gives b.
func blendHex(a, b string, w float64) string {
	ar, ag, ab := hexRGB(a)
	br, bg, bb := hexRGB(b)
	mix := func(x, y uint64) uint64 {
		return uint64(float64(x)*(1-w) + float64(y)*w)
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

func hexRGB(c string) (r, g, b uint64) {
	v, err := strconv.ParseUint(strings.TrimPrefix(c, "#"), 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return v >> 16 & 0xff, v >> 8 & 0xff, v & 0xff
}
