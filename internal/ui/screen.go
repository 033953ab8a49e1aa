package ui

import "time"

// Bounds applied to any detected terminal size.
const (
	MinWidth  = 20
	MaxWidth  = 1000
	MinHeight = 5
	MaxHeight = 500

	FallbackWidth  = 80
	FallbackHeight = 24

	// DefaultMetricsTTL is how long a size reading is trusted.
	DefaultMetricsTTL = time.Second
)

// ScreenMetrics is one clamped reading of the terminal size.
type ScreenMetrics struct {
	Width      int
	Height     int
	CapturedAt time.Time
}

// SizeFunc reports the terminal size in columns and rows.
type SizeFunc func() (width, height int, err error)

// Screen caches ScreenMetrics and refreshes them when they expire or are
// invalidated. It is owned by the compositor side of the loop.
type Screen struct {
	size    SizeFunc
	ttl     time.Duration
	now     func() time.Time
	current ScreenMetrics
	valid   bool
}

// NewScreen creates a Screen reading sizes from size. A nil size always
// yields the 80x24 fallback.
func NewScreen(size SizeFunc, ttl time.Duration) *Screen {
	if ttl <= 0 {
		ttl = DefaultMetricsTTL
	}
	return &Screen{size: size, ttl: ttl, now: time.Now}
}

// Metrics returns the cached reading, measuring again when it is older than
// the TTL or has been invalidated.
func (s *Screen) Metrics() ScreenMetrics {
	now := s.now()
	if s.valid && now.Sub(s.current.CapturedAt) < s.ttl {
		return s.current
	}
	s.current = s.measure(now)
	s.valid = true
	return s.current
}

// Invalidate forces the next Metrics call to measure.
func (s *Screen) Invalidate() {
	s.valid = false
}

func (s *Screen) measure(now time.Time) ScreenMetrics {
	w, h := FallbackWidth, FallbackHeight
	if s.size != nil {
		if sw, sh, err := s.size(); err == nil && sw > 0 && sh > 0 {
			w, h = sw, sh
		}
	}
	return ScreenMetrics{
		Width:      clamp(w, MinWidth, MaxWidth),
		Height:     clamp(h, MinHeight, MaxHeight),
		CapturedAt: now,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
