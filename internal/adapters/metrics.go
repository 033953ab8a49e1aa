package adapters

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultHistorySize is how many samples each series keeps
	DefaultHistorySize = 10

	minSampleGap = time.Second
)

// MetricSource produces one numeric sample per call
type MetricSource struct {
	Name   string
	Unit   string
	Sample func(ctx context.Context) (float64, error)
}

// Series is the recent history of one metric, oldest sample first
type Series struct {
	Name    string
	Unit    string
	Samples []float64
	Err     error
}

// Current returns the newest sample
func (s Series) Current() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	return s.Samples[len(s.Samples)-1]
}

// Average returns the mean of the samples
func (s Series) Average() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.Samples {
		sum += v
	}
	return sum / float64(len(s.Samples))
}

// Max returns the largest sample
func (s Series) Max() float64 {
	var m float64
	for i, v := range s.Samples {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// MetricsAdapter keeps a fixed-length history for each source.
type MetricsAdapter struct {
	size    int
	sources []MetricSource
	history map[string][]float64
	errs    map[string]error
	last    time.Time
	now     func() time.Time
}

// NewMetricsAdapter creates an adapter keeping size samples per source
func NewMetricsAdapter(size int, sources ...MetricSource) *MetricsAdapter {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &MetricsAdapter{
		size:    size,
		sources: sources,
		history: make(map[string][]float64),
		errs:    make(map[string]error),
		now:     time.Now,
	}
}

// Sample records a new value from every source, at most once per second,
// and returns all series. A failing source keeps its previous history. The
// error is non-nil only when every source failed.
func (m *MetricsAdapter) Sample(ctx context.Context) ([]Series, error) {
	now := m.now()
	if m.last.IsZero() || now.Sub(m.last) >= minSampleGap {
		m.last = now
		for _, src := range m.sources {
			v, err := Guard("sample "+src.Name, func() (float64, error) { return src.Sample(ctx) })
			m.errs[src.Name] = err
			if err != nil {
				continue
			}
			h := append(m.history[src.Name], v)
			if len(h) > m.size {
				h = h[len(h)-m.size:]
			}
			m.history[src.Name] = h
		}
	}
	return m.snapshot()
}

func (m *MetricsAdapter) snapshot() ([]Series, error) {
	out := make([]Series, 0, len(m.sources))
	var errs []error
	for _, src := range m.sources {
		h := m.history[src.Name]
		s := Series{Name: src.Name, Unit: src.Unit, Samples: append([]float64(nil), h...), Err: m.errs[src.Name]}
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
		out = append(out, s)
	}
	if len(m.sources) > 0 && len(errs) == len(m.sources) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
