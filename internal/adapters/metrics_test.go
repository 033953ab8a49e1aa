package adapters

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMetricsAdapterSample(t *testing.T) {
	var n float64
	counter := MetricSource{Name: "jobs", Sample: func(context.Context) (float64, error) {
		n++
		return n, nil
	}}
	broken := MetricSource{Name: "cpu", Unit: "%", Sample: func(context.Context) (float64, error) {
		return 0, errors.New("unsupported")
	}}

	m := NewMetricsAdapter(3, counter, broken)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	series, err := m.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if len(series) != 2 || series[0].Current() != 1 || series[1].Err == nil {
		t.Fatalf("Sample = %+v", series)
	}

	// A second call within the gap does not sample again.
	series, _ = m.Sample(context.Background())
	if len(series[0].Samples) != 1 {
		t.Errorf("samples = %v, want 1", series[0].Samples)
	}

	for i := 0; i < 5; i++ {
		now = now.Add(time.Second)
		series, _ = m.Sample(context.Background())
	}
	got := series[0]
	if len(got.Samples) != 3 || got.Samples[0] != 4 || got.Current() != 6 {
		t.Errorf("samples = %v, want [4 5 6]", got.Samples)
	}
	if got.Average() != 5 || got.Max() != 6 {
		t.Errorf("Average/Max = %v/%v, want 5/6", got.Average(), got.Max())
	}
}

func TestMetricsAdapterKeepsHistoryOnFailure(t *testing.T) {
	fail := false
	src := MetricSource{Name: "mem", Sample: func(context.Context) (float64, error) {
		if fail {
			panic("collector crashed")
		}
		return 42, nil
	}}
	m := NewMetricsAdapter(0, src)
	now := time.Now()
	m.now = func() time.Time { return now }

	m.Sample(context.Background())
	fail = true
	now = now.Add(time.Second)
	series, err := m.Sample(context.Background())
	if err == nil {
		t.Fatal("Sample with every source failing returned no error")
	}
	if series != nil {
		t.Errorf("Sample returned series with error: %+v", series)
	}

	fail = false
	now = now.Add(time.Second)
	series, err = m.Sample(context.Background())
	if err != nil || len(series[0].Samples) != 2 {
		t.Errorf("history after recovery = %+v, %v, want 2 samples", series, err)
	}
}

func TestSeriesEmpty(t *testing.T) {
	var s Series
	if s.Current() != 0 || s.Average() != 0 || s.Max() != 0 {
		t.Errorf("empty series stats = %v/%v/%v", s.Current(), s.Average(), s.Max())
	}
	s.Samples = []float64{-3, -1, -2}
	if s.Max() != -1 {
		t.Errorf("Max() = %v, want -1", s.Max())
	}
}
