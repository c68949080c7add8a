package llm

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// StatsSnapshot is a point-in-time aggregate of completion latency samples.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Stats tracks recent completion latencies per label within a rolling
// window. Labels separate the editor and judge so one slow role cannot
// hide behind the other's numbers.
type Stats struct {
	mu      sync.Mutex
	windows map[string][]sample
	maxAge  time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		windows: make(map[string][]sample),
		maxAge:  maxAge,
	}
}

func (s *Stats) Record(label string, durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows[label] = append(pruneSamples(s.windows[label], now.Add(-s.maxAge)), sample{
		timestamp:  now,
		durationMs: durationMs,
	})
}

// Snapshot aggregates the samples recorded for one label.
func (s *Stats) Snapshot(label string) StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows[label] = pruneSamples(s.windows[label], now.Add(-s.maxAge))
	return summarize(s.windows[label])
}

// SnapshotAll aggregates every label that still has live samples.
func (s *Stats) SnapshotAll() map[string]StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]StatsSnapshot, len(s.windows))
	for label, samples := range s.windows {
		samples = pruneSamples(samples, now.Add(-s.maxAge))
		if len(samples) == 0 {
			delete(s.windows, label)
			continue
		}
		s.windows[label] = samples
		out[label] = summarize(samples)
	}
	return out
}

// Labels returns the labels with live samples, sorted.
func (s *Stats) Labels() []string {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	labels := make([]string, 0, len(s.windows))
	for label, samples := range s.windows {
		if len(pruneSamples(samples, now.Add(-s.maxAge))) > 0 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

func pruneSamples(samples []sample, cutoff time.Time) []sample {
	writeIdx := 0
	for _, sm := range samples {
		if !sm.timestamp.Before(cutoff) {
			samples[writeIdx] = sm
			writeIdx++
		}
	}
	return samples[:writeIdx]
}

func summarize(samples []sample) StatsSnapshot {
	if len(samples) == 0 {
		return StatsSnapshot{}
	}

	values := make([]int64, 0, len(samples))
	var sum int64
	for _, sm := range samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return StatsSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
