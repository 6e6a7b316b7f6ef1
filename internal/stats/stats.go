// Package stats aggregates answer outcomes within a rolling window.
package stats

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	at         time.Time
	source     string
	confidence float64
	durationMs int64
}

// Snapshot is a point-in-time aggregate of recent answers.
type Snapshot struct {
	Count         int            `json:"count"`
	BySource      map[string]int `json:"by_source"`
	AvgConfidence float64        `json:"avg_confidence"`
	AvgMs         float64        `json:"avg_ms"`
	MaxMs         int64          `json:"max_ms"`
	P95Ms         float64        `json:"p95_ms"`
}

// AnswerStats tracks recent answers: which branch produced them, how
// confident they were, and how long they took.
type AnswerStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func New(maxAge time.Duration) *AnswerStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &AnswerStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record adds one answered question. The source is the answer's primary
// source tag.
func (s *AnswerStats) Record(source string, confidence float64, durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		at:         now,
		source:     source,
		confidence: confidence,
		durationMs: durationMs,
	})
}

func (s *AnswerStats) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return Snapshot{BySource: map[string]int{}}
	}

	bySource := make(map[string]int)
	durations := make([]int64, 0, len(s.samples))
	var durSum int64
	var confSum float64
	var maxMs int64
	for _, sm := range s.samples {
		bySource[sm.source]++
		durations = append(durations, sm.durationMs)
		durSum += sm.durationMs
		confSum += sm.confidence
		if sm.durationMs > maxMs {
			maxMs = sm.durationMs
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	n := float64(len(s.samples))
	return Snapshot{
		Count:         len(s.samples),
		BySource:      bySource,
		AvgConfidence: confSum / n,
		AvgMs:         float64(durSum) / n,
		MaxMs:         maxMs,
		P95Ms:         percentile(durations, 95),
	}
}

func (s *AnswerStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

// percentile linearly interpolates between the two nearest sorted values.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo := float64(sorted[lower])
	hi := float64(sorted[upper])
	return lo + (hi-lo)*weight
}
