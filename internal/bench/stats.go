package bench

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Stats summarizes the samples of one case
type Stats struct {
	Samples int           `json:"samples" yaml:"samples"`
	Mean    time.Duration `json:"mean" yaml:"mean"`
	StdDev  time.Duration `json:"stddev" yaml:"stddev"`
	Min     time.Duration `json:"min" yaml:"min"`
	Max     time.Duration `json:"max" yaml:"max"`
	P50     time.Duration `json:"p50" yaml:"p50"`
	P95     time.Duration `json:"p95" yaml:"p95"`
	P99     time.Duration `json:"p99" yaml:"p99"`

	// Tukey fences: mild outliers fall outside 1.5 IQR, severe outside 3 IQR
	MildOutliers   int `json:"mild_outliers" yaml:"mild_outliers"`
	SevereOutliers int `json:"severe_outliers" yaml:"severe_outliers"`

	// Throughput is elements per second at the mean sample time; zero when
	// the case has no meaningful element count
	Elements   int64   `json:"elements,omitempty" yaml:"elements,omitempty"`
	Throughput float64 `json:"throughput,omitempty" yaml:"throughput,omitempty"`
}

// Compute derives Stats from raw sample durations. elements is the number of
// rows or tasks one sample processes (0 when not meaningful).
func Compute(samples []time.Duration, elements int64) Stats {
	s := Stats{Samples: len(samples), Elements: elements}
	if len(samples) == 0 {
		return s
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total float64
	for _, d := range sorted {
		total += float64(d)
	}
	mean := total / float64(len(sorted))

	var sq float64
	for _, d := range sorted {
		diff := float64(d) - mean
		sq += diff * diff
	}
	if len(sorted) > 1 {
		s.StdDev = time.Duration(math.Sqrt(sq / float64(len(sorted)-1)))
	}

	s.Mean = time.Duration(mean)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P50 = percentile(sorted, 50)
	s.P95 = percentile(sorted, 95)
	s.P99 = percentile(sorted, 99)
	s.MildOutliers, s.SevereOutliers = outliers(sorted)

	if elements > 0 && mean > 0 {
		s.Throughput = float64(elements) / (mean / float64(time.Second))
	}
	return s
}

// percentile returns the p-th percentile of sorted samples
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p / 100.0)
	return sorted[idx]
}

// outliers counts samples outside the Tukey fences. Severe outliers are not
// counted as mild.
func outliers(sorted []time.Duration) (mild, severe int) {
	if len(sorted) < 4 {
		return 0, 0
	}
	q1 := float64(percentile(sorted, 25))
	q3 := float64(percentile(sorted, 75))
	iqr := q3 - q1

	for _, d := range sorted {
		v := float64(d)
		switch {
		case v < q1-3*iqr || v > q3+3*iqr:
			severe++
		case v < q1-1.5*iqr || v > q3+1.5*iqr:
			mild++
		}
	}
	return mild, severe
}

// LatencyTracker collects samples from concurrent tasks
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
}

// Record adds a latency sample
func (lt *LatencyTracker) Record(latency time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.samples = append(lt.samples, latency)
}

// Samples returns a copy of the recorded samples
func (lt *LatencyTracker) Samples() []time.Duration {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	out := make([]time.Duration, len(lt.samples))
	copy(out, lt.samples)
	return out
}

// Len returns the number of recorded samples
func (lt *LatencyTracker) Len() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.samples)
}
