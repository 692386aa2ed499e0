package bench

import (
	"testing"
	"time"
)

func ms(n ...int) []time.Duration {
	out := make([]time.Duration, len(n))
	for i, v := range n {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}

func TestComputeBasic(t *testing.T) {
	s := Compute(ms(4, 2, 3, 1, 5), 100)

	if s.Samples != 5 {
		t.Errorf("Samples = %d, want 5", s.Samples)
	}
	if s.Mean != 3*time.Millisecond {
		t.Errorf("Mean = %v, want 3ms", s.Mean)
	}
	if s.Min != time.Millisecond || s.Max != 5*time.Millisecond {
		t.Errorf("Min/Max = %v/%v", s.Min, s.Max)
	}
	if s.P50 != 3*time.Millisecond {
		t.Errorf("P50 = %v, want 3ms", s.P50)
	}
	// sample stddev of 1..5 is sqrt(2.5)
	if s.StdDev < 1580*time.Microsecond || s.StdDev > 1582*time.Microsecond {
		t.Errorf("StdDev = %v, want ~1.581ms", s.StdDev)
	}
	// 100 elements per 3ms
	if s.Throughput < 33333 || s.Throughput > 33334 {
		t.Errorf("Throughput = %f, want ~33333.3", s.Throughput)
	}
}

func TestComputeEmptyAndSingle(t *testing.T) {
	if s := Compute(nil, 10); s.Samples != 0 || s.Throughput != 0 {
		t.Errorf("Compute(nil) = %+v", s)
	}

	s := Compute(ms(7), 0)
	if s.Mean != 7*time.Millisecond || s.StdDev != 0 || s.P99 != 7*time.Millisecond {
		t.Errorf("Compute(single) = %+v", s)
	}
	if s.Throughput != 0 {
		t.Errorf("Throughput without elements = %f", s.Throughput)
	}
}

func TestComputeDoesNotReorderInput(t *testing.T) {
	in := ms(3, 1, 2)
	Compute(in, 0)
	if in[0] != 3*time.Millisecond {
		t.Error("Compute sorted its input")
	}
}

func TestOutliers(t *testing.T) {
	samples := ms(10, 10, 11, 11, 12, 12, 13, 13, 19, 100)
	s := Compute(samples, 0)
	if s.SevereOutliers != 1 {
		t.Errorf("SevereOutliers = %d, want 1", s.SevereOutliers)
	}
	if s.MildOutliers != 1 {
		t.Errorf("MildOutliers = %d, want 1", s.MildOutliers)
	}

	if s := Compute(ms(1, 2, 100), 0); s.MildOutliers+s.SevereOutliers != 0 {
		t.Error("outliers should not be computed for fewer than 4 samples")
	}
}

func TestLatencyTracker(t *testing.T) {
	var lt LatencyTracker
	lt.Record(time.Millisecond)
	lt.Record(2 * time.Millisecond)

	got := lt.Samples()
	if lt.Len() != 2 || len(got) != 2 {
		t.Fatalf("Len = %d, want 2", lt.Len())
	}
	got[0] = 0
	if lt.Samples()[0] != time.Millisecond {
		t.Error("Samples should return a copy")
	}
}
