package seed

import "runtime"

// IDRange is a half-open range of positions owned by one worker
type IDRange struct {
	Start int64 // inclusive
	End   int64 // exclusive
}

// Len returns the number of indices in the range
func (r IDRange) Len() int64 {
	return r.End - r.Start
}

// WorkerCount returns the number of workers to use.
// If configured is 0, auto-detects using runtime.NumCPU().
func WorkerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	cpus := runtime.NumCPU()
	if cpus < 1 {
		return 1
	}
	return cpus
}

// Partition splits [start, end) into at most workers contiguous, non-empty
// ranges of near-equal size. Each worker inserts the seed users at its own
// positions so no coordination is needed during seeding.
func Partition(start, end int64, workers int) []IDRange {
	total := end - start
	if total <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if int64(workers) > total {
		workers = int(total)
	}

	size := total / int64(workers)
	extra := total % int64(workers)

	ranges := make([]IDRange, workers)
	next := start
	for i := range ranges {
		n := size
		// first `extra` workers take one more
		if int64(i) < extra {
			n++
		}
		ranges[i] = IDRange{Start: next, End: next + n}
		next += n
	}
	return ranges
}
