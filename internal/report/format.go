package report

import (
	"fmt"
	"time"
)

// FormatDuration renders d with three significant decimals in the largest
// unit that keeps the value at or above one.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Microsecond:
		return fmt.Sprintf("%d ns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.3f µs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.3f s", d.Seconds())
	}
}

// FormatThroughput renders elements per second with a K/M suffix
func FormatThroughput(perSec float64) string {
	switch {
	case perSec <= 0:
		return "-"
	case perSec >= 1e6:
		return fmt.Sprintf("%.2f Melem/s", perSec/1e6)
	case perSec >= 1e3:
		return fmt.Sprintf("%.2f Kelem/s", perSec/1e3)
	default:
		return fmt.Sprintf("%.2f elem/s", perSec)
	}
}
