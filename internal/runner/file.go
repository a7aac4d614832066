package runner

import (
	"fmt"
	"os"
	"time"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// BenchStats holds Bench's outcome tallies; every outcome other than
// Complete, Timeout and Ignore counts as an error.
type BenchStats struct {
	Completes, Errors, Ignores, Timeouts int
}

// Bench runs fn n times (n<0 means unbounded), tallying outcomes,
// matching the source's runner_bench/ISG_run progress helpers.
// progress, if non-nil, is called after every iteration with the
// running totals so a caller can render its own status line, and a
// final iterations-per-second line is then printed to stderr.
func Bench(n int, fn func(i int) Outcome, progress func(i int, s BenchStats)) BenchStats {
	var s BenchStats
	start := time.Now()
	i := 0
	for n < 0 || i < n {
		switch fn(i) {
		case Complete:
			s.Completes++
		case Timeout:
			s.Timeouts++
		case Ignore:
			s.Ignores++
		default:
			s.Errors++
		}
		if progress != nil {
			progress(i, s)
		}
		i++
	}
	elapsed := time.Since(start)
	if progress != nil && i > 0 {
		fmt.Fprintf(os.Stderr, "\n%d iterations in %s (%.2f iter/s)\n", i, elapsed, float64(i)/elapsed.Seconds())
	}
	return s
}
