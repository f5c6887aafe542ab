// Package report formats benchmark results into comparison tables.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/weiihann/benchtracker/harness"
	"github.com/weiihann/benchtracker/tracker"
)

// TopBuckets is the number of summary buckets listed in the report.
const TopBuckets = 10

// Generate writes a markdown comparison table for the given results.
func Generate(w io.Writer, results []harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	var buckets []tracker.Bucket
	if len(results[0].Summary) > 0 {
		var err error
		buckets, err = tracker.DecodeSummary(results[0].Summary)
		if err != nil {
			return fmt.Errorf("result %s: %w", results[0].Backend, err)
		}
	}

	summaryMatch := checkSummaries(results)
	fastestNs := findFastest(results)

	// Header.
	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)

	// Access summary check.
	if summaryMatch {
		fmt.Fprintln(w, "Access summaries: **all match**")
	} else {
		fmt.Fprintln(w, "Access summaries: **MISMATCH**")

		for _, r := range results {
			fmt.Fprintf(w, "  - %s: %d buckets, %d reads, %d writes\n",
				r.Backend, r.Buckets, r.KeysRead, r.KeysWritten)
		}
	}

	fmt.Fprintln(w)

	// Timing table.
	fmt.Fprintln(w, "| Backend | Elapsed | Redundant | Corrected "+
		"| Repeats | Workers | Speedup |")
	fmt.Fprintln(w, "|---------|---------|-----------|-----------"+
		"|---------|---------|---------|")

	for _, r := range results {
		speedup := 1.0
		if fastestNs > 0 && r.CorrectedNs > 0 {
			speedup = float64(r.CorrectedNs) / float64(fastestNs)
		}

		fmt.Fprintf(w, "| %s | %s | %s | %s | %d | %d | %.2fx |\n",
			r.Backend,
			formatNs(r.ElapsedNs),
			formatNs(r.RedundantNs),
			formatNs(r.CorrectedNs),
			r.Repeats,
			r.Workers,
			speedup,
		)
	}

	fmt.Fprintln(w)

	// Access rows.
	fmt.Fprintln(w, "| Backend | Operations | Keys Read | Keys Written "+
		"| Buckets | Peak Mem | DB Size |")
	fmt.Fprintln(w, "|---------|------------|-----------|--------------"+
		"|---------|----------|---------|")

	for _, r := range results {
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %s | %s |\n",
			r.Backend,
			r.Operations,
			r.KeysRead,
			r.KeysWritten,
			r.Buckets,
			formatBytes(r.PeakMemoryBytes),
			formatBytes(r.DBSizeBytes),
		)
	}

	if len(buckets) == 0 {
		return nil
	}

	fmt.Fprintln(w)

	// Hottest prefixes of the first result.
	fmt.Fprintf(w, "Top storage prefixes (%s):\n", results[0].Backend)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Prefix | Reads | Writes |")
	fmt.Fprintln(w, "|--------|-------|--------|")

	for _, b := range topBuckets(buckets, TopBuckets) {
		fmt.Fprintf(w, "| %s | %d | %d |\n",
			hexutil.Encode(b.Prefix[:]), b.Read, b.Written)
	}

	return nil
}

// GenerateJSON writes results as JSON to w.
func GenerateJSON(w io.Writer, results []harness.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

func checkSummaries(results []harness.Result) bool {
	if len(results) < 2 {
		return true
	}

	first := results[0].Summary
	for _, r := range results[1:] {
		if !bytes.Equal(r.Summary, first) {
			return false
		}
	}

	return true
}

func findFastest(results []harness.Result) int64 {
	fastest := int64(math.MaxInt64)
	for _, r := range results {
		if r.CorrectedNs > 0 && r.CorrectedNs < fastest {
			fastest = r.CorrectedNs
		}
	}

	if fastest == math.MaxInt64 {
		return 0
	}

	return fastest
}

// topBuckets returns the n buckets with the most accesses, ties broken
// by prefix.
func topBuckets(buckets []tracker.Bucket, n int) []tracker.Bucket {
	sorted := slices.Clone(buckets)
	slices.SortStableFunc(sorted, func(a, b tracker.Bucket) int {
		ta := uint64(a.Read) + uint64(a.Written)
		tb := uint64(b.Read) + uint64(b.Written)
		if ta != tb {
			if ta > tb {
				return -1
			}

			return 1
		}

		return bytes.Compare(a.Prefix[:], b.Prefix[:])
	})

	return sorted[:min(n, len(sorted))]
}

func formatNs(ns int64) string {
	switch {
	case ns < 1_000:
		return fmt.Sprintf("%dns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.2fµs", float64(ns)/1e3)
	case ns < 1_000_000_000:
		return fmt.Sprintf("%.2fms", float64(ns)/1e6)
	default:
		return fmt.Sprintf("%.2fs", float64(ns)/1e9)
	}
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
