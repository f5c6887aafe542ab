package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/weiihann/benchtracker/harness"
	"github.com/weiihann/benchtracker/tracker"
)

func summaryOf(keys ...string) []byte {
	tr := tracker.New()
	tr.EnterBlock()
	for _, k := range keys {
		tr.RecordRead([]byte(k))
	}
	tr.ExitBlock()

	return tr.Summary()
}

func TestGenerateMatchingSummaries(t *testing.T) {
	summary := summaryOf("alpha", "beta")

	results := []harness.Result{
		{
			Backend:         "memory",
			Operations:      100,
			Repeats:         3,
			Workers:         1,
			ElapsedNs:       3_000_000,
			RedundantNs:     2_000_000,
			CorrectedNs:     1_000_000,
			KeysRead:        2,
			Buckets:         2,
			Summary:         summary,
			PeakMemoryBytes: 100 * 1024 * 1024,
		},
		{
			Backend:     "pebble",
			Operations:  100,
			Repeats:     3,
			Workers:     1,
			ElapsedNs:   6_000_000,
			RedundantNs: 4_000_000,
			CorrectedNs: 2_000_000,
			KeysRead:    2,
			Buckets:     2,
			Summary:     summary,
			DBSizeBytes: 50 * 1024 * 1024,
		},
	}

	var buf bytes.Buffer
	if err := Generate(&buf, results); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "all match") {
		t.Error("expected 'all match' for matching summaries")
	}
	if !strings.Contains(output, "memory") {
		t.Error("expected memory in output")
	}
	if !strings.Contains(output, "pebble") {
		t.Error("expected pebble in output")
	}
	if !strings.Contains(output, "2.00x") {
		t.Error("expected 2.00x speedup for pebble (twice as slow)")
	}
	if !strings.Contains(output, "Top storage prefixes") {
		t.Error("expected bucket section")
	}
	if !strings.Contains(output, "0x616c706861") {
		t.Error("expected hex prefix of 'alpha' in bucket section")
	}
}

func TestGenerateMismatchedSummaries(t *testing.T) {
	results := []harness.Result{
		{Backend: "memory", Summary: summaryOf("a"), Buckets: 1, CorrectedNs: 100},
		{Backend: "badger", Summary: summaryOf("a", "b"), Buckets: 2, CorrectedNs: 200},
	}

	var buf bytes.Buffer
	if err := Generate(&buf, results); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "MISMATCH") {
		t.Error("expected MISMATCH for different summaries")
	}
	if !strings.Contains(output, "memory: 1 buckets") {
		t.Error("expected memory details in mismatch list")
	}
	if !strings.Contains(output, "badger: 2 buckets") {
		t.Error("expected badger details in mismatch list")
	}
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, nil)
	if err == nil {
		t.Error("expected error for empty results")
	}
}

func TestGenerateCorruptSummary(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, []harness.Result{{Backend: "memory", Summary: []byte{0xff}}})
	if err == nil {
		t.Error("expected error for undecodable summary")
	}
}

func TestGenerateJSON(t *testing.T) {
	results := []harness.Result{
		{Backend: "leveldb", CorrectedNs: 1000, Summary: summaryOf("k")},
	}

	var buf bytes.Buffer
	if err := GenerateJSON(&buf, results); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	parsed, err := harness.ParseResults(&buf)
	if err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(parsed) != 1 {
		t.Fatalf("expected 1 result, got %d", len(parsed))
	}
	if parsed[0].Backend != "leveldb" {
		t.Errorf("backend = %q, want leveldb", parsed[0].Backend)
	}
	if !bytes.Equal(parsed[0].Summary, results[0].Summary) {
		t.Errorf("summary = %x, want %x", []byte(parsed[0].Summary), []byte(results[0].Summary))
	}
}

func TestGenerateJSONSummaryIsHex(t *testing.T) {
	var buf bytes.Buffer
	results := []harness.Result{{Backend: "memory", Summary: []byte{0xc0}}}
	if err := GenerateJSON(&buf, results); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if raw[0]["summary"] != "0xc0" {
		t.Errorf("summary = %v, want 0xc0", raw[0]["summary"])
	}
}

func TestTopBuckets(t *testing.T) {
	buckets := []tracker.Bucket{
		{Prefix: tracker.Prefix{0x03}, Read: 1},
		{Prefix: tracker.Prefix{0x01}, Read: 2, Written: 2},
		{Prefix: tracker.Prefix{0x02}, Read: 1},
	}

	top := topBuckets(buckets, 2)
	if len(top) != 2 {
		t.Fatalf("got %d buckets, want 2", len(top))
	}
	if top[0].Prefix[0] != 0x01 || top[1].Prefix[0] != 0x02 {
		t.Errorf("order = %x, %x; want 01, 02", top[0].Prefix[0], top[1].Prefix[0])
	}
	if buckets[0].Prefix[0] != 0x03 {
		t.Error("topBuckets must not reorder its input")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input uint64
		want  string
	}{
		{0, "-"},
		{512, "512 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{1073741824, "1 GB"},
	}

	for _, tt := range tests {
		got := formatBytes(tt.input)
		if got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatNs(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0ns"},
		{999, "999ns"},
		{1500, "1.50µs"},
		{2_500_000, "2.50ms"},
		{1_000_000_000, "1.00s"},
		{60_000_000_000, "60.00s"},
	}

	for _, tt := range tests {
		got := formatNs(tt.input)
		if got != tt.want {
			t.Errorf("formatNs(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
