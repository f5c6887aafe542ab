// Package harness replays storage workloads against tracked key-value
// backends and measures them.
package harness

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Result holds the measurements of one benchmark case.
type Result struct {
	RunID           string        `json:"run_id"`
	Backend         string        `json:"backend"`
	Operations      int           `json:"operations"`
	Repeats         int           `json:"repeats"`
	Workers         int           `json:"workers"`
	ElapsedNs       int64         `json:"elapsed_ns"`
	RedundantNs     int64         `json:"redundant_ns"`
	CorrectedNs     int64         `json:"corrected_ns"`
	KeysRead        int           `json:"keys_read"`
	KeysWritten     int           `json:"keys_written"`
	Buckets         int           `json:"buckets"`
	Summary         hexutil.Bytes `json:"summary"`
	PeakMemoryBytes uint64        `json:"peak_memory_bytes"`
	DBSizeBytes     uint64        `json:"db_size_bytes"`
}

// ParseResults decodes a JSON array of results, as written by
// report.GenerateJSON.
func ParseResults(r io.Reader) ([]Result, error) {
	var results []Result
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	for i := range results {
		if results[i].Backend == "" {
			return nil, fmt.Errorf("result %d: missing backend", i)
		}
	}

	return results, nil
}
