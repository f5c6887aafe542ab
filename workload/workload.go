// Package workload generates deterministic JSONL workloads of storage
// accesses. Each workload is a sequence of read, write and delete
// operations on a flat keyspace and on child partitions.
package workload

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	mrand "math/rand"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// Operation kinds.
const (
	OpRead        = "read"
	OpWrite       = "write"
	OpDelete      = "delete"
	OpChildRead   = "child_read"
	OpChildWrite  = "child_write"
	OpChildDelete = "child_delete"
)

// Operation represents a single storage access in the workload.
type Operation struct {
	Op        string        `json:"op"`
	Partition hexutil.Bytes `json:"partition,omitempty"`
	Key       hexutil.Bytes `json:"key"`
	Value     hexutil.Bytes `json:"value,omitempty"`
}

// IsChild reports whether the operation targets a child partition.
func (o Operation) IsChild() bool {
	switch o.Op {
	case OpChildRead, OpChildWrite, OpChildDelete:
		return true
	default:
		return false
	}
}

// IsRead reports whether the operation is a lookup.
func (o Operation) IsRead() bool {
	return o.Op == OpRead || o.Op == OpChildRead
}

// Summary contains statistics about the generated workload.
type Summary struct {
	TotalOperations int
	Reads           int
	Writes          int
	Deletes         int
	ChildOperations int
}

// Config controls workload generation parameters.
type Config struct {
	NumKeys       int
	NumPrefixes   int
	NumPartitions int
	NumOperations int
	WriteRatio    float64
	DeleteRatio   float64
	ChildRatio    float64
	Distribution  string
	Seed          int64
	ValueSize     int
}

// Generator produces deterministic workloads from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate writes a JSONL workload to w and returns a Summary.
func (g *Generator) Generate(w io.Writer) (Summary, error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	var summary Summary

	if g.cfg.NumKeys <= 0 {
		return summary, fmt.Errorf("workload needs at least one key")
	}

	keys := g.keyPool()
	partitions := make([][]byte, g.cfg.NumPartitions)
	for i := range partitions {
		partitions[i] = g.randomHash()
	}

	for i := 0; i < g.cfg.NumOperations; i++ {
		op := Operation{Op: OpRead}

		child := len(partitions) > 0 && g.rng.Float64() < g.cfg.ChildRatio
		if child {
			op.Partition = partitions[g.rng.Intn(len(partitions))]
			op.Key = hashOf(op.Partition, uint64(g.pick()))
		} else {
			op.Key = keys[g.pick()]
		}

		if g.rng.Float64() < g.cfg.WriteRatio {
			if g.rng.Float64() < g.cfg.DeleteRatio {
				op.Op = OpDelete
				summary.Deletes++
			} else {
				op.Op = OpWrite
				op.Value = g.randomValue()
				summary.Writes++
			}
		} else {
			summary.Reads++
		}

		if child {
			op.Op = "child_" + op.Op
			summary.ChildOperations++
		}

		if err := enc.Encode(op); err != nil {
			return summary, fmt.Errorf("encode %s: %w", op.Op, err)
		}

		summary.TotalOperations++
	}

	return summary, nil
}

// keyPool derives NumKeys 64-byte keys. Keys are spread over
// NumPrefixes storage prefixes of 32 bytes, each made of a module and
// an item hash, followed by the hash of the key index.
func (g *Generator) keyPool() [][]byte {
	numPrefixes := max(g.cfg.NumPrefixes, 1)

	prefixes := make([][]byte, numPrefixes)
	for i := range prefixes {
		module := sha3.Sum256([]byte(fmt.Sprintf("Module%d", i/4)))
		item := sha3.Sum256([]byte(fmt.Sprintf("Item%d", i)))

		prefix := make([]byte, 0, 32)
		prefix = append(prefix, module[:16]...)
		prefixes[i] = append(prefix, item[:16]...)
	}

	keys := make([][]byte, g.cfg.NumKeys)
	for i := range keys {
		prefix := prefixes[i%numPrefixes]

		key := make([]byte, 0, 64)
		key = append(key, prefix...)
		keys[i] = append(key, hashOf(nil, uint64(i))...)
	}

	return keys
}

func hashOf(seed []byte, index uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], index)

	h := sha3.New256()
	h.Write(seed)
	h.Write(buf[:])

	return h.Sum(nil)
}

func (g *Generator) randomHash() []byte {
	buf := make([]byte, 32)
	g.rng.Read(buf)

	return buf
}

func (g *Generator) randomValue() []byte {
	size := max(g.cfg.ValueSize, 1)
	size += g.rng.Intn(size)

	buf := make([]byte, size)
	g.rng.Read(buf)

	return buf
}

// pick returns a key index following the configured hotness
// distribution. Low indices are the hot keys.
func (g *Generator) pick() int {
	n := g.cfg.NumKeys
	u := g.rng.Float64()

	switch g.cfg.Distribution {
	case "power-law":
		alpha := 1.5
		idx := 1/math.Pow(1-u, 1/alpha) - 1

		return min(int(idx), n-1)

	case "exponential":
		lambda := math.Log(2) / math.Max(float64(n)/4, 1)
		idx := -math.Log(1-u) / lambda

		return min(int(idx), n-1)

	default:
		// Uniform, also used for unknown distributions.
		return g.rng.Intn(n)
	}
}

// Load parses a JSONL workload.
func Load(r io.Reader) ([]Operation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)

	var ops []Operation

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var op Operation
		if err := json.Unmarshal(scanner.Bytes(), &op); err != nil {
			return nil, fmt.Errorf("line %d: decode operation: %w", line, err)
		}

		if err := validate(op); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ops = append(ops, op)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}

	return ops, nil
}

func validate(op Operation) error {
	switch op.Op {
	case OpRead, OpWrite, OpDelete, OpChildRead, OpChildWrite, OpChildDelete:
	default:
		return fmt.Errorf("unknown operation %q", op.Op)
	}

	if len(op.Key) == 0 {
		return fmt.Errorf("%s: empty key", op.Op)
	}
	if op.IsChild() && len(op.Partition) == 0 {
		return fmt.Errorf("%s: missing partition", op.Op)
	}

	return nil
}
