package tracker

import (
	"bytes"
	"fmt"
	"math"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
)

// PrefixLength is the number of key bytes that identify a summary bucket.
const PrefixLength = 32

// Prefix identifies a summary bucket.
type Prefix [PrefixLength]byte

// Bucket counts the important reads and writes of all keys sharing a
// prefix.
type Bucket struct {
	Prefix  Prefix
	Read    uint32
	Written uint32
}

// prefixOf returns the first PrefixLength bytes of the concatenated
// parts. Shorter input is padded with zero bytes.
func prefixOf(parts ...string) Prefix {
	var p Prefix

	n := 0
	for _, part := range parts {
		n += copy(p[n:], part)
		if n == PrefixLength {
			break
		}
	}

	return p
}

// Buckets folds all key records into per-prefix counts, sorted by prefix.
// Records of partitioned keys are bucketed by partition||key and merged
// with top-level buckets of the same prefix.
func (t *Tracker) Buckets() []Bucket {
	acc := make(map[Prefix]*Bucket)

	t.flatMu.RLock()
	for key, rec := range t.flat {
		tally(acc, prefixOf(key), rec)
	}
	t.flatMu.RUnlock()

	t.partitionedMu.RLock()
	for partition, records := range t.partitioned {
		for key, rec := range records {
			tally(acc, prefixOf(partition, key), rec)
		}
	}
	t.partitionedMu.RUnlock()

	buckets := make([]Bucket, 0, len(acc))
	for _, b := range acc {
		buckets = append(buckets, *b)
	}

	slices.SortFunc(buckets, func(a, b Bucket) int {
		return bytes.Compare(a.Prefix[:], b.Prefix[:])
	})

	return buckets
}

func tally(acc map[Prefix]*Bucket, prefix Prefix, rec KeyRecord) {
	read := rec.Read == Important
	written := rec.Written == Important

	if !read && !written {
		return
	}

	b, ok := acc[prefix]
	if !ok {
		b = &Bucket{Prefix: prefix}
		acc[prefix] = b
	}

	if read && b.Read < math.MaxUint32 {
		b.Read++
	}
	if written && b.Written < math.MaxUint32 {
		b.Written++
	}
}

// Summary returns the RLP encoding of Buckets: a list of
// (prefix, read, written) tuples.
func (t *Tracker) Summary() []byte {
	enc, err := rlp.EncodeToBytes(t.Buckets())
	if err != nil {
		// Fixed-size arrays and integers always encode.
		panic(fmt.Sprintf("tracker: encode summary: %v", err))
	}

	return enc
}

// DecodeSummary parses the output of Summary.
func DecodeSummary(data []byte) ([]Bucket, error) {
	var buckets []Bucket
	if err := rlp.DecodeBytes(data, &buckets); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	return buckets, nil
}
