package tracker

//go:generate mockgen -source record.go -destination record_mocks.go -package tracker

type accessKind uint8

const (
	readAccess accessKind = iota
	writeAccess
)

// Recorder is the hook set a storage layer calls on every key access.
// The partition argument of the child variants is the storage key of
// the child partition the key lives in.
type Recorder interface {
	RecordRead(key []byte)
	RecordWrite(key []byte)
	RecordChildRead(partition, key []byte)
	RecordChildWrite(partition, key []byte)
}

var _ Recorder = (*Tracker)(nil)

// RecordRead records a read of key in the top-level keyspace.
func (t *Tracker) RecordRead(key []byte) {
	t.recordFlat(key, readAccess)
}

// RecordWrite records a write of key in the top-level keyspace.
func (t *Tracker) RecordWrite(key []byte) {
	t.recordFlat(key, writeAccess)
}

// RecordChildRead records a read of key inside the given child partition.
func (t *Tracker) RecordChildRead(partition, key []byte) {
	t.recordChild(partition, key, readAccess)
}

// RecordChildWrite records a write of key inside the given child partition.
func (t *Tracker) RecordChildWrite(partition, key []byte) {
	t.recordChild(partition, key, writeAccess)
}

func (t *Tracker) recordFlat(key []byte, kind accessKind) {
	redundant := t.IsRedundant()

	t.flatMu.Lock()
	defer t.flatMu.Unlock()

	apply(t.flat, string(key), kind, redundant)
}

func (t *Tracker) recordChild(partition, key []byte, kind accessKind) {
	redundant := t.IsRedundant()

	t.partitionedMu.Lock()
	defer t.partitionedMu.Unlock()

	records, ok := t.partitioned[string(partition)]
	if !ok {
		records = make(map[string]KeyRecord)
		t.partitioned[string(partition)] = records
	}

	apply(records, string(key), kind, redundant)
}

// apply folds one access into records. Importance is decided on the
// first real observation; repeats never change an existing record.
func apply(records map[string]KeyRecord, key string, kind accessKind, redundant bool) {
	rec, ok := records[key]
	if !ok {
		if kind == writeAccess {
			records[key] = writeRecord(redundant)
		} else {
			records[key] = readRecord(redundant)
		}

		return
	}

	if redundant {
		return
	}

	if kind == writeAccess {
		records[key] = rec.markWritten()
	} else {
		records[key] = rec.markRead()
	}
}

// Record returns the record of a top-level key.
func (t *Tracker) Record(key []byte) (KeyRecord, bool) {
	t.flatMu.RLock()
	defer t.flatMu.RUnlock()

	rec, ok := t.flat[string(key)]

	return rec, ok
}

// ChildRecord returns the record of key inside partition.
func (t *Tracker) ChildRecord(partition, key []byte) (KeyRecord, bool) {
	t.partitionedMu.RLock()
	defer t.partitionedMu.RUnlock()

	rec, ok := t.partitioned[string(partition)][string(key)]

	return rec, ok
}

// Len returns the number of tracked top-level keys and the number of
// tracked keys across all partitions.
func (t *Tracker) Len() (flat, partitioned int) {
	t.flatMu.RLock()
	flat = len(t.flat)
	t.flatMu.RUnlock()

	t.partitionedMu.RLock()
	for _, records := range t.partitioned {
		partitioned += len(records)
	}
	t.partitionedMu.RUnlock()

	return flat, partitioned
}

// ResetStorageTracker drops every key record. Timing and depth state
// are left untouched.
func (t *Tracker) ResetStorageTracker() {
	t.flatMu.Lock()
	clear(t.flat)
	t.flatMu.Unlock()

	t.partitionedMu.Lock()
	clear(t.partitioned)
	t.partitionedMu.Unlock()
}
