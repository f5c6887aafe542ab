package kvstore

import "github.com/weiihann/benchtracker/tracker"

var _ Store = (*Tracked)(nil)

// Tracked wraps a Store and reports each access to a Recorder before
// forwarding it. Accesses are reported even when they fail: a lookup of
// a missing key is still a read.
type Tracked struct {
	store    Store
	recorder tracker.Recorder
}

// NewTracked returns a Store that reports accesses to recorder.
func NewTracked(store Store, recorder tracker.Recorder) *Tracked {
	return &Tracked{store: store, recorder: recorder}
}

// Get reads key and records a read.
func (t *Tracked) Get(key []byte) ([]byte, error) {
	t.recorder.RecordRead(key)

	return t.store.Get(key)
}

// Put writes key and records a write.
func (t *Tracked) Put(key, value []byte) error {
	t.recorder.RecordWrite(key)

	return t.store.Put(key, value)
}

// Delete removes key and records a write.
func (t *Tracked) Delete(key []byte) error {
	t.recorder.RecordWrite(key)

	return t.store.Delete(key)
}

// Close closes the underlying store.
func (t *Tracked) Close() error {
	return t.store.Close()
}

// Child returns a view of partition p. Its accesses are reported as
// child accesses keyed by the partition's storage key.
func (t *Tracked) Child(p Partition) *Child {
	return &Child{parent: t, partition: p}
}

// Child is a partition view of a Tracked store.
type Child struct {
	parent    *Tracked
	partition Partition
}

// Get reads key from the partition.
func (c *Child) Get(key []byte) ([]byte, error) {
	c.parent.recorder.RecordChildRead(c.partition.StorageKey(), key)

	return c.parent.store.Get(c.partition.Key(key))
}

// Put writes key into the partition.
func (c *Child) Put(key, value []byte) error {
	c.parent.recorder.RecordChildWrite(c.partition.StorageKey(), key)

	return c.parent.store.Put(c.partition.Key(key), value)
}

// Delete removes key from the partition.
func (c *Child) Delete(key []byte) error {
	c.parent.recorder.RecordChildWrite(c.partition.StorageKey(), key)

	return c.parent.store.Delete(c.partition.Key(key))
}
