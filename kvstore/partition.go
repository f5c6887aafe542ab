package kvstore

// DefaultChildPrefix prefixes the storage key of every default child
// partition.
const DefaultChildPrefix = ":child_storage:default:"

// Partition identifies a child keyspace, such as the storage trie of a
// single contract.
type Partition struct {
	id         []byte
	storageKey []byte
}

// NewPartition returns the default child partition named id.
func NewPartition(id []byte) Partition {
	storageKey := make([]byte, 0, len(DefaultChildPrefix)+len(id))
	storageKey = append(storageKey, DefaultChildPrefix...)
	storageKey = append(storageKey, id...)

	return Partition{
		id:         append([]byte(nil), id...),
		storageKey: storageKey,
	}
}

// ID returns the partition name without prefix.
func (p Partition) ID() []byte {
	return p.id
}

// StorageKey returns the key under which the partition is known to the
// parent keyspace.
func (p Partition) StorageKey() []byte {
	return p.storageKey
}

// Key returns the physical key of an in-partition key.
func (p Partition) Key(key []byte) []byte {
	out := make([]byte, 0, len(p.storageKey)+len(key))
	out = append(out, p.storageKey...)

	return append(out, key...)
}
