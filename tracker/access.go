package tracker

// AccessState classifies one kind of access (read or write) to a key.
type AccessState uint8

const (
	// Unset means the access kind was never observed.
	Unset AccessState = iota
	// Redundant means the access was only seen inside a repeat pass.
	Redundant
	// Important means the access was seen during the real pass.
	Important
)

func (s AccessState) String() string {
	switch s {
	case Unset:
		return "unset"
	case Redundant:
		return "redundant"
	case Important:
		return "important"
	default:
		return "unknown"
	}
}

// observed returns the state a first observation produces.
func observed(redundant bool) AccessState {
	if redundant {
		return Redundant
	}

	return Important
}

// upgrade returns the state reached by moving from cur towards next.
// States only ever move towards Important; anything else keeps cur.
func upgrade(cur, next AccessState) AccessState {
	if next > cur && next <= Important {
		return next
	}

	return cur
}

// KeyRecord holds the read and write classification of a single key.
type KeyRecord struct {
	Read    AccessState
	Written AccessState
}

func readRecord(redundant bool) KeyRecord {
	return KeyRecord{Read: observed(redundant), Written: Unset}
}

// writeRecord marks the implicit read of a write as redundant; only the
// write itself can be important.
func writeRecord(redundant bool) KeyRecord {
	return KeyRecord{Read: Redundant, Written: observed(redundant)}
}

// markRead applies a non-redundant read to an existing record. A key
// already written during the real pass keeps its read state.
func (r KeyRecord) markRead() KeyRecord {
	if r.Written == Important {
		return r
	}
	r.Read = upgrade(r.Read, Important)

	return r
}

func (r KeyRecord) markWritten() KeyRecord {
	r.Written = upgrade(r.Written, Important)

	return r
}
