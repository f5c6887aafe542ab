package kvstore

import (
	"fmt"
	"path/filepath"
)

// KnownBackends returns the list of supported backend names.
func KnownBackends() []string {
	return []string{"memory", "pebble", "leveldb", "badger"}
}

// IsPersistent reports whether the backend keeps its data on disk.
func IsPersistent(backend string) bool {
	return backend != "memory"
}

// ResolveDir returns the database directory for a backend given the
// base directory shared by all backends of a run.
func ResolveDir(baseDir, backend string) string {
	return filepath.Join(baseDir, backend)
}

// Open creates a Store for the named backend. The memory backend
// ignores dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "memory":
		return NewMemory(), nil
	case "pebble":
		return OpenPebble(dir)
	case "leveldb":
		return OpenLevelDB(dir)
	case "badger":
		return OpenBadger(dir)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
