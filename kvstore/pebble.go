package kvstore

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

type pebbleStore struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) a Pebble database in dir.
func OpenPebble(dir string) (Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		MaxOpenFiles: 500,
	})
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", dir, err)
	}

	return &pebbleStore{db: db}, nil
}

func (s *pebbleStore) Get(key []byte) ([]byte, error) {
	v, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), v...), nil
}

func (s *pebbleStore) Put(key, value []byte) error {
	return s.db.Set(key, value, pebble.NoSync)
}

func (s *pebbleStore) Delete(key []byte) error {
	return s.db.Delete(key, pebble.NoSync)
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}
