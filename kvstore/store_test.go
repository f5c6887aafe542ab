package kvstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendsContract(t *testing.T) {
	for _, backend := range KnownBackends() {
		t.Run(backend, func(t *testing.T) {
			dir := ResolveDir(t.TempDir(), backend)

			s, err := Open(backend, dir)
			require.NoError(t, err)
			defer func() {
				require.NoError(t, s.Close())
			}()

			_, err = s.Get([]byte("missing"))
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

			require.NoError(t, s.Put([]byte("k"), []byte("v1")))
			v, err := s.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), v)

			require.NoError(t, s.Put([]byte("k"), []byte("v2")))
			v, err = s.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), v)

			require.NoError(t, s.Delete([]byte("k")))
			_, err = s.Get([]byte("k"))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("rocksdb", t.TempDir())
	assert.Error(t, err)
}

func TestResolveDir(t *testing.T) {
	got := ResolveDir("tmp", "pebble")
	if got != filepath.Join("tmp", "pebble") {
		t.Errorf("ResolveDir = %q, want tmp/pebble", got)
	}
}

func TestIsPersistent(t *testing.T) {
	assert.False(t, IsPersistent("memory"))
	assert.True(t, IsPersistent("pebble"))
}

func TestMemoryCopiesValues(t *testing.T) {
	s := NewMemory()

	value := []byte("abc")
	require.NoError(t, s.Put([]byte("k"), value))
	value[0] = 'x'

	got, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, err := s.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestPartitionKeys(t *testing.T) {
	p := NewPartition([]byte("alice"))

	assert.Equal(t, []byte("alice"), p.ID())
	assert.Equal(t, []byte(":child_storage:default:alice"), p.StorageKey())
	assert.Equal(t, []byte(":child_storage:default:alicekey"), p.Key([]byte("key")))
}
