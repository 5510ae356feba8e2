package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cake/pkg/types"
)

// openBackend opens the named backend in a fresh temp dir and closes it on
// cleanup.
func openBackend(t *testing.T, backend string) types.KV {
	t.Helper()
	s, err := Open(types.Config{Backend: backend, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBackendConformance(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, s types.KV)
	}{
		{
			name: "get missing key returns ErrKeyNotFound",
			check: func(t *testing.T, s types.KV) {
				_, err := s.Get("nope")
				assert.ErrorIs(t, err, types.ErrKeyNotFound)
			},
		},
		{
			name: "set then get returns the value",
			check: func(t *testing.T, s types.KV) {
				require.NoError(t, s.Set("ac_cakes_index_v1", []byte(`{"cakes":[]}`)))
				got, err := s.Get("ac_cakes_index_v1")
				require.NoError(t, err)
				assert.Equal(t, `{"cakes":[]}`, string(got))
			},
		},
		{
			name: "set overwrites",
			check: func(t *testing.T, s types.KV) {
				require.NoError(t, s.Set("k", []byte("one")))
				require.NoError(t, s.Set("k", []byte("two")))
				got, err := s.Get("k")
				require.NoError(t, err)
				assert.Equal(t, "two", string(got))
			},
		},
		{
			name: "empty value is stored",
			check: func(t *testing.T, s types.KV) {
				require.NoError(t, s.Set("empty", []byte{}))
				got, err := s.Get("empty")
				require.NoError(t, err)
				assert.Empty(t, got)
			},
		},
		{
			name: "caller buffer reuse does not leak into the store",
			check: func(t *testing.T, s types.KV) {
				buf := []byte("abc")
				require.NoError(t, s.Set("k", buf))
				buf[0] = 'z'
				got, err := s.Get("k")
				require.NoError(t, err)
				assert.Equal(t, "abc", string(got))
			},
		},
		{
			name: "delete removes and is idempotent",
			check: func(t *testing.T, s types.KV) {
				require.NoError(t, s.Set("k", []byte("v")))
				require.NoError(t, s.Delete("k"))
				_, err := s.Get("k")
				assert.ErrorIs(t, err, types.ErrKeyNotFound)
				assert.NoError(t, s.Delete("k"))
			},
		},
		{
			name: "keys filters by prefix in order",
			check: func(t *testing.T, s types.KV) {
				for _, k := range []string{"ac_cake_b_v1", "ac_cake_a_v1", "ac_active_cake_v1", "other"} {
					require.NoError(t, s.Set(k, []byte("x")))
				}
				got, err := s.Keys("ac_cake_")
				require.NoError(t, err)
				assert.Equal(t, []string{"ac_cake_a_v1", "ac_cake_b_v1"}, got)

				all, err := s.Keys("")
				require.NoError(t, err)
				assert.Len(t, all, 4)
			},
		},
		{
			name: "binary values round-trip",
			check: func(t *testing.T, s types.KV) {
				bin := []byte{0x00, 0xff, 0xfe, 0x10}
				require.NoError(t, s.Set("bin", bin))
				got, err := s.Get("bin")
				require.NoError(t, err)
				assert.Equal(t, bin, got)
			},
		},
		{
			name: "operations after close return ErrClosed",
			check: func(t *testing.T, s types.KV) {
				require.NoError(t, s.Close())
				require.NoError(t, s.Close())
				_, err := s.Get("k")
				assert.ErrorIs(t, err, types.ErrClosed)
				assert.ErrorIs(t, s.Set("k", []byte("v")), types.ErrClosed)
				assert.ErrorIs(t, s.Delete("k"), types.ErrClosed)
				_, err = s.Keys("")
				assert.ErrorIs(t, err, types.ErrClosed)
			},
		},
	}

	for _, backend := range types.Backends() {
		for _, tt := range tests {
			t.Run(backend+"/"+tt.name, func(t *testing.T) {
				tt.check(t, openBackend(t, backend))
			})
		}
	}
}

func TestFileBackendsPersistAcrossReopen(t *testing.T) {
	for _, backend := range []string{types.BackendJSONL, types.BackendSQLite, types.BackendPebble} {
		t.Run(backend, func(t *testing.T) {
			cfg := types.Config{Backend: backend, DataDir: t.TempDir()}

			s, err := Open(cfg)
			require.NoError(t, err)
			require.NoError(t, s.Set("ac_active_cake_v1", []byte("cake-1")))
			require.NoError(t, s.Set("gone", []byte("x")))
			require.NoError(t, s.Delete("gone"))
			require.NoError(t, s.Close())

			s, err = Open(cfg)
			require.NoError(t, err)
			defer s.Close()

			got, err := s.Get("ac_active_cake_v1")
			require.NoError(t, err)
			assert.Equal(t, "cake-1", string(got))
			_, err = s.Get("gone")
			assert.ErrorIs(t, err, types.ErrKeyNotFound)
		})
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := Open(types.Config{Backend: "redis", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = Open(types.Config{Backend: types.BackendSQLite})
	assert.ErrorIs(t, err, types.ErrDataDirEmpty)
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte("ac_cake`"), prefixUpperBound([]byte("ac_cake_")))
	assert.Equal(t, []byte{0x02}, prefixUpperBound([]byte{0x01, 0xff}))
	assert.Nil(t, prefixUpperBound([]byte{0xff, 0xff}))
}
