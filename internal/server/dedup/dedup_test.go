package dedup

import (
	"encoding/binary"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Index {
	t.Helper()
	x, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { x.Close() })
	return x
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("alice", "bob", "2024.01.01", "1-0", "1. e4  e5\n2. Nf3")
	b := Fingerprint("alice", "bob", "2024.01.01", "1-0", "1. e4 e5 2. Nf3")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, Fingerprint("bob", "alice", "2024.01.01", "1-0", "1. e4 e5 2. Nf3"))
	// field boundaries matter
	assert.NotEqual(t, Fingerprint("ab", "c", "", "", ""), Fingerprint("a", "bc", "", "", ""))
}

func TestIndexPutLookup(t *testing.T) {
	x := openMemory(t)

	_, ok, err := x.Lookup("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, x.Put("fp1", 17))
	id, ok, err := x.Lookup("fp1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(17), id)
}

func TestIndexForget(t *testing.T) {
	x := openMemory(t)
	require.NoError(t, x.Put("a", 1))
	require.NoError(t, x.Put("b", 2))
	require.NoError(t, x.Put("c", 1))

	require.NoError(t, x.Forget(1))

	n, err := x.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, err := x.Lookup("b")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = x.Lookup("a")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, x.Forget())
}

func TestIndexForgetManyGames(t *testing.T) {
	x := openMemory(t)
	const games = 150_000

	wb := x.db.NewWriteBatch()
	ids := make([]int64, games)
	for i := range games {
		ids[i] = int64(i + 1)
		val := make([]byte, 8)
		binary.BigEndian.PutUint64(val, uint64(ids[i]))
		require.NoError(t, wb.Set([]byte(keyPrefix+Fingerprint(strconv.Itoa(i), "b", "", "", "")), val))
	}
	require.NoError(t, wb.Flush())

	require.NoError(t, x.Forget(ids...))

	n, err := x.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}
