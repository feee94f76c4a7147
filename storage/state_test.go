package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type storedFixture struct {
	Name   string
	Amount string
	Height uint64
}

func TestStateRoundTrip(t *testing.T) {
	state := NewState(NewMemDB())

	in := storedFixture{Name: "pool", Amount: "1000000", Height: 42}
	require.NoError(t, state.KVPut([]byte("fixture/pool"), in))

	var out storedFixture
	ok, err := state.KVGet([]byte("fixture/pool"), &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)
}

func TestStateMissingKey(t *testing.T) {
	state := NewState(NewMemDB())

	var out storedFixture
	ok, err := state.KVGet([]byte("fixture/absent"), &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStateSkipsDecodeForNilOut(t *testing.T) {
	state := NewState(NewMemDB())
	require.NoError(t, state.KVPut([]byte("fixture/raw"), storedFixture{Name: "x"}))

	ok, err := state.KVGet([]byte("fixture/raw"), nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemDBReturnsCopies(t *testing.T) {
	db := NewMemDB()
	key := []byte("k")
	require.NoError(t, db.Put(key, []byte{1, 2, 3}))

	first, err := db.Get(key)
	require.NoError(t, err)
	first[0] = 9

	second, err := db.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, second)
}
