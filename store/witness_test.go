package store_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/store"
)

func newTestStore(t *testing.T) (*store.PebbleDB, *store.PebbleWitnessStore) {
	db := store.NewInMemPebbleDB()
	t.Cleanup(func() { db.Close() })
	return db, store.NewPebbleWitnessStore(db, zap.NewNop())
}

func TestSearchRecordRoundTrip(t *testing.T) {
	_, s := newTestStore(t)

	a, b, d, m := big.NewInt(2), big.NewInt(1), big.NewInt(-23), big.NewInt(100)
	id := store.SearchID(a, b, d, m)
	assert.Len(t, id, store.SEARCH_ID_LENGTH)
	assert.NotEqual(t, id, store.SearchID(a, b, d, big.NewInt(10)))

	_, err := s.GetSearch(id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	record := &store.SearchRecord{
		ID:                 id,
		Seed:               big.NewInt(42),
		A:                  a,
		B:                  b,
		Discriminant:       d,
		TerminationModulus: m,
		StartedAt:          1700000000000,
	}
	require.NoError(t, s.PutSearch(record))

	got, err := s.GetSearch(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 0, got.Seed.Cmp(big.NewInt(42)))
	assert.Equal(t, 0, got.Discriminant.Cmp(d))
	assert.Equal(t, 0, got.TerminationModulus.Cmp(m))
	assert.Equal(t, int64(1700000000000), got.StartedAt)

	assert.ErrorIs(
		t,
		s.PutSearch(&store.SearchRecord{ID: []byte{0x01}}),
		store.ErrInvalidData,
	)
}

func TestWitnessOrdering(t *testing.T) {
	_, s := newTestStore(t)
	id := store.SearchID(big.NewInt(2), big.NewInt(1), big.NewInt(-23), big.NewInt(2))
	other := store.SearchID(big.NewInt(3), big.NewInt(1), big.NewInt(-23), big.NewInt(2))

	_, err := s.GetLatestWitness(id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	iterations := []*big.Int{
		big.NewInt(0),
		big.NewInt(7),
		big.NewInt(255),
		big.NewInt(256),
		big.NewInt(70000),
		huge,
	}

	txn, err := s.NewTransaction()
	require.NoError(t, err)
	for _, i := range iterations {
		require.NoError(t, s.PutWitness(id, i, txn))
	}
	require.NoError(t, s.PutWitness(other, big.NewInt(1), txn))
	require.NoError(t, txn.Commit())

	latest, err := s.GetLatestWitness(id)
	require.NoError(t, err)
	assert.Equal(t, 0, latest.Cmp(huge))

	iter, err := s.RangeWitnesses(id)
	require.NoError(t, err)
	got := []*big.Int{}
	for iter.First(); iter.Valid(); iter.Next() {
		w, err := iter.Value()
		require.NoError(t, err)
		got = append(got, w)
	}
	require.NoError(t, iter.Close())

	require.Len(t, got, len(iterations))
	for i := range iterations {
		assert.Equal(t, 0, got[i].Cmp(iterations[i]), "witness %d", i)
	}

	assert.ErrorIs(t, s.PutWitness(id, big.NewInt(-1), txn), store.ErrInvalidData)
}

func TestDeleteSearch(t *testing.T) {
	_, s := newTestStore(t)
	id := store.SearchID(big.NewInt(2), big.NewInt(1), big.NewInt(-23), big.NewInt(2))

	require.NoError(t, s.PutSearch(&store.SearchRecord{
		ID:                 id,
		Seed:               big.NewInt(1),
		A:                  big.NewInt(2),
		B:                  big.NewInt(1),
		Discriminant:       big.NewInt(-23),
		TerminationModulus: big.NewInt(2),
	}))

	txn, err := s.NewTransaction()
	require.NoError(t, err)
	require.NoError(t, s.PutWitness(id, big.NewInt(3), txn))
	require.NoError(t, txn.Commit())

	require.NoError(t, s.DeleteSearch(id))

	_, err = s.GetSearch(id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetLatestWitness(id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	iter, err := s.RangeWitnesses(id)
	require.NoError(t, err)
	assert.False(t, iter.First())
	require.NoError(t, iter.Close())
}

func TestPebbleOnDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := store.NewPebbleDB(&config.DBConfig{Path: dir})
	require.NoError(t, err)

	require.NoError(t, db.Set([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = store.NewPebbleDB(&config.DBConfig{Path: dir})
	require.NoError(t, err)
	defer db.Close()

	v, closer, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	require.NoError(t, closer.Close())
}
