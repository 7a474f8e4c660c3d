package app

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/store"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/vdf"
)

func newTestNode(t *testing.T, search *config.SearchConfig) *SearchNode {
	cfg := config.DefaultConfig(t.TempDir())
	cfg.Search = search
	cfg.DB.InMemory = true

	logger := zap.NewNop()
	factory, err := vdf.NewGroupElementFactory(search, logger)
	require.NoError(t, err)
	worker, err := vdf.NewSearchWorker(search, logger)
	require.NoError(t, err)

	db := store.NewInMemPebbleDB()
	node, err := newSearchNode(
		cfg,
		logger,
		factory,
		worker,
		store.NewPebbleWitnessStore(db, logger),
		db,
	)
	require.NoError(t, err)
	t.Cleanup(node.Stop)

	return node
}

func toySearchConfig(modulus uint64, maxIterations uint64) *config.SearchConfig {
	c := config.DefaultSearchConfig()
	c.Discriminant = "-1000039"
	c.TerminationModulus = modulus
	c.SleepInterval = 0
	c.MaxIterations = maxIterations
	return c
}

func TestRunJournalsWitnesses(t *testing.T) {
	search := toySearchConfig(3, 60)
	node := newTestNode(t, search)

	seen := []*big.Int{}
	record, err := node.Run(context.Background(), big.NewInt(42), func(i *big.Int) {
		seen = append(seen, i)
	})
	require.NoError(t, err)

	expected, err := vdf.Replay(
		context.Background(),
		&vdf.ABDeltaTriple{A: record.A, B: record.B, Delta: record.Discriminant},
		60,
		big.NewInt(3),
	)
	require.NoError(t, err)

	journaled, err := node.Witnesses(record.ID)
	require.NoError(t, err)

	require.Len(t, seen, len(expected))
	require.Len(t, journaled, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].String(), seen[i].String())
		assert.Equal(t, expected[i].String(), journaled[i].String())

		ok, err := node.Verify(context.Background(), record.ID, journaled[i])
		require.NoError(t, err)
		assert.True(t, ok)
	}

	stored, err := node.GetWitnessStore().GetSearch(record.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Seed.Cmp(big.NewInt(42)))
	assert.Equal(t, 0, stored.TerminationModulus.Cmp(big.NewInt(3)))
}

func TestRunStopsOnCancel(t *testing.T) {
	// every form has a divisible by 1
	search := toySearchConfig(1, 0)
	search.SleepInterval = time.Millisecond
	node := newTestNode(t, search)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := 0
	record, err := node.Run(ctx, big.NewInt(7), func(i *big.Int) {
		count++
		if count == 5 {
			cancel()
		}
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 5)

	latest, err := node.GetWitnessStore().GetLatestWitness(record.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, latest.Cmp(big.NewInt(int64(count-1))))
}

func TestWitnessesUnknownSearch(t *testing.T) {
	node := newTestNode(t, toySearchConfig(3, 1))

	_, err := node.Witnesses(make([]byte, store.SEARCH_ID_LENGTH))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = node.Verify(
		context.Background(),
		make([]byte, store.SEARCH_ID_LENGTH),
		big.NewInt(1),
	)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNewSearchNode(t *testing.T) {
	cfg := config.DefaultConfig(t.TempDir())
	cfg.DB.InMemory = true
	cfg.LogFile = t.TempDir() + "/search.log"

	node, err := NewSearchNode(cfg)
	require.NoError(t, err)
	defer node.Stop()

	d, err := node.Derive(big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, 0, d.Triple.Delta.Cmp(mustDiscriminant(t, cfg)))

	cfg.Search.Discriminant = "12"
	_, err = NewSearchNode(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func mustDiscriminant(t *testing.T, cfg *config.Config) *big.Int {
	d, err := cfg.Search.GetDiscriminant()
	require.NoError(t, err)
	return d
}
