package vdf_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/vdf"
)

func newTestWorker(t *testing.T, c *config.SearchConfig) *vdf.SearchWorker {
	w, err := vdf.NewSearchWorker(c, zap.NewNop())
	require.NoError(t, err)
	return w
}

func collect(t *testing.T, s *vdf.Search, timeout time.Duration) []*big.Int {
	witnesses := []*big.Int{}
	deadline := time.After(timeout)
	for {
		select {
		case w, ok := <-s.Witnesses():
			if !ok {
				return witnesses
			}
			witnesses = append(witnesses, w)
		case <-deadline:
			t.Fatalf("search did not finish, got %d witnesses", len(witnesses))
		}
	}
}

func assertIterations(t *testing.T, expected []uint64, got []*big.Int) {
	require.Len(t, got, len(expected))
	for i := range expected {
		assert.Equal(t, new(big.Int).SetUint64(expected[i]).String(), got[i].String())
	}
}

func TestSearchOrderThreeEveryIteration(t *testing.T) {
	// (2, ±1, 3) has order 3 and a = 2 stays fixed under squaring
	c := newTestSearchConfig("-23", 2)
	c.MaxIterations = 10
	w := newTestWorker(t, c)

	s, err := w.StartSearch(context.Background(), &vdf.ABDeltaTriple{
		A:     big.NewInt(2),
		B:     big.NewInt(1),
		Delta: big.NewInt(-23),
	})
	require.NoError(t, err)

	got := collect(t, s, 5*time.Second)
	assertIterations(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)

	<-s.Done()
	assert.NoError(t, s.Err())
	assert.Equal(t, uint64(10), s.Iterations())
}

func TestSearchStartingFormReduced(t *testing.T) {
	// (6, 5, 2) reduces to (2, -1, 3)
	c := newTestSearchConfig("-23", 2)
	c.MaxIterations = 2
	w := newTestWorker(t, c)

	s, err := w.StartSearch(context.Background(), &vdf.ABDeltaTriple{
		A:     big.NewInt(6),
		B:     big.NewInt(5),
		Delta: big.NewInt(-23),
	})
	require.NoError(t, err)

	assertIterations(t, []uint64{0, 1, 2}, collect(t, s, 5*time.Second))
}

func TestSearchTrivialClassGroup(t *testing.T) {
	// h(-7) = 1, every reduced form is (1, 1, 2)
	c := newTestSearchConfig("-7", 100)
	c.MaxIterations = 50
	w := newTestWorker(t, c)
	f := newTestFactory(t, c)

	triple, err := f.DeriveForm(big.NewInt(42))
	require.NoError(t, err)

	s, err := w.StartSearch(context.Background(), triple)
	require.NoError(t, err)

	assert.Empty(t, collect(t, s, 5*time.Second))
	assert.NoError(t, s.Err())
	assert.Equal(t, uint64(50), s.Iterations())

	replayed, err := vdf.Replay(context.Background(), triple, 50, big.NewInt(100))
	require.NoError(t, err)
	assert.Empty(t, replayed)
}

func TestSearchMatchesReplay(t *testing.T) {
	c := config.DefaultSearchConfig()
	c.TerminationModulus = 10
	c.SleepInterval = 0
	c.MaxIterations = 200
	w := newTestWorker(t, c)
	f := newTestFactory(t, c)

	triple, err := f.DeriveForm(vdf.SeedFromString("TestSearchMatchesReplay"))
	require.NoError(t, err)

	s, err := w.StartSearch(context.Background(), triple)
	require.NoError(t, err)
	got := collect(t, s, 30*time.Second)
	require.NoError(t, s.Err())

	expected, err := vdf.Replay(context.Background(), triple, 200, big.NewInt(10))
	require.NoError(t, err)

	require.Len(t, got, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].String(), got[i].String())

		ok, err := vdf.VerifyWitness(
			context.Background(),
			triple,
			got[i],
			big.NewInt(10),
		)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	for i := 1; i < len(got); i++ {
		assert.Equal(t, -1, got[i-1].Cmp(got[i]))
	}
}

func TestSearchSlowConsumer(t *testing.T) {
	c := newTestSearchConfig("-23", 2)
	c.MaxIterations = 20
	w := newTestWorker(t, c)

	s, err := w.StartSearch(context.Background(), &vdf.ABDeltaTriple{
		A:     big.NewInt(2),
		B:     big.NewInt(-1),
		Delta: big.NewInt(-23),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.Iterations() == 20
	}, 5*time.Second, time.Millisecond)

	got := collect(t, s, 5*time.Second)
	expected := make([]uint64, 21)
	for i := range expected {
		expected[i] = uint64(i)
	}
	assertIterations(t, expected, got)
}

func TestSearchStop(t *testing.T) {
	c := newTestSearchConfig("-7", 100)
	c.SleepInterval = time.Millisecond
	w := newTestWorker(t, c)

	s, err := w.StartSearch(context.Background(), &vdf.ABDeltaTriple{
		A:     big.NewInt(1),
		B:     big.NewInt(1),
		Delta: big.NewInt(-7),
	})
	require.NoError(t, err)

	assert.NoError(t, s.Err())
	require.Eventually(t, func() bool {
		return s.Iterations() > 3
	}, 5*time.Second, time.Millisecond)

	s.Stop()
	s.Stop()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("search did not stop")
	}

	_, ok := <-s.Witnesses()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Err(), vdf.ErrSearchStopped)

	stoppedAt := s.Iterations()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, stoppedAt, s.Iterations())
}

func TestSearchContextCancel(t *testing.T) {
	c := newTestSearchConfig("-23", 2)
	c.SleepInterval = time.Millisecond
	w := newTestWorker(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := w.StartSearch(ctx, &vdf.ABDeltaTriple{
		A:     big.NewInt(2),
		B:     big.NewInt(1),
		Delta: big.NewInt(-23),
	})
	require.NoError(t, err)

	first := <-s.Witnesses()
	assert.Equal(t, 0, first.Sign())

	// nobody reads further, pending witnesses must not block cancellation
	cancel()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("search did not stop")
	}
	assert.ErrorIs(t, s.Err(), vdf.ErrSearchStopped)
}

func TestStartSearchRejectsInvalidTriple(t *testing.T) {
	w := newTestWorker(t, newTestSearchConfig("-23", 2))

	_, err := w.StartSearch(context.Background(), &vdf.ABDeltaTriple{
		A:     big.NewInt(1),
		B:     big.NewInt(1),
		Delta: big.NewInt(-7),
	})
	assert.ErrorIs(t, err, vdf.ErrDiscriminantMismatch)

	_, err = w.StartSearch(context.Background(), &vdf.ABDeltaTriple{
		A:     big.NewInt(5),
		B:     big.NewInt(1),
		Delta: big.NewInt(-23),
	})
	assert.Error(t, err)

	_, err = w.StartSearch(context.Background(), nil)
	assert.Error(t, err)
}

func TestVerifyWitness(t *testing.T) {
	triple := &vdf.ABDeltaTriple{
		A:     big.NewInt(2),
		B:     big.NewInt(1),
		Delta: big.NewInt(-23),
	}

	ok, err := vdf.VerifyWitness(context.Background(), triple, big.NewInt(5), big.NewInt(2))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = vdf.VerifyWitness(context.Background(), triple, big.NewInt(5), big.NewInt(4))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = vdf.VerifyWitness(context.Background(), triple, big.NewInt(-1), big.NewInt(2))
	assert.Error(t, err)

	_, err = vdf.Replay(context.Background(), triple, 3, big.NewInt(0))
	assert.Error(t, err)
}
