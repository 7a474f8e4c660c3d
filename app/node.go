package app

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/store"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/vdf"
)

// SearchNode hosts searches: it derives the starting element, runs the
// search and journals every witness under the search's id.
type SearchNode struct {
	config       *config.Config
	logger       *zap.Logger
	deriver      vdf.FormDeriver
	searcher     vdf.Searcher
	witnessStore store.WitnessStore
	db           store.KVDB
}

func newSearchNode(
	cfg *config.Config,
	logger *zap.Logger,
	deriver vdf.FormDeriver,
	searcher vdf.Searcher,
	witnessStore store.WitnessStore,
	db store.KVDB,
) (*SearchNode, error) {
	if deriver == nil {
		return nil, errors.New("deriver must not be nil")
	}

	if searcher == nil {
		return nil, errors.New("searcher must not be nil")
	}

	return &SearchNode{
		config:       cfg,
		logger:       logger,
		deriver:      deriver,
		searcher:     searcher,
		witnessStore: witnessStore,
		db:           db,
	}, nil
}

func (n *SearchNode) GetLogger() *zap.Logger {
	return n.logger
}

func (n *SearchNode) GetWitnessStore() store.WitnessStore {
	return n.witnessStore
}

// Derive maps a seed to its starting element.
func (n *SearchNode) Derive(seed *big.Int) (*vdf.Derivation, error) {
	d, err := n.deriver.Derive(seed)
	if err != nil {
		return nil, errors.Wrap(err, "derive")
	}

	return d, nil
}

// Run derives the starting element for seed, records the search and
// journals its witnesses until ctx ends or the search reaches its iteration
// limit. onWitness, when set, sees every witness after it is committed. A
// search ended by ctx is not an error.
func (n *SearchNode) Run(
	ctx context.Context,
	seed *big.Int,
	onWitness func(iteration *big.Int),
) (*store.SearchRecord, error) {
	d, err := n.Derive(seed)
	if err != nil {
		return nil, errors.Wrap(err, "run")
	}

	modulus := n.config.Search.GetTerminationModulus()
	record := &store.SearchRecord{
		ID: store.SearchID(
			d.Triple.A,
			d.Triple.B,
			d.Triple.Delta,
			modulus,
		),
		Seed:               new(big.Int).Set(seed),
		A:                  d.Triple.A,
		B:                  d.Triple.B,
		Discriminant:       d.Triple.Delta,
		TerminationModulus: modulus,
		StartedAt:          time.Now().UnixMilli(),
	}

	if err := n.witnessStore.PutSearch(record); err != nil {
		return nil, errors.Wrap(err, "run")
	}

	n.logger.Info(
		"starting search",
		zap.Binary("search_id", record.ID),
		zap.Uint64("derivation_index", d.Index),
		zap.String("divisor", d.Divisor.String()),
	)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	search, err := n.searcher.StartSearch(runCtx, d.Triple)
	if err != nil {
		return nil, errors.Wrap(err, "run")
	}

	g.Go(func() error {
		defer cancel()
		return n.journal(search, record.ID, onWitness)
	})

	if addr := n.config.Metrics.ListenAddr; addr != "" {
		g.Go(func() error {
			return n.serveMetrics(runCtx, addr)
		})
	}

	if err := g.Wait(); err != nil {
		return record, errors.Wrap(err, "run")
	}

	<-search.Done()
	if err := search.Err(); err != nil && ctx.Err() == nil {
		return record, errors.Wrap(err, "run")
	}

	n.logger.Info(
		"search finished",
		zap.Binary("search_id", record.ID),
		zap.Uint64("iterations", search.Iterations()),
	)

	return record, nil
}

func (n *SearchNode) journal(
	search *vdf.Search,
	searchID []byte,
	onWitness func(iteration *big.Int),
) error {
	for iteration := range search.Witnesses() {
		if err := n.putWitness(searchID, iteration); err != nil {
			search.Stop()
			return errors.Wrap(err, "journal")
		}

		n.logger.Info(
			"witness",
			zap.Binary("search_id", searchID),
			zap.String("iteration", iteration.String()),
		)

		if onWitness != nil {
			onWitness(iteration)
		}
	}

	return nil
}

func (n *SearchNode) putWitness(searchID []byte, iteration *big.Int) error {
	txn, err := n.witnessStore.NewTransaction()
	if err != nil {
		return errors.Wrap(err, "put witness")
	}

	if err := n.witnessStore.PutWitness(searchID, iteration, txn); err != nil {
		txn.Abort()
		return errors.Wrap(err, "put witness")
	}

	if err := txn.Commit(); err != nil {
		return errors.Wrap(err, "put witness")
	}

	return nil
}

func (n *SearchNode) serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		n.logger.Info("serving metrics", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve metrics")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "serve metrics")
	}

	return nil
}

// Witnesses lists the journaled witnesses of a search in increasing order.
func (n *SearchNode) Witnesses(searchID []byte) ([]*big.Int, error) {
	if _, err := n.witnessStore.GetSearch(searchID); err != nil {
		return nil, errors.Wrap(err, "witnesses")
	}

	iter, err := n.witnessStore.RangeWitnesses(searchID)
	if err != nil {
		return nil, errors.Wrap(err, "witnesses")
	}

	witnesses := []*big.Int{}
	for iter.First(); iter.Valid(); iter.Next() {
		w, err := iter.Value()
		if err != nil {
			iter.Close()
			return nil, errors.Wrap(err, "witnesses")
		}

		witnesses = append(witnesses, w)
	}

	if err := iter.Close(); err != nil {
		return nil, errors.Wrap(err, "witnesses")
	}

	return witnesses, nil
}

// Verify replays a journaled search up to iteration and reports whether
// iteration is a witness.
func (n *SearchNode) Verify(
	ctx context.Context,
	searchID []byte,
	iteration *big.Int,
) (bool, error) {
	record, err := n.witnessStore.GetSearch(searchID)
	if err != nil {
		return false, errors.Wrap(err, "verify")
	}

	ok, err := vdf.VerifyWitness(
		ctx,
		&vdf.ABDeltaTriple{
			A:     record.A,
			B:     record.B,
			Delta: record.Discriminant,
		},
		iteration,
		record.TerminationModulus,
	)
	if err != nil {
		return false, errors.Wrap(err, "verify")
	}

	return ok, nil
}

func (n *SearchNode) Stop() {
	if err := n.db.Close(); err != nil {
		n.logger.Error("error closing db", zap.Error(err))
	}

	n.logger.Sync()
}
