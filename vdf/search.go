package vdf

import (
	"context"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/classgroup"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
)

var (
	ErrSearchStopped        = errors.New("search stopped")
	ErrDiscriminantMismatch = errors.New("discriminant mismatch")
)

type SearchWorker struct {
	logger        *zap.Logger
	discriminant  *big.Int
	modulus       *big.Int
	interval      time.Duration
	maxIterations uint64
}

func NewSearchWorker(
	searchConfig *config.SearchConfig,
	logger *zap.Logger,
) (*SearchWorker, error) {
	if searchConfig == nil {
		panic("search config is nil")
	}

	if logger == nil {
		panic("logger is nil")
	}

	if err := searchConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "new search worker")
	}

	discriminant, err := searchConfig.GetDiscriminant()
	if err != nil {
		return nil, errors.Wrap(err, "new search worker")
	}

	return &SearchWorker{
		logger:        logger,
		discriminant:  discriminant,
		modulus:       searchConfig.GetTerminationModulus(),
		interval:      searchConfig.SleepInterval,
		maxIterations: searchConfig.MaxIterations,
	}, nil
}

// Search is a handle on one running search. The search goroutine owns the
// current form; the handle only exposes the witness stream and lifecycle.
type Search struct {
	witnesses  chan *big.Int
	done       chan struct{}
	cancel     context.CancelFunc
	iterations atomic.Uint64
	err        error
}

// Witnesses returns the ordered stream of iteration counts at which the
// current form satisfied the termination predicate. The channel is closed
// when the search ends.
func (s *Search) Witnesses() <-chan *big.Int {
	return s.witnesses
}

// Done is closed once the search goroutine has exited.
func (s *Search) Done() <-chan struct{} {
	return s.done
}

// Err reports why the search ended. It is nil while the search runs and
// after a search that reached its configured iteration limit.
func (s *Search) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Stop abandons the search. The goroutine exits at its next pacing wait or
// before its next squaring, whichever comes first; pending witnesses are
// dropped.
func (s *Search) Stop() {
	s.cancel()
}

// Iterations is the number of squarings completed so far.
func (s *Search) Iterations() uint64 {
	return s.iterations.Load()
}

// StartSearch reduces the starting triple and hands it to a new background
// goroutine, returning immediately. The search runs until ctx is cancelled,
// Stop is called, or the configured iteration limit is reached.
func (w *SearchWorker) StartSearch(
	ctx context.Context,
	triple *ABDeltaTriple,
) (*Search, error) {
	f, err := triple.Form()
	if err != nil {
		return nil, errors.Wrap(err, "start search")
	}

	if f.Discriminant().Cmp(w.discriminant) != 0 {
		return nil, errors.Wrap(ErrDiscriminantMismatch, "start search")
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Search{
		witnesses: make(chan *big.Int),
		done:      make(chan struct{}),
		cancel:    cancel,
	}

	go w.run(ctx, s, f.Reduce())

	return s, nil
}

func (w *SearchWorker) run(ctx context.Context, s *Search, g *classgroup.Form) {
	activeSearches.Inc()
	defer func() {
		activeSearches.Dec()
		s.cancel()
		close(s.witnesses)
		close(s.done)
	}()

	iteration := new(big.Int)
	pending := []*big.Int{}
	if g.ADivisibleBy(w.modulus) {
		pending = w.emit(pending, iteration)
	}

	var err error
	for {
		if pending, err = s.deliver(ctx, pending, w.interval); err != nil {
			s.err = w.stopped(err, iteration)
			return
		}

		if w.maxIterations != 0 && s.iterations.Load() >= w.maxIterations {
			if err = s.drain(ctx, pending); err != nil {
				s.err = w.stopped(err, iteration)
				return
			}

			searchesStopped.WithLabelValues("limit").Inc()
			w.logger.Info(
				"search reached iteration limit",
				zap.Uint64("iterations", s.iterations.Load()),
			)
			return
		}

		start := time.Now()
		g, err = g.Square()
		if err != nil {
			searchesStopped.WithLabelValues("error").Inc()
			w.logger.Error(
				"squaring failed",
				zap.String("iteration", iteration.String()),
				zap.Error(err),
			)
			s.err = errors.Wrap(err, "search")
			return
		}

		squaringDuration.Observe(time.Since(start).Seconds())
		squaringsTotal.Inc()
		iteration.Add(iteration, bigOne)
		s.iterations.Add(1)

		if g.ADivisibleBy(w.modulus) {
			pending = w.emit(pending, iteration)
		}
	}
}

func (w *SearchWorker) emit(pending []*big.Int, iteration *big.Int) []*big.Int {
	witnessesTotal.Inc()
	w.logger.Debug("found witness", zap.String("iteration", iteration.String()))
	return append(pending, new(big.Int).Set(iteration))
}

func (w *SearchWorker) stopped(cause error, iteration *big.Int) error {
	searchesStopped.WithLabelValues("stopped").Inc()
	w.logger.Info(
		"search stopped",
		zap.String("iteration", iteration.String()),
		zap.Error(cause),
	)

	return errors.Wrap(ErrSearchStopped, cause.Error())
}

// deliver offers pending witnesses to the consumer for the length of one
// pacing interval and returns whatever was not taken. A consumer that is
// not reading never holds up the squaring loop.
func (s *Search) deliver(
	ctx context.Context,
	pending []*big.Int,
	wait time.Duration,
) ([]*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return pending, err
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		var out chan<- *big.Int
		var next *big.Int
		if len(pending) != 0 {
			out = s.witnesses
			next = pending[0]
		}

		select {
		case out <- next:
			pending = pending[1:]
		case <-timer.C:
			return pending, nil
		case <-ctx.Done():
			return pending, ctx.Err()
		}
	}
}

// drain blocks until every pending witness is taken or ctx ends.
func (s *Search) drain(ctx context.Context, pending []*big.Int) error {
	for _, next := range pending {
		select {
		case s.witnesses <- next:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
