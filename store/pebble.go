package store

import (
	"io"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
)

type PebbleDB struct {
	db *pebble.DB
}

// NewPebbleDB opens the store at config.Path, or an in-memory filesystem
// when config.InMemory is set.
func NewPebbleDB(config *config.DBConfig) (*PebbleDB, error) {
	opts := &pebble.Options{}
	path := config.Path
	if config.InMemory {
		opts.FS = vfs.NewMem()
		path = ""
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrap(err, "new pebble db")
	}

	return &PebbleDB{db}, nil
}

// NewInMemPebbleDB is a convenience for tests and ephemeral searches.
func NewInMemPebbleDB() *PebbleDB {
	db, err := NewPebbleDB(&config.DBConfig{InMemory: true})
	if err != nil {
		panic(err)
	}

	return db
}

func (p *PebbleDB) Get(key []byte) ([]byte, io.Closer, error) {
	return p.db.Get(key)
}

func (p *PebbleDB) Set(key, value []byte) error {
	return p.db.Set(key, value, &pebble.WriteOptions{Sync: true})
}

func (p *PebbleDB) Delete(key []byte) error {
	return p.db.Delete(key, &pebble.WriteOptions{Sync: true})
}

func (p *PebbleDB) NewBatch() Transaction {
	return &PebbleTransaction{
		b: p.db.NewIndexedBatch(),
	}
}

func (p *PebbleDB) NewIter(lowerBound []byte, upperBound []byte) (
	Iterator,
	error,
) {
	return p.db.NewIter(&pebble.IterOptions{
		LowerBound: lowerBound,
		UpperBound: upperBound,
	})
}

func (p *PebbleDB) Close() error {
	return p.db.Close()
}

func (p *PebbleDB) DeleteRange(start, end []byte) error {
	return p.db.DeleteRange(start, end, &pebble.WriteOptions{Sync: true})
}

var _ KVDB = (*PebbleDB)(nil)

type PebbleTransaction struct {
	b *pebble.Batch
}

func (t *PebbleTransaction) Get(key []byte) ([]byte, io.Closer, error) {
	return t.b.Get(key)
}

func (t *PebbleTransaction) Set(key []byte, value []byte) error {
	return t.b.Set(key, value, &pebble.WriteOptions{Sync: true})
}

func (t *PebbleTransaction) Commit() error {
	return t.b.Commit(&pebble.WriteOptions{Sync: true})
}

func (t *PebbleTransaction) Delete(key []byte) error {
	return t.b.Delete(key, &pebble.WriteOptions{Sync: true})
}

func (t *PebbleTransaction) Abort() error {
	return t.b.Close()
}

var _ Transaction = (*PebbleTransaction)(nil)
