package store

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

// SearchRecord describes one search: where it started and what it looks
// for. Witnesses are journaled separately under the record's ID.
type SearchRecord struct {
	ID                 []byte
	Seed               *big.Int
	A                  *big.Int
	B                  *big.Int
	Discriminant       *big.Int
	TerminationModulus *big.Int
	StartedAt          int64
}

type WitnessStore interface {
	NewTransaction() (Transaction, error)
	PutSearch(record *SearchRecord) error
	GetSearch(searchID []byte) (*SearchRecord, error)
	PutWitness(searchID []byte, iteration *big.Int, txn Transaction) error
	GetLatestWitness(searchID []byte) (*big.Int, error)
	RangeWitnesses(searchID []byte) (*PebbleWitnessIterator, error)
	DeleteSearch(searchID []byte) error
}

type PebbleWitnessStore struct {
	db     KVDB
	logger *zap.Logger
}

type PebbleWitnessIterator struct {
	i Iterator
}

var _ WitnessStore = (*PebbleWitnessStore)(nil)

func NewPebbleWitnessStore(db KVDB, logger *zap.Logger) *PebbleWitnessStore {
	return &PebbleWitnessStore{
		db,
		logger,
	}
}

const (
	SEARCH                = 0x08
	SEARCH_METADATA       = 0x00
	SEARCH_WITNESS        = 0x01
	SEARCH_INDEX_LATEST   = 0x20 | SEARCH_WITNESS
	SEARCH_ID_LENGTH      = 32
	witnessLengthBytes    = 2
	maxIterationByteWidth = 0xffff
)

//
// DB Keys
//
// <SEARCH><sub type | index><search id>[<iteration length><iteration>]
//
// Iterations are length prefixed so that lexicographic key order equals
// numeric order.

// SearchID identifies a search by everything that determines its witness
// stream: the starting triple and the termination modulus.
func SearchID(a, b, discriminant, modulus *big.Int) []byte {
	h := sha3.New256()
	for _, x := range []*big.Int{discriminant, a, b, modulus} {
		h.Write(encodeBigInt(x))
	}

	return h.Sum(nil)
}

func searchMetadataKey(searchID []byte) []byte {
	key := []byte{SEARCH, SEARCH_METADATA}
	return append(key, searchID...)
}

func searchLatestWitnessKey(searchID []byte) []byte {
	key := []byte{SEARCH, SEARCH_INDEX_LATEST}
	return append(key, searchID...)
}

func searchWitnessPrefix(searchID []byte) []byte {
	key := []byte{SEARCH, SEARCH_WITNESS}
	return append(key, searchID...)
}

func searchWitnessKey(searchID []byte, iteration *big.Int) []byte {
	key := searchWitnessPrefix(searchID)
	iterationBytes := iteration.Bytes()
	key = binary.BigEndian.AppendUint16(key, uint16(len(iterationBytes)))
	return append(key, iterationBytes...)
}

func extractIterationFromWitnessKey(key []byte) (*big.Int, error) {
	offset := 2 + SEARCH_ID_LENGTH
	if len(key) < offset+witnessLengthBytes {
		return nil, errors.Wrap(ErrInvalidData, "extract iteration")
	}

	width := int(binary.BigEndian.Uint16(key[offset:]))
	if len(key) != offset+witnessLengthBytes+width {
		return nil, errors.Wrap(ErrInvalidData, "extract iteration")
	}

	return new(big.Int).SetBytes(key[offset+witnessLengthBytes:]), nil
}

// encodeBigInt writes a sign byte followed by a length prefixed magnitude.
func encodeBigInt(x *big.Int) []byte {
	if x == nil {
		x = new(big.Int)
	}

	sign := byte(0x00)
	if x.Sign() < 0 {
		sign = 0x01
	}

	magnitude := x.Bytes()
	out := []byte{sign}
	out = binary.BigEndian.AppendUint32(out, uint32(len(magnitude)))
	return append(out, magnitude...)
}

func decodeBigInt(buf []byte) (*big.Int, []byte, error) {
	if len(buf) < 5 {
		return nil, nil, errors.Wrap(ErrInvalidData, "decode big int")
	}

	sign := buf[0]
	length := binary.BigEndian.Uint32(buf[1:5])
	if uint64(len(buf)-5) < uint64(length) || sign > 0x01 {
		return nil, nil, errors.Wrap(ErrInvalidData, "decode big int")
	}

	x := new(big.Int).SetBytes(buf[5 : 5+length])
	if sign == 0x01 {
		x.Neg(x)
	}

	return x, buf[5+length:], nil
}

func (p *PebbleWitnessStore) NewTransaction() (Transaction, error) {
	return p.db.NewBatch(), nil
}

// PutSearch implements WitnessStore.
func (p *PebbleWitnessStore) PutSearch(record *SearchRecord) error {
	if len(record.ID) != SEARCH_ID_LENGTH {
		return errors.Wrap(ErrInvalidData, "put search")
	}

	data := []byte{}
	for _, x := range []*big.Int{
		record.Seed,
		record.A,
		record.B,
		record.Discriminant,
		record.TerminationModulus,
	} {
		data = append(data, encodeBigInt(x)...)
	}
	data = binary.BigEndian.AppendUint64(data, uint64(record.StartedAt))

	if err := p.db.Set(searchMetadataKey(record.ID), data); err != nil {
		return errors.Wrap(err, "put search")
	}

	return nil
}

// GetSearch implements WitnessStore.
func (p *PebbleWitnessStore) GetSearch(searchID []byte) (
	*SearchRecord,
	error,
) {
	value, closer, err := p.db.Get(searchMetadataKey(searchID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "get search")
	}

	defer closer.Close()
	rest := make([]byte, len(value))
	copy(rest, value)

	fields := make([]*big.Int, 5)
	for i := range fields {
		if fields[i], rest, err = decodeBigInt(rest); err != nil {
			return nil, errors.Wrap(err, "get search")
		}
	}

	if len(rest) != 8 {
		return nil, errors.Wrap(ErrInvalidData, "get search")
	}

	return &SearchRecord{
		ID:                 append([]byte{}, searchID...),
		Seed:               fields[0],
		A:                  fields[1],
		B:                  fields[2],
		Discriminant:       fields[3],
		TerminationModulus: fields[4],
		StartedAt:          int64(binary.BigEndian.Uint64(rest)),
	}, nil
}

// PutWitness implements WitnessStore. Witnesses arrive in increasing order,
// so the latest index is overwritten unconditionally.
func (p *PebbleWitnessStore) PutWitness(
	searchID []byte,
	iteration *big.Int,
	txn Transaction,
) error {
	if len(searchID) != SEARCH_ID_LENGTH || iteration.Sign() < 0 {
		return errors.Wrap(ErrInvalidData, "put witness")
	}

	if len(iteration.Bytes()) > maxIterationByteWidth {
		return errors.Wrap(ErrInvalidData, "put witness")
	}

	if err := txn.Set(
		searchWitnessKey(searchID, iteration),
		[]byte{},
	); err != nil {
		return errors.Wrap(err, "put witness")
	}

	if err := txn.Set(
		searchLatestWitnessKey(searchID),
		iteration.Bytes(),
	); err != nil {
		return errors.Wrap(err, "put witness")
	}

	return nil
}

// GetLatestWitness implements WitnessStore.
func (p *PebbleWitnessStore) GetLatestWitness(searchID []byte) (
	*big.Int,
	error,
) {
	value, closer, err := p.db.Get(searchLatestWitnessKey(searchID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "get latest witness")
	}

	defer closer.Close()
	return new(big.Int).SetBytes(value), nil
}

// RangeWitnesses implements WitnessStore.
func (p *PebbleWitnessStore) RangeWitnesses(searchID []byte) (
	*PebbleWitnessIterator,
	error,
) {
	prefix := searchWitnessPrefix(searchID)
	upper := append(append([]byte{}, prefix...), 0xff, 0xff, 0xff)

	iter, err := p.db.NewIter(prefix, upper)
	if err != nil {
		return nil, errors.Wrap(err, "range witnesses")
	}

	return &PebbleWitnessIterator{i: iter}, nil
}

// DeleteSearch implements WitnessStore.
func (p *PebbleWitnessStore) DeleteSearch(searchID []byte) error {
	prefix := searchWitnessPrefix(searchID)
	upper := append(append([]byte{}, prefix...), 0xff, 0xff, 0xff)

	if err := p.db.DeleteRange(prefix, upper); err != nil {
		return errors.Wrap(err, "delete search")
	}

	if err := p.db.Delete(searchLatestWitnessKey(searchID)); err != nil {
		return errors.Wrap(err, "delete search")
	}

	if err := p.db.Delete(searchMetadataKey(searchID)); err != nil {
		return errors.Wrap(err, "delete search")
	}

	p.logger.Debug("deleted search", zap.Binary("search_id", searchID))

	return nil
}

func (p *PebbleWitnessIterator) First() bool {
	return p.i.First()
}

func (p *PebbleWitnessIterator) Next() bool {
	return p.i.Next()
}

func (p *PebbleWitnessIterator) Valid() bool {
	return p.i.Valid()
}

func (p *PebbleWitnessIterator) Value() (*big.Int, error) {
	if !p.i.Valid() {
		return nil, ErrNotFound
	}

	key := p.i.Key()
	if !bytes.HasPrefix(key, []byte{SEARCH, SEARCH_WITNESS}) {
		return nil, errors.Wrap(ErrInvalidData, "get witness")
	}

	iteration, err := extractIterationFromWitnessKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "get witness")
	}

	return iteration, nil
}

func (p *PebbleWitnessIterator) Close() error {
	return errors.Wrap(p.i.Close(), "closing witness iterator")
}
