package store

import (
	"io"
)

type KVDB interface {
	Get(key []byte) ([]byte, io.Closer, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Transaction
	NewIter(lowerBound []byte, upperBound []byte) (Iterator, error)
	Close() error
	DeleteRange(start, end []byte) error
}

type Transaction interface {
	Get(key []byte) ([]byte, io.Closer, error)
	Set(key []byte, value []byte) error
	Commit() error
	Delete(key []byte) error
	Abort() error
}

type Iterator interface {
	First() bool
	Last() bool
	Next() bool
	Valid() bool
	Key() []byte
	Value() []byte
	Close() error
}
