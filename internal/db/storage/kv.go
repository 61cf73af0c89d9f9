package storage

import (
	"errors"
	"io"

	"github.com/cznic/kv"

	"github.com/kailas-cloud/snipgram/internal/db"
)

type kvStorage struct {
	db *kv.DB
}

func openKVStorage(path string) (Storage, error) {
	options := &kv.Options{}
	kdb, errOpen := kv.Open(path, options)
	if errOpen != nil {
		var errCreate error
		kdb, errCreate = kv.Create(path, options)
		if errCreate != nil {
			return nil, &db.Error{Op: db.OpOpen, Err: errors.Join(errOpen, errCreate)}
		}
	}
	return &kvStorage{db: kdb}, nil
}

func (s *kvStorage) WALName() string {
	return s.db.WALName()
}

func (s *kvStorage) Set(k, v []byte) error {
	if err := s.db.Set(k, v); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

func (s *kvStorage) Get(k []byte) ([]byte, error) {
	v, err := s.db.Get(nil, k)
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	if v == nil {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (s *kvStorage) Delete(k []byte) error {
	if err := s.db.Delete(k); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

func (s *kvStorage) ForEach(fn func(k, v []byte) error) error {
	iter, err := s.db.SeekFirst()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return &db.Error{Op: db.OpForEach, Err: err}
	}
	for {
		key, value, err := iter.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &db.Error{Op: db.OpForEach, Err: err}
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
}

func (s *kvStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return &db.Error{Op: db.OpClose, Err: err}
	}
	return nil
}
