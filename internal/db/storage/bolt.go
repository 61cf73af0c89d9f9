package storage

import (
	"time"

	"github.com/boltdb/bolt"

	"github.com/kailas-cloud/snipgram/internal/db"
)

var boltBucket = []byte("snipgram")

type boltStorage struct {
	db *bolt.DB
}

func openBoltStorage(path string) (Storage, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	err = bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = bdb.Close()
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	return &boltStorage{db: bdb}, nil
}

func (s *boltStorage) WALName() string {
	return s.db.Path()
}

func (s *boltStorage) Set(k, v []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(k, v)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Get returns a copy of the stored value; bolt values are only valid inside the transaction.
func (s *boltStorage) Get(k []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get(k)
		if v == nil {
			return db.ErrKeyNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		if err == db.ErrKeyNotFound {
			return nil, err
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

func (s *boltStorage) Delete(k []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(k)
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

func (s *boltStorage) ForEach(fn func(k, v []byte) error) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).ForEach(fn)
	})
	if err != nil {
		return &db.Error{Op: db.OpForEach, Err: err}
	}
	return nil
}

func (s *boltStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return &db.Error{Op: db.OpClose, Err: err}
	}
	return nil
}
