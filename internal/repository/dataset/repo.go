// Package dataset persists enriched datasets as single-file blobs.
package dataset

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/snipgram/internal/db"
	"github.com/kailas-cloud/snipgram/internal/db/storage"
	"github.com/kailas-cloud/snipgram/internal/domain"
	domds "github.com/kailas-cloud/snipgram/internal/domain/dataset"
)

var blobKey = []byte("dataset")

// Repo stores datasets inside an export directory.
type Repo struct {
	dir    string
	engine string
}

// New creates a dataset repository writing into dir with the named storage engine.
func New(dir, engine string) *Repo {
	return &Repo{dir: dir, engine: engine}
}

// Save writes ds to <dir>/<ds.FileName()> and returns the file path.
// An existing dataset in that file is replaced.
func (r *Repo) Save(ds *domds.Dataset) (string, error) {
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return "", fmt.Errorf("create export dir %s: %w", r.dir, err)
	}
	path := filepath.Join(r.dir, ds.FileName())

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ds); err != nil {
		return "", fmt.Errorf("encode dataset: %w", err)
	}

	s, err := storage.Open(path, r.engine)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	if err := s.Set(blobKey, buf.Bytes()); err != nil {
		_ = s.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := s.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// Load reads a dataset written by Save with the same engine.
func (r *Repo) Load(path string) (*domds.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	s, err := storage.Open(path, r.engine)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = s.Close() }()

	data, err := s.Get(blobKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var ds domds.Dataset
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}
