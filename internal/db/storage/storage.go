// Package storage provides single-file embedded key-value engines for dataset blobs.
package storage

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// DefaultEngine is used when no engine name is configured.
const DefaultEngine = "bolt"

var engines = map[string]func(path string) (Storage, error){
	"bolt": openBoltStorage,
	"kv":   openKVStorage,
}

// Storage is a byte-oriented key-value store backed by one file.
type Storage interface {
	Set(k, v []byte) error
	Get(k []byte) ([]byte, error)
	Delete(k []byte) error
	ForEach(fn func(k, v []byte) error) error
	Close() error
	WALName() string
}

// Engines lists registered engine names.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens or creates the store at path with the named engine.
// An empty engine name selects DefaultEngine.
func Open(path, engine string) (Storage, error) {
	if engine == "" {
		engine = DefaultEngine
	}
	fn, ok := engines[engine]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedStorage, engine)
	}
	return fn(path)
}
