package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTopicTable signals a topic table record that is not exactly topic.RecordLines long.
	ErrMalformedTopicTable = errors.New("malformed topic table")
	// ErrMalformedLexicon signals an unparsable lexicon line.
	ErrMalformedLexicon = errors.New("malformed lexicon")
	// ErrBuildFailed signals a Gram matrix build that did not complete.
	ErrBuildFailed = errors.New("gram build failed")
	// ErrDatasetNotFound signals a persisted dataset file without a dataset blob.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrUnsupportedStorage signals an unknown storage engine name.
	ErrUnsupportedStorage = errors.New("unsupported storage engine")
)

// PairError wraps a kernel failure with the matrix cell it was computing.
type PairError struct {
	Row, Col int
	Err      error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("pair (%d,%d): %v", e.Row, e.Col, e.Err)
}

func (e *PairError) Unwrap() error { return e.Err }
