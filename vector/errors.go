package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when a vector's length disagrees
	// with the store's fixed dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNotFound is returned when a delete references a nonexistent id.
	ErrNotFound = errors.New("document not found")

	// ErrEmbedding is returned when the embedding provider could not
	// produce a vector for the query or document text.
	ErrEmbedding = errors.New("embedding failed")

	// ErrBackendUnavailable is returned when a backend cannot reach its
	// storage engine.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrStoreClosed is returned when using a store after Close.
	ErrStoreClosed = errors.New("store is closed")
)

// DimensionError reports the expected and actual vector lengths of a
// dimension mismatch. It matches ErrDimensionMismatch under errors.Is.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
