package songsearch

import (
	"errors"
	"fmt"

	"github.com/himanishpuri/SongSearch/pkg/songsearch/storage"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("song not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrCorruptEmbedding  = errors.New("corrupt stored embedding")
	ErrModelMismatch     = errors.New("embedding model mismatch")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsIntegrityError reports whether err signals damaged or incompatible
// stored data rather than a bad request.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrDimensionMismatch) ||
		errors.Is(err, ErrCorruptEmbedding) ||
		errors.Is(err, ErrModelMismatch)
}

// translateStorageErr maps storage sentinels onto this package's.
func translateStorageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
