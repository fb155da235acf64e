package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Data availability
	ErrEmptyDataset  = errors.New("dataset is empty")
	ErrColumnMissing = errors.New("required column missing")

	// Cache lifecycle
	ErrCacheUnavailable = errors.New("cache store unavailable")
)

// NewColumnMissingError reports a statistic that depends on an absent column
func NewColumnMissingError(column string) error {
	return fmt.Errorf("%w: %s", ErrColumnMissing, column)
}

// IsCacheError checks whether an error originates from the cache boundary
func IsCacheError(err error) bool {
	return errors.Is(err, ErrCacheUnavailable)
}
