package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks a failed or unparseable ticker fetch.
	ErrSourceUnavailable = errors.New("ticker source unavailable")
	// ErrStoreUnavailable marks a snapshot store that could not be reached.
	ErrStoreUnavailable = errors.New("snapshot store unavailable")
)

// RowParseError reports a single ticker whose fields could not be parsed.
type RowParseError struct {
	Symbol string
	Field  string
	Value  string
	Err    error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("ticker %s: invalid %s %q: %v", e.Symbol, e.Field, e.Value, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }

// RowInsertError reports a single row the store failed to insert during a
// replace. Index is the row's position in the replace batch.
type RowInsertError struct {
	Index int
	Name  string
	Err   error
}

func (e *RowInsertError) Error() string {
	return fmt.Sprintf("insert %s (row %d): %v", e.Name, e.Index, e.Err)
}

func (e *RowInsertError) Unwrap() error { return e.Err }
