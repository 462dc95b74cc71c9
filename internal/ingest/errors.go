package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for file extensions outside the
	// recognized delimited-text and spreadsheet-binary set.
	ErrUnsupportedFormat = errors.New("ingest: unsupported file format")

	// ErrInvalidSheetURL is returned when no document identifier can be
	// extracted from a shared-spreadsheet URL.
	ErrInvalidSheetURL = errors.New("ingest: no spreadsheet id found in url")
)

// ParseError wraps a malformed-content failure from the CSV or workbook
// parser. Malformed rows fail the whole ingestion; they are never silently
// dropped.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ingest: parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError wraps a network failure or non-success HTTP status while
// fetching remote spreadsheet data.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest: fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("ingest: fetch %s: unexpected status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }
