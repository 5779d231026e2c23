package repository

import "errors"

// Sentinel kinds for catalog errors.
var (
	// ErrCatalogUnavailable means the catalog source could not be read or is not a JSON array.
	ErrCatalogUnavailable = errors.New("song catalog unavailable")
	// ErrCatalogEmpty means the source parsed but held no usable entries.
	ErrCatalogEmpty = errors.New("song catalog empty")
	// ErrMalformedEntry marks a single skipped entry. It is only ever reported
	// inside a Warning, never returned from a load.
	ErrMalformedEntry = errors.New("malformed catalog entry")
)
