package types

import "errors"

// Error kinds reported by a render. Callers match them with errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnsupportedZoom = errors.New("unsupported zoom")
	ErrTileFetchFailed = errors.New("tile fetch failed")
	ErrDecodeFailed    = errors.New("tile decode failed")
)
