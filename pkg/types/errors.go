package types

import "errors"

// Cake store errors.
var (
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidName        = errors.New("cake name must not be empty")
	ErrInvalidIndex       = errors.New("invalid cakes index")
	ErrUnsupportedVersion = errors.New("unsupported record version")
)

// Pick errors.
var (
	ErrInvalidText = errors.New("pick text must not be empty")
	ErrTextTooLong = errors.New("pick text is too long")
	ErrInvalidPick = errors.New("invalid pick")
)

// Transfer errors.
var (
	ErrMalformedImport = errors.New("malformed import document")
)
