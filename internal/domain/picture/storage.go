package picture

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidName = errors.New("invalid picture name")

// Storage persists profile picture files under generated names.
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) error
	// Delete removes name. Removing a missing file is not an error.
	Delete(ctx context.Context, name string) error
	// URL returns the public address of name.
	URL(name string) string
}

// Discarder removes files without blocking the caller.
type Discarder interface {
	Discard(name string)
}
