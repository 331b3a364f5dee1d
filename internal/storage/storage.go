package storage

import (
	"context"
	"errors"
	"io"
)

var ErrStorageDisabled = errors.New("audio storage is not configured")

// AudioStore persists generated audio and returns a URL a client can fetch.
type AudioStore interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}
