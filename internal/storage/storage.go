package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

var ErrStorageFailed = errors.New("storage failed")
var ErrInvalidKey = errors.New("storage invalid key")

type Item struct {
	Path string
	URL  string
}

type Storage interface {
	Put(ctx context.Context, namespace, key, contentType string, source io.Reader) (*Item, error)
	Download(ctx context.Context, dst io.Writer, namespace, key string) error
	Remove(ctx context.Context, namespace, key string) error
}
