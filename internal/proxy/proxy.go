package proxy

import (
	"context"
	"io"

	"github.com/denismitr/redactor/internal/document"
	"github.com/denismitr/redactor/internal/filetype"
	"github.com/denismitr/redactor/internal/registry"
	"github.com/denismitr/redactor/internal/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrResourceNotFound = errors.New("requested resource not found")
var ErrInternalError = errors.New("proxy error")
var ErrBadInput = errors.New("bad user input")

type DocumentProxy interface {
	Prepare(ctx context.Context, ID, filename string) (*document.Document, error)
	Proxy(ctx context.Context, dst io.Writer, doc *document.Document) error
}

type StorageDocumentProxy struct {
	registry registry.Registry
	storage  storage.Storage
	logger   *logrus.Logger
}

func NewStorageDocumentProxy(l *logrus.Logger, r registry.Registry, s storage.Storage) *StorageDocumentProxy {
	return &StorageDocumentProxy{
		registry: r,
		storage:  s,
		logger:   l,
	}
}

// Prepare resolves the requested file name and finds the matching document in the registry
func (p *StorageDocumentProxy) Prepare(ctx context.Context, ID, filename string) (*document.Document, error) {
	// Step 1: the requested file name must be of a supported type
	if _, err := filetype.GetFileType(filename); err != nil {
		return nil, errors.Wrap(ErrBadInput, err.Error())
	}

	// Step 2: fetch document metadata from the Registry
	doc, err := p.registry.GetDocumentByID(ctx, document.ID(ID))
	if err != nil {
		if errors.Is(err, registry.ErrEntityNotFound) {
			return nil, errors.Wrapf(ErrResourceNotFound, "document with ID %v not found: %v", ID, err)
		}

		if errors.Is(err, registry.ErrInvalidID) {
			return nil, errors.Wrap(ErrBadInput, err.Error())
		}

		return nil, errors.Wrap(ErrInternalError, err.Error())
	}

	// Step 3: the file name must be the one the document is stored under
	if doc.Filename() != filename || doc.Status != document.Ready {
		return nil, errors.Wrapf(ErrResourceNotFound, "document %s has no file %s", ID, filename)
	}

	return doc, nil
}

// Proxy streams the stored document into dst
func (p *StorageDocumentProxy) Proxy(ctx context.Context, dst io.Writer, doc *document.Document) error {
	if err := p.storage.Download(ctx, dst, doc.Namespace, doc.Key); err != nil {
		p.logger.WithFields(logrus.Fields{
			"namespace": doc.Namespace,
			"key":       doc.Key,
		}).Errorln(err)

		return errors.Wrapf(ErrInternalError, "could not download document %s: %v", doc.ID, err)
	}

	return nil
}
