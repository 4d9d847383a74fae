package registry

import (
	"context"

	"github.com/denismitr/redactor/internal/document"
	"github.com/pkg/errors"
)

var ErrCouldNotOpenTx = errors.New("could not open tx")
var ErrRegistryReadFailed = errors.New("registry read error")
var ErrRegistryWriteFailed = errors.New("registry write error")
var ErrEntityNotFound = errors.New("entity not found")
var ErrEntityAlreadyExists = errors.New("entity already exists")
var ErrInvalidID = errors.New("invalid ID")

type Registry interface {
	GenerateID() document.ID
	CreateDocument(ctx context.Context, doc *document.Document) error
	GetDocumentByID(ctx context.Context, id document.ID) (*document.Document, error)
	GetDocuments(ctx context.Context, filter document.Filter) (*document.Collection, error)
	RemoveDocument(ctx context.Context, id document.ID) error
}
