package backoffice

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/denismitr/redactor/internal/document"
	"github.com/denismitr/redactor/internal/document/manipulator"
	"github.com/denismitr/redactor/internal/filetype"
	"github.com/denismitr/redactor/internal/registry"
	"github.com/denismitr/redactor/internal/storage"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrBackOfficeError = errors.New("back office error")
var ErrResourceNotFound = errors.New("resource not found")
var ErrBadInput = errors.New("bad user input")

// DocumentService is a collection of use cases specific to the back office
// handling intake of documents for the redaction pipeline
type DocumentService struct {
	registry    registry.Registry
	storage     storage.Storage
	manipulator *manipulator.Manipulator
	namespace   string
	allowed     map[string]bool
	logger      *logrus.Logger
	now         func() time.Time
}

func NewDocumentService(
	r registry.Registry,
	s storage.Storage,
	m *manipulator.Manipulator,
	namespace string,
	logger *logrus.Logger,
) *DocumentService {
	return &DocumentService{
		registry:    r,
		storage:     s,
		manipulator: m,
		namespace:   namespace,
		allowed:     make(map[string]bool),
		logger:      logger,
		now:         time.Now,
	}
}

// AllowNamespaces restricts uploads to the given namespaces and the default one.
// Without any allowed namespaces every valid namespace is accepted.
func (ds *DocumentService) AllowNamespaces(namespaces ...string) {
	for _, ns := range namespaces {
		ds.allowed[ns] = true
	}
}

func (ds *DocumentService) namespaceAllowed(namespace string) bool {
	if len(ds.allowed) == 0 || namespace == ds.namespace {
		return true
	}

	return ds.allowed[namespace]
}

func (ds *DocumentService) resolve(fileName string) (*resolutionResponse, error) {
	ext, err := filetype.GetFileExtension(fileName)
	if err != nil {
		return nil, err
	}

	ft, err := filetype.GetFileType(fileName)
	if err != nil {
		return nil, err
	}

	mime, err := filetype.MimeType(ft)
	if err != nil {
		return nil, err
	}

	return &resolutionResponse{
		Filename:      fileName,
		Extension:     ext,
		FileType:      ft,
		Mime:          mime,
		ImageEligible: filetype.IsSupportedImageType(ft),
	}, nil
}

func (ds *DocumentService) getDocuments(ctx context.Context, filter document.Filter) (*document.Collection, error) {
	if filter.Namespace == "" {
		filter.Namespace = ds.namespace
	}

	collection, err := ds.registry.GetDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	return collection, nil
}

func (ds *DocumentService) getDocument(ctx context.Context, id string) (*document.Document, error) {
	doc, err := ds.registry.GetDocumentByID(ctx, document.ID(id))
	if err != nil {
		if errors.Is(err, registry.ErrEntityNotFound) {
			return nil, errors.Wrapf(ErrResourceNotFound, "%s", err.Error())
		}

		return nil, err
	}

	return doc, nil
}

func (ds *DocumentService) removeDocument(ctx context.Context, id string) error {
	doc, err := ds.getDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := ds.storage.Remove(ctx, doc.Namespace, doc.Key); err != nil {
		return errors.Wrapf(ErrBackOfficeError, "could not remove document %s from storage: %v", id, err)
	}

	return ds.registry.RemoveDocument(ctx, doc.ID)
}

func (ds *DocumentService) createDocument(ctx context.Context, dto *createDocumentDTO) (*document.Document, error) {
	doc, err := ds.makeNewDocument(dto)
	if err != nil {
		return nil, err
	}

	errCh := make(chan error, 3)

	contentCh := ds.prepareContent(dto.source, doc, errCh)
	storedCh := ds.saveToStorage(ctx, doc, contentCh, errCh)
	doneCh := ds.saveToRegistry(ctx, storedCh, errCh)

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "could not create new document")
	case err := <-errCh:
		return nil, err
	case created, ok := <-doneCh:
		if !ok || created == nil {
			// a failed stage reports before closing its output
			select {
			case err := <-errCh:
				return nil, err
			default:
				return nil, errors.Wrap(ErrBackOfficeError, "document pipeline stopped without result")
			}
		}

		return created, nil
	}
}

func (ds *DocumentService) makeNewDocument(dto *createDocumentDTO) (*document.Document, error) {
	namespace := dto.namespace
	if namespace == "" {
		namespace = ds.namespace
	}

	if err := document.ValidateNamespace(namespace); err != nil {
		return nil, errors.Wrap(ErrBadInput, err.Error())
	}

	if !ds.namespaceAllowed(namespace) {
		return nil, errors.Wrapf(ErrBadInput, "namespace [%s] is not allowed", namespace)
	}

	doc, err := document.New(ds.registry.GenerateID(), dto.originalName, namespace, int(dto.size), ds.now())
	if err != nil {
		return nil, errors.Wrap(err, "could not accept document")
	}

	return doc, nil
}

// prepareContent straightens image eligible documents, everything else passes through as is
func (ds *DocumentService) prepareContent(source io.Reader, doc *document.Document, errCh chan<- error) <-chan *preparedContent {
	resultCh := make(chan *preparedContent, 1)

	go func() {
		defer close(resultCh)

		if !doc.ImageEligible {
			resultCh <- &preparedContent{content: source}
			return
		}

		b := &bytes.Buffer{}
		result, err := ds.manipulator.Prepare(source, b, doc.FileType)
		if err != nil {
			errCh <- err
			return
		}

		doc.Width = result.Width
		doc.Height = result.Height
		doc.Oriented = result.Oriented
		doc.Size = result.Size

		resultCh <- &preparedContent{content: bytes.NewReader(b.Bytes())}
	}()

	return resultCh
}

func (ds *DocumentService) saveToStorage(
	ctx context.Context,
	doc *document.Document,
	contentCh <-chan *preparedContent,
	errCh chan<- error,
) <-chan *document.Document {
	resultCh := make(chan *document.Document, 1)

	go func() {
		defer close(resultCh)

		pc := <-contentCh
		if pc == nil {
			return
		}

		if _, err := ds.storage.Put(ctx, doc.Namespace, doc.Key, doc.Mime, pc.content); err != nil {
			errCh <- errors.Wrapf(ErrBackOfficeError, "could not persist document: %v", err)
			return
		}

		// stored but not registered yet
		doc.Status = document.Pending

		resultCh <- doc
	}()

	return resultCh
}

func (ds *DocumentService) saveToRegistry(
	ctx context.Context,
	docCh <-chan *document.Document,
	errCh chan<- error,
) <-chan *document.Document {
	doneCh := make(chan *document.Document, 1)

	go func() {
		defer close(doneCh)

		doc, ok := <-docCh
		if doc == nil || !ok {
			return
		}

		if err := ctx.Err(); err != nil {
			ds.discard(doc)
			errCh <- errors.Wrapf(ErrBackOfficeError, "document creation abandoned: %v", err)
			return
		}

		doc.Status = document.Ready
		doc.UpdatedAt = ds.now()

		if err := ds.registry.CreateDocument(ctx, doc); err != nil {
			ds.discard(doc)
			errCh <- errors.Wrapf(ErrBackOfficeError, "could not create document in registry: %v", err)
			return
		}

		doneCh <- doc
	}()

	return doneCh
}

// discard removes an object that never made it into the registry, on its own deadline
func (ds *DocumentService) discard(doc *document.Document) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ds.storage.Remove(ctx, doc.Namespace, doc.Key); err != nil {
		ds.logger.WithFields(logrus.Fields{
			"namespace": doc.Namespace,
			"key":       doc.Key,
		}).Errorln(err)
	}
}
