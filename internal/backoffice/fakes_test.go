package backoffice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"sync"

	"github.com/denismitr/redactor/internal/document"
	"github.com/denismitr/redactor/internal/registry"
	"github.com/denismitr/redactor/internal/storage"
	"github.com/pkg/errors"
)

type fakeRegistry struct {
	mu        sync.Mutex
	seq       int
	documents map[document.ID]*document.Document
	createErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{documents: make(map[document.ID]*document.Document)}
}

func (r *fakeRegistry) GenerateID() document.ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	return document.ID(fmt.Sprintf("%024x", r.seq))
}

func (r *fakeRegistry) CreateDocument(ctx context.Context, doc *document.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}

	cp := *doc
	r.documents[doc.ID] = &cp

	return nil
}

func (r *fakeRegistry) GetDocumentByID(ctx context.Context, id document.ID) (*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.documents[id]
	if !ok {
		return nil, errors.Wrapf(registry.ErrEntityNotFound, "document with ID [%s]", id)
	}

	cp := *doc
	return &cp, nil
}

func (r *fakeRegistry) GetDocuments(ctx context.Context, filter document.Filter) (*document.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	collection := &document.Collection{Documents: make([]document.Document, 0)}
	for _, doc := range r.documents {
		if filter.Namespace != "" && doc.Namespace != filter.Namespace {
			continue
		}

		if filter.FileType != "" && doc.FileType != filter.FileType {
			continue
		}

		if filter.OnlyImages && !doc.ImageEligible {
			continue
		}

		collection.Documents = append(collection.Documents, *doc)
	}

	collection.Meta.Total = uint(len(collection.Documents))
	collection.Meta.Page = filter.Page
	collection.Meta.PerPage = filter.Limit()

	return collection, nil
}

func (r *fakeRegistry) RemoveDocument(ctx context.Context, id document.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.documents[id]; !ok {
		return registry.ErrEntityNotFound
	}

	delete(r.documents, id)

	return nil
}

type storedObject struct {
	contentType string
	content     []byte
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]storedObject
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]storedObject)}
}

func (s *fakeStorage) Put(ctx context.Context, namespace, key, contentType string, source io.Reader) (*storage.Item, error) {
	b, err := ioutil.ReadAll(source)
	if err != nil {
		return nil, errors.Wrap(storage.ErrStorageFailed, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[namespace+"/"+key] = storedObject{contentType: contentType, content: b}

	return &storage.Item{Path: namespace + "/" + key}, nil
}

func (s *fakeStorage) Download(ctx context.Context, dst io.Writer, namespace, key string) error {
	s.mu.Lock()
	obj, ok := s.objects[namespace+"/"+key]
	s.mu.Unlock()

	if !ok {
		return errors.Wrapf(storage.ErrStorageFailed, "no such key %s", key)
	}

	_, err := io.Copy(dst, bytes.NewReader(obj.content))

	return err
}

func (s *fakeStorage) Remove(ctx context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, namespace+"/"+key)

	return nil
}

func (s *fakeStorage) get(path string) (storedObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[path]
	return obj, ok
}
