package backoffice

import (
	"bytes"
	"context"
	"io/ioutil"
	"testing"
	"time"

	"github.com/denismitr/redactor/internal/document"
	"github.com/denismitr/redactor/internal/document/manipulator"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*DocumentService, *fakeRegistry, *fakeStorage) {
	logger := logrus.New()
	logger.Out = ioutil.Discard

	r := newFakeRegistry()
	s := newFakeStorage()

	return NewDocumentService(r, s, manipulator.New(nil), "documents", logger), r, s
}

func TestDocumentService_saveToStorage(t *testing.T) {
	ds, _, s := newTestService()

	doc, err := document.New(ds.registry.GenerateID(), "report.pdf", "documents", 4, time.Now())
	require.NoError(t, err)

	contentCh := make(chan *preparedContent, 1)
	contentCh <- &preparedContent{content: bytes.NewReader([]byte("%PDF"))}
	close(contentCh)

	errCh := make(chan error, 1)
	stored, ok := <-ds.saveToStorage(context.Background(), doc, contentCh, errCh)
	require.True(t, ok)

	assert.Equal(t, document.Pending, stored.Status)

	_, found := s.get("documents/" + doc.Key)
	assert.True(t, found)
}

func TestDocumentService_saveToRegistry(t *testing.T) {
	t.Run("it does not register a document once the request is gone", func(t *testing.T) {
		ds, r, s := newTestService()

		doc, err := document.New(ds.registry.GenerateID(), "report.pdf", "documents", 4, time.Now())
		require.NoError(t, err)
		_, err = s.Put(context.Background(), doc.Namespace, doc.Key, doc.Mime, bytes.NewReader([]byte("%PDF")))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		docCh := make(chan *document.Document, 1)
		docCh <- doc
		close(docCh)

		errCh := make(chan error, 1)
		created, ok := <-ds.saveToRegistry(ctx, docCh, errCh)
		assert.False(t, ok)
		assert.Nil(t, created)

		err = <-errCh
		assert.True(t, errors.Is(err, ErrBackOfficeError))
		assert.Contains(t, err.Error(), context.Canceled.Error())

		assert.Empty(t, r.documents)
		_, found := s.get("documents/" + doc.Key)
		assert.False(t, found)
	})

	t.Run("it marks registered documents ready", func(t *testing.T) {
		ds, r, _ := newTestService()

		doc, err := document.New(ds.registry.GenerateID(), "report.pdf", "documents", 4, time.Now())
		require.NoError(t, err)
		doc.Status = document.Pending

		docCh := make(chan *document.Document, 1)
		docCh <- doc
		close(docCh)

		created, ok := <-ds.saveToRegistry(context.Background(), docCh, make(chan error, 1))
		require.True(t, ok)
		assert.Equal(t, document.Ready, created.Status)
		assert.Equal(t, document.Ready, r.documents[doc.ID].Status)
	})
}

func TestDocumentService_createDocument_cancelled(t *testing.T) {
	ds, _, _ := newTestService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := ds.createDocument(ctx, &createDocumentDTO{
		originalName: "report.pdf",
		size:         4,
		source:       bytes.NewReader([]byte("%PDF")),
	})

	assert.Nil(t, doc)
	assert.Error(t, err)
}
