package proxy

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/denismitr/redactor/internal/document"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type handler func(*requestContext) error
type errorHandler func(*requestContext)

func makeErrorHandler(err error, lg *logrus.Logger) errorHandler {
	return func(rCtx *requestContext) {
		var httpErr *httpError
		if errors.Is(err, ErrResourceNotFound) {
			httpErr = &httpError{statusCode: http.StatusNotFound, message: err.Error()}
		} else if errors.Is(err, ErrBadInput) {
			httpErr = &httpError{statusCode: http.StatusBadRequest, message: err.Error()}
		} else if hErr, ok := err.(*httpError); ok {
			httpErr = hErr
		}

		if httpErr == nil {
			httpErr = &httpError{statusCode: http.StatusInternalServerError, message: err.Error()}
		}

		if lg != nil && httpErr.statusCode >= http.StatusInternalServerError {
			lg.Errorln(httpErr.ErrorWithDetails())
		}

		rCtx.fail(httpErr)
	}
}

func makeProxyHandler(documentProxy DocumentProxy, timeout time.Duration) handler {
	return func(rCtx *requestContext) error {
		id := rCtx.params[0]
		filename := rCtx.params[1]

		ctx, cancel := context.WithTimeout(rCtx.req.Context(), timeout)
		defer cancel()

		doc, err := documentProxy.Prepare(ctx, id, filename)
		if err != nil {
			return err
		}

		rCtx.prepareSecurityHeaders()

		dw := &downloadWriter{rCtx: rCtx, doc: doc}

		if rCtx.req.Method == http.MethodHead {
			dw.start()
			return nil
		}

		if err := documentProxy.Proxy(ctx, dw, doc); err != nil {
			if dw.started {
				// status and part of the body are already sent
				return nil
			}

			return err
		}

		dw.start()

		return nil
	}
}

// downloadWriter sends the document headers together with the first chunk of content
type downloadWriter struct {
	rCtx    *requestContext
	doc     *document.Document
	started bool
}

func (w *downloadWriter) start() {
	if w.started {
		return
	}

	w.started = true
	w.rCtx.prepareDownloadHeaders(w.doc)
	w.rCtx.resp.WriteHeader(http.StatusOK)
}

func (w *downloadWriter) Write(p []byte) (int, error) {
	w.start()
	return w.rCtx.resp.Write(p)
}

func (c *requestContext) prepareSecurityHeaders() {
	// Enable CORS for 3rd party applications
	c.resp.Header().Set("Access-Control-Allow-Origin", "*")

	// Add a Content-Security-Policy to prevent stored-XSS attacks
	c.resp.Header().Set("Content-Security-Policy", "script-src 'none'")

	// Disable Content-Type sniffing
	c.resp.Header().Set("X-Content-Type-Options", "nosniff")
}

func (c *requestContext) prepareDownloadHeaders(doc *document.Document) {
	c.resp.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename()))
	c.resp.Header().Set("Content-Type", doc.Mime)
	c.resp.Header().Set("X-Image-Eligible", strconv.FormatBool(doc.ImageEligible))
}
