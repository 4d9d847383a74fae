package backoffice

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/denismitr/redactor/internal/document"
	"github.com/denismitr/redactor/internal/filetype"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	e         *echo.Echo
	port      string
	logger    *logrus.Logger
	documents *DocumentService
}

func NewServer(e *echo.Echo, port string, logger *logrus.Logger, documents *DocumentService) *Server {
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))

	s := &Server{e: e, port: port, logger: logger, documents: documents}

	e.GET("/api/v1/filetypes", s.getFileTypes)
	e.GET("/api/v1/filetypes/resolve", s.resolveFileType)

	e.GET("/api/v1/documents", s.getDocuments)
	e.GET("/api/v1/documents/:id", s.getDocument)
	e.POST("/api/v1/documents", s.createDocument)
	e.DELETE("/api/v1/documents/:id", s.removeDocument)

	return s
}

// Run the server
func (s *Server) Run(stopCh <-chan os.Signal, shutDownTime time.Duration) error {
	s.logger.Println("Backoffice server : Starting")

	serverError := make(chan error, 1)
	go func() {
		if err := s.e.Start(s.port); err != nil && err != http.ErrServerClosed {
			serverError <- errors.Wrap(err, "http server error")
		}
	}()

	select {
	case err := <-serverError:
		return err
	case <-stopCh:
		s.logger.Println("Backoffice server : Received stop signal")

		ctx, cancel := context.WithTimeout(context.Background(), shutDownTime)
		defer cancel()

		if stopErr := s.e.Shutdown(ctx); stopErr != nil {
			closeErr := s.e.Close()
			return errors.Wrap(closeErr, stopErr.Error())
		}

		return nil
	}
}

func (s *Server) getFileTypes(rCtx echo.Context) error {
	return rCtx.JSON(http.StatusOK, fileTypesResponse{
		Extensions: filetype.Extensions(),
		ImageTypes: filetype.SupportedImageTypes(),
	})
}

func (s *Server) resolveFileType(rCtx echo.Context) error {
	fileName := rCtx.QueryParam("filename")
	if fileName == "" {
		return rCtx.JSON(badRequest(errors.Wrap(ErrBadInput, "filename is required")))
	}

	resolution, err := s.documents.resolve(fileName)
	if err != nil {
		return rCtx.JSON(errorToResponse(err))
	}

	return rCtx.JSON(http.StatusOK, resolution)
}

func (s *Server) getDocuments(rCtx echo.Context) error {
	filter, err := createFilterFromRequest(rCtx)
	if err != nil {
		return rCtx.JSON(errorToResponse(err))
	}

	ctx, cancel := context.WithTimeout(rCtx.Request().Context(), 5*time.Second)
	defer cancel()

	collection, err := s.documents.getDocuments(ctx, filter)
	if err != nil {
		s.logger.Errorln(err)
		return rCtx.JSON(errorToResponse(err))
	}

	return rCtx.JSON(http.StatusOK, collection)
}

func (s *Server) getDocument(rCtx echo.Context) error {
	ctx, cancel := context.WithTimeout(rCtx.Request().Context(), 2*time.Second)
	defer cancel()

	doc, err := s.documents.getDocument(ctx, rCtx.Param("id"))
	if err != nil {
		return rCtx.JSON(errorToResponse(err))
	}

	return rCtx.JSON(http.StatusOK, doc)
}

func (s *Server) createDocument(rCtx echo.Context) error {
	file, err := rCtx.FormFile("file")
	if err != nil {
		return rCtx.JSON(badRequest(errors.Wrapf(ErrBadInput, "file is required: %v", err)))
	}

	source, err := file.Open()
	if err != nil {
		return rCtx.JSON(internalError(err))
	}
	defer source.Close()

	ctx, cancel := context.WithTimeout(rCtx.Request().Context(), 25*time.Second)
	defer cancel()

	doc, err := s.documents.createDocument(ctx, &createDocumentDTO{
		originalName: file.Filename,
		size:         file.Size,
		namespace:    rCtx.FormValue("namespace"),
		source:       source,
	})

	if err != nil {
		status, resp := errorToResponse(err)
		if status == http.StatusInternalServerError {
			s.logger.Errorln(err)
		}

		return rCtx.JSON(status, resp)
	}

	return rCtx.JSON(http.StatusCreated, doc)
}

func (s *Server) removeDocument(rCtx echo.Context) error {
	ctx, cancel := context.WithTimeout(rCtx.Request().Context(), 10*time.Second)
	defer cancel()

	if err := s.documents.removeDocument(ctx, rCtx.Param("id")); err != nil {
		return rCtx.JSON(errorToResponse(err))
	}

	return rCtx.NoContent(http.StatusNoContent)
}

func createFilterFromRequest(rCtx echo.Context) (document.Filter, error) {
	var filter document.Filter

	page, err := intFromQueryStringOrDefault(rCtx.QueryParam("page"), 1)
	if err != nil {
		return filter, errors.Wrapf(ErrBadInput, "page: %v", err)
	}

	perPage, err := intFromQueryStringOrDefault(rCtx.QueryParam("perPage"), document.DefaultPerPage)
	if err != nil {
		return filter, errors.Wrapf(ErrBadInput, "perPage: %v", err)
	}

	if t := rCtx.QueryParam("type"); t != "" {
		ft, err := filetype.Parse(t)
		if err != nil {
			return filter, errors.Wrap(ErrBadInput, err.Error())
		}

		filter.FileType = ft
	}

	if images := rCtx.QueryParam("images"); images != "" {
		onlyImages, err := strconv.ParseBool(images)
		if err != nil {
			return filter, errors.Wrapf(ErrBadInput, "images: %v", err)
		}

		filter.OnlyImages = onlyImages
	}

	filter.Namespace = rCtx.QueryParam("namespace")
	filter.Page = uint(page)
	filter.PerPage = uint(perPage)

	return filter, nil
}

func intFromQueryStringOrDefault(input string, def int) (int, error) {
	if input == "" {
		return def, nil
	}

	v, err := strconv.Atoi(input)
	if err != nil {
		return 0, err
	}

	if v < 0 {
		return 0, errors.Errorf("%d must not be negative", v)
	}

	return v, nil
}
