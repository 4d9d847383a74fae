package backoffice

import (
	"net/http"

	"github.com/denismitr/redactor/internal/document/manipulator"
	"github.com/denismitr/redactor/internal/filetype"
	"github.com/denismitr/redactor/internal/registry"
	"github.com/pkg/errors"
)

type errorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type resolutionResponse struct {
	Filename      string            `json:"filename"`
	Extension     string            `json:"extension"`
	FileType      filetype.FileType `json:"fileType"`
	Mime          string            `json:"mime"`
	ImageEligible bool              `json:"imageEligible"`
}

type fileTypesResponse struct {
	Extensions []string            `json:"extensions"`
	ImageTypes []filetype.FileType `json:"imageTypes"`
}

func internalError(err error) (int, errorResponse) {
	return http.StatusInternalServerError, errorResponse{Message: err.Error()}
}

func badRequest(err error) (int, errorResponse) {
	return http.StatusBadRequest, errorResponse{Message: err.Error()}
}

func notFound(err error) (int, errorResponse) {
	return http.StatusNotFound, errorResponse{Message: err.Error()}
}

func unprocessableEntity(err error) (int, errorResponse) {
	return http.StatusUnprocessableEntity, errorResponse{Message: err.Error()}
}

func errorToResponse(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, filetype.ErrInvalidArgument),
		errors.Is(err, manipulator.ErrBadImage),
		errors.Is(err, manipulator.ErrUnsupportedType):
		return unprocessableEntity(err)
	case errors.Is(err, ErrResourceNotFound), errors.Is(err, registry.ErrEntityNotFound):
		return notFound(err)
	case errors.Is(err, ErrBadInput), errors.Is(err, registry.ErrInvalidID):
		return badRequest(err)
	default:
		return internalError(err)
	}
}
