package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/jonathan/careerflow/internal/fetch"
	"github.com/jonathan/careerflow/internal/generation"
	"github.com/jonathan/careerflow/internal/store"
)

// ErrNotFound indicates a record was not found in a collection.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Provider and upstream failures map to 502: the server itself is healthy,
// the dependency is not.
func HTTPStatus(err error) int {
	var notFound *ErrNotFound
	var validation *ErrValidation
	var genErr *generation.GenerationError
	var shapeErr *generation.ShapeError
	var connErr *store.ConnectionError
	var fetchErr *fetch.Error

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &genErr), errors.As(err, &shapeErr),
		errors.As(err, &connErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handlerError writes the error response for err. Upstream causes are
// logged, not leaked: the client sees a generic message for 5xx statuses.
func (s *Server) handlerError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[SERVER] request failed: %v", err)
		s.errorResponse(w, status, "upstream request failed, please try again")
		return
	}
	s.errorResponse(w, status, err.Error())
}
