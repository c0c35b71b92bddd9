package client

import (
	"fmt"
	"net/http"

	"marketplace/internal/domain"
)

// APIError is a non-2xx response from the catalog API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

// Is maps 400 to domain.ErrValidation and 404 to domain.ErrNotFound.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrValidation:
		return e.Status == http.StatusBadRequest
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}
