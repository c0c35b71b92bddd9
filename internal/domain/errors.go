package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("record not found")
	ErrCorruptStore = errors.New("corrupt store")
	ErrTransport    = errors.New("transport failure")
)

// Collection names one of the two catalog collections.
type Collection string

const (
	Products   Collection = "products"
	Affiliates Collection = "affiliates"
)

// ValidationError reports a missing or malformed payload field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an unknown record id.
type NotFoundError struct {
	Collection Collection
	ID         string
}

func NewNotFoundError(c Collection, id string) *NotFoundError {
	return &NotFoundError{Collection: c, ID: id}
}

// Error returns the user-facing message for the collection.
func (e *NotFoundError) Error() string {
	switch e.Collection {
	case Products:
		return "Producto no encontrado."
	case Affiliates:
		return "Afiliado no encontrado."
	default:
		return "Registro no encontrado."
	}
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// CorruptStoreError reports a persisted document that cannot be decoded.
type CorruptStoreError struct {
	Location string
	Err      error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store at %s: %v", e.Location, e.Err)
}

func (e *CorruptStoreError) Unwrap() error        { return e.Err }
func (e *CorruptStoreError) Is(target error) bool { return target == ErrCorruptStore }

// TransportError reports a network or I/O failure talking to the API.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error        { return e.Err }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }
