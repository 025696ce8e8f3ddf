package backend

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Accessor reads the authoritative attributes of a storage object.
// Implementations may block on I/O; any timeout policy is their own.
type Accessor interface {
	// LookupAttributes returns the attributes of the object with the given id.
	// ErrNotFound is returned (possibly wrapped) if the object does not exist.
	LookupAttributes(objectID string) (attrs Attributes, err error)
}

// IObjectStore is an Accessor that can also create, change and remove objects.
type IObjectStore interface {
	Accessor
	// PutAttributes creates the object or replaces its attributes.
	PutAttributes(objectID string, attrs Attributes) (err error)
	// DeleteObject removes the object. Deleting a missing object is not an error.
	DeleteObject(objectID string) (err error)
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrNotFound is returned when the object id does not resolve to an object.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidObjectID is returned for empty object ids.
	ErrInvalidObjectID = errors.New("invalid object id")
)

// Error is returned when a backend resolved the request but could not complete it,
// e.g. because the replicated store timed out.
type Error struct {
	Op       string
	ObjectID string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("backend %s %q: %v", e.Op, e.ObjectID, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ValidateObjectID checks that an object id can be stored.
func ValidateObjectID(objectID string) error {
	if objectID == "" {
		return ErrInvalidObjectID
	}
	return nil
}
