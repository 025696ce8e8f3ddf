package lbackend

import (
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/puzpuzpuz/xsync/v3"
	"sync/atomic"
)

// LookupHook is called before every lookup. A non-nil error is returned to the caller
// instead of the stored attributes.
type LookupHook func(objectID string) error

// Store is the local object table.
type Store struct {
	objects *xsync.MapOf[string, backend.Attributes]
	lookups atomic.Uint64
	writes  atomic.Uint64
	hook    atomic.Pointer[LookupHook]
}

// NewLocalStore creates an empty local object table.
func NewLocalStore() *Store {
	return &Store{
		objects: xsync.NewMapOf[string, backend.Attributes](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see backend/interface.go)
// --------------------------------------------------------------------------

func (s *Store) LookupAttributes(objectID string) (backend.Attributes, error) {
	s.lookups.Add(1)

	if hook := s.hook.Load(); hook != nil {
		if err := (*hook)(objectID); err != nil {
			return backend.Attributes{}, err
		}
	}

	attrs, ok := s.objects.Load(objectID)
	if !ok {
		return backend.Attributes{}, backend.ErrNotFound
	}
	return attrs, nil
}

func (s *Store) PutAttributes(objectID string, attrs backend.Attributes) error {
	if err := backend.ValidateObjectID(objectID); err != nil {
		return err
	}
	s.objects.Store(objectID, attrs)
	s.writes.Add(1)
	return nil
}

func (s *Store) DeleteObject(objectID string) error {
	if err := backend.ValidateObjectID(objectID); err != nil {
		return err
	}
	s.objects.Delete(objectID)
	s.writes.Add(1)
	return nil
}

// --------------------------------------------------------------------------
// Introspection
// --------------------------------------------------------------------------

// SetLookupHook installs fn as lookup hook. A nil fn removes the hook.
//
// Thread-safety: This method is thread-safe and can be called concurrently with lookups.
func (s *Store) SetLookupHook(fn LookupHook) {
	if fn == nil {
		s.hook.Store(nil)
		return
	}
	s.hook.Store(&fn)
}

// Lookups returns the number of LookupAttributes calls served so far.
func (s *Store) Lookups() uint64 {
	return s.lookups.Load()
}

// Writes returns the number of PutAttributes and DeleteObject calls served so far.
func (s *Store) Writes() uint64 {
	return s.writes.Load()
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	return s.objects.Size()
}
