package dbackend

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/backend/dbackend/internal"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
	"github.com/lni/dragonboat/v4/logger"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"time"
)

var (
	retries = 5
	log     = logger.GetLogger("backend")
)

// raftNode is the part of *dragonboat.NodeHost the store uses.
type raftNode interface {
	SyncPropose(ctx context.Context, session *client.Session, cmd []byte) (sm.Result, error)
	SyncRead(ctx context.Context, shardID uint64, query interface{}) (interface{}, error)
}

// Store is the client side of the replicated object table.
type Store struct {
	nh      raftNode
	shardID uint64
	cs      *client.Session
	timeout time.Duration
}

// NewDistributedStore creates a new object store which uses raft consensus to replicate the
// object table across all members of the shard.
func NewDistributedStore(nh *dragonboat.NodeHost, shardID uint64, timeout time.Duration) *Store {
	return newStore(nh, nh.GetNoOPSession(shardID), shardID, timeout)
}

func newStore(nh raftNode, cs *client.Session, shardID uint64, timeout time.Duration) *Store {
	return &Store{
		nh:      nh,
		shardID: shardID,
		cs:      cs,
		timeout: timeout,
	}
}

// --------------------------------------------------------------------------
// Internal write and read operations (used by interface methods)
// --------------------------------------------------------------------------

// write proposes a Command via SyncPropose.
func (s *Store) write(cmd internal.Command) error {
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		res, err := s.nh.SyncPropose(ctx, s.cs, cmd.Serialize())
		cancel()

		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncPropose: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(s.timeout / 10)
			continue
		}

		if err != nil {
			return &backend.Error{Op: cmd.Type.String(), ObjectID: cmd.ObjectID, Err: err}
		}
		if internal.ResultCode(res.Value) != internal.ResultCSuccess {
			return &backend.Error{Op: cmd.Type.String(), ObjectID: cmd.ObjectID, Err: errors.New(string(res.Data))}
		}
		return nil
	}
	return &backend.Error{Op: cmd.Type.String(), ObjectID: cmd.ObjectID, Err: errors.New("timeout")}
}

// read queries the state machine with SyncRead and converts the response into R.
// If the read fails due to a system busy error, it is retried up to 5 times.
func read[R any](s *Store, q internal.Query) (R, error) {
	var zero R
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		res, err := s.nh.SyncRead(ctx, s.shardID, q)
		cancel()

		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncRead: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(s.timeout / 10)
			continue
		}

		if err != nil {
			return zero, &backend.Error{Op: q.Type.String(), ObjectID: q.ObjectID, Err: err}
		}

		casted, ok := res.(R)
		if !ok {
			return zero, &backend.Error{
				Op:       q.Type.String(),
				ObjectID: q.ObjectID,
				Err:      fmt.Errorf("unexpected type: received %T, expected %T", res, zero),
			}
		}
		return casted, nil
	}
	return zero, &backend.Error{Op: q.Type.String(), ObjectID: q.ObjectID, Err: errors.New("timeout")}
}

// --------------------------------------------------------------------------
// Interface Methods (docs see backend/interface.go)
// --------------------------------------------------------------------------

func (s *Store) LookupAttributes(objectID string) (backend.Attributes, error) {
	res, err := read[internal.QueryResult](s, internal.Query{
		Type:     internal.QueryTLookup,
		ObjectID: objectID,
	})
	if err != nil {
		return backend.Attributes{}, err
	}
	if !res.Ok {
		return backend.Attributes{}, backend.ErrNotFound
	}
	return res.Attrs, nil
}

func (s *Store) PutAttributes(objectID string, attrs backend.Attributes) error {
	if err := backend.ValidateObjectID(objectID); err != nil {
		return err
	}
	return s.write(internal.Command{
		Type:     internal.CommandTPut,
		ObjectID: objectID,
		Attrs:    attrs,
	})
}

func (s *Store) DeleteObject(objectID string) error {
	if err := backend.ValidateObjectID(objectID); err != nil {
		return err
	}
	return s.write(internal.Command{
		Type:     internal.CommandTDelete,
		ObjectID: objectID,
	})
}

// Len returns the number of objects in the replicated table.
func (s *Store) Len() (int, error) {
	return read[int](s, internal.Query{Type: internal.QueryTCount})
}
