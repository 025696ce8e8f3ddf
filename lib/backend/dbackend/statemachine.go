package dbackend

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/backend/dbackend/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"sync/atomic"
	"time"
)

const (
	snapshotMagic   = "DLVBOBJ\x00"
	snapshotVersion = 1
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// ObjectStateMachine is a state machine implementation for Dragonboat RAFT
type ObjectStateMachine struct {
	replicaID uint64
	shardID   uint64
	objects   *xsync.MapOf[string, backend.Attributes]
	applied   atomic.Uint64 // index of the last applied entry
}

// CreateStateMachineFactory returns a function that can be used by dragonboat to create a new state machine for a node host
func CreateStateMachineFactory() func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return NewObjectStateMachine(shardID, replicaID)
	}
}

// NewObjectStateMachine creates an empty state machine.
func NewObjectStateMachine(shardID, replicaID uint64) *ObjectStateMachine {
	return &ObjectStateMachine{
		replicaID: replicaID,
		shardID:   shardID,
		objects:   xsync.NewMapOf[string, backend.Attributes](),
	}
}

// Lookup handles read-only queries.
func (fsm *ObjectStateMachine) Lookup(itf interface{}) (interface{}, error) {
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, fmt.Errorf("invalid query type: %T", itf)
	}

	switch q.Type {
	case internal.QueryTLookup:
		attrs, ok := fsm.objects.Load(q.ObjectID)
		return internal.QueryResult{Ok: ok, Attrs: attrs}, nil
	case internal.QueryTCount:
		return fsm.objects.Size(), nil
	default:
		return nil, fmt.Errorf("unknown query operation: %s", q.Type)
	}
}

// Update applies write commands from the raft log.
func (fsm *ObjectStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}

	start := time.Now()

	for idx, e := range entries {
		if len(e.Cmd) == 0 {
			entries[idx].Result = sm.Result{Value: uint64(internal.ResultCInvalidCommand), Data: []byte("empty command ignored")}
			continue
		}

		cmd := internal.Command{}
		if err := cmd.Deserialize(e.Cmd); err != nil {
			entries[idx].Result = sm.Result{
				Value: uint64(internal.ResultCInternalError),
				Data:  []byte(fmt.Sprintf("failed to deserialize command: %v", err)),
			}
			continue
		}

		switch cmd.Type {
		case internal.CommandTPut:
			fsm.objects.Store(cmd.ObjectID, cmd.Attrs)
			entries[idx].Result = sm.Result{
				Value: uint64(internal.ResultCSuccess),
				Data:  []byte(fmt.Sprintf("put: object=%s", cmd.ObjectID)),
			}
		case internal.CommandTDelete:
			fsm.objects.Delete(cmd.ObjectID)
			entries[idx].Result = sm.Result{
				Value: uint64(internal.ResultCSuccess),
				Data:  []byte(fmt.Sprintf("deleted object=%s", cmd.ObjectID)),
			}
		default:
			entries[idx].Result = sm.Result{
				Value: uint64(internal.ResultCInvalidCommand),
				Data:  []byte(fmt.Sprintf("unknown command operation: %s", cmd.Type)),
			}
		}
		fsm.applied.Store(e.Index)
	}

	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("state machine took long to update. Batch updated %d entries, took %.2fms", len(entries), float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// PrepareSnapshot is not used. Snapshots are fuzzy, the xsync map tolerates concurrent reads.
func (fsm *ObjectStateMachine) PrepareSnapshot() (interface{}, error) {
	return nil, nil
}

// SaveSnapshot writes all objects to the writer.
// Format: magic, version (uint32), count (uint64), then per object: id length (uint32), id, attributes.
func (fsm *ObjectStateMachine) SaveSnapshot(_ interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, done <-chan struct{}) error {
	w := bufio.NewWriter(writer)

	// collect first so the count written matches the entries written
	type object struct {
		id    string
		attrs backend.Attributes
	}
	objects := make([]object, 0, fsm.objects.Size())
	fsm.objects.Range(func(id string, attrs backend.Attributes) bool {
		objects = append(objects, object{id: id, attrs: attrs})
		return true
	})

	header := make([]byte, 0, len(snapshotMagic)+4+8)
	header = append(header, snapshotMagic...)
	header = binary.BigEndian.AppendUint32(header, snapshotVersion)
	header = binary.BigEndian.AppendUint64(header, uint64(len(objects)))
	if _, err := w.Write(header); err != nil {
		return err
	}

	buf := make([]byte, 0, 64)
	for _, o := range objects {
		select {
		case <-done:
			return sm.ErrSnapshotStopped
		default:
		}

		buf = buf[:0]
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(o.id)))
		buf = append(buf, o.id...)
		buf = o.attrs.AppendBinary(buf)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return w.Flush()
}

// RecoverFromSnapshot replaces the object table with the snapshot content.
func (fsm *ObjectStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, done <-chan struct{}) error {
	rd := bufio.NewReader(r)

	header := make([]byte, len(snapshotMagic)+4+8)
	if _, err := io.ReadFull(rd, header); err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if string(header[:len(snapshotMagic)]) != snapshotMagic {
		return fmt.Errorf("invalid snapshot magic")
	}
	if v := binary.BigEndian.Uint32(header[len(snapshotMagic):]); v != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", v)
	}
	count := binary.BigEndian.Uint64(header[len(snapshotMagic)+4:])

	objects := xsync.NewMapOf[string, backend.Attributes]()
	lenBuf := make([]byte, 4)
	attrBuf := make([]byte, backend.AttributesSize)
	for i := uint64(0); i < count; i++ {
		select {
		case <-done:
			return sm.ErrSnapshotStopped
		default:
		}

		if _, err := io.ReadFull(rd, lenBuf); err != nil {
			return fmt.Errorf("failed to read object %d: %w", i, err)
		}
		id := make([]byte, binary.BigEndian.Uint32(lenBuf))
		if _, err := io.ReadFull(rd, id); err != nil {
			return fmt.Errorf("failed to read object %d: %w", i, err)
		}
		if _, err := io.ReadFull(rd, attrBuf); err != nil {
			return fmt.Errorf("failed to read object %d: %w", i, err)
		}
		attrs, err := backend.DecodeAttributes(attrBuf)
		if err != nil {
			return err
		}
		objects.Store(string(id), attrs)
	}

	fsm.objects.Clear()
	objects.Range(func(id string, attrs backend.Attributes) bool {
		fsm.objects.Store(id, attrs)
		return true
	})
	return nil
}

// Close performs any necessary cleanup.
func (fsm *ObjectStateMachine) Close() error {
	fsm.objects.Clear()
	return nil
}
