package objlvb

import (
	"errors"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/backend/lbackend"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	blob := make([]byte, Size)
	want := LVB{Size: 4096, Mtime: -12}
	if err := Encode(blob, want); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// little endian size at offset 0
	if blob[0] != 0x00 || blob[1] != 0x10 {
		t.Errorf("Unexpected size encoding: % x", blob[0:8])
	}

	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if err := Encode(make([]byte, Size-1), want); err == nil {
		t.Error("Expected error encoding into a short buffer")
	}
	if _, err := Decode(make([]byte, Size+1)); err == nil {
		t.Error("Expected error decoding a long buffer")
	}
}

func newNamespace(t *testing.T) (*ldlm.Namespace, *lbackend.Store) {
	t.Helper()
	dev := lbackend.NewLocalStore()
	ns := ldlm.NewNamespace("test", NewOps(), dev, nil)
	t.Cleanup(ns.Close)
	return ns, dev
}

func decode(t *testing.T, res *ldlm.Resource) LVB {
	t.Helper()
	v, err := Decode(res.LVB())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return v
}

func TestInitFromBackend(t *testing.T) {
	ns, dev := newNamespace(t)
	_ = dev.PutAttributes("obj-1", backend.Attributes{Size: 4096, Mtime: 1000, Mode: 0644})

	res, err := ns.Enqueue(ldlm.ResName{ObjectID: "obj-1"})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	defer ns.Release(res)

	if res.LVBLen() != Size {
		t.Errorf("Expected value block of %d bytes, got %d", Size, res.LVBLen())
	}
	if got := decode(t, res); got != (LVB{Size: 4096, Mtime: 1000}) {
		t.Errorf("Unexpected value block %v", got)
	}
}

func TestInitMissingObject(t *testing.T) {
	ns, _ := newNamespace(t)

	_, err := ns.Enqueue(ldlm.ResName{ObjectID: "missing"})
	if !ldlm.IsCode(err, ldlm.RetCObjectNotFound) {
		t.Fatalf("Expected ObjectNotFound, got %v", err)
	}
	if !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("Expected error to wrap backend.ErrNotFound")
	}
}

func TestInitBackendError(t *testing.T) {
	ns, dev := newNamespace(t)
	_ = dev.PutAttributes("obj-1", backend.Attributes{Size: 1})
	dev.SetLookupHook(func(string) error { return errors.New("io error") })

	_, err := ns.Enqueue(ldlm.ResName{ObjectID: "obj-1"})
	if !ldlm.IsCode(err, ldlm.RetCBackendError) {
		t.Fatalf("Expected BackendError, got %v", err)
	}
}

func TestInitWithoutDevice(t *testing.T) {
	ns := ldlm.NewNamespace("nodev", NewOps(), nil, nil)
	defer ns.Close()

	_, err := ns.Enqueue(ldlm.ResName{ObjectID: "obj-1"})
	if !ldlm.IsCode(err, ldlm.RetCBackendError) {
		t.Fatalf("Expected BackendError, got %v", err)
	}
}

func TestUpdateMerge(t *testing.T) {
	ns, dev := newNamespace(t)
	_ = dev.PutAttributes("obj-1", backend.Attributes{Size: 4096, Mtime: 1000})

	res, err := ns.Enqueue(ldlm.ResName{ObjectID: "obj-1"})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	defer ns.Release(res)

	// grows size and mtime
	if err := ns.UpdateLVB(res, &backend.Attributes{Size: 8192, Mtime: 2000}); err != nil {
		t.Fatalf("UpdateLVB failed: %v", err)
	}
	if got := decode(t, res); got != (LVB{Size: 8192, Mtime: 2000}) {
		t.Errorf("Unexpected value block after merge %v", got)
	}

	// a stale report does not move anything back
	if err := ns.UpdateLVB(res, &backend.Attributes{Size: 100, Mtime: 1500}); err != nil {
		t.Fatalf("UpdateLVB failed: %v", err)
	}
	if got := decode(t, res); got != (LVB{Size: 8192, Mtime: 2000}) {
		t.Errorf("Stale update changed value block: %v", got)
	}

	// a refetch overwrites with what the backend has
	if err := ns.UpdateLVB(res, nil); err != nil {
		t.Fatalf("UpdateLVB failed: %v", err)
	}
	if got := decode(t, res); got != (LVB{Size: 4096, Mtime: 1000}) {
		t.Errorf("Refetch did not overwrite value block: %v", got)
	}
}

func TestFreeClearsBlob(t *testing.T) {
	ops := NewOps()
	blob := make([]byte, Size)
	_ = Encode(blob, LVB{Size: 1, Mtime: 1})
	ops.Free(nil, blob)
	for i, b := range blob {
		if b != 0 {
			t.Fatalf("Expected zeroed blob, byte %d is %d", i, b)
		}
	}
}
