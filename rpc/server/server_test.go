package server_test

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
	"github.com/ValentinKolb/dLVB/lib/objlvb"
	"github.com/ValentinKolb/dLVB/rpc/client"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/ValentinKolb/dLVB/rpc/serializer"
	"github.com/ValentinKolb/dLVB/rpc/server"
	"github.com/ValentinKolb/dLVB/rpc/transport/http"
	"net"
	"testing"
)

// freeEndpoint returns a local address nothing listens on
func freeEndpoint(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func startServer(t *testing.T, s serializer.IRPCSerializer, policy string) common.ClientConfig {
	t.Helper()
	endpoint := freeEndpoint(t)

	srv := server.NewRPCServer(common.ServerConfig{
		Namespaces: []common.ServerNamespace{
			{Name: "objects", Backend: common.BackendLocal},
			{Name: "locks", Backend: common.BackendNone},
		},
		MaxLVBSize:          ldlm.DefaultMaxLVBSize,
		UpdateFailurePolicy: policy,
		Workers:             4,
		Endpoint:            endpoint,
		LogLevel:            "info",
	}, http.NewHttpServerTransport(), s)

	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(srv.Stop)

	return common.ClientConfig{
		Endpoints:     []string{endpoint},
		TimeoutSecond: 2,
		RetryCount:    2,
	}
}

func clients(t *testing.T, cfg common.ClientConfig, s serializer.IRPCSerializer, namespace string) (client.ILockClient, client.IObjectClient) {
	t.Helper()
	locks, err := client.NewRPCLockClient(namespace, cfg, http.NewHttpClientTransport(), s)
	if err != nil {
		t.Fatalf("NewRPCLockClient failed: %v", err)
	}
	objects, err := client.NewRPCObjectClient(namespace, cfg, http.NewHttpClientTransport(), s)
	if err != nil {
		t.Fatalf("NewRPCObjectClient failed: %v", err)
	}
	t.Cleanup(func() {
		_ = locks.Close()
		_ = objects.Close()
	})
	return locks, objects
}

func decode(t *testing.T, lvb []byte) objlvb.LVB {
	t.Helper()
	v, err := objlvb.Decode(lvb)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return v
}

var serializers = map[string]func() serializer.IRPCSerializer{
	"JSON":   serializer.NewJSONSerializer,
	"Binary": serializer.NewBinarySerializer,
}

func TestObjectLifecycle(t *testing.T) {
	for name, factory := range serializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			cfg := startServer(t, s, "retain")
			locks, objects := clients(t, cfg, s, "objects")

			if err := objects.PutAttributes("obj-42", backend.Attributes{Size: 4096, Mtime: 1000}); err != nil {
				t.Fatalf("PutAttributes failed: %v", err)
			}
			attrs, err := objects.LookupAttributes("obj-42")
			if err != nil || attrs.Size != 4096 {
				t.Fatalf("LookupAttributes: %v %v", attrs, err)
			}

			handle, lvb, err := locks.Enqueue("obj-42", 0)
			if err != nil {
				t.Fatalf("Enqueue failed: %v", err)
			}
			if got := decode(t, lvb); got != (objlvb.LVB{Size: 4096, Mtime: 1000}) {
				t.Errorf("Unexpected value block %v", got)
			}

			lvb, err = locks.Glimpse("obj-42", 0)
			if err != nil {
				t.Fatalf("Glimpse failed: %v", err)
			}
			if got := decode(t, lvb); got.Size != 4096 {
				t.Errorf("Unexpected glimpse %v", got)
			}

			lvb, err = locks.Merge(handle, 8192, 2000)
			if err != nil {
				t.Fatalf("Merge failed: %v", err)
			}
			if got := decode(t, lvb); got != (objlvb.LVB{Size: 8192, Mtime: 2000}) {
				t.Errorf("Unexpected value block after merge %v", got)
			}

			// the object goes away, the cached value block survives the failed update
			if err := objects.DeleteObject("obj-42"); err != nil {
				t.Fatalf("DeleteObject failed: %v", err)
			}
			if _, err := objects.LookupAttributes("obj-42"); !errors.Is(err, backend.ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
			lvb, err = locks.Update(handle)
			if !ldlm.IsCode(err, ldlm.RetCObjectNotFound) {
				t.Fatalf("Expected ObjectNotFound, got %v", err)
			}
			if got := decode(t, lvb); got != (objlvb.LVB{Size: 8192, Mtime: 2000}) {
				t.Errorf("Expected retained value block, got %v", got)
			}

			if err := locks.Free(handle); err != nil {
				t.Fatalf("Free failed: %v", err)
			}
			if err := locks.Release(handle); err != nil {
				t.Fatalf("Release failed: %v", err)
			}
			if err := locks.Release(handle); !ldlm.IsCode(err, ldlm.RetCInvalidRequest) {
				t.Errorf("Expected InvalidRequest for released handle, got %v", err)
			}

			stats, err := locks.Stats()
			if err != nil {
				t.Fatalf("Stats failed: %v", err)
			}
			if stats.Namespace != "objects" || stats.InitOK != 1 || stats.UpdateFailed != 1 || stats.Resources != 0 {
				t.Errorf("Unexpected stats %+v", stats)
			}
		})
	}
}

func TestDiscardPolicy(t *testing.T) {
	s := serializer.NewBinarySerializer()
	cfg := startServer(t, s, "discard")
	locks, objects := clients(t, cfg, s, "objects")

	_ = objects.PutAttributes("obj-1", backend.Attributes{Size: 1, Mtime: 1})
	handle, _, err := locks.Enqueue("obj-1", 0)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	defer locks.Release(handle)

	_ = objects.DeleteObject("obj-1")
	lvb, err := locks.Update(handle)
	if !ldlm.IsCode(err, ldlm.RetCObjectNotFound) {
		t.Fatalf("Expected ObjectNotFound, got %v", err)
	}
	if lvb != nil {
		t.Errorf("Expected value block to be dropped, got % x", lvb)
	}
}

func TestEnqueueMissingObject(t *testing.T) {
	s := serializer.NewBinarySerializer()
	cfg := startServer(t, s, "")
	locks, _ := clients(t, cfg, s, "objects")

	if _, _, err := locks.Enqueue("missing", 0); !ldlm.IsCode(err, ldlm.RetCObjectNotFound) {
		t.Errorf("Expected ObjectNotFound, got %v", err)
	}
	if _, _, err := locks.Enqueue("", 0); !ldlm.IsCode(err, ldlm.RetCInvalidRequest) {
		t.Errorf("Expected InvalidRequest, got %v", err)
	}

	// internal resources never touch the backend
	handle, lvb, err := locks.Enqueue("missing", 3)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if lvb != nil {
		t.Errorf("Expected no value block, got % x", lvb)
	}
	_ = locks.Release(handle)
}

func TestLockOnlyNamespace(t *testing.T) {
	s := serializer.NewJSONSerializer()
	cfg := startServer(t, s, "")
	locks, objects := clients(t, cfg, s, "locks")

	handle, lvb, err := locks.Enqueue("obj-1", 0)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if lvb != nil {
		t.Errorf("Expected no value block, got % x", lvb)
	}
	if err := locks.Release(handle); err != nil {
		t.Errorf("Release failed: %v", err)
	}

	if err := objects.PutAttributes("obj-1", backend.Attributes{Size: 1}); err == nil {
		t.Error("Expected error for object put on a lock-only namespace")
	}
}

func TestUnknownNamespace(t *testing.T) {
	s := serializer.NewBinarySerializer()
	cfg := startServer(t, s, "")
	locks, _ := clients(t, cfg, s, "nope")

	if _, _, err := locks.Enqueue("obj-1", 0); !ldlm.IsCode(err, ldlm.RetCInvalidRequest) {
		t.Errorf("Expected InvalidRequest, got %v", err)
	}
}

func TestConcurrentEnqueue(t *testing.T) {
	s := serializer.NewBinarySerializer()
	cfg := startServer(t, s, "")
	locks, objects := clients(t, cfg, s, "objects")

	const n = 16
	for i := 0; i < 4; i++ {
		_ = objects.PutAttributes(fmt.Sprintf("obj-%d", i), backend.Attributes{Size: uint64(i + 1)})
	}

	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			id := fmt.Sprintf("obj-%d", i%4)
			handle, lvb, err := locks.Enqueue(id, 0)
			if err != nil {
				errs <- err
				return
			}
			if got, err := objlvb.Decode(lvb); err != nil || got.Size != uint64(i%4+1) {
				errs <- fmt.Errorf("%s: unexpected value block %v (%v)", id, got, err)
				return
			}
			errs <- locks.Release(handle)
		}(i)
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}

	stats, err := locks.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Resources != 0 {
		t.Errorf("Expected all resources released, got %d", stats.Resources)
	}
}

func TestStartFailsOnBadConfig(t *testing.T) {
	srv := server.NewRPCServer(common.ServerConfig{
		Namespaces:          []common.ServerNamespace{{Name: "a", Backend: common.BackendLocal}, {Name: "a", Backend: common.BackendLocal}},
		UpdateFailurePolicy: "retain",
		Workers:             1,
		Endpoint:            freeEndpoint(t),
	}, http.NewHttpServerTransport(), serializer.NewBinarySerializer())

	if err := srv.Start(); err == nil {
		srv.Stop()
		t.Fatal("Expected duplicate namespaces to fail")
	}
	// a failed start leaves nothing to stop
	srv.Stop()
}
