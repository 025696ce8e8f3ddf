package http

import (
	"context"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func startServer(t *testing.T) *httpServerTransport {
	t.Helper()
	srv := NewHttpServerTransport().(*httpServerTransport)
	srv.RegisterHandler(func(namespace string, req []byte) []byte {
		return append([]byte(namespace+":"), req...)
	})
	if err := srv.Listen(common.ServerConfig{Endpoint: "127.0.0.1:0", LogLevel: "debug"}); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func TestRoundTrip(t *testing.T) {
	srv := startServer(t)

	client := NewHttpClientTransport()
	if err := client.Connect(common.ClientConfig{
		Endpoints:     []string{srv.Addr().String()},
		TimeoutSecond: 2,
		RetryCount:    2,
	}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	resp, err := client.Send("objects", []byte("ping"))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if string(resp) != "objects:ping" {
		t.Errorf("Unexpected response %q", resp)
	}

	// namespaces are escaped on the way and restored by the server
	resp, err = client.Send("a b", []byte("x"))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if string(resp) != "a b:x" {
		t.Errorf("Unexpected response %q", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := startServer(t)

	// one request so the counters exist
	post, err := http.Post("http://"+srv.Addr().String()+"/objects", "", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	_ = post.Body.Close()

	resp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "dlvb_http_requests_total") {
		t.Errorf("Expected request counter in metrics output")
	}
}

func TestShutdown(t *testing.T) {
	srv := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case <-srv.Done():
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for server to stop")
	}
	if srv.Err() != nil {
		t.Errorf("Expected no error after shutdown, got %v", srv.Err())
	}
}

func TestClientErrors(t *testing.T) {
	client := NewHttpClientTransport()
	if _, err := client.Send("objects", nil); err == nil {
		t.Error("Expected error sending on an unconnected transport")
	}
	if err := client.Connect(common.ClientConfig{}); err == nil {
		t.Error("Expected error connecting without endpoints")
	}

	// nothing listens on this port
	if err := client.Connect(common.ClientConfig{Endpoints: []string{"127.0.0.1:1"}, TimeoutSecond: 1, RetryCount: 2}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := client.Send("objects", nil); err == nil {
		t.Error("Expected error sending to a closed port")
	}
}
