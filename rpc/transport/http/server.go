package http

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/ValentinKolb/dLVB/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

// maxRequestBytes bounds the size of a single request body
const maxRequestBytes = 1 << 20

var requestDuration = metrics.NewHistogram(`dlvb_http_request_duration_seconds`)

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{
		done: make(chan struct{}),
	}
}

type httpServerTransport struct {
	handler transport.ServerHandleFunc
	config  common.ServerConfig
	server  *http.Server
	addr    net.Addr

	done chan struct{}
	mu   sync.Mutex
	err  error
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	mux := http.NewServeMux()
	if t.config.LogLevel == "debug" {
		mux.HandleFunc("POST /{namespace}", loggerMiddleware(t.handleRequest))
	} else {
		mux.HandleFunc("POST /{namespace}", t.handleRequest)
	}
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	endpoint := strings.TrimPrefix(t.config.Endpoint, "http://")
	ln, err := net.Listen("tcp", endpoint)
	if err != nil {
		return err
	}
	t.addr = ln.Addr()
	t.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	Logger.Infof("Starting HTTP server on %s", t.addr)
	go func() {
		err := t.server.Serve(ln)
		if !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("HTTP server stopped: %v", err)
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
		}
		close(t.done)
	}()
	return nil
}

func (t *httpServerTransport) Done() <-chan struct{} {
	return t.done
}

func (t *httpServerTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *httpServerTransport) Shutdown(ctx context.Context) error {
	if t.server == nil {
		return nil
	}
	Logger.Infof("Stopping HTTP server on %s", t.addr)
	return t.server.Shutdown(ctx)
}

// Addr returns the bound address, e.g. when listening on port 0.
func (t *httpServerTransport) Addr() net.Addr {
	return t.addr
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleRequest handles incoming HTTP requests and writes the response to the writer
func (t *httpServerTransport) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer requestDuration.UpdateDuration(start)

	namespace := r.PathValue("namespace")
	if namespace == "" {
		countRequest(http.StatusBadRequest)
		http.Error(w, "Invalid namespace", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	defer r.Body.Close()
	if err != nil {
		countRequest(http.StatusBadRequest)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	resp := t.handler(namespace, body)

	countRequest(http.StatusOK)
	if _, err = w.Write(resp); err != nil {
		Logger.Warningf("Failed to write response: %v", err)
	}
}

func countRequest(status int) {
	metrics.GetOrCreateCounter(`dlvb_http_requests_total{status="` + strconv.Itoa(status) + `"}`).Inc()
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}
