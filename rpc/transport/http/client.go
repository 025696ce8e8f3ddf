package http

import (
	"bytes"
	"fmt"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/ValentinKolb/dLVB/rpc/transport"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    atomic.Uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (transport *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}

	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, server := range config.Endpoints {
		if !strings.Contains(server, "://") {
			server = "http://" + server
		}
		parsedURL, err := url.Parse(server)
		if err != nil {
			return err
		}
		parsedURLs[i] = parsedURL
	}

	timeout := time.Duration(config.TimeoutSecond) * time.Second
	transport.client = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: max(10, config.ConnectionsPerEndpoint),
			IdleConnTimeout:     timeout,
		},
	}
	transport.serverURLs = parsedURLs
	transport.counter.Store(0)
	transport.retryCount = max(1, config.RetryCount)

	return nil
}

func (transport *httpClientTransport) Send(namespace string, req []byte) ([]byte, error) {
	if transport.client == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	var lastErr error
	for i := 0; i < transport.retryCount; i++ {
		// Select the next server via round-robin, a retry goes to the next endpoint
		idx := transport.counter.Add(1) % uint32(len(transport.serverURLs))
		requestURL := transport.serverURLs[idx].JoinPath(url.PathEscape(namespace)).String()

		resp, err := transport.post(requestURL, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		Logger.Debugf("request to %s failed (attempt %d/%d): %v", requestURL, i+1, transport.retryCount, err)
	}
	return nil, lastErr
}

func (transport *httpClientTransport) Close() error {
	if transport.client != nil {
		transport.client.CloseIdleConnections()
	}
	transport.client = nil
	transport.serverURLs = nil
	return nil
}

// post sends one request. The request is rebuilt per attempt since its body is consumed.
func (transport *httpClientTransport) post(requestURL string, body []byte) ([]byte, error) {
	httpResponse, err := transport.client.Post(requestURL, "application/octet-stream", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", httpResponse.Status)
	}
	return io.ReadAll(httpResponse.Body)
}
