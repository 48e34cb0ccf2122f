package dataapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RequestOptions carries everything a Transport needs to issue one call.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

// Response is the raw outcome of a transport call.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON parses the response body into v.
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Transport issues a single HTTP call. Implementations return an error only
// for transport-level failures (connection refused, DNS, context
// cancellation); an HTTP response of any status code is a successful call.
type Transport interface {
	Do(ctx context.Context, url string, opts RequestOptions) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, url string, opts RequestOptions) (*Response, error)

func (f TransportFunc) Do(ctx context.Context, url string, opts RequestOptions) (*Response, error) {
	return f(ctx, url, opts)
}

const defaultHTTPTimeout = 30 * time.Second

// HTTPTransport is the default Transport over net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport backed by client. A nil client gets a
// default with a conservative overall timeout; per-call deadlines come from
// the caller's context.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Do(ctx context.Context, url string, opts RequestOptions) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, opts.Method, url, bytes.NewReader(opts.Body))
	if err != nil {
		return nil, fmt.Errorf("build http request: %w", err)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
