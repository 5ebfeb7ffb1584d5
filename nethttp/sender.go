// Package nethttp provides a transport.Sender backed by net/http.
package nethttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aikocorp/aiko-events-go/transport"
)

const defaultHTTPTimeout = 10 * time.Second

// Sender executes requests with an *http.Client.
type Sender struct {
	client *http.Client
}

// New returns a Sender using client, or a client with a 10s timeout when nil.
func New(client *http.Client) *Sender {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Sender{client: client}
}

// Send performs req and returns the full response body. Any failure before a
// response is available comes back as a *transport.Error.
func (s *Sender) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if req == nil {
		return nil, &transport.Error{Message: "nil request"}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, transport.Wrap(fmt.Errorf("build request: %w", err))
	}
	for key, value := range req.Header {
		httpReq.Header.Set(key, value)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, transport.Wrap(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transport.Wrap(fmt.Errorf("read response body: %w", err))
	}

	return &transport.Response{StatusCode: resp.StatusCode, Body: body}, nil
}

var _ transport.Sender = (*Sender)(nil)
