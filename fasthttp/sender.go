// Package fasthttp provides a transport.Sender backed by github.com/valyala/fasthttp.
package fasthttp

import (
	"context"
	"time"

	"github.com/aikocorp/aiko-events-go/transport"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 10 * time.Second

// Sender executes requests with a *fasthttp.Client. fasthttp has no context
// support, so a context deadline is mapped onto DoDeadline.
type Sender struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// New returns a Sender using client, or a default client when nil.
func New(client *fasthttp.Client) *Sender {
	if client == nil {
		client = &fasthttp.Client{
			ReadTimeout:  defaultTimeout,
			WriteTimeout: defaultTimeout,
		}
	}
	return &Sender{client: client, timeout: defaultTimeout}
}

// Send performs req. The response body is copied out of fasthttp's pooled
// buffers before they are released.
func (s *Sender) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if req == nil {
		return nil, &transport.Error{Message: "nil request"}
	}
	if err := ctx.Err(); err != nil {
		return nil, transport.Wrap(err)
	}

	freq := fasthttp.AcquireRequest()
	fresp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(freq)
	defer fasthttp.ReleaseResponse(fresp)

	freq.SetRequestURI(req.URL)
	freq.Header.SetMethod(req.Method)
	for key, value := range req.Header {
		freq.Header.Set(key, value)
	}
	freq.SetBody(req.Body)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = s.client.DoDeadline(freq, fresp, deadline)
	} else {
		err = s.client.DoTimeout(freq, fresp, s.timeout)
	}
	if err != nil {
		return nil, transport.Wrap(err)
	}

	return &transport.Response{
		StatusCode: fresp.StatusCode(),
		Body:       append([]byte(nil), fresp.Body()...),
	}, nil
}

var _ transport.Sender = (*Sender)(nil)
