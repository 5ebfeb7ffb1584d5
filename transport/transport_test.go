package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsErrnoAsCode(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	wrapped := Wrap(fmt.Errorf("post: %w", opErr))
	require.NotNil(t, wrapped)
	assert.Equal(t, int(syscall.ECONNREFUSED), wrapped.Code)
	assert.Contains(t, wrapped.Message, "connection refused")
	assert.ErrorIs(t, wrapped, syscall.ECONNREFUSED)
}

func TestWrapReturnsExistingError(t *testing.T) {
	orig := &Error{Message: "boom", Code: 7}
	assert.Same(t, orig, Wrap(fmt.Errorf("ctx: %w", orig)))
	assert.Nil(t, Wrap(nil))
}

func TestWrapWithoutErrno(t *testing.T) {
	wrapped := Wrap(errors.New("no route"))
	assert.Equal(t, 0, wrapped.Code)
	assert.Equal(t, "no route", wrapped.Error())
}

func TestIsTemporary(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"refused", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, true},
		{"dns timeout", &net.DNSError{Err: "timeout", IsTimeout: true}, true},
		{"dns not found", &net.DNSError{Err: "no such host", IsNotFound: true}, false},
		{"plain", errors.New("bad request"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTemporary(tc.err))
		})
	}
}

func TestIsTemporaryStatus(t *testing.T) {
	assert.True(t, IsTemporaryStatus(http.StatusTooManyRequests))
	assert.True(t, IsTemporaryStatus(http.StatusRequestTimeout))
	assert.True(t, IsTemporaryStatus(http.StatusBadGateway))
	assert.False(t, IsTemporaryStatus(http.StatusNotFound))
	assert.False(t, IsTemporaryStatus(http.StatusOK))
}

func TestSenderFunc(t *testing.T) {
	var s Sender = SenderFunc(func(_ context.Context, req *Request) (*Response, error) {
		return &Response{StatusCode: http.StatusAccepted, Body: []byte(req.URL)}, nil
	})
	resp, err := s.Send(context.Background(), &Request{URL: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "http://x", string(resp.Body))
}
