package aiko

import (
	"errors"
	"fmt"

	"github.com/aikocorp/aiko-events-go/transport"
)

// ErrInvalidArgument is returned, wrapped with detail, when a call is rejected
// before any request is made.
var ErrInvalidArgument = errors.New("invalid argument")

// ClientError reports a failed event submission. Code is the HTTP status for
// server-side failures and the transport code when the request never
// completed, in which case Err holds the transport error.
type ClientError struct {
	Message string
	Code    int
	Err     error
}

func (e *ClientError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("aiko: %s (code %d)", e.Message, e.Code)
	}
	return "aiko: " + e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func newTransportClientError(err error) *ClientError {
	te := transport.Wrap(err)
	return &ClientError{Message: te.Message, Code: te.Code, Err: te}
}

// IsTransient reports whether err is a ClientError that may succeed if the
// caller tries again later. The client itself never retries.
func IsTransient(err error) bool {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return false
	}
	if ce.Err != nil {
		return transport.IsTemporary(ce.Err)
	}
	return transport.IsTemporaryStatus(ce.Code)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}
