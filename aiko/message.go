package aiko

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/aikocorp/aiko-events-go/transport"
)

// Status is the severity of a reported event.
type Status string

const (
	StatusOK    Status = "ok"
	StatusWarn  Status = "warn"
	StatusError Status = "error"
)

// Valid reports whether s is one of the statuses the API accepts.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusWarn, StatusError:
		return true
	}
	return false
}

// Message is the data attached to an event: Text, Structured or Failure.
type Message interface {
	payload() any
}

// Text is a plain string message.
type Text string

func (t Text) payload() any { return string(t) }

// Structured is arbitrary key/value data, sent as a JSON object.
type Structured map[string]any

func (s Structured) payload() any {
	if s == nil {
		return map[string]any{}
	}
	return map[string]any(s)
}

// Failure describes an error. Reporting a Failure always uses StatusError.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Type    string `json:"type"`
}

func (f Failure) payload() any { return f }

// FailureFromError builds a Failure from err, recording the caller's
// position as file and line.
func FailureFromError(err error) Failure {
	return failureFromError(err, 2)
}

func failureFromError(err error, skip int) Failure {
	f := Failure{Code: errorCode(err), Type: fmt.Sprintf("%T", err)}
	if err != nil {
		f.Message = err.Error()
	}
	if _, file, line, ok := runtime.Caller(skip); ok {
		f.File = file
		f.Line = line
	}
	return f
}

// errorCode digs a numeric code out of the error chain when one exists.
func errorCode(err error) int {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Code
	}
	var te *transport.Error
	if errors.As(err, &te) {
		return te.Code
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return int(de.Code)
	}
	var coder interface{ ErrorCode() int }
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return 0
}

// MessageOf converts a loosely typed value into a Message. Strings become
// Text, string-keyed maps become Structured and errors become a Failure.
// Anything else is rejected with ErrInvalidArgument.
func MessageOf(v any) (Message, error) {
	return messageOf(v, 3)
}

func messageOf(v any, skip int) (Message, error) {
	switch val := v.(type) {
	case nil:
		return nil, invalidArgument("message must be a string, map or error, got nil")
	case *Failure:
		if val == nil {
			return nil, invalidArgument("message must be a string, map or error, got nil *Failure")
		}
		return *val, nil
	case Message:
		return val, nil
	case string:
		return Text(val), nil
	case map[string]any:
		return Structured(val), nil
	case map[string]string:
		out := make(Structured, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out, nil
	case error:
		return failureFromError(val, skip), nil
	default:
		return nil, invalidArgument("message must be a string, map or error, got %T", v)
	}
}
