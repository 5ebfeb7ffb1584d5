package aiko

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// DecodeErrorCode identifies why a response body could not be decoded.
type DecodeErrorCode int

const (
	CodeUnknown          DecodeErrorCode = -1
	CodeDepth            DecodeErrorCode = 1
	CodeStateMismatch    DecodeErrorCode = 2
	CodeControlCharacter DecodeErrorCode = 3
	CodeSyntax           DecodeErrorCode = 4
	CodeInvalidUTF8      DecodeErrorCode = 5
)

const maxDecodeDepth = 512

var decodeErrorMessages = map[DecodeErrorCode]string{
	CodeDepth:            "Maximum stack depth exceeded",
	CodeStateMismatch:    "Syntax error, malformed JSON",
	CodeControlCharacter: "Unexpected control character found",
	CodeSyntax:           "Syntax error, malformed JSON",
	CodeInvalidUTF8:      "Invalid UTF-8 sequence",
}

// DecodeError is returned by Decode.
type DecodeError struct {
	Code    DecodeErrorCode
	Message string
	Err     error
}

func newDecodeError(code DecodeErrorCode, err error) *DecodeError {
	msg, ok := decodeErrorMessages[code]
	if !ok {
		msg = "Unknown error"
	}
	return &DecodeError{Code: code, Message: msg, Err: err}
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a JSON response body. Objects come back as map[string]any,
// arrays as []any. Integers that fit in int64 are int64, larger integers are
// kept as exact json.Number values and everything else numeric is float64.
//
// Empty input and the literal null (any case) decode to nil. Without
// forceMapping, object keys starting with a NUL byte are rejected.
func Decode(raw []byte, forceMapping bool) (any, error) {
	if !utf8.Valid(raw) {
		return nil, newDecodeError(CodeInvalidUTF8, nil)
	}
	if len(raw) == 0 || strings.EqualFold(string(raw), "null") {
		return nil, nil
	}
	if nestingDepth(raw) > maxDecodeDepth {
		return nil, newDecodeError(CodeDepth, nil)
	}
	// goccy accepts truncated literals, leading zeros and raw control
	// characters in strings, so the grammar is checked strictly first.
	var strict stdjson.RawMessage
	if err := stdjson.Unmarshal(raw, &strict); err != nil {
		return nil, parseError(err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, parseError(err)
	}
	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("invalid data after top-level value")
		}
		return nil, parseError(err)
	}

	return normalizeValue(value, forceMapping)
}

// nestingDepth returns the deepest level of arrays and objects in raw,
// ignoring brackets inside strings. Scanning stops once the limit is passed.
func nestingDepth(raw []byte) int {
	depth, deepest := 0, 0
	inString, escaped := false, false
	for _, b := range raw {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '[', '{':
			depth++
			if depth > deepest {
				deepest = depth
				if deepest > maxDecodeDepth {
					return deepest
				}
			}
		case ']', '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return deepest
}

func parseError(err error) *DecodeError {
	if strings.Contains(err.Error(), "exceeded max depth") {
		return newDecodeError(CodeDepth, err)
	}
	var syntaxErr *json.SyntaxError
	var strictErr *stdjson.SyntaxError
	if errors.As(err, &syntaxErr) || errors.As(err, &strictErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newDecodeError(CodeSyntax, err)
	}
	return newDecodeError(CodeUnknown, err)
}

func normalizeValue(value any, forceMapping bool) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			if !forceMapping && strings.HasPrefix(key, "\x00") {
				return nil, newDecodeError(CodeControlCharacter, fmt.Errorf("object key %q", key))
			}
			normalized, err := normalizeValue(item, forceMapping)
			if err != nil {
				return nil, err
			}
			v[key] = normalized
		}
		return v, nil
	case []any:
		for i, item := range v {
			normalized, err := normalizeValue(item, forceMapping)
			if err != nil {
				return nil, err
			}
			v[i] = normalized
		}
		return v, nil
	case json.Number:
		return normalizeNumber(v), nil
	default:
		return v, nil
	}
}

func normalizeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		return n
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n
}
