// Package aiko reports task status events to an Aiko monitoring API.
package aiko

import (
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/aikocorp/aiko-events-go/nethttp"
	"github.com/aikocorp/aiko-events-go/transport"
)

// timestampLayout is ISO-8601 with a numeric zone offset and no colon.
const timestampLayout = "2006-01-02T15:04:05-0700"

// Client submits events to {MonitorURL}/api/events. It holds no mutable
// state and is safe for concurrent use when its Sender is.
type Client struct {
	baseURL string
	token   string
	sender  transport.Sender
	logger  *zap.Logger
	redact  bool
	now     func() time.Time
}

type eventPayload struct {
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
	Status    Status `json:"status"`
	TaskID    int64  `json:"task_id"`
}

// New constructs a Client. No network I/O is performed.
func New(cfg Config) (*Client, error) {
	if err := validateConfig(cfg.MonitorURL); err != nil {
		return nil, err
	}

	sender := cfg.Sender
	if sender == nil {
		sender = nethttp.New(nil)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		baseURL: normalizeBaseURL(cfg.MonitorURL),
		token:   cfg.Token,
		sender:  sender,
		logger:  logger,
		redact:  cfg.RedactPayload,
		now:     now,
	}, nil
}

// BaseURL returns the monitor URL without its trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EventsURL returns the endpoint events are posted to.
func (c *Client) EventsURL() string {
	return c.baseURL + eventsPath
}

// Ok reports a successful step of a task.
func (c *Client) Ok(ctx context.Context, taskID int64, msg Message) (any, error) {
	return c.Log(ctx, taskID, msg, StatusOK)
}

// Warn reports a task warning.
func (c *Client) Warn(ctx context.Context, taskID int64, msg Message) (any, error) {
	return c.Log(ctx, taskID, msg, StatusWarn)
}

// Error reports a task failure.
func (c *Client) Error(ctx context.Context, taskID int64, msg Message) (any, error) {
	return c.Log(ctx, taskID, msg, StatusError)
}

// LogValue is Log for loosely typed messages; see MessageOf.
func (c *Client) LogValue(ctx context.Context, taskID int64, v any, status Status) (any, error) {
	msg, err := messageOf(v, 3)
	if err != nil {
		return nil, err
	}
	return c.Log(ctx, taskID, msg, status)
}

// Log submits one event and returns the decoded response body. A Failure
// message is always reported with StatusError.
//
// On a 200 response the decoded body is returned; a body that is not valid
// JSON is returned as a string. Any other status fails with a *ClientError
// whose Code is the HTTP status. Transport failures also surface as a
// *ClientError wrapping the transport error.
func (c *Client) Log(ctx context.Context, taskID int64, msg Message, status Status) (any, error) {
	payload := eventPayload{
		Timestamp: c.now().Format(timestampLayout),
		TaskID:    taskID,
	}

	data, forced, err := c.messageData(msg)
	if err != nil {
		return nil, err
	}
	if forced {
		status = StatusError
	}
	if !status.Valid() {
		return nil, invalidArgument("status must be one of ok, warn, error, got %q", string(status))
	}
	payload.Data = data
	payload.Status = status

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, invalidArgument("encode event payload: %v", err)
	}

	url := c.EventsURL()
	c.logger.Debug("Sending task event",
		zap.Int64("task_id", taskID),
		zap.String("status", string(status)),
		zap.String("url", url))

	resp, err := c.sender.Send(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    url,
		Header: c.headers(),
		Body:   body,
	})
	if err != nil {
		c.logger.Error("Event request failed",
			zap.Int64("task_id", taskID),
			zap.String("url", url),
			zap.Error(err))
		return nil, newTransportClientError(err)
	}
	if resp == nil {
		err := &transport.Error{Message: "nil response"}
		c.logger.Error("Event request returned no response",
			zap.Int64("task_id", taskID),
			zap.String("url", url))
		return nil, newTransportClientError(err)
	}

	decoded, err := Decode(resp.Body, true)
	if err != nil {
		decoded = string(resp.Body)
	}

	if resp.StatusCode == http.StatusOK {
		return decoded, nil
	}

	c.logger.Warn("Monitor returned non-200 status",
		zap.Int64("task_id", taskID),
		zap.String("url", url),
		zap.Int("status_code", resp.StatusCode),
		zap.ByteString("response", resp.Body))

	return nil, &ClientError{
		Message: errorMessage(decoded, resp.Body),
		Code:    resp.StatusCode,
	}
}

// messageData returns the JSON value for msg and whether the status must be
// forced to error.
func (c *Client) messageData(msg Message) (any, bool, error) {
	switch m := msg.(type) {
	case nil:
		return nil, false, invalidArgument("message must be Text, Structured or Failure, got nil")
	case *Failure:
		if m == nil {
			return nil, false, invalidArgument("message must be Text, Structured or Failure, got nil *Failure")
		}
		return *m, true, nil
	case Failure:
		return m, true, nil
	case Structured:
		if c.redact {
			return RedactStructured(m).payload(), false, nil
		}
		return m.payload(), false, nil
	default:
		return m.payload(), false, nil
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Token":          c.token,
		"Content-Type":   "application/json",
		"Accept":         "application/json",
		"User-Agent":     userAgent(),
		"X-Aiko-Version": VersionHeaderValue(),
	}
}

func errorMessage(decoded any, raw []byte) string {
	switch v := decoded.(type) {
	case map[string]any:
		if msg, ok := v["error"]; ok {
			return stringify(msg)
		}
		return string(raw)
	case nil:
		return ""
	case []any:
		return string(raw)
	default:
		return stringify(v)
	}
}
