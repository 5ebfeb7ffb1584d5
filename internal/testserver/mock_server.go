// Package testserver provides a mock monitoring API for integration tests.
package testserver

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// EventsPath is the endpoint the mock server accepts events on.
const EventsPath = "/api/events"

// ReceivedEvent is an event as decoded by the mock server.
type ReceivedEvent struct {
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Status    string          `json:"status"`
	TaskID    int64           `json:"task_id"`

	Header http.Header `json:"-"`
}

// Reply is a canned response.
type Reply struct {
	Status int
	Body   string
}

// MockServer emulates the monitoring API used by tests.
type MockServer struct {
	token string

	srv *httptest.Server

	mu      sync.Mutex
	events  []ReceivedEvent
	replies []Reply
	hits    int

	eventCh chan ReceivedEvent
}

// StartMockServer boots a mock events API that requires the given token.
func StartMockServer(token string) (*MockServer, error) {
	ms := &MockServer{
		token:   token,
		eventCh: make(chan ReceivedEvent, 100),
	}

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen tcp4: %w", err)
	}

	server := httptest.NewUnstartedServer(http.HandlerFunc(ms.handle))
	server.Listener = listener
	server.Start()

	ms.srv = server
	return ms, nil
}

func (m *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()

	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.URL.Path != EventsPath {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}

	if r.Header.Get("Token") != m.token {
		writeJSONError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	_ = r.Body.Close()

	var event ReceivedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	event.Header = r.Header.Clone()

	m.mu.Lock()
	reply := Reply{Status: http.StatusOK, Body: `{"status":"accepted"}`}
	if len(m.replies) > 0 {
		reply = m.replies[0]
		m.replies = m.replies[1:]
	}
	m.events = append(m.events, event)
	m.mu.Unlock()

	select {
	case m.eventCh <- event:
	default:
	}

	w.WriteHeader(reply.Status)
	_, _ = io.WriteString(w, reply.Body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// URL returns the base monitor URL of the mock server.
func (m *MockServer) URL() string {
	return m.srv.URL
}

// SetReplies configures the sequence of responses the mock server should emit.
// Once exhausted it answers 200 {"status":"accepted"}.
func (m *MockServer) SetReplies(replies ...Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append([]Reply(nil), replies...)
}

// Events returns a snapshot of all accepted events.
func (m *MockServer) Events() []ReceivedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ReceivedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Hits returns the number of HTTP requests received, valid or not.
func (m *MockServer) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// WaitForEvent blocks until an event is received or the timeout elapses.
func (m *MockServer) WaitForEvent(timeout time.Duration) (ReceivedEvent, error) {
	select {
	case evt := <-m.eventCh:
		return evt, nil
	case <-time.After(timeout):
		return ReceivedEvent{}, fmt.Errorf("timeout waiting for event")
	}
}

// Stop shuts down the server and releases resources.
func (m *MockServer) Stop() {
	if m == nil || m.srv == nil {
		return
	}
	m.srv.Close()
}
