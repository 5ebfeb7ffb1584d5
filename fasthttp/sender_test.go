package fasthttp_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aikocorp/aiko-events-go/aiko"
	aikofasthttp "github.com/aikocorp/aiko-events-go/fasthttp"
	"github.com/aikocorp/aiko-events-go/internal/testserver"
	"github.com/aikocorp/aiko-events-go/transport"
)

const token = "tok_fasthttp"

func TestSenderPostsToMockServer(t *testing.T) {
	server, err := testserver.StartMockServer(token)
	require.NoError(t, err)
	defer server.Stop()

	resp, err := aikofasthttp.New(nil).Send(context.Background(), &transport.Request{
		Method: http.MethodPost,
		URL:    server.URL() + testserver.EventsPath,
		Header: map[string]string{"Token": token, "Content-Type": "application/json"},
		Body:   []byte(`{"timestamp":"2024-01-01T00:00:00+0000","data":{"k":"v"},"status":"warn","task_id":8}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"accepted"}`, string(resp.Body))

	event, err := server.WaitForEvent(3 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(8), event.TaskID)
	assert.Equal(t, "warn", event.Status)
	assert.Equal(t, "application/json", event.Header.Get("Content-Type"))
}

func TestClientOverFastHTTP(t *testing.T) {
	server, err := testserver.StartMockServer(token)
	require.NoError(t, err)
	defer server.Stop()

	client, err := aiko.New(aiko.Config{
		MonitorURL: server.URL(),
		Token:      token,
		Sender:     aikofasthttp.New(nil),
	})
	require.NoError(t, err)

	server.SetReplies(testserver.Reply{Status: http.StatusInternalServerError, Body: "internal failure"})
	_, err = client.Error(context.Background(), 500, aiko.Text("crash"))
	require.Error(t, err)

	var ce *aiko.ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "internal failure", ce.Message)
	assert.Equal(t, http.StatusInternalServerError, ce.Code)
	assert.True(t, aiko.IsTransient(err))

	events := server.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Status)
}

func TestSenderConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = aikofasthttp.New(nil).Send(context.Background(), &transport.Request{
		Method: http.MethodPost,
		URL:    "http://" + addr + testserver.EventsPath,
	})
	require.Error(t, err)

	var te *transport.Error
	require.ErrorAs(t, err, &te)
	assert.NotEmpty(t, te.Message)
}

func TestSenderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := aikofasthttp.New(nil).Send(ctx, &transport.Request{Method: http.MethodPost, URL: "http://127.0.0.1:1/"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
