package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantprep/examgate/internal/backend"
	"github.com/quantprep/examgate/internal/config"
	"github.com/quantprep/examgate/internal/handler"
	"github.com/quantprep/examgate/internal/router"
	"github.com/quantprep/examgate/internal/service"
	"github.com/quantprep/examgate/internal/session"
)

// newStreamingServer runs the full router in a live server with a fast
// websocket push cadence.
func newStreamingServer(t *testing.T) (*httptest.Server, *service.SessionService) {
	t.Helper()

	up := httptest.NewServer(upstreamStub())
	t.Cleanup(up.Close)

	client := backend.NewClient(up.URL, 5*time.Second, nil, zerolog.Nop())
	manager := session.NewManager()
	sessions := service.NewSessionService(client, manager, time.Hour, zerolog.Nop())

	t.Cleanup(func() {
		manager.Range(func(s *session.Session) { s.StopTimer() })
	})

	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(sessions),
		Test:    handler.NewTestHandler(client),
		WS:      handler.NewWSHandler(sessions, nil, 5*time.Millisecond, zerolog.Nop()),
	}

	srv := httptest.NewServer(router.SetupRouter(handlers, &config.Config{GinMode: gin.TestMode}))
	t.Cleanup(srv.Close)
	return srv, sessions
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestStreamPushesTicks(t *testing.T) {
	srv, sessions := newStreamingServer(t)

	sess, err := sessions.Start(context.Background(), "", "t-1")
	require.NoError(t, err)
	id := sess.ID().String()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/api/v1/sessions/"+id+"/ws"), nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	var frame struct {
		Event         string `json:"event"`
		TimeRemaining int    `json:"timeRemainingSeconds"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&frame))

	assert.Equal(t, "tick", frame.Event)
	assert.Equal(t, 60, frame.TimeRemaining)
}

func TestStreamClosesWhenSessionEnds(t *testing.T) {
	srv, sessions := newStreamingServer(t)

	sess, err := sessions.Start(context.Background(), "", "t-1")
	require.NoError(t, err)
	id := sess.ID().String()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/api/v1/sessions/"+id+"/ws"), nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, sessions.Submit(context.Background(), sess.ID()))

	// The stream must deliver a terminal frame and then close.
	sawFinished := false
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var frame struct {
			Event string `json:"event"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		if frame.Event == "finished" {
			sawFinished = true
		}
	}
	assert.True(t, sawFinished, "stream should push a finished frame before closing")
}

func TestStreamUnknownSession(t *testing.T) {
	srv, _ := newStreamingServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(
		wsURL(srv, "/api/v1/sessions/"+uuid.NewString()+"/ws"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
