package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quantprep/examgate/internal/service"
	"github.com/quantprep/examgate/internal/session"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// tickFrame is one server push on the session stream.
type tickFrame struct {
	Event         string         `json:"event"`
	TimeRemaining int            `json:"timeRemainingSeconds"`
	CurrentIndex  int            `json:"currentQuestionIndex"`
	Counts        session.Counts `json:"counts"`
	Submitted     bool           `json:"submitted"`
}

const (
	eventTick     = "tick"
	eventFinished = "finished"

	writeWait = 5 * time.Second
)

// WSHandler streams countdown and status-count updates for an active
// session so the screen does not have to poll.
type WSHandler struct {
	sessions *service.SessionService
	upgrader websocket.Upgrader
	interval time.Duration
	log      zerolog.Logger
}

// NewWSHandler creates a new WSHandler. interval is the push cadence
// (one second in production).
func NewWSHandler(sessions *service.SessionService, allowedOrigins []string, interval time.Duration, log zerolog.Logger) *WSHandler {
	if interval <= 0 {
		interval = time.Second
	}
	return &WSHandler{
		sessions: sessions,
		upgrader: buildUpgrader(allowedOrigins),
		interval: interval,
		log:      log.With().Str("component", "ws_handler").Logger(),
	}
}

// Stream godoc
// GET /api/v1/sessions/:id/ws
// Pushes one frame per second until the session ends or the client
// disconnects. The final frame carries event=finished.
func (h *WSHandler) Stream(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", id.String()).Logger()
	wsLog.Info().Msg("Stream connected")

	// Reader goroutine: consume control frames and detect disconnects.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			wsLog.Debug().Msg("Client disconnected")
			return
		case <-ticker.C:
			frame, last := h.buildFrame(sess, id)
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
			if last {
				wsLog.Info().Msg("Session finished, closing stream")
				return
			}
		}
	}
}

// buildFrame snapshots the session for one push. A session that has
// been removed from the registry (submitted or abandoned) yields a
// terminal frame.
func (h *WSHandler) buildFrame(sess *session.Session, id uuid.UUID) (tickFrame, bool) {
	if _, err := h.sessions.Get(id); err != nil || sess.Submitted() {
		return tickFrame{
			Event:     eventFinished,
			Submitted: sess.Submitted(),
			Counts:    sess.Counts(),
		}, true
	}

	snap := sess.Snapshot()
	return tickFrame{
		Event:         eventTick,
		TimeRemaining: snap.TimeRemaining,
		CurrentIndex:  snap.CurrentIndex,
		Counts:        snap.Counts,
		Submitted:     snap.Submitted,
	}, false
}
