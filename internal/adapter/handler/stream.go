package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bymediadev/SoapBoxx/internal/usecase/transcription"
)

const streamWriteTimeout = 10 * time.Second

// The server binds to loopback; the desktop shell is the only client.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Stream pushes session events (segments, levels, question candidates)
// over a websocket until the session stops or the client disconnects.
func (h *Sessions) Stream(c echo.Context) error {
	id, err := h.sessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	p, err := h.manager.Get(id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	events, cancel := p.Subscribe()
	defer cancel()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if p.State() == transcription.StateStopped {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		_ = conn.WriteJSON(transcription.Event{Type: transcription.EventStopped})
		return nil
	}

	// Read pump: its only job is noticing the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for ev := range events {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Debug("Stream write failed, dropping client",
				zap.String("session_id", id.String()),
				zap.Error(err),
			)
			return nil
		}
	}

	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return nil
}
