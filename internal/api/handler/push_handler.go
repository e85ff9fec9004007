package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/api/middleware"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/push"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The REST layer already does token auth; cross-origin pages are how the
	// SPA dev server connects.
	CheckOrigin: func(*http.Request) bool { return true },
}

// PushHandler upgrades GET /ws connections and bridges them to the hub: one
// reader goroutine watching for close, one writer loop draining the
// session's snapshot queue.
type PushHandler struct {
	hub       *push.Hub
	jwtSecret string
	log       zerolog.Logger
}

func NewPushHandler(hub *push.Hub, jwtSecret string, log zerolog.Logger) *PushHandler {
	return &PushHandler{hub: hub, jwtSecret: jwtSecret, log: log}
}

// Serve handles GET /ws?token=<jwt>. The token travels as a query parameter
// because browser WebSocket dials cannot set headers.
func (h *PushHandler) Serve(c echo.Context) error {
	username, err := middleware.ParseToken(c.QueryParam("token"), h.jwtSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return nil
	}

	session := h.hub.Register()
	h.log.Info().Str("username", username).Str("remote", conn.RemoteAddr().String()).Msg("push channel opened")

	go h.readLoop(conn, session, username)
	go h.writeLoop(conn, session)
	return nil
}

// readLoop discards inbound frames (the protocol defines none) and detects
// transport close, which deregisters the observer.
func (h *PushHandler) readLoop(conn *websocket.Conn, session *push.Session, username string) {
	defer func() {
		h.hub.Deregister(session)
		_ = conn.Close()
		h.log.Info().Str("username", username).Msg("push channel closed")
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop pushes queued snapshots and keepalive pings. It exits when the
// session queue is closed (deregistration) or a write fails.
func (h *PushHandler) writeLoop(conn *websocket.Conn, session *push.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case snap, ok := <-session.Updates():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
