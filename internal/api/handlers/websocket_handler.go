package handlers

import (
	"net/http"

	ws "auction-house/internal/infrastructure/websocket"
	"auction-house/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	log      logger.Logger
}

func NewWebSocketHandler(hub *ws.Hub, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Watch upgrades the request and streams the auction's events until the
// client goes away.
func (h *WebSocketHandler) Watch(c echo.Context) error {
	auctionID := c.Param("id")

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "auction_id", auctionID, "error", err)
		return err
	}

	watcher := ws.NewGorillaConn(conn, auctionID)
	h.hub.Register(watcher)

	// Drain client frames; the feed is one way, we only care about close.
	go func() {
		defer func() {
			h.hub.Unregister(watcher)
			watcher.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}
