package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/astekno/paytrack-be/internal/ws"
	"github.com/astekno/paytrack-be/pkg/logger"
)

type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

func NewWSHandler(hub *ws.Hub, log *logger.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: log,
	}
}

// Subscribe upgrades the connection and streams store updates until the
// client goes away.
func (h *WSHandler) Subscribe(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn(c.Request().Context(), "Websocket upgrade failed", "error", err)
		return nil
	}

	client := ws.NewClient(conn)
	h.hub.Register(client)

	go client.WritePump(h.hub)
	go client.ReadPump()

	return nil
}
