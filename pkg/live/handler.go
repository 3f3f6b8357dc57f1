package live

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"agrisentry/pkg/simulation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades GET /ws. Each new client first receives the current
// snapshot, then one frame per tick.
type Handler struct {
	hub     *Hub
	current func() simulation.Snapshot
}

func NewHandler(hub *Hub, current func() simulation.Snapshot) *Handler {
	return &Handler{hub: hub, current: current}
}

func (h *Handler) ServeWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.hub.log.Debug("websocket upgrade", zap.Error(err))
		return nil
	}

	cl := newClient(h.hub, conn)
	if h.current != nil {
		if msg, err := encode(h.current()); err == nil {
			cl.send <- msg
		}
	}
	if !h.hub.add(cl) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return nil
	}

	go cl.writePump()
	go cl.readPump()
	return nil
}
