package relay

import (
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub        *Hub
	dispatcher *Dispatcher
	logger     *log.Logger
}

func NewHandler(hub *Hub, dispatcher *Dispatcher, logger *log.Logger) *Handler {
	return &Handler{hub: hub, dispatcher: dispatcher, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWS upgrades the connection and starts its pumps. Identity comes from
// the auth query parameters on every connect; nothing survives a disconnect.
func (h *Handler) HandleWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("relay: upgrade error | err=%v", err)
			}
			return
		}

		userID := identityFromRequest(r)
		client := NewClient(h.hub, conn, h.dispatcher, userID, h.logger)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
