package relay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"jobpulse/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

// Client is one live websocket connection on the server side.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	dispatcher *Dispatcher
	userID     string
	logger     *log.Logger

	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, dispatcher *Dispatcher, userID string, logger *log.Logger) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		dispatcher: dispatcher,
		userID:     userID,
		logger:     logger,
		send:       make(chan []byte, sendBuffer),
	}
}

// enqueue hands a frame to the write pump. Returns false when the connection
// is gone or its buffer is full; the hub then unregisters it.
func (c *Client) enqueue(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend is called by the hub exactly once, under the hub lock.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// SendEnvelope marshals and queues one event for this connection.
func (c *Client) SendEnvelope(env domain.Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("relay: marshal failed | event=%s err=%v", env.Event, err)
		}
		return
	}
	if !c.enqueue(b) && c.logger != nil {
		c.logger.Printf("relay: send dropped | event=%s user=%q", env.Event, c.userID)
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && c.logger != nil {
				c.logger.Printf("relay: read error | user=%q err=%v", c.userID, err)
			}
			return
		}
		if c.dispatcher != nil {
			c.dispatcher.Handle(c, message)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
