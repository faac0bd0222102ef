package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
)

// Client is one live authenticated socket. A user may hold several at once
// (multi-tab). A closed client is terminal: it is deregistered and never
// reused.
type Client struct {
	UserID   uint64
	OpenedAt time.Time

	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newClient(userID uint64, conn *websocket.Conn) *Client {
	return &Client{
		UserID:   userID,
		OpenedAt: time.Now(),
		conn:     conn,
		send:     make(chan []byte, 32),
		closed:   make(chan struct{}),
	}
}

// push queues one outbound frame. It is safe to call after close: writes to
// a closed client are dropped, never blocked on.
func (c *Client) push(f outboundFrame) {
	data, err := json.Marshal(f)
	if err != nil {
		log.Printf("ws push marshal user=%d err=%v", c.UserID, err)
		return
	}
	select {
	case <-c.closed:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		// slow consumer; drop rather than stall the sender
		log.Printf("ws push dropped user=%d (send buffer full)", c.UserID)
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// readPump reads frames in receipt order and hands them to the gateway.
// It owns deregistration: whatever kills the read loop tears the
// connection down exactly once.
func (c *Client) readPump(g *Gateway) {
	defer func() {
		g.registry.Deregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("ws read user=%d err=%v", c.UserID, err)
			}
			return
		}
		g.dispatch(c, raw)
	}
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
