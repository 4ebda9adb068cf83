package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one event subscriber. The stream is server-to-client only;
// anything the browser sends is discarded. A zero userID receives events
// for every user.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	userID int64
	send   chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Run registers the client and streams events until the peer goes away,
// ctx is cancelled, or the hub unregisters it.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	// CloseRead discards incoming frames and cancels ctx once the peer closes.
	ctx = c.conn.CloseRead(ctx)

	status, reason := c.stream(ctx)
	c.conn.Close(status, reason)
}

func (c *Client) stream(ctx context.Context) (ws.StatusCode, string) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return ws.StatusNormalClosure, "unregistered"
			}
			if err := c.write(ctx, msg); err != nil {
				return ws.StatusGoingAway, "write failed"
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return ws.StatusGoingAway, "ping failed"
			}
		case <-ctx.Done():
			return ws.StatusNormalClosure, ""
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
