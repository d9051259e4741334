package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client: a buffered outbound channel drained
// by a write pump, and a read pump that feeds raw frames to the session layer.
type Connection struct {
	conn    *websocket.Conn
	send    chan []byte
	nick    string
	game    string
	tableID string
	logger  *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a connection wrapper. Identity fields are fixed at
// upgrade time from the request query.
func NewConnection(conn *websocket.Conn, nick, game, tableID string, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:    conn,
		send:    make(chan []byte, 256),
		nick:    nick,
		game:    game,
		tableID: tableID,
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Nick returns the nickname this connection authenticated as.
func (c *Connection) Nick() string { return c.nick }

// Game returns the requested game identifier.
func (c *Connection) Game() string { return c.game }

// TableID returns the requested table identifier.
func (c *Connection) TableID() string { return c.tableID }

// Close tears the connection down. Safe to call more than once. The write
// pump drains any queued frames, sends a close message and releases the
// socket, so frames queued before Close still reach the peer.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
	})
	return nil
}

// Send queues a payload for the write pump. A full buffer means the client
// stopped draining; the connection is closed rather than blocking a broadcast.
func (c *Connection) Send(payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown.
			c.logger.Debug("Send on closed connection", "nick", c.nick)
			err = ErrConnectionClosed
		}
	}()

	select {
	case c.send <- payload:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Send buffer full, closing connection", "nick", c.nick)
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Start launches the write pump. Must be called exactly once, before any
// Send can be expected to reach the peer.
func (c *Connection) Start() {
	go c.writePump()
}

// Run blocks in the read loop until the peer goes away. Each inbound text
// frame is handed to onFrame; onClose fires exactly once afterwards.
func (c *Connection) Run(onFrame func([]byte), onClose func()) {
	c.readPump(onFrame)
	_ = c.Close()
	onClose()
}

func (c *Connection) readPump(onFrame func([]byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "nick", c.nick, "error", err)
			}
			return
		}
		onFrame(data)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Error("Failed to write message", "nick", c.nick, "error", err)
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
