package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pokeradvisor/internal/analyzer"
)

// Connection represents a WebSocket client. Requests on one connection are
// analyzed in the order they arrive.
type Connection struct {
	conn      *websocket.Conn
	server    *Server
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, s *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		server: s,
		send:   make(chan *Message, 16),
		logger: s.logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close sends a going-away close frame, then closes the socket.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		// WriteControl is safe alongside the write pump's writes.
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait))
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

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

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(data)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage validates a request and answers it with a result or an
// error envelope
func (c *Connection) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err == nil {
		c.logger.Debug("Received message", "type", msg.Type, "id", msg.ID)
	}

	if err := c.server.validator.Validate(SchemaMessage, data); err != nil {
		c.sendError(msg.ID, err)
		return
	}

	switch msg.Type {
	case MessageTypeAnalyze:
		if err := c.server.validator.Validate(SchemaAnalyze, msg.Data); err != nil {
			c.sendError(msg.ID, err)
			return
		}
		var req analyzer.Request
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.sendError(msg.ID, &APIError{Message: err.Error(), Code: CodeInvalidRequest})
			return
		}
		res, err := c.server.analyzer.Analyze(c.ctx, req)
		if err != nil {
			c.sendError(msg.ID, err)
			return
		}
		c.sendResult(msg.ID, res)
	}
}

func (c *Connection) sendResult(id string, res *analyzer.Result) {
	msg, err := NewMessage(MessageTypeResult, id, res)
	if err != nil {
		c.logger.Error("Failed to create result message", "error", err)
		return
	}
	_ = c.SendMessage(msg) // Ignore send errors, the client has gone
}

// sendError sends an error message to the client
func (c *Connection) sendError(id string, err error) {
	msg, merr := NewMessage(MessageTypeError, id, toAPIError(err))
	if merr != nil {
		c.logger.Error("Failed to create error message", "error", merr)
		return
	}
	_ = c.SendMessage(msg) // Ignore send errors during error handling
}
