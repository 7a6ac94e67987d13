package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Conn wraps a gorilla connection with a write lock, because the tick
// goroutine and the command loop both send events on the same socket.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// NewConn wraps an upgraded connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// ReadCommand blocks until the next client command arrives. The server's
// tick events keep the connection alive, so no read deadline is applied.
func (c *Conn) ReadCommand(cmd *Command) error {
	return c.ws.ReadJSON(cmd)
}

// Write sends one event with a write deadline.
func (c *Conn) Write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

// WriteError sends an error event.
func (c *Conn) WriteError(code, msg string) error {
	return c.Write(ErrorEvent{Event: EventError, Code: code, Error: msg})
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
