package network

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// Connection wraps a websocket with a buffered outbound queue drained by its
// write pump.
type Connection struct {
	ws           *websocket.Conn
	out          chan []byte
	writeTimeout time.Duration
	logger       *log.Logger
}

func newConnection(ws *websocket.Conn, buffer int, writeTimeout time.Duration, logger *log.Logger) *Connection {
	return &Connection{
		ws:           ws,
		out:          make(chan []byte, buffer),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// readPump decodes envelopes and hands them to handle until the peer goes
// away. It closes the outbound queue on exit, which stops the write pump.
func (c *Connection) readPump(handle func(*Connection, Envelope)) {
	defer close(c.out)
	defer c.ws.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Printf("read from %s: %v", c.ws.RemoteAddr(), err)
			}
			return
		}
		env, err := Decode(message)
		if err != nil {
			c.logger.Printf("decode message from %s: %v", c.ws.RemoteAddr(), err)
			continue
		}
		handle(c, env)
	}
}

func (c *Connection) writePump() {
	defer c.ws.Close()

	for message := range c.out {
		c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			c.logger.Printf("write to %s: %v", c.ws.RemoteAddr(), err)
			return
		}
	}
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// send queues a message. A peer that cannot keep up is disconnected.
func (c *Connection) send(message []byte) {
	select {
	case c.out <- message:
	default:
		c.logger.Printf("send queue full for %s, closing", c.ws.RemoteAddr())
		c.ws.Close()
	}
}
