package controller

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/jamroom/internal/repository/connection"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// wsClient queues outgoing messages and writes them from a single goroutine.
// Send never blocks; a full queue drops the message.
type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newWSClient(conn *websocket.Conn, buffer int, logger *slog.Logger) *wsClient {
	return &wsClient{
		conn:   conn,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *wsClient) Send(msg []byte) error {
	select {
	case <-c.done:
		return connection.ErrClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return connection.ErrBufferFull
	}
}

// Close stops the writer. Messages already queued are still written.
func (c *wsClient) Close() error {
	c.once.Do(func() {
		close(c.done)
	})

	return nil
}

func (c *wsClient) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}

func (c *wsClient) writeMessage(msg []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				c.logger.Debug("failed to write message", "error", err)
				c.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			for {
				select {
				case msg := <-c.send:
					if err := c.writeMessage(msg); err != nil {
						return
					}
				default:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}
