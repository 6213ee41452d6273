package server

import (
	"errors"
	"io"
	"sync"
	"time"

	"exchange-chat/src/logger"
	"exchange-chat/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSlowConsumer     = errors.New("send buffer full")
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client wraps one websocket. Outbound frames go through a buffered channel
// drained by writePump. The send channel is never closed; done signals the end.
type Client struct {
	conn   *websocket.Conn
	logger *logger.Logger

	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64

	send      chan string
	done      chan struct{}
	closeOnce sync.Once
}

// -----------------------------------------------------------------------------

func NewClient(conn *websocket.Conn, cfg models.MWebSocketConfig, log *logger.Logger) *Client {
	pongWait := time.Duration(cfg.PongWaitSeconds) * time.Second
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		conn:           conn,
		logger:         log,
		writeWait:      time.Duration(cfg.WriteWaitSeconds) * time.Second,
		pongWait:       pongWait,
		pingPeriod:     (pongWait * 9) / 10,
		maxMessageSize: cfg.MaxMessageSize,
		send:           make(chan string, buffer),
		done:           make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Send queues text without waiting; a full buffer is ErrSlowConsumer.
func (c *Client) Send(text string) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- text:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// -----------------------------------------------------------------------------

// SendWait queues text, waiting up to timeout for writePump to make room.
func (c *Client) SendWait(text string, timeout time.Duration) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case c.send <- text:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	case <-timer.C:
		return ErrSlowConsumer
	}
}

// -----------------------------------------------------------------------------

func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// -----------------------------------------------------------------------------

// Close stops accepting frames. writePump flushes what is queued, sends a
// close frame and releases the socket.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// -----------------------------------------------------------------------------
// readMessage - blocks until the next text frame
// Act as a Watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) prepareRead() {
	if c.maxMessageSize > 0 {
		c.conn.SetReadLimit(c.maxMessageSize)
	}
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})
}

func (c *Client) readMessage() (string, error) {
	_, message, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(message), nil
}

// -----------------------------------------------------------------------------
// writePump - sends queued frames to the peer
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(message); err != nil {
				c.logger.Info("Write error: %v", err)
				c.Close()
				return
			}

		case <-c.done:
			c.flush()
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *Client) write(message string) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(message))
}

// flush writes whatever was queued before Close.
func (c *Client) flush() {
	for {
		select {
		case message := <-c.send:
			if err := c.write(message); err != nil {
				return
			}
		default:
			return
		}
	}
}

// -----------------------------------------------------------------------------

// isGracefulClose tells a normal peer hang-up apart from a transport fault.
func isGracefulClose(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
