package chathub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 8192
	sendBufferSize = 256
)

// WebSocketSession implements Session over a gorilla websocket connection.
// Writes are funneled through a buffered channel drained by a single write
// pump, since gorilla connections allow only one concurrent writer.
type WebSocketSession struct {
	userID string
	conn   *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketSession wraps an upgraded connection for the given user and
// starts the write pump.
func NewWebSocketSession(conn *websocket.Conn, userID string) *WebSocketSession {
	s := &WebSocketSession{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go s.writePump()
	return s
}

func (s *WebSocketSession) UserID() string { return s.userID }

// ReadFrame returns the next text frame from the client. It unblocks with an
// error when the peer disconnects, the read deadline lapses without a pong,
// or Close is called.
func (s *WebSocketSession) ReadFrame() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

// Send enqueues a payload for the write pump. It never blocks: a full buffer
// means the client is not draining and the session is reported dead.
func (s *WebSocketSession) Send(payload []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.send <- payload:
		return nil
	default:
		return ErrSessionClosed
	}
}

// Close shuts the session down. The write pump sends a close frame and
// releases the connection, which also unblocks any pending ReadFrame.
func (s *WebSocketSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *WebSocketSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
