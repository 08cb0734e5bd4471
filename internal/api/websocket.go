package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"monu/internal/domain"
	"monu/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsRequest is one inbound frame.
type wsRequest struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

// wsResponse is sent once per inbound frame.
type wsResponse struct {
	Type   string              `json:"type"` // "result" or "error"
	ID     string              `json:"id,omitempty"`
	Result *domain.CheckResult `json:"result,omitempty"`
	Error  *errorDetail        `json:"error,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{} // closed when writePump exits
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.FromContext(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}
	logging.FromContext(r.Context()).Info("websocket connected", "remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &wsClient{
		conn: conn,
		send: make(chan []byte, 16),
		done: make(chan struct{}),
	}
	go c.writePump()
	s.readPump(ctx, c)
}

// readPump checks frames in arrival order and queues the answers.
func (s *Server) readPump(ctx context.Context, c *wsClient) {
	log := logging.FromContext(ctx)
	defer func() {
		close(c.send)
		log.Info("websocket disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket unexpected close", "error", err)
			}
			return
		}

		resp := s.answer(ctx, message)
		data, err := json.Marshal(resp)
		if err != nil {
			log.Error("failed to marshal websocket response", "error", err)
			return
		}

		select {
		case c.send <- data:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
		// A slow check may have outlived the read deadline.
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (s *Server) answer(ctx context.Context, message []byte) wsResponse {
	var req wsRequest
	if err := json.Unmarshal(message, &req); err != nil {
		detail := errorDetailFor(fmt.Errorf("%w: frame must be a JSON object: %v", domain.ErrInvalidInput, err))
		return wsResponse{Type: "error", Error: &detail}
	}

	res, err := s.checker.Check(ctx, req.Text)
	if err != nil {
		detail := errorDetailFor(err)
		return wsResponse{Type: "error", ID: req.ID, Error: &detail}
	}
	return wsResponse{Type: "result", ID: req.ID, Result: res}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
