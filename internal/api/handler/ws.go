package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/banglascrabble/internal/api/apierr"
	"github.com/mcoot/banglascrabble/internal/api/middleware"
	"github.com/mcoot/banglascrabble/internal/api/request"
	"github.com/mcoot/banglascrabble/internal/broadcast"
	"github.com/mcoot/banglascrabble/internal/model"
)

const (
	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping period must be shorter than pongWait
	wsPingPeriod = (pongWait * 9) / 10

	// Client frames are tiny control messages
	maxMessageSize = 4 * 1024

	// Direct replies queued for the write pump
	wsSendBuffer = 16
)

// WSMessageError is the frame type for a rejected client message
const WSMessageError = "error"

// WSHandler serves the WebSocket transport
type WSHandler struct {
	streamer Streamer
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(streamer Streamer, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		streamer: streamer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "websocket")),
	}
}

// wsConn is one upgraded connection. It is attached to at most one session
// room at a time.
type wsConn struct {
	h        *WSHandler
	conn     *websocket.Conn
	playerID model.PlayerID
	send     chan []byte
	done     chan struct{}

	mu        sync.Mutex
	client    *broadcast.Client
	sessionID model.SessionID
}

// Serve handles GET /ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &wsConn{
		h:        h,
		conn:     conn,
		playerID: player.ID,
		send:     make(chan []byte, wsSendBuffer),
		done:     make(chan struct{}),
	}
	h.logger.Info("websocket connected", slog.String("player_id", string(player.ID)))

	go c.writePump()
	c.readPump(context.WithoutCancel(r.Context()))
}

func (c *wsConn) readPump(ctx context.Context) {
	defer func() {
		c.leave()
		close(c.done)
		_ = c.conn.Close()
		c.h.logger.Info("websocket disconnected", slog.String("player_id", string(c.playerID)))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.h.logger.Warn("websocket read failed",
					slog.String("player_id", string(c.playerID)),
					slog.String("error", err.Error()))
			}
			return
		}

		var msg request.WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(apierr.NewInvalidRequestError("malformed message"))
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *wsConn) handle(ctx context.Context, msg request.WSMessage) {
	switch msg.Type {
	case request.WSJoinGame:
		if msg.SessionID == "" {
			c.reply(apierr.NewInvalidRequestError("session_id is required"))
			return
		}
		if err := c.join(ctx, model.SessionID(msg.SessionID)); err != nil {
			c.reply(err)
		}
	case request.WSLeaveGame:
		c.leave()
	default:
		c.reply(apierr.NewInvalidRequestError("unknown message type"))
	}
}

// join moves the connection into a session's room. The first frame the
// client then receives is that session's snapshot.
func (c *wsConn) join(ctx context.Context, id model.SessionID) error {
	c.leave()

	client := c.h.streamer.NewClient(c.playerID)
	if err := c.h.streamer.Attach(ctx, id, client); err != nil {
		return err
	}

	c.mu.Lock()
	c.client = client
	c.sessionID = id
	c.mu.Unlock()

	go c.forward(client)
	return nil
}

func (c *wsConn) leave() {
	c.mu.Lock()
	client, id := c.client, c.sessionID
	c.client = nil
	c.mu.Unlock()

	if client != nil {
		c.h.streamer.Detach(id, client)
	}
}

// forward copies room frames onto the socket until the room closes the client
func (c *wsConn) forward(client *broadcast.Client) {
	for msg := range client.Send() {
		select {
		case c.send <- msg:
		case <-c.done:
			return
		}
	}

	c.mu.Lock()
	dropped := c.client == client
	if dropped {
		c.client = nil
	}
	c.mu.Unlock()

	if dropped {
		// The room gave up on this client; make it reconnect for a fresh snapshot
		c.h.logger.Warn("websocket client dropped by room",
			slog.String("player_id", string(c.playerID)),
			slog.String("client_id", client.ID()))
		_ = c.conn.Close()
	}
}

func (c *wsConn) reply(err error) {
	frame, mErr := json.Marshal(struct {
		Type    string          `json:"type"`
		Payload apierr.APIError `json:"payload"`
	}{Type: WSMessageError, Payload: apierr.Describe(err)})
	if mErr != nil {
		return
	}

	select {
	case c.send <- frame:
	case <-c.done:
	default:
		c.h.logger.Warn("websocket reply dropped - buffer full",
			slog.String("player_id", string(c.playerID)))
	}
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
