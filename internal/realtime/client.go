package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Chetan8299/live-polling-backend/internal/models"
	"github.com/Chetan8299/live-polling-backend/internal/session"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents a single WebSocket connection in the classroom.
type Client struct {
	ID     string
	hub    *Hub
	sess   *session.Session
	conn   *websocket.Conn
	send   chan WSMessage
	logger *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop.
func ServeWs(hub *Hub, sess *session.Session, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:     uuid.New().String(),
			hub:    hub,
			sess:   sess,
			conn:   conn,
			send:   make(chan WSMessage, 256),
			logger: logger,
		}
		hub.register(client)
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.sess.HandleDisconnect(c.ID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		c.dispatch(msg)
	}
}

// dispatch routes one inbound event to the session. Malformed payloads and
// unknown events are dropped; the session itself stays silent on rejected
// operations, matching the original wire behavior.
func (c *Client) dispatch(msg WSMessage) {
	ctx := context.Background()

	switch msg.Event {
	case session.EventRegisterStudent:
		// Payload is either a bare name string or {"name": "..."}.
		var name string
		if err := json.Unmarshal(msg.Data, &name); err != nil {
			var payload struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				return
			}
			name = payload.Name
		}
		c.sess.RegisterStudent(c.ID, name)

	case session.EventRegisterTeacher:
		_ = c.sess.RegisterTeacher(c.ID)

	case session.EventAskQuestion:
		var payload struct {
			Question  string              `json:"question"`
			Options   []models.PollOption `json:"options"`
			TimeLimit int                 `json:"timeLimit"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		_ = c.sess.CreatePoll(ctx, c.ID, payload.Question, payload.Options, payload.TimeLimit)

	case session.EventSubmitAnswer:
		var payload struct {
			PollID string `json:"pollId"`
			Option string `json:"option"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return
		}
		pollID, err := uuid.Parse(payload.PollID)
		if err != nil {
			return
		}
		c.sess.SubmitAnswer(ctx, c.ID, pollID, payload.Option)

	case session.EventGetPollHistory:
		c.sess.PollHistory(ctx, c.ID)

	default:
		// ignore
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
