package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/skillswaphq/skillswap-chat/internal/chat"
	"github.com/skillswaphq/skillswap-chat/internal/common"
	"github.com/skillswaphq/skillswap-chat/internal/httpapi/middleware"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 128
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsFrame struct {
	Type     string         `json:"type"`
	Messages []chat.Message `json:"messages,omitempty"`
	Message  *chat.Message  `json:"message,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type wsSendReq struct {
	Text     string  `json:"text"`
	FileURL  *string `json:"file_url"`
	FileName *string `json:"file_name"`
}

// ChatSocket binds one websocket client to one chat session. Outbound
// frames go through a buffered channel and a single write loop; a slow
// client that fills the buffer is disconnected rather than blocking the
// session engine.
func (h *Handler) ChatSocket(c *gin.Context) {
	uid, ok := middleware.CurrentUID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	otherUID := c.Param("other_uid")

	sess, err := h.ChatSvc.Open(c.Request.Context(), uid, otherUID)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidParticipants) {
			common.Fail(c, http.StatusBadRequest, 10010, "invalid participants")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50006, "failed to open conversation")
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sess.Close()
		return
	}

	conn := &wsConn{
		id:     uuid.NewString(),
		ws:     ws,
		send:   make(chan wsFrame, sendBuffer),
		done:   make(chan struct{}),
		logger: slog.Default().With("ws", otherUID),
	}
	go conn.writeLoop()

	// Session events -> socket frames.
	go func() {
		for ev := range sess.Events() {
			if ev.History != nil {
				conn.enqueue(wsFrame{Type: "history", Messages: ev.History})
				continue
			}
			if ev.Message != nil {
				conn.enqueue(wsFrame{Type: "message", Message: ev.Message})
			}
		}
	}()

	// Read loop: inbound frames are sends.
	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			break
		}
		var req wsSendReq
		if err := json.Unmarshal(payload, &req); err != nil {
			conn.enqueue(wsFrame{Type: "error", Error: "invalid frame"})
			continue
		}
		if err := sess.Send(c.Request.Context(), req.Text, req.FileURL, req.FileName); err != nil {
			if errors.Is(err, chat.ErrEmptyMessage) {
				conn.enqueue(wsFrame{Type: "error", Error: "empty message"})
				continue
			}
			break
		}
	}

	sess.Close()
	conn.close(websocket.CloseNormalClosure, "session closed")
}

// wsConn coordinates outbound writes on one socket.
type wsConn struct {
	id     string
	ws     *websocket.Conn
	send   chan wsFrame
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func (c *wsConn) enqueue(f wsFrame) {
	select {
	case <-c.done:
	case c.send <- f:
	default:
		c.logger.Warn("send buffer full, dropping client")
		c.close(websocket.CloseGoingAway, "send buffer full")
	}
}

func (c *wsConn) close(code int, reason string) {
	c.once.Do(func() {
		close(c.done)
		deadline := time.Now().Add(writeWait)
		_ = c.ws.SetWriteDeadline(deadline)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.ws.Close()
	})
}

func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case f := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
