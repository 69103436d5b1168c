package live

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"petmemorial/internal/middleware"
	"petmemorial/internal/pkg/logger"
	"petmemorial/internal/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024

	DefaultHeartbeat = 25 * time.Second
)

// Handler serves the SSE and WebSocket endpoints. Both expect JWTAuth to have
// set the caller's user id and role.
type Handler struct {
	hub       *Hub
	upgrader  websocket.Upgrader
	heartbeat time.Duration
	log       *zap.Logger
}

// NewHandler accepts WebSocket upgrades from the listed origins. An empty list
// accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string, l *zap.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
		heartbeat: DefaultHeartbeat,
		log:       logger.OrNop(l),
	}
}

func (h *Handler) caller(c *gin.Context) (int64, string, bool) {
	userID := c.GetInt64(middleware.ContextUserID)
	if userID <= 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return 0, "", false
	}
	return userID, c.GetString(middleware.ContextRole), true
}

// Stream godoc
// @Summary Live notification stream (server-sent events)
// @Tags Notifications
// @Security BearerAuth
// @Produce text/event-stream
// @Router /notifications/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	userID, accountType, ok := h.caller(c)
	if !ok {
		return
	}

	sub := h.hub.Subscribe(userID, accountType)
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(EventConnected, gin.H{"user_id": userID})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	done := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case msg, ok := <-sub.C():
			if !ok {
				return false
			}
			c.SSEvent(EventNotification, json.RawMessage(msg))
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": ping\n\n")
			return err == nil
		}
	})
}

// WebSocket godoc
// @Summary Live notification stream (WebSocket)
// @Tags Notifications
// @Security BearerAuth
// @Router /notifications/ws [get]
func (h *Handler) WebSocket(c *gin.Context) {
	userID, accountType, ok := h.caller(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	sub := h.hub.Subscribe(userID, accountType)
	h.log.Debug("websocket subscriber connected", zap.Int64("user_id", userID))

	go h.writePump(conn, sub)
	h.readPump(conn, sub)
}

// readPump only watches for disconnects and pongs; clients send nothing useful.
func (h *Handler) readPump(conn *websocket.Conn, sub *Subscription) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket closed", zap.Int64("user_id", sub.UserID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
