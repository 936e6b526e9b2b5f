package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/termcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/termcore/internal/providers/terminal"
)

// Message types exchanged over the stream socket.
const (
	TypeExecute  = "execute"
	TypePing     = "ping"
	TypePong     = "pong"
	TypeOutput   = "output"
	TypeComplete = "complete"
	TypeError    = "error"
	TypeSystem   = "system"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware guards origins
	},
}

// Message is a client request
type Message struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
}

// Handler streams command output for one session per connection
type Handler struct {
	manager *terminal.Manager
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(manager *terminal.Manager, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		manager: manager,
		metrics: metrics,
		logger:  logger,
	}
}

// HandleConnection upgrades the request and serves execute/ping messages
// for the session named by the :id path segment.
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := h.manager.Session(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	log := h.logger.With(
		zap.String("conn_id", connID),
		zap.String("session_id", sessionID),
	)

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()
	log.Debug("WebSocket connected")

	ctx := c.Request.Context()

	h.send(conn, map[string]interface{}{
		"type":       TypeSystem,
		"session_id": sessionID,
		"conn_id":    connID,
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read error", zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case TypeExecute:
			if err := h.handleExecute(ctx, conn, sessionID, msg); err != nil {
				log.Debug("WebSocket write failed", zap.Error(err))
				return
			}
		case TypePing:
			h.send(conn, map[string]interface{}{"type": TypePong})
		default:
			h.sendError(conn, "unknown message type")
		}

		if ctx.Err() != nil {
			break
		}
	}

	log.Debug("WebSocket disconnected")
}

// handleExecute sends one output message per chunk, then complete
func (h *Handler) handleExecute(ctx context.Context, conn *websocket.Conn, sessionID string, msg Message) error {
	if len(msg.Command) > terminal.MaxCommandSize {
		return h.sendError(conn, "command exceeds maximum size")
	}

	seq, err := h.manager.Stream(ctx, sessionID, msg.Command)
	if err != nil {
		return h.sendError(conn, terminal.InvalidSessionMessage)
	}

	for chunk := range seq {
		if err := h.send(conn, map[string]interface{}{
			"type":    TypeOutput,
			"content": chunk,
		}); err != nil {
			return err
		}
	}

	return h.send(conn, map[string]interface{}{
		"type":      TypeComplete,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) send(conn *websocket.Conn, data interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(data)
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, map[string]interface{}{
		"type":      TypeError,
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
