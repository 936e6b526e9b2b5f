package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/termcore/internal/api/middleware"
	"github.com/GriffinCanCode/termcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/termcore/internal/providers/terminal"
	"github.com/GriffinCanCode/termcore/internal/service"
	"github.com/GriffinCanCode/termcore/internal/shared/id"
	"github.com/GriffinCanCode/termcore/internal/types"
)

// MaxCommandSize caps the command line accepted by ExecuteCommand.
const MaxCommandSize = terminal.MaxCommandSize

// Handlers contains all HTTP handlers
type Handlers struct {
	manager  *terminal.Manager
	registry *service.Registry
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	manager *terminal.Manager,
	registry *service.Registry,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		manager:  manager,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateSessionRequest is the body of POST /sessions. Every field is optional.
type CreateSessionRequest struct {
	Shell      string            `json:"shell"`
	WorkingDir string            `json:"working_dir"`
	Env        map[string]string `json:"env"`
}

// ExecuteCommandRequest is the body of POST /sessions/:id/execute
type ExecuteCommandRequest struct {
	Command string `json:"command"`
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "termcore",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"sessions":         h.manager.Count(),
		"service_registry": h.registry.Stats(),
		"metrics":          h.metrics.Snapshot(),
	})
}

// ListSessions lists live sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions := h.manager.List()
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// CreateSession opens a new shell session
func (h *Handlers) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	info, err := h.manager.Create(c.Request.Context(), terminal.Overrides{
		Shell:      req.Shell,
		WorkingDir: req.WorkingDir,
		Env:        req.Env,
	})
	if err != nil {
		h.logger.Warn("Session create failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		c.JSON(createStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, info)
}

// GetSession returns one session's info
func (h *Handlers) GetSession(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	info, err := h.manager.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

// ExecuteCommand runs one command line and returns its output.
// The output of an unknown session is the invalid-session text, served with 404.
func (h *Handlers) ExecuteCommand(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req ExecuteCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Command) > MaxCommandSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "command exceeds maximum size",
		})
		return
	}

	if _, err := h.manager.Session(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  err.Error(),
			"output": terminal.InvalidSessionMessage,
		})
		return
	}

	output := h.manager.Execute(c.Request.Context(), sessionID, req.Command)
	c.JSON(http.StatusOK, gin.H{"output": output})
}

// DestroySession closes a session and forgets its handle
func (h *Handlers) DestroySession(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	if err := h.manager.Destroy(sessionID); err != nil {
		if errors.Is(err, terminal.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(),
		"stats":    h.registry.Stats(),
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := middleware.GetRequestID(c)
	clientIP := c.ClientIP()
	appCtx := &types.Context{ClientIP: &clientIP}
	if requestID != "" {
		appCtx.RequestID = &requestID
	}

	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params, appCtx)
	if err != nil {
		h.logger.Debug("Service execution failed",
			zap.String("tool_id", req.ToolID),
			zap.Error(err),
		)
		if result == nil {
			msg := err.Error()
			result = &types.Result{Success: false, Error: &msg}
		}
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MetricsSnapshot returns the JSON view of the core counters
func (h *Handlers) MetricsSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// sessionParam validates the :id path segment, answering 400 when it is malformed
func sessionParam(c *gin.Context) (string, bool) {
	sessionID := c.Param("id")
	if !id.IsSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return "", false
	}
	return sessionID, true
}

func createStatus(err error) int {
	switch {
	case errors.Is(err, terminal.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, terminal.ErrShellNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
