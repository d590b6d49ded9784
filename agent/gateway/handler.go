// Package gateway exposes conversations over HTTP.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Voice-Agents/agent/contract"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/persona"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/runtime"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
	logx "github.com/tanpawarit/Chative-Voice-Agents/pkg/logger"
	metricsx "github.com/tanpawarit/Chative-Voice-Agents/pkg/metrics"
)

// Conversations is the part of runtime.Conversation the gateway drives.
type Conversations interface {
	Start(ctx context.Context, sessionID, personaName string) (*statex.SessionState, error)
	HandleMessage(ctx context.Context, sessionID, text string) (string, error)
	End(ctx context.Context, sessionID string) error
	Personas() []persona.Persona
}

var _ Conversations = (*runtime.Conversation)(nil)

type Handler struct {
	conv    Conversations
	metrics *metricsx.Recorder
	log     zerolog.Logger
}

func NewHandler(conv Conversations, metrics *metricsx.Recorder) *Handler {
	return &Handler{
		conv:    conv,
		metrics: metrics,
		log:     logx.For("gateway"),
	}
}

// NewServer returns an echo instance with every route registered.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	h.RegisterRoutes(e)
	return e
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/sessions", h.StartSession)
	e.POST("/v1/sessions/:session_id/messages", h.SendMessage)
	e.DELETE("/v1/sessions/:session_id", h.EndSession)
	e.GET("/v1/personas", h.ListPersonas)
	e.GET("/health", h.Health)
	if h.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))
	}
}

type StartSessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Persona   string `json:"persona"`
}

type MessageRequest struct {
	Text string `json:"text"`
}

// StartSession opens a conversation.
// POST /v1/sessions
func (h *Handler) StartSession(c echo.Context) error {
	var req StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Persona) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "persona is required"})
	}

	st, err := h.conv.Start(c.Request().Context(), req.SessionID, req.Persona)
	if err != nil {
		return h.fail(c, err, "failed to start session")
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"session_id": st.SessionID,
		"persona":    st.Persona,
	})
}

// SendMessage runs one user turn.
// POST /v1/sessions/:session_id/messages
func (h *Handler) SendMessage(c echo.Context) error {
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	sessionID := c.Param("session_id")
	reply, err := h.conv.HandleMessage(c.Request().Context(), sessionID, req.Text)
	if err != nil {
		return h.fail(c, err, "failed to handle message")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"session_id": sessionID,
		"reply":      reply,
	})
}

// EndSession discards a conversation.
// DELETE /v1/sessions/:session_id
func (h *Handler) EndSession(c echo.Context) error {
	if err := h.conv.End(c.Request().Context(), c.Param("session_id")); err != nil {
		return h.fail(c, err, "failed to end session")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPersonas describes every persona the server can run.
// GET /v1/personas
func (h *Handler) ListPersonas(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"personas": h.conv.Personas(),
	})
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) fail(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, runtime.ErrInvalidSession), errors.Is(err, runtime.ErrInvalidMessage):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, contractx.ErrUnknownPersona):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	h.log.Error().Err(err).
		Str("path", c.Path()).
		Str("session_id", c.Param("session_id")).
		Msg(msg)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": msg})
}
