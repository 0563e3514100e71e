package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/http/dto"
	"pressroom.app/pressroom/internal/http/middleware"
	"pressroom.app/pressroom/internal/journalist"
	"pressroom.app/pressroom/internal/service"
	"pressroom.app/pressroom/internal/store"
)

type PressHandler struct {
	pressService service.PressService
	cookieTTL    time.Duration
	isProduction bool
}

func NewPressHandler(pressService service.PressService, cookieTTL time.Duration, isProduction bool) *PressHandler {
	return &PressHandler{
		pressService: pressService,
		cookieTTL:    cookieTTL,
		isProduction: isProduction,
	}
}

// Start opens a conference. Any session the caller already holds is discarded.
func (h *PressHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.pressService.Start(ctx, middleware.SessionID(c), req.ToInput())
	if err != nil {
		h.writeError(c, err, "failed to start session")
		return
	}

	sid := result.Session.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: logger.Ptr(sid)})
	slog.InfoContext(ctx, "press session started", "persona", result.Session.PersonaID)

	h.setSessionCookie(c, sid)
	c.Header(middleware.SessionHeader, sid)
	c.JSON(http.StatusOK, dto.ToStartResponse(sid, result.Turn))
}

func (h *PressHandler) Reply(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	turn, err := h.pressService.Reply(ctx, middleware.SessionID(c), req.Answer)
	if err != nil {
		h.writeError(c, err, "failed to process reply")
		return
	}

	c.JSON(http.StatusOK, dto.ToTurnResponse(turn))
}

func (h *PressHandler) Stop(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.pressService.Stop(ctx, middleware.SessionID(c))
	if err != nil {
		h.writeError(c, err, "failed to stop session")
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, dto.StopResponse{Analysis: result.Analysis})
}

func (h *PressHandler) Reset(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.pressService.Reset(ctx, middleware.SessionID(c)); err != nil {
		h.writeError(c, err, "failed to reset session")
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Session reset."})
}

func (h *PressHandler) Session(c *gin.Context) {
	ctx := c.Request.Context()

	state, err := h.pressService.Get(ctx, middleware.SessionID(c))
	if err != nil {
		h.writeError(c, err, "failed to load session")
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(state))
}

func (h *PressHandler) writeError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, journalist.ErrEmptyAnswer):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty response"})
	case errors.Is(err, journalist.ErrNoActiveSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active session"})
	case errors.Is(err, store.ErrSessionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "session is busy with another request"})
	default:
		slog.ErrorContext(ctx, fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *PressHandler) setSessionCookie(c *gin.Context, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, sid, int(h.cookieTTL.Seconds()), "/", "", h.isProduction, true)
}

func (h *PressHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.isProduction, true)
}
