package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/http/dto"
	"pressroom.app/pressroom/internal/newsroom"
	"pressroom.app/pressroom/internal/service"
	"pressroom.app/pressroom/internal/store"
)

type NewsroomHandler struct {
	newsroomService service.NewsroomService
}

func NewNewsroomHandler(newsroomService service.NewsroomService) *NewsroomHandler {
	return &NewsroomHandler{newsroomService: newsroomService}
}

func (h *NewsroomHandler) CreateThread(c *gin.Context) {
	ctx := c.Request.Context()

	thread, err := h.newsroomService.CreateThread(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create thread", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create thread"})
		return
	}

	c.JSON(http.StatusCreated, dto.CreateThreadResponse{ThreadID: thread.ID})
}

func (h *NewsroomHandler) GetThread(c *gin.Context) {
	ctx := c.Request.Context()

	thread, err := h.newsroomService.GetThread(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to load thread")
		return
	}

	c.JSON(http.StatusOK, dto.ToThreadResponse(thread))
}

func (h *NewsroomHandler) DeleteThread(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.newsroomService.DeleteThread(ctx, c.Param("id")); err != nil {
		h.writeError(c, err, "failed to delete thread")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NewsroomHandler) PostMessage(c *gin.Context) {
	threadID := c.Param("id")
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		ThreadID:  logger.Ptr(threadID),
		Component: "pressroom.http",
	})
	c.Request = c.Request.WithContext(ctx)

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.newsroomService.Post(ctx, threadID, req.ToRequest())
	if err != nil {
		h.writeError(c, err, "failed to handle message")
		return
	}

	c.JSON(http.StatusOK, dto.ToPostMessageResponse(outcome))
}

func (h *NewsroomHandler) writeError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, service.ErrThreadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
	case errors.Is(err, newsroom.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content is required"})
	case errors.Is(err, store.ErrSessionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "thread is busy with another request"})
	default:
		slog.ErrorContext(ctx, fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
