package router

import (
	"github.com/gin-gonic/gin"

	"pressroom.app/pressroom/internal/http/handler"
)

func PressRouter(rg *gin.RouterGroup, h *handler.PressHandler) {
	rg.POST("/start", h.Start)
	rg.POST("/reply", h.Reply)
	rg.POST("/stop", h.Stop)
	rg.POST("/reset", h.Reset)
	rg.GET("/session", h.Session)
}
