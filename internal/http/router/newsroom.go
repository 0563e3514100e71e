package router

import (
	"github.com/gin-gonic/gin"

	"pressroom.app/pressroom/internal/http/handler"
)

func NewsroomRouter(rg *gin.RouterGroup, h *handler.NewsroomHandler) {
	rg.POST("", h.CreateThread)
	rg.GET("/:id", h.GetThread)
	rg.DELETE("/:id", h.DeleteThread)
	rg.POST("/:id/messages", h.PostMessage)
}
