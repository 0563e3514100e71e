package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"pressroom.app/pressroom/internal/http/handler"
	"pressroom.app/pressroom/internal/http/middleware"
	"pressroom.app/pressroom/internal/service"
)

type RouterConfig struct {
	SessionTTL   time.Duration
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, personas handler.PersonaLister, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	personaHandler := handler.NewPersonaHandler(personas)
	router.GET("/personas", personaHandler.List)

	pressHandler := handler.NewPressHandler(services.Press(), cfg.SessionTTL, cfg.IsProduction)
	PressRouter(router.Group("/", middleware.Session()), pressHandler)

	v1 := router.Group("/api/v1")
	{
		newsroomHandler := handler.NewNewsroomHandler(services.Newsroom())
		NewsroomRouter(v1.Group("/threads"), newsroomHandler)
	}
}
