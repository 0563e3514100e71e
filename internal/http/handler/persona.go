package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pressroom.app/pressroom/internal/http/dto"
	"pressroom.app/pressroom/internal/model"
)

type PersonaLister interface {
	List() []model.Persona
}

type PersonaHandler struct {
	personas PersonaLister
}

func NewPersonaHandler(personas PersonaLister) *PersonaHandler {
	return &PersonaHandler{personas: personas}
}

func (h *PersonaHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"personas": dto.ToPersonaResponses(h.personas.List())})
}
