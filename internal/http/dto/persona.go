package dto

import "pressroom.app/pressroom/internal/model"

type PersonaResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

func ToPersonaResponses(personas []model.Persona) []PersonaResponse {
	out := make([]PersonaResponse, len(personas))
	for i, p := range personas {
		out[i] = PersonaResponse{ID: p.ID, DisplayName: p.DisplayName, Description: p.Description}
	}
	return out
}
