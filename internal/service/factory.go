package service

import (
	"pressroom.app/pressroom/internal/queue"
	"pressroom.app/pressroom/internal/store"
)

type Services struct {
	press    PressService
	newsroom NewsroomService
}

func NewServices(stores *store.Stores, orchestrator Orchestrator, router MessageRouter, producer queue.Producer) *Services {
	if producer == nil {
		producer = queue.NewNopProducer()
	}
	return &Services{
		press:    NewPressService(stores.Sessions(), orchestrator, producer),
		newsroom: NewNewsroomService(stores.Threads(), router, producer),
	}
}

func (s *Services) Press() PressService {
	return s.press
}

func (s *Services) Newsroom() NewsroomService {
	return s.newsroom
}
