package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pressroom.app/pressroom/internal/journalist"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/persona"
	"pressroom.app/pressroom/internal/service"
	"pressroom.app/pressroom/internal/store"
)

var _ = Describe("PressService", func() {
	var (
		ctx      context.Context
		sessions store.SessionStore
		gen      *mockGenerator
		producer *recordingProducer
		svc      service.PressService
	)

	BeforeEach(func() {
		ctx = context.Background()
		sessions = store.NewMemorySessionStore(0)
		gen = &mockGenerator{}
		producer = &recordingProducer{}
		registry, err := persona.New()
		Expect(err).NotTo(HaveOccurred())
		orch := journalist.NewOrchestrator(journalist.OrchestratorConfig{}, registry, gen)
		svc = service.NewPressService(sessions, orch, producer)
	})

	start := func() string {
		res, err := svc.Start(ctx, "", journalist.StartInput{PersonaID: "investigative_hawk", Topic: "Energy", Speech: "We cut emissions."})
		Expect(err).NotTo(HaveOccurred())
		return res.Session.ID
	}

	It("starts, persists and publishes a session", func() {
		res, err := svc.Start(ctx, "", journalist.StartInput{Topic: "Energy", Speech: "Hello"})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Turn.Question).To(Equal("And then?"))
		stored, err := sessions.Get(ctx, res.Session.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.GuestRole).To(Equal("CEO"))
		Expect(stored.LastQuestion).To(Equal("And then?"))
		Expect(producer.types()).To(Equal([]model.EventType{model.EventSessionStarted}))
	})

	It("replaces a previous session on start", func() {
		first := start()
		second, err := svc.Start(ctx, first, journalist.StartInput{Topic: "Water", Speech: "s"})

		Expect(err).NotTo(HaveOccurred())
		Expect(second.Session.ID).NotTo(Equal(first))
		_, err = sessions.Get(ctx, first)
		Expect(err).To(MatchError(store.ErrNotFound))
	})

	It("replies and persists both turns", func() {
		sid := start()

		turn, err := svc.Reply(ctx, sid, "We invested heavily.")

		Expect(err).NotTo(HaveOccurred())
		Expect(turn.Question).To(Equal("And then?"))
		stored, _ := sessions.Get(ctx, sid)
		Expect(stored.History).To(HaveLen(3))
		Expect(producer.types()).To(ContainElement(model.EventTurnCompleted))
	})

	It("reports an empty answer before a missing session", func() {
		_, err := svc.Reply(ctx, "", "   ")
		Expect(err).To(MatchError(journalist.ErrEmptyAnswer))

		_, err = svc.Reply(ctx, "unknown", "")
		Expect(err).To(MatchError(journalist.ErrEmptyAnswer))
	})

	It("reports a missing session", func() {
		_, err := svc.Reply(ctx, "unknown", "hello")
		Expect(err).To(MatchError(journalist.ErrNoActiveSession))

		_, err = svc.Stop(ctx, "")
		Expect(err).To(MatchError(journalist.ErrNoActiveSession))
	})

	It("rejects a concurrent request on the same session", func() {
		sid := start()
		unlock, err := sessions.Lock(ctx, sid)
		Expect(err).NotTo(HaveOccurred())
		defer unlock()

		_, err = svc.Reply(ctx, sid, "answer")

		Expect(err).To(MatchError(store.ErrSessionBusy))
		Expect(gen.callCount).To(Equal(1))
	})

	It("stops with an analysis and refuses further replies", func() {
		sid := start()

		res, err := svc.Stop(ctx, sid)

		Expect(err).NotTo(HaveOccurred())
		Expect(string(res.Analysis)).To(ContainSubstring(`"topic":"Energy"`))
		Expect(producer.types()).To(ContainElement(model.EventSessionStopped))
		Expect(producer.last().Session.Status).To(Equal(model.SessionStatusEnded))

		_, err = svc.Reply(ctx, sid, "more")
		Expect(err).To(MatchError(journalist.ErrNoActiveSession))
	})

	It("clears the session on stop", func() {
		sid := start()

		_, err := svc.Stop(ctx, sid)
		Expect(err).NotTo(HaveOccurred())

		_, err = sessions.Get(ctx, sid)
		Expect(err).To(MatchError(store.ErrNotFound))
		_, err = svc.Get(ctx, sid)
		Expect(err).To(MatchError(journalist.ErrNoActiveSession))
		_, err = svc.Stop(ctx, sid)
		Expect(err).To(MatchError(journalist.ErrNoActiveSession))
	})

	It("resets from any state", func() {
		sid := start()

		Expect(svc.Reset(ctx, sid)).To(Succeed())
		Expect(svc.Reset(ctx, sid)).To(Succeed())
		Expect(svc.Reset(ctx, "")).To(Succeed())

		_, err := svc.Get(ctx, sid)
		Expect(err).To(MatchError(journalist.ErrNoActiveSession))
	})

	It("keeps going when publishing fails", func() {
		producer.publishErr = errors.New("redis down")

		_, err := svc.Start(ctx, "", journalist.StartInput{Topic: "t", Speech: "s"})

		Expect(err).NotTo(HaveOccurred())
	})
})
