package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/newsroom"
	"pressroom.app/pressroom/internal/service"
	"pressroom.app/pressroom/internal/store"
)

var _ = Describe("NewsroomService", func() {
	var (
		ctx      context.Context
		threads  store.ThreadStore
		router   *mockRouter
		producer *recordingProducer
		svc      service.NewsroomService
	)

	BeforeEach(func() {
		ctx = context.Background()
		threads = store.NewMemoryThreadStore(0)
		router = &mockRouter{}
		producer = &recordingProducer{}
		svc = service.NewNewsroomService(threads, router, producer)
	})

	It("creates and fetches a thread", func() {
		thread, err := svc.CreateThread(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(thread.ID).NotTo(BeEmpty())

		got, err := svc.GetThread(ctx, thread.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(thread.ID))
	})

	It("routes a message, saves the thread and publishes it", func() {
		thread, _ := svc.CreateThread(ctx)

		out, err := svc.Post(ctx, thread.ID, newsroom.Request{Content: "hi"})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Reply).To(Equal(newsroom.HelpReply))
		stored, _ := svc.GetThread(ctx, thread.ID)
		Expect(stored.Messages).To(HaveLen(2))
		Expect(producer.types()).To(Equal([]model.EventType{model.EventThreadMessage}))
		Expect(producer.events[0].Thread.ID).To(Equal(thread.ID))
	})

	It("does not save when the router rejects the message", func() {
		thread, _ := svc.CreateThread(ctx)

		_, err := svc.Post(ctx, thread.ID, newsroom.Request{})

		Expect(err).To(HaveOccurred())
		stored, _ := svc.GetThread(ctx, thread.ID)
		Expect(stored.Messages).To(BeEmpty())
		Expect(producer.events).To(BeEmpty())
	})

	It("reports unknown threads", func() {
		_, err := svc.Post(ctx, "nope", newsroom.Request{Content: "hi"})
		Expect(err).To(MatchError(service.ErrThreadNotFound))

		Expect(svc.DeleteThread(ctx, "nope")).To(MatchError(service.ErrThreadNotFound))
	})

	It("rejects concurrent posts to one thread", func() {
		thread, _ := svc.CreateThread(ctx)
		unlock, err := threads.Lock(ctx, thread.ID)
		Expect(err).NotTo(HaveOccurred())
		defer unlock()

		_, err = svc.Post(ctx, thread.ID, newsroom.Request{Content: "hi"})
		Expect(err).To(MatchError(store.ErrSessionBusy))
	})

	It("deletes a thread", func() {
		thread, _ := svc.CreateThread(ctx)

		Expect(svc.DeleteThread(ctx, thread.ID)).To(Succeed())
		_, err := svc.GetThread(ctx, thread.ID)
		Expect(err).To(MatchError(service.ErrThreadNotFound))
	})
})
