package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/queue"
	"pressroom.app/pressroom/internal/worker"
)

var _ = Describe("Worker", func() {
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		consumer *mockConsumer
		archive  *fakeArchive
		txRunner *fakeTxRunner
		w        *worker.Worker
	)

	sessionMsg := func(id string, attempt int, history ...model.ConversationTurn) queue.Message {
		return queue.Message{
			ID:        id,
			EventType: model.EventTurnCompleted,
			Attempt:   attempt,
			Event: model.ConversationEvent{
				Type:       model.EventTurnCompleted,
				OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
				Session: &model.SessionState{
					ID:        "s1",
					PersonaID: "tech_policy",
					Status:    model.SessionStatusActive,
					History:   history,
				},
			},
		}
	}

	run := func(batches ...[]queue.Message) {
		consumer.batches = batches
		err := w.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
	}

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		consumer = &mockConsumer{cancel: cancel}
		archive = newFakeArchive()
		txRunner = &fakeTxRunner{archive: archive}
		w = worker.New(consumer, txRunner, worker.Config{MaxAttempts: 3})
	})

	AfterEach(func() {
		cancel()
	})

	It("archives a session event and acks it", func() {
		run([]queue.Message{sessionMsg("1-0", 1, model.ConversationTurn{Speaker: model.RoleJournalist, Content: "Q1"})})

		Expect(consumer.acked).To(ConsistOf("1-0"))
		Expect(archive.transcripts).To(HaveKey("s1"))
		Expect(archive.transcripts["s1"].Turns).To(HaveLen(1))
		Expect(archive.transcripts["s1"].PersonaID).To(Equal("tech_policy"))
	})

	It("folds successive events into one transcript", func() {
		q1 := model.ConversationTurn{Speaker: model.RoleJournalist, Content: "Q1"}
		a1 := model.ConversationTurn{Speaker: model.RoleGuest, Content: "A1"}
		q2 := model.ConversationTurn{Speaker: model.RoleJournalist, Content: "Q2"}

		run(
			[]queue.Message{sessionMsg("1-0", 1, q1)},
			[]queue.Message{sessionMsg("2-0", 1, q1, a1, q2)},
		)

		Expect(consumer.acked).To(Equal([]string{"1-0", "2-0"}))
		Expect(archive.transcripts["s1"].Turns).To(HaveLen(3))
		Expect(archive.transcripts["s1"].EventCount).To(Equal(2))
	})

	It("archives thread snapshots", func() {
		run([]queue.Message{{
			ID:        "3-0",
			EventType: model.EventThreadMessage,
			Attempt:   1,
			Event:     model.ConversationEvent{Type: model.EventThreadMessage, Thread: &model.Thread{ID: "t1"}},
		}})

		Expect(archive.threads).To(HaveKey("t1"))
		Expect(consumer.acked).To(ConsistOf("3-0"))
	})

	It("requeues a failed event without acking it", func() {
		archive.upsertErr = errors.New("db down")

		run([]queue.Message{sessionMsg("1-0", 1)})

		Expect(consumer.acked).To(BeEmpty())
		Expect(consumer.requeued).To(ConsistOf("1-0"))
		Expect(consumer.errors[0]).To(ContainSubstring("db down"))
	})

	It("dead-letters an event at max attempts", func() {
		archive.upsertErr = errors.New("db down")

		run([]queue.Message{sessionMsg("1-0", 3)})

		Expect(consumer.dlq).To(ConsistOf("1-0"))
		Expect(consumer.requeued).To(BeEmpty())
	})

	It("recovers from a panic and requeues", func() {
		archive.panicOnGet = true

		run([]queue.Message{sessionMsg("1-0", 1)})

		Expect(consumer.requeued).To(ConsistOf("1-0"))
		Expect(consumer.errors[0]).To(ContainSubstring("panic: archive exploded"))
	})

	It("continues with the batch after a failure", func() {
		bad := sessionMsg("1-0", 1)
		bad.Event.Session = nil

		run([]queue.Message{bad, sessionMsg("2-0", 1)})

		Expect(consumer.requeued).To(ConsistOf("1-0"))
		Expect(consumer.acked).To(ConsistOf("2-0"))
	})

	It("stops when asked", func() {
		blocking := &blockingConsumer{}
		w = worker.New(blocking, txRunner, worker.Config{})
		done := make(chan error, 1)
		go func() { done <- w.Run(context.Background()) }()

		w.Stop()

		Eventually(done).Should(Receive(BeNil()))
	})
})

// blockingConsumer returns empty batches until the worker is stopped.
type blockingConsumer struct {
	mockConsumer
}

func (b *blockingConsumer) Read(_ context.Context) ([]queue.Message, error) {
	time.Sleep(5 * time.Millisecond)
	return nil, nil
}
