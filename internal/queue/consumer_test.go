package queue_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/queue"
)

var _ = Describe("ParseMessage", func() {
	payload := func(ev model.ConversationEvent) string {
		data, err := json.Marshal(ev)
		Expect(err).NotTo(HaveOccurred())
		return string(data)
	}

	sessionEvent := model.ConversationEvent{
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Type:       model.EventTurnCompleted,
		Session:    &model.SessionState{ID: "s1", Topic: "AI", Status: model.SessionStatusActive},
		TraceID:    "abc123",
	}

	It("decodes a session event", func() {
		msg, err := queue.ParseMessage(redis.XMessage{
			ID: "1-0",
			Values: map[string]any{
				"event_type": "turn_completed",
				"payload":    payload(sessionEvent),
				"attempt":    "2",
			},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.ID).To(Equal("1-0"))
		Expect(msg.EventType).To(Equal(model.EventTurnCompleted))
		Expect(msg.Attempt).To(Equal(2))
		Expect(msg.Event.Session.ID).To(Equal("s1"))
		Expect(msg.TraceID).To(Equal("abc123"))
	})

	It("defaults the attempt to one", func() {
		msg, err := queue.ParseMessage(redis.XMessage{Values: map[string]any{
			"event_type": "turn_completed",
			"payload":    payload(sessionEvent),
		}})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Attempt).To(Equal(1))
	})

	It("prefers the stream trace id over the payload one", func() {
		msg, err := queue.ParseMessage(redis.XMessage{Values: map[string]any{
			"event_type": "turn_completed",
			"payload":    payload(sessionEvent),
			"trace_id":   "fromstream",
		}})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.TraceID).To(Equal("fromstream"))
	})

	It("decodes a thread event", func() {
		ev := model.ConversationEvent{Type: model.EventThreadMessage, Thread: &model.Thread{ID: "t1"}}
		msg, err := queue.ParseMessage(redis.XMessage{Values: map[string]any{
			"event_type": "thread_message",
			"payload":    payload(ev),
		}})

		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Event.Thread.ID).To(Equal("t1"))
	})

	DescribeTable("rejects",
		func(values map[string]any) {
			_, err := queue.ParseMessage(redis.XMessage{Values: values})
			Expect(err).To(HaveOccurred())
		},
		Entry("missing event_type", map[string]any{"payload": `{"type":"turn_completed"}`}),
		Entry("missing payload", map[string]any{"event_type": "turn_completed"}),
		Entry("bad json", map[string]any{"event_type": "turn_completed", "payload": "{"}),
		Entry("bad attempt", map[string]any{"event_type": "thread_message", "payload": `{"type":"thread_message","thread":{"id":"t"}}`, "attempt": "x"}),
		Entry("type mismatch", map[string]any{"event_type": "session_started", "payload": `{"type":"thread_message","thread":{"id":"t"}}`}),
		Entry("session event without session", map[string]any{"event_type": "session_stopped", "payload": `{"type":"session_stopped"}`}),
		Entry("thread event without thread", map[string]any{"event_type": "thread_message", "payload": `{"type":"thread_message"}`}),
		Entry("unknown type", map[string]any{"event_type": "other", "payload": `{"type":"other"}`}),
	)
})
