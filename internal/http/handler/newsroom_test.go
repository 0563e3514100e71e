package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pressroom.app/pressroom/internal/http/handler"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/newsroom"
	"pressroom.app/pressroom/internal/service"
)

var _ = Describe("NewsroomHandler", func() {
	var (
		router *gin.Engine
		svc    *mockNewsroomService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockNewsroomService{}
		h := handler.NewNewsroomHandler(svc)
		rg := router.Group("/threads")
		rg.POST("", h.CreateThread)
		rg.GET("/:id", h.GetThread)
		rg.DELETE("/:id", h.DeleteThread)
		rg.POST("/:id/messages", h.PostMessage)
	})

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("creates a thread", func() {
		svc.createFn = func(_ context.Context) (*model.Thread, error) {
			return &model.Thread{ID: "t-1"}, nil
		}

		w := send(http.MethodPost, "/threads", "")

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).To(MatchJSON(`{"thread_id":"t-1"}`))
	})

	It("returns 404 for an unknown thread", func() {
		svc.getFn = func(_ context.Context, _ string) (*model.Thread, error) {
			return nil, service.ErrThreadNotFound
		}

		w := send(http.MethodGet, "/threads/nope", "")

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("deletes a thread", func() {
		var deleted string
		svc.deleteFn = func(_ context.Context, id string) error {
			deleted = id
			return nil
		}

		w := send(http.MethodDelete, "/threads/t-1", "")

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(deleted).To(Equal("t-1"))
	})

	Describe("PostMessage", func() {
		It("passes overrides through and renders the verdict", func() {
			var got newsroom.Request
			confidence := 91.0
			svc.postFn = func(_ context.Context, threadID string, req newsroom.Request) (*newsroom.Outcome, error) {
				Expect(threadID).To(Equal("t-1"))
				got = req
				return &newsroom.Outcome{
					Intent: model.IntentVerify,
					Agent:  model.AgentDetector,
					Reply:  "Verdict: Fake News (confidence 91.00%)",
					Detection: &model.Detection{
						Verdict: model.FinalVerdict{Label: "Fake News", Confidence: &confidence},
					},
				}, nil
			}

			w := send(http.MethodPost, "/threads/t-1/messages",
				`{"content":"is it fake?","subject":"Politics","date":"2024-01-02"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(Equal(newsroom.Request{Content: "is it fake?", Subject: "Politics", Date: "2024-01-02"}))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["intent"]).To(Equal("verify"))
			Expect(resp["agent"]).To(Equal("detector"))
			Expect(resp["verdict"]).To(HaveKeyWithValue("label", "Fake News"))
			Expect(resp).NotTo(HaveKey("article"))
		})

		It("rejects a missing content field", func() {
			w := send(http.MethodPost, "/threads/t-1/messages", `{}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps an empty message to 400", func() {
			svc.postFn = func(_ context.Context, _ string, _ newsroom.Request) (*newsroom.Outcome, error) {
				return nil, newsroom.ErrEmptyMessage
			}

			w := send(http.MethodPost, "/threads/t-1/messages", `{"content":"   "}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 on unexpected failures", func() {
			svc.postFn = func(_ context.Context, _ string, _ newsroom.Request) (*newsroom.Outcome, error) {
				return nil, fmt.Errorf("saving thread: %w", errors.New("redis down"))
			}

			w := send(http.MethodPost, "/threads/t-1/messages", `{"content":"hi"}`)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
