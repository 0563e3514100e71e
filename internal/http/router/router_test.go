package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pressroom.app/pressroom/core/config"
	"pressroom.app/pressroom/internal/http/middleware"
	httprouter "pressroom.app/pressroom/internal/http/router"
	"pressroom.app/pressroom/internal/journalist"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/newsroom"
	"pressroom.app/pressroom/internal/persona"
	"pressroom.app/pressroom/internal/service"
	"pressroom.app/pressroom/internal/store"
)

type scriptedGenerator struct {
	questions []string
	calls     int
}

func (g *scriptedGenerator) Generate(_ context.Context, _ model.Prompt) (string, error) {
	q := g.questions[g.calls%len(g.questions)]
	g.calls++
	return "<QUESTION>" + q + "<eoa>", nil
}

var _ = Describe("SetupRoutes", func() {
	var (
		engine *gin.Engine
		gen    *scriptedGenerator
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()

		stores, err := store.NewStores(config.SessionConfig{Store: config.SessionStoreMemory, TTL: time.Hour}, nil)
		Expect(err).NotTo(HaveOccurred())
		registry, err := persona.New()
		Expect(err).NotTo(HaveOccurred())

		gen = &scriptedGenerator{questions: []string{"Why cut jobs?", "Who decided?"}}
		orch := journalist.NewOrchestrator(journalist.OrchestratorConfig{}, registry, gen)
		supervisor := newsroom.NewRouter(nil, nil, nil, nil)

		services := service.NewServices(stores, orch, supervisor, nil)
		httprouter.SetupRoutes(engine, services, registry, httprouter.RouterConfig{SessionTTL: time.Hour})
	})

	do := func(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	It("serves health and personas", func() {
		Expect(do(http.MethodGet, "/health", "").Code).To(Equal(http.StatusOK))

		w := do(http.MethodGet, "/personas", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp struct {
			Personas []map[string]any `json:"personas"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Personas).NotTo(BeEmpty())
	})

	It("runs a press conference over the session cookie", func() {
		w := do(http.MethodPost, "/start", `{"persona":"investigative_hawk","topic":"Layoffs","role":"CEO","speech":"We are restructuring."}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Why cut jobs?"))

		var cookie *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == middleware.SessionCookie {
				cookie = c
			}
		}
		Expect(cookie).NotTo(BeNil())

		w = do(http.MethodPost, "/reply", `{"answer":"Costs."}`, cookie)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Who decided?"))

		w = do(http.MethodPost, "/reply", `{"answer":""}`, cookie)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"Empty response"}`))

		w = do(http.MethodPost, "/stop", `{}`, cookie)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("analysis"))

		w = do(http.MethodGet, "/session", "", cookie)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"No active session"}`))

		w = do(http.MethodPost, "/reset", `{}`, cookie)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"message":"Session reset."}`))

		w = do(http.MethodPost, "/reply", `{"answer":"Hello?"}`, cookie)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"No active session"}`))
	})

	It("rejects a reply before any start", func() {
		w := do(http.MethodPost, "/reply", `{"answer":"Hello?"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"No active session"}`))
		Expect(gen.calls).To(Equal(0))
	})

	It("answers off-topic newsroom messages from the supervisor", func() {
		w := do(http.MethodPost, "/api/v1/threads", "")
		Expect(w.Code).To(Equal(http.StatusCreated))
		var created map[string]string
		Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())

		w = do(http.MethodPost, "/api/v1/threads/"+created["thread_id"]+"/messages", `{"content":"hello there"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		var out map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &out)).To(Succeed())
		Expect(out["intent"]).To(Equal("none"))
		Expect(out["agent"]).To(Equal("supervisor"))
		Expect(out["reply"]).To(Equal(newsroom.HelpReply))

		w = do(http.MethodGet, "/api/v1/threads/"+created["thread_id"], "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("hello there"))

		Expect(do(http.MethodDelete, "/api/v1/threads/"+created["thread_id"], "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/api/v1/threads/"+created["thread_id"], "").Code).To(Equal(http.StatusNotFound))
	})
})
