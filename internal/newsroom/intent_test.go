package newsroom_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pressroom.app/pressroom/common/llm"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/newsroom"
)

var _ = Describe("ParseArticleRequest", func() {
	It("reads Subject and Date lines", func() {
		subject, date := newsroom.ParseArticleRequest("Generate a news article\nSubject: Politics\nDate: 2024-05-01")
		Expect(subject).To(Equal("Politics"))
		Expect(date).To(Equal("2024-05-01"))
	})

	It("falls back to an about phrase and an inline ISO date", func() {
		subject, date := newsroom.ParseArticleRequest("Write an article about the space race on 2023-11-02")
		Expect(subject).To(Equal("the space race"))
		Expect(date).To(Equal("2023-11-02"))
	})

	It("returns blanks when nothing is given", func() {
		subject, date := newsroom.ParseArticleRequest("Generate something")
		Expect(subject).To(BeEmpty())
		Expect(date).To(BeEmpty())
	})
})

var _ = Describe("KeywordClassifier", func() {
	DescribeTable("intent",
		func(message string, expected model.Intent) {
			d, err := newsroom.KeywordClassifier{}.Classify(context.Background(), nil, message)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Intent).To(Equal(expected))
		},
		Entry("generate", "Generate a news article about elections", model.IntentGenerate),
		Entry("write another", "Write another one please", model.IntentGenerate),
		Entry("subject line only", "Subject: Sports", model.IntentGenerate),
		Entry("summary only", "Can you summarize it?", model.IntentSummarize),
		Entry("sentiment only", "What is the sentiment of this piece?", model.IntentSentiment),
		Entry("tone counts as sentiment", "Check the tone", model.IntentSentiment),
		Entry("both asked", "Give me a summary and the sentiment", model.IntentAnalyze),
		Entry("analyze", "Analyze the article", model.IntentAnalyze),
		Entry("verify", "Is this fake?", model.IntentVerify),
		Entry("real or not", "Is it real news?", model.IntentVerify),
		Entry("chit-chat", "Hello there", model.IntentNone),
		Entry("new article request", "Give me a new article on rates", model.IntentGenerate),
		Entry("past tense is not a request", "Summarize the article you created", model.IntentSummarize),
		Entry("the new article is the current one", "What is the tone of the new article?", model.IntentSentiment),
		Entry("create a summary", "Create a summary of this article", model.IntentSummarize),
		Entry("verify what was written", "Check whether what you wrote is fake", model.IntentVerify),
		Entry("word boundaries", "Rewrite nothing, just recap", model.IntentSummarize),
	)

	It("carries the parsed subject and date", func() {
		d, err := newsroom.KeywordClassifier{}.Classify(context.Background(), nil, "Generate an article\nSubject: Tech\nDate: 2025-01-09")
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Subject).To(Equal("Tech"))
		Expect(d.Date).To(Equal("2025-01-09"))
	})
})

var _ = Describe("LLMClassifier", func() {
	var (
		ctx    context.Context
		client *mockAgentClient
	)

	toolResponse := func(args string) func(context.Context, llm.AgentRequest) (*llm.AgentResponse, error) {
		return func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
			return &llm.AgentResponse{
				FinishReason: "tool_calls",
				ToolCalls:    []llm.ToolCall{{ID: "c1", Name: "route_intent", Arguments: args}},
			}, nil
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockAgentClient{}
	})

	It("uses the route_intent tool call", func() {
		client.chatFn = toolResponse(`{"intent":"verify","reason":"asks if fake"}`)
		classifier := newsroom.NewLLMClassifier(client)

		d, err := classifier.Classify(ctx, &model.Thread{}, "Can I trust this?")

		Expect(err).NotTo(HaveOccurred())
		Expect(d.Intent).To(Equal(model.IntentVerify))
		Expect(d.Reason).To(Equal("asks if fake"))
	})

	It("offers exactly the route_intent tool", func() {
		var captured llm.AgentRequest
		client.chatFn = func(_ context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
			captured = req
			return toolResponse(`{"intent":"none","reason":"x"}`)(ctx, req)
		}

		_, err := newsroom.NewLLMClassifier(client).Classify(ctx, nil, "hi")

		Expect(err).NotTo(HaveOccurred())
		Expect(captured.Tools).To(HaveLen(1))
		Expect(captured.Tools[0].Name).To(Equal("route_intent"))
		Expect(captured.Messages[1].Content).To(ContainSubstring("No article has been generated"))
	})

	It("prefers explicit Subject and Date lines over the model's values", func() {
		client.chatFn = toolResponse(`{"intent":"generate","subject":"politics news","date":"2020-01-01","reason":"r"}`)

		d, err := newsroom.NewLLMClassifier(client).Classify(ctx, nil, "New article please\nSubject: Politics\nDate: 2024-05-01")

		Expect(err).NotTo(HaveOccurred())
		Expect(d.Subject).To(Equal("Politics"))
		Expect(d.Date).To(Equal("2024-05-01"))
	})

	It("falls back to keywords when the call fails", func() {
		client.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
			return nil, errors.New("boom")
		}

		d, err := newsroom.NewLLMClassifier(client).Classify(ctx, nil, "summarize please")

		Expect(err).NotTo(HaveOccurred())
		Expect(d.Intent).To(Equal(model.IntentSummarize))
	})

	It("falls back to keywords when the tool is not called", func() {
		client.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
			return &llm.AgentResponse{Content: "I think verify", FinishReason: "stop"}, nil
		}

		d, err := newsroom.NewLLMClassifier(client).Classify(ctx, nil, "is it fake?")

		Expect(err).NotTo(HaveOccurred())
		Expect(d.Intent).To(Equal(model.IntentVerify))
	})

	It("falls back to keywords on an unknown intent", func() {
		client.chatFn = toolResponse(`{"intent":"translate","reason":"r"}`)

		d, err := newsroom.NewLLMClassifier(client).Classify(ctx, nil, "what's the tone?")

		Expect(err).NotTo(HaveOccurred())
		Expect(d.Intent).To(Equal(model.IntentSentiment))
	})
})
