package newsroom_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pressroom.app/pressroom/common/llm"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/newsroom"
)

var _ = Describe("Creator", func() {
	var client *mockLLMClient

	BeforeEach(func() {
		client = &mockLLMClient{chatFn: func(_ context.Context, _ llm.Request) (string, error) {
			return `{"title":" Moon base opens ","text":"A base opened. Crews arrived.","subject":"Science","date":"1999-01-01","label":"fake"}`, nil
		}}
	})

	It("makes one structured call and returns the article", func() {
		article, err := newsroom.NewCreator(client).Generate(context.Background(), "Science", "2024-05-01")

		Expect(err).NotTo(HaveOccurred())
		Expect(client.requests).To(HaveLen(1))
		Expect(client.requests[0].SchemaName).To(Equal("generate_news_article"))
		Expect(client.requests[0].UserPrompt).To(ContainSubstring("Subject: Science\nDate: 2024-05-01"))
		Expect(article.Title).To(Equal("Moon base opens"))
		Expect(article.Label).To(Equal(model.ArticleLabelFake))
		Expect(article.PublicationDate).To(Equal("2024-05-01"))
		Expect(article.ID).NotTo(BeEmpty())
	})

	It("defaults the subject and date", func() {
		_, err := newsroom.NewCreator(client).Generate(context.Background(), "  ", "someday")

		Expect(err).NotTo(HaveOccurred())
		today := time.Now().Format("2006-01-02")
		Expect(client.requests[0].UserPrompt).To(Equal("Subject: News\nDate: " + today))
	})

	It("rejects an empty article", func() {
		client.chatFn = func(_ context.Context, _ llm.Request) (string, error) {
			return `{"title":"","text":"","subject":"","date":"","label":"real"}`, nil
		}

		_, err := newsroom.NewCreator(client).Generate(context.Background(), "x", "")
		Expect(err).To(HaveOccurred())
	})

	It("wraps model errors", func() {
		client.chatFn = func(_ context.Context, _ llm.Request) (string, error) {
			return "", errors.New("quota")
		}

		_, err := newsroom.NewCreator(client).Generate(context.Background(), "x", "")
		Expect(err).To(MatchError(ContainSubstring("generate article: quota")))
	})
})

var _ = Describe("Analyst", func() {
	var (
		client  *mockLLMClient
		article *model.NewsArticle
	)

	BeforeEach(func() {
		article = &model.NewsArticle{ID: "a1", Title: "T", Body: "B", Subject: "S", PublicationDate: "2024-01-01"}
		client = &mockLLMClient{chatFn: func(_ context.Context, _ llm.Request) (string, error) {
			return `{"summary":" Short. ","sentiment":"Negative","tone":"Sensational","key_topics":["a"," ","b"]}`, nil
		}}
	})

	It("summarizes with one call", func() {
		summary, err := newsroom.NewAnalyst(client).Summarize(context.Background(), article)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal("Short."))
		Expect(client.requests).To(HaveLen(1))
		Expect(client.requests[0].SchemaName).To(Equal("summarize_text"))
		Expect(client.requests[0].UserPrompt).To(ContainSubstring("Title: T"))
	})

	It("reads sentiment and normalizes it", func() {
		s, err := newsroom.NewAnalyst(client).Sentiment(context.Background(), article)

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Sentiment).To(Equal("negative"))
		Expect(s.Tone).To(Equal("sensational"))
		Expect(s.KeyTopics).To(Equal([]string{"a", "b"}))
		Expect(client.requests[0].SchemaName).To(Equal("analyze_sentiment"))
	})

	It("does both in a single call", func() {
		a, err := newsroom.NewAnalyst(client).Analyze(context.Background(), article)

		Expect(err).NotTo(HaveOccurred())
		Expect(client.requests).To(HaveLen(1))
		Expect(a.Summary).To(HaveValue(Equal("Short.")))
		Expect(a.Sentiment.Tone).To(Equal("sensational"))
	})

	It("refuses without an article", func() {
		_, err := newsroom.NewAnalyst(client).Summarize(context.Background(), nil)

		Expect(err).To(HaveOccurred())
		Expect(client.requests).To(BeEmpty())
	})
})

var _ = Describe("LLMVerifier", func() {
	It("maps a verified answer with its source", func() {
		client := &mockLLMClient{chatFn: func(_ context.Context, _ llm.Request) (string, error) {
			return `{"verified":true,"url":"https://example.org/a","reasoning":"Reported widely."}`, nil
		}}

		res, err := newsroom.NewLLMVerifier(client).Verify(context.Background(), &model.NewsArticle{Title: "T"})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Verdict).To(BeTrue())
		Expect(res.SourceURL).To(HaveValue(Equal("https://example.org/a")))
		Expect(res.Reasoning).To(HaveValue(Equal("Reported widely.")))
		Expect(client.requests[0].SchemaName).To(Equal("web_search_verify"))
	})

	It("leaves the source nil when the url is blank", func() {
		client := &mockLLMClient{chatFn: func(_ context.Context, _ llm.Request) (string, error) {
			return `{"verified":false,"url":"  ","reasoning":""}`, nil
		}}

		res, err := newsroom.NewLLMVerifier(client).Verify(context.Background(), &model.NewsArticle{Title: "T"})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Verdict).To(BeFalse())
		Expect(res.SourceURL).To(BeNil())
		Expect(res.Reasoning).To(BeNil())
	})
})
