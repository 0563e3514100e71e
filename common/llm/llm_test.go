package llm_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pressroom.app/pressroom/common/llm"
)

var _ = Describe("SanitizeName", func() {
	DescribeTable("sanitizes participant labels for the OpenAI name parameter",
		func(input, expected string) {
			Expect(llm.SanitizeName(input)).To(Equal(expected))
		},
		Entry("valid name unchanged", "journalist", "journalist"),
		Entry("dots replaced with underscore", "guest.speaker", "guest_speaker"),
		Entry("hyphens preserved", "tech-policy", "tech-policy"),
		Entry("spaces replaced", "Investigative Hawk", "Investigative_Hawk"),
		Entry("accents replaced", "Ministre Délégué", "Ministre_D_l_gu_"),
		Entry("long name truncated to 64 chars", strings.Repeat("a", 100), strings.Repeat("a", 64)),
		Entry("empty string unchanged", "", ""),
	)
})

var _ = Describe("ParseToolArguments", func() {
	type routeArgs struct {
		Intent string `json:"intent"`
	}

	It("decodes tool arguments into the target type", func() {
		args, err := llm.ParseToolArguments[routeArgs](`{"intent":"verify"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(args.Intent).To(Equal("verify"))
	})

	It("wraps malformed arguments", func() {
		_, err := llm.ParseToolArguments[routeArgs](`{"intent":`)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("parse tool arguments"))
	})
})

var _ = Describe("FindToolCall", func() {
	It("returns the first call with a matching name", func() {
		resp := &llm.AgentResponse{ToolCalls: []llm.ToolCall{
			{ID: "1", Name: "other"},
			{ID: "2", Name: "route_intent", Arguments: `{}`},
			{ID: "3", Name: "route_intent"},
		}}
		tc, ok := llm.FindToolCall(resp, "route_intent")
		Expect(ok).To(BeTrue())
		Expect(tc.ID).To(Equal("2"))
	})

	It("reports a miss on nil responses", func() {
		_, ok := llm.FindToolCall(nil, "route_intent")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("NewAgentClient", func() {
	It("requires an API key", func() {
		_, err := llm.NewAgentClient(llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
	})

	It("rejects unknown providers", func() {
		_, err := llm.NewAgentClient(llm.Config{Provider: "mistral", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	It("defaults the model per provider", func() {
		c, err := llm.NewAgentClient(llm.Config{APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Model()).To(Equal("gpt-4o-mini"))

		a, err := llm.New(llm.Config{Provider: llm.ProviderAnthropic, APIKey: "k", Model: "claude-x"})
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Model()).To(Equal("claude-x"))
	})
})

var _ = Describe("IsRetryable", func() {
	ctx := context.Background()

	It("is false for nil", func() {
		Expect(llm.IsRetryable(ctx, nil)).To(BeFalse())
	})

	It("is false for cancellation and deadlines", func() {
		Expect(llm.IsRetryable(ctx, context.Canceled)).To(BeFalse())
		Expect(llm.IsRetryable(ctx, fmt.Errorf("chat: %w", context.DeadlineExceeded))).To(BeFalse())
	})

	It("treats transport errors as retryable", func() {
		Expect(llm.IsRetryable(ctx, errors.New("connection reset by peer"))).To(BeTrue())
	})
})

var _ = Describe("GenerateSchema", func() {
	type article struct {
		Title string `json:"title" jsonschema:"required"`
	}

	It("reflects an inline object schema", func() {
		schema := llm.GenerateSchema[article]()
		Expect(schema).NotTo(BeNil())
		Expect(llm.GenerateSchemaFrom(article{})).NotTo(BeNil())
	})
})
