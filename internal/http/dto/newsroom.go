package dto

import (
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/newsroom"
)

type CreateThreadResponse struct {
	ThreadID string `json:"thread_id"`
}

type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

func (r PostMessageRequest) ToRequest() newsroom.Request {
	return newsroom.Request{Content: r.Content, Subject: r.Subject, Date: r.Date}
}

type PostMessageResponse struct {
	Intent    string              `json:"intent"`
	Agent     string              `json:"agent"`
	Reply     string              `json:"reply"`
	Failed    bool                `json:"failed,omitempty"`
	Article   *model.NewsArticle  `json:"article,omitempty"`
	Summary   *string             `json:"summary,omitempty"`
	Sentiment *model.Sentiment    `json:"sentiment,omitempty"`
	Verdict   *model.FinalVerdict `json:"verdict,omitempty"`
}

func ToPostMessageResponse(out *newsroom.Outcome) PostMessageResponse {
	resp := PostMessageResponse{
		Intent:    string(out.Intent),
		Agent:     string(out.Agent),
		Reply:     out.Reply,
		Failed:    out.Failed,
		Article:   out.Article,
		Summary:   out.Summary,
		Sentiment: out.Sentiment,
	}
	if out.Detection != nil {
		v := out.Detection.Verdict
		resp.Verdict = &v
	}
	return resp
}

type ThreadResponse struct {
	ThreadID  string                `json:"thread_id"`
	Messages  []model.ThreadMessage `json:"messages"`
	Article   *model.NewsArticle    `json:"article,omitempty"`
	Summary   *string               `json:"summary,omitempty"`
	Sentiment *model.Sentiment      `json:"sentiment,omitempty"`
	Detection *model.Detection      `json:"detection,omitempty"`
}

func ToThreadResponse(t *model.Thread) ThreadResponse {
	return ThreadResponse{
		ThreadID:  t.ID,
		Messages:  t.Messages,
		Article:   t.Article,
		Summary:   t.Summary,
		Sentiment: t.Sentiment,
		Detection: t.Detection,
	}
}
