package newsroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/remote"
)

// Oracle is the trained fake-news classifier.
type Oracle interface {
	Predict(ctx context.Context, article *model.NewsArticle) (model.Prediction, error)
}

// RemoteOracle reaches the classifier over HTTP.
type RemoteOracle struct {
	client *remote.Client
	url    string
}

func NewRemoteOracle(client *remote.Client, url string) *RemoteOracle {
	return &RemoteOracle{client: client, url: url}
}

type predictRequest struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Text    string `json:"text"`
}

type predictResponse struct {
	Prediction *string `json:"prediction"`
	Confidence Percent `json:"confidence"`
}

func (o *RemoteOracle) Predict(ctx context.Context, article *model.NewsArticle) (model.Prediction, error) {
	var resp predictResponse
	err := o.client.PostJSON(ctx, o.url, predictRequest{
		Title:   article.Title,
		Subject: article.Subject,
		Date:    article.PublicationDate,
		Text:    article.Body,
	}, &resp)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("predict: %w", err)
	}
	if resp.Prediction == nil || strings.TrimSpace(*resp.Prediction) == "" {
		return model.Prediction{}, fmt.Errorf("predict: missing prediction: %w", remote.ErrMalformedResponse)
	}
	return model.Prediction{
		Label:      strings.TrimSpace(*resp.Prediction),
		Confidence: float64(resp.Confidence),
	}, nil
}

// Percent decodes a confidence sent either as a number or as a string such
// as "92.50%".
type Percent float64

func (p *Percent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParsePercent(s)
		if err != nil {
			return err
		}
		*p = Percent(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("confidence: %w", err)
	}
	*p = Percent(f)
	return nil
}

// ParsePercent parses "92.50%", "92.5" or " 92 % ".
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("confidence %q: %w", s, err)
	}
	return v, nil
}
