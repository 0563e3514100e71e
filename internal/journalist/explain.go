package journalist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pressroom.app/pressroom/internal/remote"
)

// Explainability modes understood by the explain endpoint.
const (
	ModeSemantic  = "semantic"
	ModeAttention = "attention"
	ModeSHAP      = "shap"
	ModeLIME      = "lime"

	NoDataToExplain = "[No data to explain]"
)

// AllModes is the default fan-out order.
var AllModes = []string{ModeSemantic, ModeAttention, ModeSHAP, ModeLIME}

type Explainer interface {
	Explain(ctx context.Context, speech, question, mode string) (string, error)
}

type RemoteExplainer struct {
	client *remote.Client
	url    string
}

func NewRemoteExplainer(client *remote.Client, url string) *RemoteExplainer {
	return &RemoteExplainer{client: client, url: url}
}

type explainRequest struct {
	Speech   string `json:"speech"`
	Question string `json:"question"`
	Mode     string `json:"mode"`
}

type explainResponse struct {
	Explanation *string `json:"explanation"`
}

// Explain returns NoDataToExplain without calling out when speech or
// question is blank.
func (e *RemoteExplainer) Explain(ctx context.Context, speech, question, mode string) (string, error) {
	if strings.TrimSpace(speech) == "" || strings.TrimSpace(question) == "" {
		return NoDataToExplain, nil
	}

	var out explainResponse
	req := explainRequest{Speech: speech, Question: question, Mode: mode}
	if err := e.client.PostJSON(ctx, e.url, req, &out); err != nil {
		return "", err
	}
	if out.Explanation == nil {
		return "", fmt.Errorf("explain %s: missing explanation field: %w", mode, remote.ErrMalformedResponse)
	}
	return *out.Explanation, nil
}

// ExplainAll calls e once per mode, in order. A failing mode is recorded as
// "Error: ..." and the remaining modes still run.
func ExplainAll(ctx context.Context, e Explainer, speech, question string, modes []string) map[string]string {
	out := make(map[string]string, len(modes))
	if strings.TrimSpace(speech) == "" || strings.TrimSpace(question) == "" {
		for _, mode := range modes {
			out[mode] = NoDataToExplain
		}
		return out
	}

	for _, mode := range modes {
		text, err := e.Explain(ctx, speech, question, mode)
		if err != nil {
			slog.WarnContext(ctx, "explanation failed", "mode", mode, "error", err)
			out[mode] = "Error: " + remote.Describe(err)
			continue
		}
		out[mode] = text
	}
	return out
}
