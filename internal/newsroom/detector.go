package newsroom

import (
	"context"
	"fmt"
	"log/slog"

	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/model"
)

// DefaultConfidenceThreshold is the classifier confidence, in percent, at or
// above which web verification is skipped.
const DefaultConfidenceThreshold = 85.0

// Detector runs the classifier, then the verifier when the classifier is
// unsure, then combines both.
type Detector struct {
	oracle    Oracle
	verifier  Verifier
	threshold float64
}

// NewDetector wires the detector. A nil verifier disables the second step.
func NewDetector(oracle Oracle, verifier Verifier, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Detector{oracle: oracle, verifier: verifier, threshold: threshold}
}

func (d *Detector) Detect(ctx context.Context, article *model.NewsArticle) (*model.Detection, error) {
	if article == nil {
		return nil, fmt.Errorf("detect: no article")
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pressroom.newsroom.detector"})

	pred, err := d.oracle.Predict(ctx, article)
	if err != nil {
		return nil, err
	}

	detection := &model.Detection{Prediction: pred}
	if pred.Confidence < d.threshold && d.verifier != nil {
		ver, err := d.verifier.Verify(ctx, article)
		if err != nil {
			// the classifier result still stands on its own
			slog.WarnContext(ctx, "web verification failed", "error", err, "article_id", article.ID)
		} else {
			detection.Verification = ver
		}
	}
	detection.Verdict = Combine(pred, detection.Verification)

	slog.InfoContext(ctx, "detection completed",
		"article_id", article.ID,
		"prediction", pred.Label,
		"confidence", pred.Confidence,
		"verified", detection.Verification != nil,
		"verdict", detection.Verdict.Label)
	return detection, nil
}
