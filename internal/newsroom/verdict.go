package newsroom

import "pressroom.app/pressroom/internal/model"

// Combine merges the classifier output with the optional web verification.
// A positive verification overrides the classifier whatever its confidence.
func Combine(pred model.Prediction, ver *model.VerificationResult) model.FinalVerdict {
	if ver != nil && ver.Verdict {
		return model.FinalVerdict{
			Label:  model.TrueNewsLabel,
			Source: ver.SourceURL,
		}
	}
	confidence := pred.Confidence
	return model.FinalVerdict{
		Label:      pred.Label,
		Confidence: &confidence,
	}
}
