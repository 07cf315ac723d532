// Package verdict turns a detection response into the binary classification
// shown to the user.
package verdict

import (
	"strings"

	"github.com/radai/radai/internal/ultralytics"
)

// User-facing verdict messages.
const (
	MessageNoPrediction = "No prediction available"
	MessageNormal       = "Normal Kidney (no stones detected)"
	MessageStone        = "Kidney Stone Detected"
)

// normalLabels is the fixed vocabulary of labels considered non-pathological.
var normalLabels = map[string]struct{}{
	"normal kidney": {},
	"normal_kidney": {},
	"normal":        {},
}

// Verdict is the derived classification for one analyzed image.
type Verdict struct {
	Message    string
	Detections []ultralytics.Detection
	Positive   bool
}

// IsNormalLabel reports whether a detection label belongs to the
// normal-label set. Comparison is case-insensitive and ignores surrounding
// whitespace.
func IsNormalLabel(name string) bool {
	_, ok := normalLabels[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Interpret maps an inference response to a verdict. A single detection with
// a label outside the normal set forces the positive branch; there is no
// majority vote and no additional confidence filtering.
func Interpret(result *ultralytics.InferenceResult) Verdict {
	if result == nil || len(result.Images) == 0 {
		return Verdict{Message: MessageNoPrediction}
	}

	detections := result.Images[0].Results
	if len(detections) == 0 {
		return Verdict{Message: MessageNormal, Detections: detections}
	}

	for _, det := range detections {
		if !IsNormalLabel(det.Name) {
			return Verdict{Message: MessageStone, Detections: detections, Positive: true}
		}
	}

	return Verdict{Message: MessageNormal, Detections: detections}
}
