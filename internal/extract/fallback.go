package extract

import (
	"encoding/json"
	"fmt"

	"github.com/okabe/revue/internal/review"
)

// FallbackReview synthesizes a minimal schema-valid review result carrying
// the failure reason in its explanation. Deterministic for a given reason;
// the confidence score is always 0.0 so downstream consumers can tell a
// substituted result from a real one. Only review mode has a meaningful safe
// default: for the other modes the caller propagates the raw backend text
// instead, which is still useful to a human reader.
func FallbackReview(reason string) *Object {
	obj := NewObject()
	obj.Set("findings", []any{})
	obj.Set("overall_correctness", review.VerdictCorrect)
	obj.Set("overall_explanation", fmt.Sprintf(
		"Review parsing failed: %s. See raw_output.txt for the original backend output.", reason))
	obj.Set("overall_confidence_score", json.Number("0.0"))
	return obj
}
