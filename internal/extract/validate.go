package extract

import (
	"fmt"

	"github.com/okabe/revue/internal/review"
)

// requiredReviewFields are the top-level fields a review result must carry.
var requiredReviewFields = []string{
	"findings",
	"overall_correctness",
	"overall_explanation",
	"overall_confidence_score",
}

// requiredFindingFields are the fields every findings element must carry.
var requiredFindingFields = []string{
	"title",
	"body",
	"confidence_score",
	"code_location",
}

// ValidateReview deep-checks a review-mode object against its structural
// contract: required top-level fields, per-finding fields, code_location
// fields and the overall_correctness verdict enum. It returns false with a
// diagnostic for every failed check; diagnostics are informational and the
// caller decides whether to substitute a fallback.
func ValidateReview(candidate *Object) (bool, []string) {
	var diags []string

	for _, field := range requiredReviewFields {
		if !candidate.Has(field) {
			diags = append(diags, fmt.Sprintf("missing required field %q", field))
		}
	}

	if v, ok := candidate.Get("findings"); ok {
		findings, isList := v.([]any)
		if !isList {
			diags = append(diags, "field \"findings\" must be a list")
		} else {
			for i, f := range findings {
				diags = append(diags, validateFinding(i, f)...)
			}
		}
	}

	if v, ok := candidate.Get("overall_correctness"); ok {
		s, isString := v.(string)
		if !isString || (s != review.VerdictCorrect && s != review.VerdictIncorrect) {
			diags = append(diags, fmt.Sprintf(
				"field \"overall_correctness\" must be %q or %q",
				review.VerdictCorrect, review.VerdictIncorrect))
		}
	}

	return len(diags) == 0, diags
}

func validateFinding(idx int, v any) []string {
	finding, ok := v.(*Object)
	if !ok {
		return []string{fmt.Sprintf("findings[%d] is not an object", idx)}
	}

	var diags []string
	for _, field := range requiredFindingFields {
		if !finding.Has(field) {
			diags = append(diags, fmt.Sprintf("findings[%d] missing required field %q", idx, field))
		}
	}

	if v, ok := finding.Get("code_location"); ok {
		loc, isObj := v.(*Object)
		if !isObj {
			diags = append(diags, fmt.Sprintf("findings[%d].code_location is not an object", idx))
			return diags
		}
		if !loc.Has("absolute_file_path") {
			diags = append(diags, fmt.Sprintf("findings[%d].code_location missing \"absolute_file_path\"", idx))
		}
		if !loc.Has("line_range") {
			diags = append(diags, fmt.Sprintf("findings[%d].code_location missing \"line_range\"", idx))
		}
	}

	return diags
}
