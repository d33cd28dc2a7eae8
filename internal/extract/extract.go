// Package extract recovers schema-conformant JSON objects from the free-form
// text AI backends print. Backend output is not under our control: the JSON
// may be the whole output, buried in prose, wrapped in a markdown code fence,
// duplicated by internal retries, or missing entirely. The strategy chain in
// Extract tries cheap exact parses first and progressively more tolerant
// scans after, and reports "no match" as a normal return value rather than
// an error.
package extract

import (
	"regexp"
	"strings"

	"github.com/okabe/revue/internal/review"
)

// modeSignatures maps each analysis mode to the top-level fields a candidate
// object must carry to be accepted for that mode. Built once; never mutated.
var modeSignatures = map[review.Mode][]string{
	review.ModeReview:   {"findings", "overall_correctness"},
	review.ModeAnalyze:  {"change_summary", "file_changes"},
	review.ModePriority: {"review_summary", "priority_areas"},
}

// fencedJSON matches ```json ... ``` blocks, non-greedy so consecutive
// blocks are captured separately.
var fencedJSON = regexp.MustCompile("(?s)```json[ \t]*\n?(.*?)\n?```")

// Matches reports whether candidate carries every signature field for mode.
// Modes without a signature (including the unspecified empty mode) match
// any object; field values are not inspected here.
func Matches(candidate *Object, mode review.Mode) bool {
	sig, known := modeSignatures[mode]
	if !known {
		return true
	}
	for _, field := range sig {
		if !candidate.Has(field) {
			return false
		}
	}
	return true
}

// Extract recovers a mode-matched JSON object from raw backend output.
// mode may be empty to accept any plausible object. The second return value
// is false when no strategy produced a match; that is an expected outcome
// for misbehaving backends, not an error.
func Extract(text string, mode review.Mode) (*Object, bool) {
	// Strategy 1: the entire output is one JSON document.
	if obj, err := ParseObject(strings.TrimSpace(text)); err == nil {
		if Matches(obj, mode) {
			return obj, true
		}
	}

	// Strategy 2: fenced ```json blocks, in source order.
	for _, m := range fencedJSON.FindAllStringSubmatch(text, -1) {
		obj, err := ParseObject(m[1])
		if err != nil {
			continue
		}
		if Matches(obj, mode) {
			return obj, true
		}
	}

	// Strategy 3: anchor on the mode's first signature field. Verbose tools
	// sometimes emit the same blob twice (}{ concatenation), so every
	// occurrence of the quoted field name is tried, walking back to the
	// nearest opening brace and scanning a balanced object from there.
	if sig, known := modeSignatures[mode]; known {
		needle := `"` + sig[0] + `"`
		searchStart := 0
		for {
			rel := strings.Index(text[searchStart:], needle)
			if rel < 0 {
				break
			}
			pos := searchStart + rel

			braceRel := strings.LastIndex(text[searchStart:pos], "{")
			if braceRel < 0 {
				searchStart = pos + 1
				continue
			}
			braceStart := searchStart + braceRel

			if span, ok := FirstObject(text[braceStart:]); ok {
				if obj, err := ParseObject(span); err == nil && Matches(obj, mode) {
					return obj, true
				}
			}
			searchStart = pos + 1
		}
	}

	// Strategy 4: enumerate every balanced top-level object anywhere in the
	// text. With a known mode only mode-matched objects are accepted; without
	// one, any object matching a known signature wins, and failing that the
	// first parseable object is taken as a last resort.
	_, modeKnown := modeSignatures[mode]
	offset := 0
	for {
		start, end, ok := scanObject(text, offset)
		if !ok {
			break
		}
		offset = end

		obj, err := ParseObject(text[start:end])
		if err != nil {
			continue
		}

		if modeKnown {
			if Matches(obj, mode) {
				return obj, true
			}
			continue
		}

		for _, sig := range modeSignatures {
			all := true
			for _, field := range sig {
				if !obj.Has(field) {
					all = false
					break
				}
			}
			if all {
				return obj, true
			}
		}
		// Valid object matching no known mode: still better than nothing
		// when the caller did not constrain the mode.
		return obj, true
	}

	return nil, false
}
