package report

import (
	"strings"
	"testing"

	"github.com/okabe/revue/internal/review"
)

func sampleReview() *review.ReviewResult {
	return &review.ReviewResult{
		Findings: []review.Finding{
			{
				Title:           "[P1] Unchecked error from Close",
				Body:            "The file handle's Close error is discarded.",
				ConfidenceScore: 0.92,
				CodeLocation: review.CodeLocation{
					AbsoluteFilePath: "/repo/storage/writer.go",
					LineRange:        review.LineRange{Start: 41, End: 44},
				},
			},
		},
		OverallCorrectness:     review.VerdictIncorrect,
		OverallExplanation:     "One reliability defect on the write path.",
		OverallConfidenceScore: 0.85,
	}
}

func sampleAnalyze() *review.AnalyzeResult {
	return &review.AnalyzeResult{
		ChangeSummary: review.ChangeSummary{
			Title:               "Add session cache",
			Type:                "feature",
			Purpose:             "Reduce auth latency",
			Scope:               "auth subsystem",
			RiskLevel:           "medium",
			EstimatedComplexity: "moderate",
			ConfidenceScore:     0.9,
		},
		FileChanges: []review.FileChange{
			{
				FilePath:     "auth/cache.go",
				ChangeType:   "added",
				LinesAdded:   120,
				LinesDeleted: 0,
				Purpose:      "New cache layer",
				KeyChanges:   []string{"LRU cache", "TTL expiry"},
				Impact:       "Callers get cached sessions",
			},
		},
		ArchitectureImpact: review.ArchitectureImpact{
			NewDependencies: []string{"github.com/hashicorp/golang-lru"},
		},
	}
}

func samplePriority() *review.PriorityResult {
	return &review.PriorityResult{
		ReviewSummary: review.ReviewSummary{
			TotalFiles:            3,
			HighPriorityFiles:     1,
			MediumPriorityFiles:   1,
			LowPriorityFiles:      1,
			EstimatedTotalMinutes: 40,
			RecommendedReviewers:  1,
		},
		PriorityAreas: []review.PriorityArea{
			{
				FilePath:         "auth/cache.go",
				Priority:         "high",
				LineRange:        &review.LineRange{Start: 10, End: 90},
				Reason:           "New concurrency-sensitive code",
				FocusPoints:      []string{"eviction under load"},
				EstimatedMinutes: 25,
				RiskFactors:      []string{"concurrency"},
			},
		},
		SkipReviewFiles: []review.SkipFile{
			{FilePath: "auth/cache_gen.go", Reason: "generated code"},
		},
	}
}

func TestRenderReview(t *testing.T) {
	html, err := RenderReview(sampleReview())
	if err != nil {
		t.Fatalf("RenderReview() failed: %v", err)
	}

	for _, want := range []string{
		"<title>Code Review Report</title>",
		"patch is incorrect",
		"badge-high",
		"[P1] Unchecked error from Close",
		"finding finding-high",
		"/repo/storage/writer.go",
		"41 - 44",
		"92%",
		"confidence-high",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("review report should contain %q", want)
		}
	}
}

func TestRenderReview_CorrectNoFindings(t *testing.T) {
	html, err := RenderReview(&review.ReviewResult{
		Findings:               []review.Finding{},
		OverallCorrectness:     review.VerdictCorrect,
		OverallExplanation:     "Looks good.",
		OverallConfidenceScore: 0.7,
	})
	if err != nil {
		t.Fatalf("RenderReview() failed: %v", err)
	}
	if !strings.Contains(html, "badge-success") {
		t.Error("correct verdict should use the success badge")
	}
	if !strings.Contains(html, "No significant issues found") {
		t.Error("empty findings should render the all-clear card")
	}
}

func TestRenderReview_EscapesHTML(t *testing.T) {
	r := sampleReview()
	r.Findings[0].Body = `<script>alert("x")</script>`
	html, err := RenderReview(r)
	if err != nil {
		t.Fatalf("RenderReview() failed: %v", err)
	}
	if strings.Contains(html, `<script>alert`) {
		t.Error("finding body must be HTML-escaped")
	}
}

func TestRenderAnalyze(t *testing.T) {
	html, err := RenderAnalyze(sampleAnalyze())
	if err != nil {
		t.Fatalf("RenderAnalyze() failed: %v", err)
	}

	for _, want := range []string{
		"Add session cache",
		"badge-feature",
		"auth/cache.go",
		"+120",
		"-0",
		"LRU cache",
		"Architecture Impact",
		"github.com/hashicorp/golang-lru",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("analyze report should contain %q", want)
		}
	}
}

func TestRenderPriority(t *testing.T) {
	html, err := RenderPriority(samplePriority())
	if err != nil {
		t.Fatalf("RenderPriority() failed: %v", err)
	}

	for _, want := range []string{
		"Review Priority Report",
		"priority-area priority-high",
		"lines 10 - 90",
		"eviction under load",
		"estimated 25 minutes",
		"auth/cache_gen.go",
		"generated code",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("priority report should contain %q", want)
		}
	}
}

func TestRenderCombined_AllSections(t *testing.T) {
	html, err := RenderCombined(sampleReview(), sampleAnalyze(), samplePriority())
	if err != nil {
		t.Fatalf("RenderCombined() failed: %v", err)
	}

	for _, want := range []string{
		"tab-review", "tab-analyze", "tab-priority",
		"[P1] Unchecked error from Close",
		"Add session cache",
		"priority-area priority-high",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("combined report should contain %q", want)
		}
	}
}

func TestRenderCombined_MissingSectionsPlaceholder(t *testing.T) {
	html, err := RenderCombined(sampleReview(), nil, nil)
	if err != nil {
		t.Fatalf("RenderCombined() failed: %v", err)
	}
	if !strings.Contains(html, "No change analysis data") {
		t.Error("missing analyze section should render a placeholder")
	}
	if !strings.Contains(html, "No review priority data") {
		t.Error("missing priority section should render a placeholder")
	}
}

func TestRenderJSON_DetectsMode(t *testing.T) {
	tests := []struct {
		name     string
		jsonText string
		wantMode review.Mode
		wantText string
	}{
		{
			name: "review",
			jsonText: `{"findings": [], "overall_correctness": "patch is correct",
				"overall_explanation": "fine", "overall_confidence_score": 0.5}`,
			wantMode: review.ModeReview,
			wantText: "Code Review Report",
		},
		{
			name:     "analyze",
			jsonText: `{"change_summary": {"title": "T"}, "file_changes": []}`,
			wantMode: review.ModeAnalyze,
			wantText: "Change Analysis Report",
		},
		{
			name:     "priority",
			jsonText: `{"review_summary": {"total_files": 1}, "priority_areas": []}`,
			wantMode: review.ModePriority,
			wantText: "Review Priority Report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, mode, err := RenderJSON(tt.jsonText)
			if err != nil {
				t.Fatalf("RenderJSON() failed: %v", err)
			}
			if mode != tt.wantMode {
				t.Errorf("mode = %s, want %s", mode, tt.wantMode)
			}
			if !strings.Contains(html, tt.wantText) {
				t.Errorf("report should contain %q", tt.wantText)
			}
		})
	}
}

func TestRenderJSON_Invalid(t *testing.T) {
	if _, _, err := RenderJSON("not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, _, err := RenderJSON(`{"some": "object"}`); err == nil {
		t.Error("expected error for unrecognized schema")
	}
}

func TestConfidenceClass(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.95, "confidence-high"},
		{0.8, "confidence-high"},
		{0.6, "confidence-medium"},
		{0.5, "confidence-medium"},
		{0.2, "confidence-low"},
	}
	for _, tt := range tests {
		if got := confidenceClass(tt.score); got != tt.want {
			t.Errorf("confidenceClass(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestFindingPriority(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"[P0] crash on nil", "high"},
		{"[P1] data loss", "high"},
		{"[P2] slow path", "medium"},
		{"[P3] naming", "low"},
		{"untagged title", "medium"},
	}
	for _, tt := range tests {
		if got := findingPriority(tt.title); got != tt.want {
			t.Errorf("findingPriority(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
