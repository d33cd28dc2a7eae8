// Package report renders analysis results as self-contained HTML pages.
// Each mode has its own report, and an all-modes run additionally gets a
// combined page with one tab per mode.
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/okabe/revue/internal/review"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplates = template.Must(
	template.New("report").Funcs(funcMap()).ParseFS(templateFS, "templates/*.html.tmpl"),
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"upper": strings.ToUpper,
		"pct": func(score float64) string {
			return fmt.Sprintf("%.0f%%", score*100)
		},
		"confClass":       confidenceClass,
		"priorityClass":   priorityClass,
		"typeBadge":       typeBadge,
		"findingPriority": findingPriority,
	}
}

// confidenceClass buckets a 0..1 score into a CSS class.
func confidenceClass(score float64) string {
	switch {
	case score >= 0.8:
		return "confidence-high"
	case score >= 0.5:
		return "confidence-medium"
	default:
		return "confidence-low"
	}
}

func priorityClass(priority string) string {
	switch priority {
	case "high":
		return "badge-high"
	case "medium":
		return "badge-medium"
	default:
		return "badge-low"
	}
}

// badge pairs a CSS class with a display label.
type badge struct {
	Class string
	Label string
}

func typeBadge(changeType string) badge {
	switch changeType {
	case "feature":
		return badge{"badge-feature", "Feature"}
	case "bugfix":
		return badge{"badge-bugfix", "Bugfix"}
	case "refactor":
		return badge{"badge-refactor", "Refactor"}
	case "docs":
		return badge{"badge-low", "Docs"}
	case "test":
		return badge{"badge-low", "Test"}
	case "chore":
		return badge{"badge-low", "Chore"}
	}
	return badge{"badge-low", changeType}
}

// findingPriority derives a display priority from priority tags like [P0]
// embedded in finding titles.
func findingPriority(title string) string {
	if strings.Contains(title, "[P0]") || strings.Contains(title, "[P1]") {
		return "high"
	}
	if strings.Contains(title, "[P3]") {
		return "low"
	}
	return "medium"
}

// pageData is the root object every page template receives.
type pageData struct {
	Title       string
	GeneratedAt string
	Review      *review.ReviewResult
	Analyze     *review.AnalyzeResult
	Priority    *review.PriorityResult
}

func newPageData(title string) pageData {
	return pageData{
		Title:       title,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
}

func render(name string, data pageData) (string, error) {
	var b strings.Builder
	if err := pageTemplates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return b.String(), nil
}

// RenderReview renders the code review report.
func RenderReview(r *review.ReviewResult) (string, error) {
	data := newPageData("Code Review Report")
	data.Review = r
	return render("reviewPage", data)
}

// RenderAnalyze renders the change analysis report.
func RenderAnalyze(r *review.AnalyzeResult) (string, error) {
	data := newPageData("Change Analysis Report")
	data.Analyze = r
	return render("analyzePage", data)
}

// RenderPriority renders the review priority report.
func RenderPriority(r *review.PriorityResult) (string, error) {
	data := newPageData("Review Priority Report")
	data.Priority = r
	return render("priorityPage", data)
}

// RenderCombined renders the tabbed all-modes report. Nil sections render
// as an empty-data placeholder in their tab.
func RenderCombined(rv *review.ReviewResult, an *review.AnalyzeResult, pr *review.PriorityResult) (string, error) {
	data := newPageData("Code Review Summary")
	data.Review = rv
	data.Analyze = an
	data.Priority = pr
	return render("combinedPage", data)
}

// RenderJSON detects which mode produced a stored JSON result and renders
// the matching report. Used by report regeneration, where only the file
// content is available.
func RenderJSON(jsonText string) (string, review.Mode, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return "", "", fmt.Errorf("invalid result JSON: %w", err)
	}
	mode, ok := review.DetectResultMode(raw)
	if !ok {
		return "", "", fmt.Errorf("result JSON matches no known mode")
	}

	var html string
	var err error
	switch mode {
	case review.ModeReview:
		var r review.ReviewResult
		if err = json.Unmarshal([]byte(jsonText), &r); err == nil {
			html, err = RenderReview(&r)
		}
	case review.ModeAnalyze:
		var r review.AnalyzeResult
		if err = json.Unmarshal([]byte(jsonText), &r); err == nil {
			html, err = RenderAnalyze(&r)
		}
	case review.ModePriority:
		var r review.PriorityResult
		if err = json.Unmarshal([]byte(jsonText), &r); err == nil {
			html, err = RenderPriority(&r)
		}
	}
	if err != nil {
		return "", mode, fmt.Errorf("failed to render %s report: %w", mode, err)
	}
	return html, mode, nil
}
