// Package review defines the analysis modes and the typed result structures
// produced by the AI backends. It also provides the parallel runner that
// executes several modes against the same diff.
package review

import (
	"encoding/json"
	"fmt"
)

// Mode represents an analysis mode type
type Mode string

const (
	ModeReview   Mode = "review"
	ModeAnalyze  Mode = "analyze"
	ModePriority Mode = "priority"
)

// AllModes returns all available analysis modes in execution order.
func AllModes() []Mode {
	return []Mode{
		ModeAnalyze,
		ModePriority,
		ModeReview,
	}
}

// ParseMode validates a mode string from user input and returns the Mode.
// The empty string is not a valid user-supplied mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeReview, ModeAnalyze, ModePriority:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (expected review, analyze or priority)", s)
}

// ModeInfo contains display information for a mode
type ModeInfo struct {
	Name        string
	Description string
	ResultFile  string
}

// GetModeInfo returns display information for a mode
func GetModeInfo(mode Mode) ModeInfo {
	info := map[Mode]ModeInfo{
		ModeReview: {
			Name:        "Code Review",
			Description: "Findings with confidence scores and an overall correctness verdict",
			ResultFile:  "review_result.json",
		},
		ModeAnalyze: {
			Name:        "Change Analysis",
			Description: "Purpose, scope and architectural impact of the change set",
			ResultFile:  "change_analysis.json",
		},
		ModePriority: {
			Name:        "Review Priority",
			Description: "Which areas deserve reviewer attention first, with time estimates",
			ResultFile:  "review_priority.json",
		},
	}
	return info[mode]
}

// Status represents the execution status of one mode
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Outcome is the result of running a single mode: the canonical JSON text
// that was persisted, plus bookkeeping for the runner and the TUI.
type Outcome struct {
	Mode     Mode
	Status   Status
	Result   string // canonical JSON (or raw backend text for non-review fallbacks)
	Fallback bool   // true when the fallback synthesizer produced Result
	Error    string
}

// Correctness verdicts recognized in review results.
const (
	VerdictCorrect   = "patch is correct"
	VerdictIncorrect = "patch is incorrect"
)

// LineRange is a start/end pair of line numbers. Backends emit it either as
// a two-element array [start, end] or as {"start": s, "end": e}; both forms
// unmarshal into the same struct.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// UnmarshalJSON accepts both the array and the object encoding.
func (r *LineRange) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("line_range array must have 2 elements, got %d", len(pair))
		}
		r.Start, r.End = pair[0], pair[1]
		return nil
	}

	var obj struct {
		Start int `json:"start"`
		End   int `json:"end"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("line_range must be [start,end] or {start,end}: %w", err)
	}
	r.Start, r.End = obj.Start, obj.End
	return nil
}

// CodeLocation points a finding at a file and line span.
type CodeLocation struct {
	AbsoluteFilePath string    `json:"absolute_file_path"`
	LineRange        LineRange `json:"line_range"`
}

// Finding is a single issue reported in a code review.
type Finding struct {
	Title           string       `json:"title"`
	Body            string       `json:"body"`
	ConfidenceScore float64      `json:"confidence_score"`
	CodeLocation    CodeLocation `json:"code_location"`
}

// ReviewResult is the validated result of review mode.
type ReviewResult struct {
	Findings               []Finding `json:"findings"`
	OverallCorrectness     string    `json:"overall_correctness"`
	OverallExplanation     string    `json:"overall_explanation"`
	OverallConfidenceScore float64   `json:"overall_confidence_score"`
}

// IsCorrect returns true if the overall verdict is "patch is correct".
func (r *ReviewResult) IsCorrect() bool {
	return r.OverallCorrectness == VerdictCorrect
}

// CodeSnippet carries an optional diff excerpt attached to a file change
// or priority area.
type CodeSnippet struct {
	Language string `json:"language,omitempty"`
	Diff     string `json:"diff,omitempty"`
	Content  string `json:"content,omitempty"`
}

// ChangeSummary is the headline section of an analyze result.
type ChangeSummary struct {
	Title               string  `json:"title"`
	Type                string  `json:"type"`
	Purpose             string  `json:"purpose"`
	Scope               string  `json:"scope"`
	RiskLevel           string  `json:"risk_level"`
	EstimatedComplexity string  `json:"estimated_complexity"`
	ConfidenceScore     float64 `json:"confidence_score"`
}

// FileChange describes one file's role in the change set.
type FileChange struct {
	FilePath     string       `json:"file_path"`
	ChangeType   string       `json:"change_type"`
	LinesAdded   int          `json:"lines_added"`
	LinesDeleted int          `json:"lines_deleted"`
	Purpose      string       `json:"purpose"`
	KeyChanges   []string     `json:"key_changes,omitempty"`
	CodeSnippet  *CodeSnippet `json:"code_snippet,omitempty"`
	Impact       string       `json:"impact"`
}

// ArchitectureImpact lists cross-cutting effects of a change set.
type ArchitectureImpact struct {
	AffectedModules []string `json:"affected_modules,omitempty"`
	NewDependencies []string `json:"new_dependencies,omitempty"`
	APIChanges      []string `json:"api_changes,omitempty"`
}

// AnalyzeResult is the structured result of analyze mode.
type AnalyzeResult struct {
	ChangeSummary      ChangeSummary      `json:"change_summary"`
	FileChanges        []FileChange       `json:"file_changes"`
	ArchitectureImpact ArchitectureImpact `json:"architecture_impact,omitempty"`
	MigrationNotes     []string           `json:"migration_notes,omitempty"`
}

// ReviewSummary is the headline section of a priority result.
type ReviewSummary struct {
	TotalFiles            int `json:"total_files"`
	HighPriorityFiles     int `json:"high_priority_files"`
	MediumPriorityFiles   int `json:"medium_priority_files"`
	LowPriorityFiles      int `json:"low_priority_files"`
	EstimatedTotalMinutes int `json:"estimated_total_minutes"`
	RecommendedReviewers  int `json:"recommended_reviewers"`
}

// PriorityArea marks a file span that deserves focused review attention.
type PriorityArea struct {
	FilePath         string       `json:"file_path"`
	Priority         string       `json:"priority"`
	LineRange        *LineRange   `json:"line_range,omitempty"`
	Reason           string       `json:"reason"`
	FocusPoints      []string     `json:"focus_points,omitempty"`
	CodeSnippet      *CodeSnippet `json:"code_snippet,omitempty"`
	EstimatedMinutes int          `json:"estimated_minutes"`
	RiskFactors      []string     `json:"risk_factors,omitempty"`
}

// ReviewStrategy suggests an order and prerequisites for working through
// the change set.
type ReviewStrategy struct {
	RecommendedOrder []string `json:"recommended_order,omitempty"`
	Prerequisites    []string `json:"prerequisites,omitempty"`
}

// SkipFile is a file the reviewer can skim.
type SkipFile struct {
	FilePath string `json:"file_path"`
	Reason   string `json:"reason"`
}

// PriorityResult is the structured result of priority mode.
type PriorityResult struct {
	ReviewSummary   ReviewSummary   `json:"review_summary"`
	PriorityAreas   []PriorityArea  `json:"priority_areas"`
	ReviewStrategy  *ReviewStrategy `json:"review_strategy,omitempty"`
	TimeBreakdown   map[string]int  `json:"time_breakdown,omitempty"`
	SkipReviewFiles []SkipFile      `json:"skip_review_files,omitempty"`
}

// DetectResultMode inspects a decoded JSON document and reports which mode
// produced it, based on the same signature fields the extractor matches on.
// Returns false if the document matches no known mode.
func DetectResultMode(data map[string]any) (Mode, bool) {
	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := data[k]; !ok {
				return false
			}
		}
		return true
	}
	switch {
	case has("findings", "overall_correctness"):
		return ModeReview, true
	case has("change_summary", "file_changes"):
		return ModeAnalyze, true
	case has("review_summary", "priority_areas"):
		return ModePriority, true
	}
	return "", false
}
