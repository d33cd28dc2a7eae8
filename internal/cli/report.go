package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okabe/revue/internal/output"
	"github.com/okabe/revue/internal/report"
	"github.com/okabe/revue/internal/review"
)

var reportCmd = &cobra.Command{
	Use:   "report <run-dir>",
	Short: "Regenerate HTML reports from stored JSON results",
	Long: `Regenerate the per-mode HTML reports, and the combined report when
more than one result is present, from the JSON files in an existing
revue-<timestamp> directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runDir, err := output.OpenRunDir(args[0])
		if err != nil {
			return err
		}

		var outcomes []*review.Outcome
		for _, mode := range review.AllModes() {
			jsonText, err := runDir.ReadResult(mode)
			if err != nil {
				continue
			}
			outcomes = append(outcomes, &review.Outcome{
				Mode:   mode,
				Status: review.StatusDone,
				Result: jsonText,
			})
		}
		if len(outcomes) == 0 {
			return fmt.Errorf("no result files found in %s", runDir.Path())
		}

		if err := writeReports(runDir, outcomes); err != nil {
			return err
		}
		fmt.Printf("Reports regenerated in %s\n", runDir.Path())
		return nil
	},
}

// writeReports renders one HTML report per successful outcome and a combined
// tabbed report when at least two modes produced results.
func writeReports(runDir *output.RunDir, outcomes []*review.Outcome) error {
	var (
		reviewResult   *review.ReviewResult
		analyzeResult  *review.AnalyzeResult
		priorityResult *review.PriorityResult
	)

	rendered := 0
	for _, o := range outcomes {
		if o == nil || o.Status != review.StatusDone || o.Result == "" {
			continue
		}
		// Non-review fallbacks persist raw text, which has no report.
		html, _, err := report.RenderJSON(o.Result)
		if err != nil {
			continue
		}
		name := reportFileName(o.Mode)
		if _, err := runDir.WriteReport(name, html); err != nil {
			return err
		}
		rendered++

		switch o.Mode {
		case review.ModeReview:
			var r review.ReviewResult
			if err := json.Unmarshal([]byte(o.Result), &r); err == nil {
				reviewResult = &r
			}
		case review.ModeAnalyze:
			var r review.AnalyzeResult
			if err := json.Unmarshal([]byte(o.Result), &r); err == nil {
				analyzeResult = &r
			}
		case review.ModePriority:
			var r review.PriorityResult
			if err := json.Unmarshal([]byte(o.Result), &r); err == nil {
				priorityResult = &r
			}
		}
	}

	if rendered < 2 {
		return nil
	}
	html, err := report.RenderCombined(reviewResult, analyzeResult, priorityResult)
	if err != nil {
		return fmt.Errorf("failed to render combined report: %w", err)
	}
	_, err = runDir.WriteReport("combined_report.html", html)
	return err
}

// reportFileName maps a mode's result file to its sibling report name,
// review_result.json becoming review_result.html.
func reportFileName(mode review.Mode) string {
	return strings.TrimSuffix(review.GetModeInfo(mode).ResultFile, ".json") + ".html"
}
