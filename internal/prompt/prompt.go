// Package prompt assembles the text sent to an AI backend: a mode-specific
// rubric followed by the merge request's metadata, name-status listing and
// unified diff. Rubric templates are embedded in the binary.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/okabe/revue/internal/git"
	"github.com/okabe/revue/internal/review"
)

//go:embed templates/review_prompt.md
var reviewRubric string

//go:embed templates/change_analysis_prompt.md
var changeAnalysisRubric string

//go:embed templates/review_priority_prompt.md
var reviewPriorityRubric string

// Rubric returns the embedded rubric for a mode.
func Rubric(mode review.Mode) string {
	switch mode {
	case review.ModeReview:
		return strings.TrimSpace(reviewRubric)
	case review.ModeAnalyze:
		return strings.TrimSpace(changeAnalysisRubric)
	case review.ModePriority:
		return strings.TrimSpace(reviewPriorityRubric)
	}
	return ""
}

// Params carries everything the prompt builder needs about one run.
type Params struct {
	AppID        string
	RepoRoot     string
	BaseBranch   string
	TargetBranch string
	// Comparison is nil for staged runs, which diff the index against HEAD.
	Comparison *git.Comparison
	Staged     bool
	NameStatus git.Clipped
	Diff       git.Clipped
	// WithContext tells the backend it is running inside the repository
	// and may browse files beyond the diff.
	WithContext bool
}

// Build assembles the full prompt for a mode: rubric, separator, then the
// merge request section.
func Build(mode review.Mode, p Params) string {
	rubric := Rubric(mode)
	body := buildMRSection(mode, p)
	if rubric == "" {
		return body
	}

	var b strings.Builder
	b.WriteString(rubric)
	b.WriteString("\n\n-----\n\n")
	fmt.Fprintf(&b, "The merge request to %s follows.\n\n", modeVerb(mode))
	b.WriteString(body)
	return b.String()
}

func modeVerb(mode review.Mode) string {
	switch mode {
	case review.ModeAnalyze:
		return "analyze"
	case review.ModePriority:
		return "triage"
	default:
		return "review"
	}
}

// buildMRSection renders the metadata, reproduction commands, name-status
// listing and diff for a merge request.
func buildMRSection(mode review.Mode, p Params) string {
	var b strings.Builder

	if p.WithContext {
		fmt.Fprintf(&b, "Please %s the following merge request.\n\n", modeVerb(mode))
		b.WriteString("IMPORTANT: you are running inside the target repository. ")
		b.WriteString("The working directory is the repository root, so you can:\n")
		b.WriteString("- read the full content of any file\n")
		b.WriteString("- search the codebase\n")
		b.WriteString("- run git commands\n\n")
		b.WriteString("Use this access to understand context beyond the diff, especially:\n")
		b.WriteString("- the full implementation of modified functions and types\n")
		b.WriteString("- call sites and dependencies of the changed code\n")
		b.WriteString("- the relevant tests\n")
		b.WriteString("- the overall architecture\n\n")
	} else {
		fmt.Fprintf(&b, "Please %s the following merge request based only on the information provided below.\n\n", modeVerb(mode))
	}

	b.WriteString("Basic information:\n")
	if p.AppID != "" {
		fmt.Fprintf(&b, "- appid: %s\n", p.AppID)
	}
	fmt.Fprintf(&b, "- repoRoot: %s\n", p.RepoRoot)
	if p.Staged {
		b.WriteString("- comparison: staged changes (index) against HEAD\n\n")
		b.WriteString("To reproduce the diff locally:\n")
		b.WriteString("- git diff --cached --name-status --no-color\n")
		b.WriteString("- git diff --cached --no-color\n\n")
	} else {
		fmt.Fprintf(&b, "- baseBranch: %s\n", p.BaseBranch)
		fmt.Fprintf(&b, "- targetBranch: %s\n", p.TargetBranch)
		fmt.Fprintf(&b, "- baseRefUsed: %s\n", p.Comparison.BaseRefUsed)
		fmt.Fprintf(&b, "- baseSha: %s\n", p.Comparison.BaseSHA)
		fmt.Fprintf(&b, "- targetSha: %s\n", p.Comparison.TargetSHA)
		fmt.Fprintf(&b, "- mergeBaseSha: %s\n\n", p.Comparison.MergeBaseSHA)

		b.WriteString("To reproduce the diff locally:\n")
		fmt.Fprintf(&b, "- git merge-base %s %s\n", p.Comparison.BaseSHA, p.Comparison.TargetSHA)
		fmt.Fprintf(&b, "- git diff --name-status --no-color %s..%s\n", p.Comparison.MergeBaseSHA, p.Comparison.TargetSHA)
		fmt.Fprintf(&b, "- git diff --no-color %s..%s\n\n", p.Comparison.MergeBaseSHA, p.Comparison.TargetSHA)
	}

	b.WriteString("Changed files (git diff --name-status):\n")
	b.WriteString(strings.TrimSpace(p.NameStatus.Text))
	if p.NameStatus.Truncated {
		fmt.Fprintf(&b, "\n[note] name-status output was truncated (maxChars=%d, originalLines=%d).\n",
			git.NameStatusMaxChars, p.NameStatus.Lines)
	}
	b.WriteString("\n\n")

	b.WriteString("Unified diff (git diff, possibly truncated):\n")
	b.WriteString("```diff\n")
	b.WriteString(p.Diff.Text)
	if !strings.HasSuffix(p.Diff.Text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	if p.Diff.Truncated {
		fmt.Fprintf(&b, "[note] diff output was truncated (maxChars=%d, originalLines=%d).\n",
			git.DiffMaxChars, p.Diff.Lines)
		if p.WithContext {
			b.WriteString("You can read the full files directly, or run the git commands above for the complete diff.\n")
		} else {
			b.WriteString("Focus on high-risk issues visible in the available diff; the git commands above reproduce the complete diff.\n")
		}
	}

	return b.String()
}
