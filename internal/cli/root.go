// Package cli implements the command-line interface for revue using cobra.
// The root command runs the full analysis workflow: resolve the repository,
// compute the diff, build prompts, fan the analysis modes out to the AI
// backend and persist results plus HTML reports. Subcommands regenerate
// reports and inspect configuration.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okabe/revue/internal/backend"
	"github.com/okabe/revue/internal/config"
	"github.com/okabe/revue/internal/extract"
	"github.com/okabe/revue/internal/git"
	"github.com/okabe/revue/internal/output"
	"github.com/okabe/revue/internal/prompt"
	"github.com/okabe/revue/internal/repo"
	"github.com/okabe/revue/internal/review"
	"github.com/okabe/revue/internal/tui"
)

var (
	// Version is set at build time via -ldflags
	Version = "dev"

	rootCmd = &cobra.Command{
		Use:   "revue",
		Short: "AI-powered merge request analysis",
		Long: `revue analyzes a merge request with an AI backend and produces
structured JSON results plus HTML reports.

It compares two branches (or the staged changes), builds one prompt per
analysis mode (change analysis, review priority, code review), runs the
modes in parallel against the selected backend and stores everything in a
timestamped revue-<timestamp> directory inside the target repository.`,
		RunE: runWorkflow,
	}
)

func init() {
	cobra.OnInitialize(config.Init)

	rootCmd.Flags().StringP("repo", "r", "", "Repository path or clone URL")
	rootCmd.Flags().StringP("appid", "a", "", "Locate the repository by app.properties app.id")
	rootCmd.Flags().StringP("base", "b", "main", "Base branch to compare against")
	rootCmd.Flags().StringP("target", "t", "HEAD", "Target branch or revision to analyze")
	rootCmd.Flags().StringP("mode", "m", "all", "Analysis mode: all, review, analyze or priority")
	rootCmd.Flags().String("backend", "claude", "AI backend: "+strings.Join(backend.Names(), ", "))
	rootCmd.Flags().String("model", "", "Backend-specific model name")
	rootCmd.Flags().String("profile", "", "Codex profile")
	rootCmd.Flags().String("reasoning-effort", "", "Codex reasoning effort")
	rootCmd.Flags().Bool("staged", false, "Analyze staged changes instead of a branch comparison")
	rootCmd.Flags().Bool("prompt-only", false, "Write prompts and metadata, skip the backend")
	rootCmd.Flags().Bool("no-context", false, "Do not give the backend repository access")
	rootCmd.Flags().Bool("no-tui", false, "Plain log lines instead of the progress TUI")
	rootCmd.Flags().String("clone-dir", "", "Directory for cloning repository URLs")
	rootCmd.Flags().String("search-root", "", "Root directory for --appid lookups")

	config.BindFlags(rootCmd)

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns any error encountered.
// This is the main entry point for the CLI application.
func Execute() error {
	return rootCmd.Execute()
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	modes, err := selectModes(cfg.Run.Mode)
	if err != nil {
		return err
	}

	appID, _ := cmd.Flags().GetString("appid")
	repoArg, _ := cmd.Flags().GetString("repo")
	repoPath, err := resolveRepoPath(repoArg, appID, cfg)
	if err != nil {
		return err
	}

	gitRepo, err := git.Open(repoPath)
	if err != nil {
		return fmt.Errorf("failed to open repository at %s: %w", repoPath, err)
	}
	root, err := gitRepo.Root()
	if err != nil {
		return err
	}

	staged, _ := cmd.Flags().GetBool("staged")
	base, _ := cmd.Flags().GetString("base")
	target, _ := cmd.Flags().GetString("target")

	params, err := buildParams(gitRepo, cfg, promptInputs{
		appID:       appID,
		root:        root,
		base:        base,
		target:      target,
		staged:      staged,
		withContext: config.WithContext(cmd),
	})
	if err != nil {
		return err
	}

	runDir, err := output.NewRunDir(root)
	if err != nil {
		return err
	}
	fmt.Printf("Output directory: %s\n", runDir.Path())

	prompts := make(map[review.Mode]string, len(modes))
	for _, mode := range modes {
		prompts[mode] = prompt.Build(mode, *params)
		if err := runDir.WritePrompt(mode, prompts[mode]); err != nil {
			return err
		}
	}
	if err := runDir.WriteMeta(output.Meta{
		AppID:        appID,
		Repo:         root,
		BaseBranch:   base,
		TargetBranch: target,
		Backend:      cfg.Backend.Name,
		Model:        cfg.Backend.Model,
		Profile:      cfg.Backend.Profile,
	}); err != nil {
		return err
	}

	if promptOnly, _ := cmd.Flags().GetBool("prompt-only"); promptOnly {
		fmt.Println("Prompts written, skipping backend (--prompt-only).")
		return nil
	}

	runner, err := backend.New(cfg.Backend.Name, backend.Options{
		Model:           cfg.Backend.Model,
		Profile:         cfg.Backend.Profile,
		ReasoningEffort: cfg.Backend.ReasoningEffort,
	})
	if err != nil {
		return err
	}
	if err := runner.Check(); err != nil {
		return err
	}

	outcomes := runModes(ctx, cmd, runModesParams{
		runner:      runner,
		runDir:      runDir,
		root:        root,
		modes:       modes,
		prompts:     prompts,
		backendName: cfg.Backend.Name,
	})

	if err := writeReports(runDir, outcomes); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: report generation failed: %v\n", err)
	}

	printSummary(runDir, outcomes)

	summary := review.Summarize(outcomes)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d modes failed", summary.Failed, summary.TotalModes)
	}
	return nil
}

// selectModes expands "all" and validates a single mode name.
func selectModes(mode string) ([]review.Mode, error) {
	if mode == "" || mode == "all" {
		return review.AllModes(), nil
	}
	m, err := review.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return []review.Mode{m}, nil
}

// resolveRepoPath turns the --repo / --appid flags into a local path.
// With neither flag the current directory is used.
func resolveRepoPath(repoArg, appID string, cfg *config.Config) (string, error) {
	if appID != "" {
		path, err := repo.FindByAppID(cfg.Repo.SearchRoot, appID)
		if err != nil {
			return "", fmt.Errorf("appid lookup failed: %w", err)
		}
		return path, nil
	}
	if repoArg != "" {
		return repo.Resolve(repoArg, cfg.Repo.CloneDir)
	}
	return os.Getwd()
}

type promptInputs struct {
	appID       string
	root        string
	base        string
	target      string
	staged      bool
	withContext bool
}

// buildParams computes the diff material shared by all mode prompts.
func buildParams(gitRepo *git.Repository, cfg *config.Config, in promptInputs) (*prompt.Params, error) {
	p := &prompt.Params{
		AppID:       in.appID,
		RepoRoot:    in.root,
		WithContext: in.withContext,
	}

	if in.staged {
		nameStatus, err := gitRepo.StagedNameStatus(cfg.Truncate.NameStatusMaxChars)
		if err != nil {
			return nil, err
		}
		diff, err := gitRepo.StagedDiff()
		if err != nil {
			return nil, err
		}
		p.Staged = true
		p.NameStatus = nameStatus
		p.Diff = git.Clip(diff, cfg.Truncate.DiffMaxChars)
		return p, nil
	}

	comparison, err := gitRepo.ResolveComparison(in.base, in.target)
	if err != nil {
		return nil, err
	}
	nameStatus, err := gitRepo.NameStatus(comparison, cfg.Truncate.NameStatusMaxChars)
	if err != nil {
		return nil, err
	}
	diff, err := gitRepo.Diff(comparison, cfg.Truncate.DiffMaxChars)
	if err != nil {
		return nil, err
	}

	p.BaseBranch = in.base
	p.TargetBranch = in.target
	p.Comparison = comparison
	p.NameStatus = nameStatus
	p.Diff = diff
	return p, nil
}

type runModesParams struct {
	runner      backend.Runner
	runDir      *output.RunDir
	root        string
	modes       []review.Mode
	prompts     map[review.Mode]string
	backendName string
}

// runModes executes all selected modes in parallel, behind the TUI when it
// is enabled and as plain log lines otherwise.
func runModes(ctx context.Context, cmd *cobra.Command, p runModesParams) []*review.Outcome {
	runFunc := func(ctx context.Context, mode review.Mode) (*review.Outcome, error) {
		return runOneMode(ctx, p.runner, p.runDir, p.root, mode, p.prompts[mode])
	}

	if config.TUIEnabled(cmd) {
		program := tui.NewProgram(fmt.Sprintf("revue (%s backend)", p.backendName), p.modes)
		runner := review.NewRunner(runFunc, program.StatusCallback())

		done := make(chan []*review.Outcome, 1)
		go func() {
			done <- runner.Run(ctx, p.modes)
			program.Finish()
		}()
		if err := program.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: TUI failed: %v\n", err)
		}
		return <-done
	}

	logStatus := func(mode review.Mode, status review.Status) {
		fmt.Printf("[%s] %s\n", review.GetModeInfo(mode).Name, status)
	}
	runner := review.NewRunner(runFunc, logStatus)
	return runner.Run(ctx, p.modes)
}

// runOneMode drives a single mode end to end: backend call, raw output
// capture, JSON extraction and result persistence. When extraction fails,
// review mode substitutes a synthesized fallback result while the other
// modes persist the raw backend text, which is still useful to a reader.
func runOneMode(ctx context.Context, runner backend.Runner, runDir *output.RunDir, root string, mode review.Mode, promptText string) (*review.Outcome, error) {
	raw, err := runner.Run(ctx, promptText, root)
	if raw != "" {
		if writeErr := runDir.AppendRawOutput(mode, raw); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record raw output for %s: %v\n", mode, writeErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("backend failed: %w", err)
	}

	candidate, ok := extract.Extract(raw, mode)
	if !ok {
		if mode != review.ModeReview {
			return persistRawOutcome(runDir, mode, raw)
		}
		return persistOutcome(runDir, mode, extract.FallbackReview("no parsable review JSON in backend output"), true)
	}
	if mode == review.ModeReview {
		if valid, problems := extract.ValidateReview(candidate); !valid {
			candidate = extract.FallbackReview("extracted review result failed validation: " + strings.Join(problems, "; "))
			return persistOutcome(runDir, mode, candidate, true)
		}
	}
	return persistOutcome(runDir, mode, candidate, false)
}

// persistRawOutcome stores unparsed backend text as a mode's result.
func persistRawOutcome(runDir *output.RunDir, mode review.Mode, raw string) (*review.Outcome, error) {
	if _, err := runDir.WriteResult(mode, raw); err != nil {
		return nil, err
	}
	return &review.Outcome{
		Mode:     mode,
		Status:   review.StatusDone,
		Result:   raw,
		Fallback: true,
	}, nil
}

// persistOutcome serializes a result object and writes the per-mode file.
func persistOutcome(runDir *output.RunDir, mode review.Mode, candidate *extract.Object, fallback bool) (*review.Outcome, error) {
	jsonText, err := extract.Format(candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize result: %w", err)
	}
	if _, err := runDir.WriteResult(mode, jsonText); err != nil {
		return nil, err
	}
	return &review.Outcome{
		Mode:     mode,
		Status:   review.StatusDone,
		Result:   jsonText,
		Fallback: fallback,
	}, nil
}

func printSummary(runDir *output.RunDir, outcomes []*review.Outcome) {
	fmt.Println()
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		info := review.GetModeInfo(o.Mode)
		switch {
		case o.Status == review.StatusFailed:
			fmt.Printf("✗ %s: %s\n", info.Name, o.Error)
		case o.Fallback:
			fmt.Printf("⚠ %s: fallback result written to %s\n", info.Name, info.ResultFile)
		default:
			fmt.Printf("✓ %s: %s\n", info.Name, info.ResultFile)
		}
	}
	fmt.Printf("\nResults in %s\n", runDir.Path())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("revue version %s\n", Version)
	},
}
