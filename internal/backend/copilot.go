package backend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// copilotModels maps model names and shorthand aliases to the identifiers
// the copilot CLI accepts. Unlisted names pass through unchanged.
var copilotModels = map[string]string{
	"claude-sonnet-4.5":    "claude-sonnet-4.5",
	"claude-haiku-4.5":     "claude-haiku-4.5",
	"claude-opus-4.5":      "claude-opus-4.5",
	"claude-sonnet-4":      "claude-sonnet-4",
	"gpt-5.1-codex-max":    "gpt-5.1-codex-max",
	"gpt-5.1-codex":        "gpt-5.1-codex",
	"gpt-5.2":              "gpt-5.2",
	"gpt-5.1":              "gpt-5.1",
	"gpt-5":                "gpt-5",
	"gpt-5.1-codex-mini":   "gpt-5.1-codex-mini",
	"gpt-5-mini":           "gpt-5-mini",
	"gpt-4.1":              "gpt-4.1",
	"gemini-3-pro-preview": "gemini-3-pro-preview",

	// shorthand aliases
	"sonnet":    "claude-sonnet-4.5",
	"haiku":     "claude-haiku-4.5",
	"opus":      "claude-opus-4.5",
	"codex-max": "gpt-5.1-codex-max",
	"codex":     "gpt-5.1-codex",
	"gemini":    "gemini-3-pro-preview",
}

// ResolveCopilotModel expands a shorthand alias to the full model name.
func ResolveCopilotModel(name string) string {
	if full, ok := copilotModels[name]; ok {
		return full
	}
	return name
}

// copilotBackend runs prompts through the copilot CLI in non-interactive
// mode. The prompt is passed as an argument; -s silences banner output and
// --allow-all-tools lets the agent run tools without confirmation.
type copilotBackend struct {
	model string
}

func newCopilotBackend(opts Options) *copilotBackend {
	return &copilotBackend{model: opts.Model}
}

func (b *copilotBackend) Name() string { return "copilot" }

func (b *copilotBackend) Check() error {
	if _, err := exec.LookPath("copilot"); err != nil {
		return fmt.Errorf("copilot CLI not found, install with: npm install -g @github/copilot")
	}
	return nil
}

func (b *copilotBackend) Run(ctx context.Context, prompt, repoRoot string) (string, error) {
	args := []string{"-p", prompt, "-s", "--allow-all-tools"}
	if b.model != "" {
		args = append(args, "--model", ResolveCopilotModel(b.model))
	}

	cmd := exec.CommandContext(ctx, "copilot", args...)
	cmd.Dir = repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("copilot execution failed: %w\nstderr: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
