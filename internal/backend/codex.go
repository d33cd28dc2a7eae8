package backend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// codexBackend runs prompts through the codex CLI. The prompt goes in on
// stdin and -o /dev/stdout makes codex print the agent's final message
// directly, so no JSONL event stream parsing is needed.
type codexBackend struct {
	model           string
	profile         string
	reasoningEffort string
}

func newCodexBackend(opts Options) *codexBackend {
	return &codexBackend{
		model:           opts.Model,
		profile:         opts.Profile,
		reasoningEffort: opts.ReasoningEffort,
	}
}

func (b *codexBackend) Name() string { return "codex" }

func (b *codexBackend) Check() error {
	if _, err := exec.LookPath("codex"); err != nil {
		return fmt.Errorf("codex CLI not found, see https://github.com/openai/codex for installation")
	}
	return nil
}

func (b *codexBackend) args() []string {
	args := []string{"exec", "--full-auto", "-o", "/dev/stdout"}
	if b.profile != "" {
		args = append(args, "--profile", b.profile)
	}
	if b.model != "" {
		args = append(args, "--model", b.model)
	}
	if b.reasoningEffort != "" {
		args = append(args, "-c", "model_reasoning_effort="+b.reasoningEffort)
	}
	return append(args, "-")
}

func (b *codexBackend) Run(ctx context.Context, prompt, repoRoot string) (string, error) {
	cmd := exec.CommandContext(ctx, "codex", b.args()...)
	cmd.Dir = repoRoot
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("codex execution failed: %w\nstderr: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
