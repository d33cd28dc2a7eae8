package backend

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	claudecode "github.com/rokrokss/claude-code-sdk-go"
)

// claudeBackend talks to Claude through the Claude Code SDK, which manages
// the claude CLI subprocess. Authentication is handled by the CLI itself;
// users must have run 'claude login'.
type claudeBackend struct {
	model string
}

func newClaudeBackend(opts Options) *claudeBackend {
	return &claudeBackend{model: opts.Model}
}

func (b *claudeBackend) Name() string { return "claude" }

func (b *claudeBackend) Check() error {
	if _, err := exec.LookPath("claude"); err != nil {
		return fmt.Errorf("claude CLI not found, install with: npm install -g @anthropic-ai/claude-code")
	}
	return nil
}

// Run sends the prompt through an SDK-managed client session and collects
// the assistant's text output. The SDK spawns the claude CLI in the current
// working directory, so the caller chdirs to repoRoot before invoking
// parallel modes (all modes share one repository).
func (b *claudeBackend) Run(ctx context.Context, prompt, repoRoot string) (string, error) {
	if repoRoot != "" {
		if cwd, err := os.Getwd(); err != nil || !samePath(cwd, repoRoot) {
			if err := os.Chdir(repoRoot); err != nil {
				return "", fmt.Errorf("failed to enter repository %s: %w", repoRoot, err)
			}
		}
	}

	var output string
	err := executeWithRetry(ctx, func() error {
		return b.runOnce(ctx, prompt, &output)
	})
	if err != nil {
		return "", err
	}
	return output, nil
}

func (b *claudeBackend) runOnce(ctx context.Context, prompt string, out *string) error {
	var opts []claudecode.Option
	if b.model != "" {
		opts = append(opts, claudecode.WithModel(b.model))
	}

	return claudecode.WithClient(ctx, func(client claudecode.Client) error {
		if err := client.Query(ctx, prompt); err != nil {
			return fmt.Errorf("failed to send query: %w", err)
		}

		var content strings.Builder
		for msg := range client.ReceiveMessages(ctx) {
			switch m := msg.(type) {
			case *claudecode.AssistantMessage:
				for _, block := range m.Content {
					if textBlock, ok := block.(*claudecode.TextBlock); ok {
						content.WriteString(textBlock.Text)
					}
				}
			case *claudecode.ResultMessage:
				if m.IsError {
					return fmt.Errorf("claude returned an error result")
				}
				*out = content.String()
				return nil
			}
		}
		*out = content.String()
		return nil
	}, opts...)
}

func samePath(a, b string) bool {
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return os.SameFile(ai, bi)
}
