// Package backend runs analysis prompts through an AI CLI. Three backends
// are supported: claude (via the Claude Code SDK), codex, and copilot.
// Every backend takes a prompt and a repository root and returns the raw
// text the tool printed, which the extraction layer then turns into
// structured results.
package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Options carries backend-specific tuning. Fields a backend does not
// understand are ignored.
type Options struct {
	Model           string // model name, backend-specific
	Profile         string // codex only: predefined profile name
	ReasoningEffort string // codex only: model_reasoning_effort value
}

// Runner executes an analysis prompt against a repository.
type Runner interface {
	// Name identifies the backend (claude, codex, copilot).
	Name() string
	// Check verifies the backend CLI is installed and usable.
	Check() error
	// Run sends the prompt and returns the tool's raw output. The repository
	// root is the working directory for the invocation so the tool can
	// browse the code it is reviewing.
	Run(ctx context.Context, prompt, repoRoot string) (string, error)
}

// New constructs the named backend.
func New(name string, opts Options) (Runner, error) {
	switch name {
	case "claude":
		return newClaudeBackend(opts), nil
	case "codex":
		return newCodexBackend(opts), nil
	case "copilot":
		return newCopilotBackend(opts), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
}

// Names returns the supported backend names in sorted order.
func Names() []string {
	names := []string{"claude", "codex", "copilot"}
	sort.Strings(names)
	return names
}
