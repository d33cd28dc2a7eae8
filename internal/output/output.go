// Package output persists the artifacts of an analysis run: the prompts,
// run metadata, the raw backend output, and the extracted JSON results.
// Everything lands in one timestamped directory under the target repository
// so consecutive runs never collide.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okabe/revue/internal/review"
)

const rawOutputFile = "raw_output.txt"

// RunDir is a run's output directory. Raw output appends from parallel
// modes are serialized through a mutex.
type RunDir struct {
	path string

	mu sync.Mutex
}

// NewRunDir creates a timestamped run directory under root.
func NewRunDir(root string) (*RunDir, error) {
	name := "revue-" + time.Now().Format("20060102_150405")
	path := filepath.Join(root, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	return &RunDir{path: path}, nil
}

// OpenRunDir wraps an existing run directory, for report regeneration.
func OpenRunDir(path string) (*RunDir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("run directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("run directory %s is not a directory", path)
	}
	return &RunDir{path: path}, nil
}

// Path returns the run directory's location on disk.
func (d *RunDir) Path() string { return d.path }

// WritePrompt stores the prompt sent to the backend for one mode.
func (d *RunDir) WritePrompt(mode review.Mode, prompt string) error {
	name := fmt.Sprintf("prompt_%s.txt", mode)
	if err := os.WriteFile(filepath.Join(d.path, name), []byte(prompt), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Meta describes one run for the meta.txt file.
type Meta struct {
	AppID        string
	Repo         string
	BaseBranch   string
	TargetBranch string
	Backend      string
	Model        string
	Profile      string
}

// WriteMeta stores human-readable run metadata.
func (d *RunDir) WriteMeta(m Meta) error {
	var b strings.Builder
	if m.AppID != "" {
		fmt.Fprintf(&b, "AppID: %s\n", m.AppID)
	}
	fmt.Fprintf(&b, "Repo: %s\n", m.Repo)
	fmt.Fprintf(&b, "Base Branch: %s\n", m.BaseBranch)
	fmt.Fprintf(&b, "Target Branch: %s\n", m.TargetBranch)
	fmt.Fprintf(&b, "Backend: %s\n", m.Backend)
	if m.Model != "" {
		fmt.Fprintf(&b, "Model: %s\n", m.Model)
	}
	if m.Profile != "" {
		fmt.Fprintf(&b, "Profile: %s\n", m.Profile)
	}
	fmt.Fprintf(&b, "Generated At: %s\n", time.Now().Format("2006-01-02 15:04:05"))

	if err := os.WriteFile(filepath.Join(d.path, "meta.txt"), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write meta.txt: %w", err)
	}
	return nil
}

// AppendRawOutput appends a mode-labeled block of raw backend output.
// Safe for concurrent use from parallel mode goroutines.
func (d *RunDir) AppendRawOutput(mode review.Mode, raw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(d.path, rawOutputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rawOutputFile, err)
	}
	defer f.Close()

	separator := strings.Repeat("=", 50)
	block := fmt.Sprintf("\n\n%s\nMode: %s\n%s\n\n%s", separator, mode, separator, raw)
	if _, err := f.WriteString(block); err != nil {
		return fmt.Errorf("failed to append to %s: %w", rawOutputFile, err)
	}
	return nil
}

// WriteResult stores the canonical JSON result for a mode, named per the
// mode's result file (review_result.json and friends).
func (d *RunDir) WriteResult(mode review.Mode, jsonText string) (string, error) {
	name := review.GetModeInfo(mode).ResultFile
	if name == "" {
		return "", fmt.Errorf("mode %q has no result file", mode)
	}
	path := filepath.Join(d.path, name)
	if !strings.HasSuffix(jsonText, "\n") {
		jsonText += "\n"
	}
	if err := os.WriteFile(path, []byte(jsonText), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// ReadResult loads a stored result file for a mode. Returns os.ErrNotExist
// wrapped when the mode was not run.
func (d *RunDir) ReadResult(mode review.Mode) (string, error) {
	name := review.GetModeInfo(mode).ResultFile
	data, err := os.ReadFile(filepath.Join(d.path, name))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// WriteReport stores rendered HTML next to the JSON it was built from.
func (d *RunDir) WriteReport(name, html string) (string, error) {
	path := filepath.Join(d.path, name)
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}
