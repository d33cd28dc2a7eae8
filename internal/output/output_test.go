package output

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/okabe/revue/internal/review"
)

func TestNewRunDir_CreatesTimestampedDir(t *testing.T) {
	root := t.TempDir()

	d, err := NewRunDir(root)
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	base := filepath.Base(d.Path())
	if !strings.HasPrefix(base, "revue-") {
		t.Errorf("run dir name should start with revue-, got %q", base)
	}
	if filepath.Dir(d.Path()) != root {
		t.Errorf("run dir should live under %q, got %q", root, d.Path())
	}
	if info, err := os.Stat(d.Path()); err != nil || !info.IsDir() {
		t.Errorf("run dir should exist as a directory: %v", err)
	}
}

func TestOpenRunDir_Missing(t *testing.T) {
	_, err := OpenRunDir(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWritePrompt_PerModeFiles(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	for _, mode := range review.AllModes() {
		if err := d.WritePrompt(mode, "prompt for "+string(mode)); err != nil {
			t.Fatalf("WritePrompt(%s) failed: %v", mode, err)
		}
	}

	for _, mode := range review.AllModes() {
		data, err := os.ReadFile(filepath.Join(d.Path(), "prompt_"+string(mode)+".txt"))
		if err != nil {
			t.Fatalf("prompt file for %s missing: %v", mode, err)
		}
		if string(data) != "prompt for "+string(mode) {
			t.Errorf("prompt file for %s has wrong content: %q", mode, data)
		}
	}
}

func TestWriteMeta(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	err = d.WriteMeta(Meta{
		AppID:        "svc-a",
		Repo:         "/work/svc-a",
		BaseBranch:   "main",
		TargetBranch: "feature/x",
		Backend:      "codex",
		Model:        "gpt-5.1",
		Profile:      "fast",
	})
	if err != nil {
		t.Fatalf("WriteMeta() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(d.Path(), "meta.txt"))
	if err != nil {
		t.Fatalf("meta.txt missing: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"AppID: svc-a",
		"Base Branch: main",
		"Target Branch: feature/x",
		"Backend: codex",
		"Model: gpt-5.1",
		"Profile: fast",
		"Generated At: ",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("meta.txt should contain %q, got:\n%s", want, content)
		}
	}
}

func TestWriteMeta_OmitsEmptyOptionals(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	if err := d.WriteMeta(Meta{Repo: "/r", BaseBranch: "main", TargetBranch: "f", Backend: "claude"}); err != nil {
		t.Fatalf("WriteMeta() failed: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(d.Path(), "meta.txt"))
	for _, absent := range []string{"AppID:", "Model:", "Profile:"} {
		if strings.Contains(string(data), absent) {
			t.Errorf("meta.txt should omit %q when unset", absent)
		}
	}
}

func TestAppendRawOutput_ModeSeparatedBlocks(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	if err := d.AppendRawOutput(review.ModeAnalyze, "analyze output"); err != nil {
		t.Fatalf("AppendRawOutput() failed: %v", err)
	}
	if err := d.AppendRawOutput(review.ModeReview, "review output"); err != nil {
		t.Fatalf("AppendRawOutput() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(d.Path(), "raw_output.txt"))
	if err != nil {
		t.Fatalf("raw_output.txt missing: %v", err)
	}
	content := string(data)

	analyzePos := strings.Index(content, "Mode: analyze")
	reviewPos := strings.Index(content, "Mode: review")
	if analyzePos < 0 || reviewPos < 0 {
		t.Fatalf("raw output should contain both mode headers:\n%s", content)
	}
	if analyzePos > reviewPos {
		t.Error("blocks should appear in append order")
	}
	if !strings.Contains(content, "analyze output") || !strings.Contains(content, "review output") {
		t.Error("raw output should preserve both payloads")
	}
	if !strings.Contains(content, strings.Repeat("=", 50)) {
		t.Error("blocks should be separated by a rule")
	}
}

func TestAppendRawOutput_ConcurrentAppendsStayIntact(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	var wg sync.WaitGroup
	for _, mode := range review.AllModes() {
		wg.Add(1)
		go func(m review.Mode) {
			defer wg.Done()
			payload := strings.Repeat(string(m)+" ", 200)
			if err := d.AppendRawOutput(m, payload); err != nil {
				t.Errorf("AppendRawOutput(%s) failed: %v", m, err)
			}
		}(mode)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(d.Path(), "raw_output.txt"))
	if err != nil {
		t.Fatalf("raw_output.txt missing: %v", err)
	}
	content := string(data)
	for _, mode := range review.AllModes() {
		if !strings.Contains(content, "Mode: "+string(mode)) {
			t.Errorf("raw output should contain a block for %s", mode)
		}
		if !strings.Contains(content, strings.Repeat(string(mode)+" ", 200)) {
			t.Errorf("payload for %s should be contiguous, not interleaved", mode)
		}
	}
}

func TestWriteResult_UsesModeResultFile(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	path, err := d.WriteResult(review.ModeReview, `{"findings": []}`)
	if err != nil {
		t.Fatalf("WriteResult() failed: %v", err)
	}
	if filepath.Base(path) != "review_result.json" {
		t.Errorf("review result should be review_result.json, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("result file missing: %v", err)
	}
	if string(data) != "{\"findings\": []}\n" {
		t.Errorf("result should be newline-terminated, got %q", data)
	}
}

func TestWriteResult_ReadResultRoundTrip(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	want := "{\n  \"change_summary\": {}\n}\n"
	if _, err := d.WriteResult(review.ModeAnalyze, want); err != nil {
		t.Fatalf("WriteResult() failed: %v", err)
	}

	got, err := d.ReadResult(review.ModeAnalyze)
	if err != nil {
		t.Fatalf("ReadResult() failed: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch: %q != %q", got, want)
	}
}

func TestReadResult_MissingMode(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	if _, err := d.ReadResult(review.ModePriority); err == nil {
		t.Fatal("expected error for mode that was never run")
	}
}

func TestWriteReport(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunDir() failed: %v", err)
	}

	path, err := d.WriteReport("review_result.html", "<html></html>")
	if err != nil {
		t.Fatalf("WriteReport() failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("report content mismatch: %q", data)
	}
}
