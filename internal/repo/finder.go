// Package repo locates the repository an analysis run targets. A repository
// can be named three ways: a local path, a git URL to clone, or an
// application ID matched against app.properties files under a search root.
package repo

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNotFound is returned when no repository matches the given application ID.
var ErrNotFound = errors.New("repository not found")

// IsURL reports whether the repo argument names a remote to clone rather
// than a local path.
func IsURL(s string) bool {
	if strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "ssh://") ||
		strings.HasPrefix(s, "git://") {
		return true
	}
	// scp-like syntax: git@github.com:user/repo.git
	if strings.HasPrefix(s, "git@") && strings.Contains(s, ":") {
		return true
	}
	return false
}

// Resolve turns a repo argument (local path or git URL) into a local
// repository root. URLs are cloned into cloneDir, or a fresh temporary
// directory when cloneDir is empty.
func Resolve(arg, cloneDir string) (string, error) {
	if !IsURL(arg) {
		path, err := filepath.Abs(arg)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path %q: %w", arg, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("repository path %q does not exist: %w", arg, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("repository path %q is not a directory", arg)
		}
		return path, nil
	}

	dest := cloneDir
	if dest == "" {
		tmp, err := os.MkdirTemp("", "revue-clone-*")
		if err != nil {
			return "", fmt.Errorf("failed to create clone directory: %w", err)
		}
		dest = tmp
	} else {
		dest = filepath.Join(dest, cloneName(arg))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return "", fmt.Errorf("failed to create clone directory: %w", err)
		}
	}

	_, err := gogit.PlainClone(dest, false, &gogit.CloneOptions{URL: arg})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryAlreadyExists) {
			return dest, nil
		}
		return "", fmt.Errorf("failed to clone %q: %w", arg, err)
	}
	return dest, nil
}

// cloneName derives a directory name from a git URL.
func cloneName(url string) string {
	name := url
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	if name == "" {
		name = "repo"
	}
	return name
}

// FindGitRoot walks upward from start looking for a .git entry.
// Returns "" when no repository encloses the path.
func FindGitRoot(start string) string {
	current, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// FindByAppID walks searchRoot looking for app.properties files whose app.id
// matches, and returns the enclosing git repository root. It fails when no
// match exists, or when matches point at different repositories.
func FindByAppID(searchRoot, appID string) (string, error) {
	type match struct {
		propsFile string
		gitRoot   string
	}
	var matches []match

	err := filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "app.properties" {
			return nil
		}

		props, err := ReadProperties(path)
		if err != nil {
			return nil
		}
		if props["app.id"] != appID {
			return nil
		}
		if gitRoot := FindGitRoot(filepath.Dir(path)); gitRoot != "" {
			matches = append(matches, match{propsFile: path, gitRoot: gitRoot})
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search %q: %w", searchRoot, err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no project with app.id=%s under %s", ErrNotFound, appID, searchRoot)
	}

	first := matches[0].gitRoot
	for _, m := range matches[1:] {
		if m.gitRoot != first {
			var b strings.Builder
			fmt.Fprintf(&b, "multiple candidate repositories for app.id=%s:\n", appID)
			for _, c := range matches {
				fmt.Fprintf(&b, "- %s (%s)\n", c.gitRoot, c.propsFile)
			}
			return "", errors.New(b.String())
		}
	}
	return first, nil
}

// ReadProperties parses a java-style properties file into a map. Blank lines
// and # comments are ignored; lines without = are skipped.
func ReadProperties(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	props := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return props, nil
}
