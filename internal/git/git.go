// Package git provides branch comparison and diff retrieval using go-git.
// It resolves refs (trying remote-tracking fallbacks), computes the
// merge-base between a base and target branch, and produces the name-status
// and unified diff text fed into analysis prompts, with middle truncation
// for oversized output.
package git

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	godiffpatch "github.com/sourcegraph/go-diff-patch"
)

// Default truncation budgets for text embedded in prompts.
const (
	NameStatusMaxChars = 200_000
	DiffMaxChars       = 400_000
)

// Sentinel errors for common git operations.
var (
	// ErrNotAGitRepo is returned when the path is not a valid git repository.
	ErrNotAGitRepo = errors.New("not a git repository")
	// ErrNoStagedChanges is returned by StagedDiff when nothing is staged.
	ErrNoStagedChanges = errors.New("no staged changes found")
)

// Repository wraps a go-git repository with the operations the analysis
// pipeline needs.
type Repository struct {
	repo *gogit.Repository
}

// Open opens the git repository at the given path.
// Returns ErrNotAGitRepo if the path is not a valid git repository.
func Open(path string) (*Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotAGitRepo
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return &Repository{repo: repo}, nil
}

// Root returns the absolute path of the repository worktree.
func (r *Repository) Root() (string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	return worktree.Filesystem.Root(), nil
}

// ResolveRef resolves a branch name or ref to a commit hash, trying the name
// as given, then origin/<name>, then refs/remotes/origin/<name>. This lets
// users name branches that only exist remotely.
func (r *Repository) ResolveRef(name string) (plumbing.Hash, error) {
	candidates := []string{
		name,
		"origin/" + name,
		"refs/remotes/origin/" + name,
	}
	for _, rev := range candidates {
		if h, err := r.repo.ResolveRevision(plumbing.Revision(rev)); err == nil {
			return *h, nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("cannot resolve ref %q", name)
}

// Comparison identifies the commit range an analysis run looks at.
type Comparison struct {
	BaseRefUsed  string // the ref actually used for base (may be its upstream)
	BaseSHA      string
	TargetSHA    string
	MergeBaseSHA string
}

// ResolveComparison resolves base and target to SHAs and computes their
// merge-base. If the base branch has an upstream whose tip is ahead of the
// local branch, the upstream is used instead so the diff reflects what is
// actually on the remote.
func (r *Repository) ResolveComparison(base, target string) (*Comparison, error) {
	baseHash, err := r.ResolveRef(base)
	if err != nil {
		return nil, err
	}
	baseRefUsed := base

	if upName, upHash, ok := r.upstreamOf(base); ok && upHash != baseHash {
		ahead, err := r.isAhead(upHash, baseHash)
		if err == nil && ahead {
			baseRefUsed = upName
			baseHash = upHash
		}
	}

	targetHash, err := r.ResolveRef(target)
	if err != nil {
		return nil, err
	}

	baseCommit, err := r.repo.CommitObject(baseHash)
	if err != nil {
		return nil, fmt.Errorf("failed to load base commit: %w", err)
	}
	targetCommit, err := r.repo.CommitObject(targetHash)
	if err != nil {
		return nil, fmt.Errorf("failed to load target commit: %w", err)
	}

	bases, err := targetCommit.MergeBase(baseCommit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute merge-base: %w", err)
	}
	if len(bases) == 0 {
		return nil, fmt.Errorf("branches %q and %q share no common ancestor", base, target)
	}

	return &Comparison{
		BaseRefUsed:  baseRefUsed,
		BaseSHA:      baseHash.String(),
		TargetSHA:    targetHash.String(),
		MergeBaseSHA: bases[0].Hash.String(),
	}, nil
}

// upstreamOf returns the remote-tracking ref name and hash configured as the
// branch's upstream, if any.
func (r *Repository) upstreamOf(branch string) (string, plumbing.Hash, bool) {
	cfg, err := r.repo.Config()
	if err != nil {
		return "", plumbing.ZeroHash, false
	}
	b, ok := cfg.Branches[branch]
	if !ok || b.Remote == "" || b.Merge == "" {
		return "", plumbing.ZeroHash, false
	}

	short := strings.TrimPrefix(string(b.Merge), "refs/heads/")
	refName := plumbing.NewRemoteReferenceName(b.Remote, short)
	ref, err := r.repo.Reference(refName, true)
	if err != nil {
		return "", plumbing.ZeroHash, false
	}
	return b.Remote + "/" + short, ref.Hash(), true
}

// isAhead reports whether candidate has commits not reachable from base.
func (r *Repository) isAhead(candidate, base plumbing.Hash) (bool, error) {
	candidateCommit, err := r.repo.CommitObject(candidate)
	if err != nil {
		return false, err
	}
	baseCommit, err := r.repo.CommitObject(base)
	if err != nil {
		return false, err
	}
	ancestor, err := candidateCommit.IsAncestor(baseCommit)
	if err != nil {
		return false, err
	}
	return !ancestor, nil
}

// Clipped is text that may have been middle-truncated to fit a budget.
// Lines and Chars describe the original, untruncated output.
type Clipped struct {
	Text      string
	Truncated bool
	Lines     int
	Chars     int
}

// Clip applies middle truncation: half the budget from the start, half from
// the end, with a marker noting how much was removed. The interesting parts
// of a diff tend to be its beginning and end, so both survive.
func Clip(text string, maxChars int) Clipped {
	c := Clipped{
		Text:  text,
		Lines: strings.Count(text, "\n"),
		Chars: len(text),
	}
	if maxChars <= 0 || len(text) <= maxChars {
		return c
	}

	left := maxChars / 2
	right := maxChars - left
	removed := len(text) - maxChars
	c.Text = fmt.Sprintf("%s…%d chars truncated…%s", text[:left], removed, text[len(text)-right:])
	c.Truncated = true
	return c
}

// NameStatus returns the name-status listing (one "X\tpath" line per change)
// between the merge-base and the target commit.
func (r *Repository) NameStatus(c *Comparison, maxChars int) (Clipped, error) {
	fromTree, toTree, err := r.comparisonTrees(c)
	if err != nil {
		return Clipped{}, err
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return Clipped{}, fmt.Errorf("failed to diff trees: %w", err)
	}

	var b strings.Builder
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return Clipped{}, fmt.Errorf("failed to read change action: %w", err)
		}

		var code byte
		var path string
		switch action {
		case merkletrie.Insert:
			code, path = 'A', change.To.Name
		case merkletrie.Delete:
			code, path = 'D', change.From.Name
		default:
			code, path = 'M', change.To.Name
		}
		fmt.Fprintf(&b, "%c\t%s\n", code, path)
	}

	return Clip(b.String(), maxChars), nil
}

// Diff returns the unified diff between the merge-base and target commits.
func (r *Repository) Diff(c *Comparison, maxChars int) (Clipped, error) {
	fromCommit, err := r.repo.CommitObject(plumbing.NewHash(c.MergeBaseSHA))
	if err != nil {
		return Clipped{}, fmt.Errorf("failed to load merge-base commit: %w", err)
	}
	toCommit, err := r.repo.CommitObject(plumbing.NewHash(c.TargetSHA))
	if err != nil {
		return Clipped{}, fmt.Errorf("failed to load target commit: %w", err)
	}

	patch, err := fromCommit.Patch(toCommit)
	if err != nil {
		return Clipped{}, fmt.Errorf("failed to generate patch: %w", err)
	}

	return Clip(patch.String(), maxChars), nil
}

func (r *Repository) comparisonTrees(c *Comparison) (from, to *object.Tree, err error) {
	fromCommit, err := r.repo.CommitObject(plumbing.NewHash(c.MergeBaseSHA))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load merge-base commit: %w", err)
	}
	toCommit, err := r.repo.CommitObject(plumbing.NewHash(c.TargetSHA))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load target commit: %w", err)
	}

	if from, err = fromCommit.Tree(); err != nil {
		return nil, nil, fmt.Errorf("failed to load merge-base tree: %w", err)
	}
	if to, err = toCommit.Tree(); err != nil {
		return nil, nil, fmt.Errorf("failed to load target tree: %w", err)
	}
	return from, to, nil
}

// StagedNameStatus lists staged files in the same "X\tpath" format as
// NameStatus. Returns ErrNoStagedChanges when the index matches HEAD.
func (r *Repository) StagedNameStatus(maxChars int) (Clipped, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return Clipped{}, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return Clipped{}, fmt.Errorf("failed to get status: %w", err)
	}

	var paths []string
	for path, s := range status {
		if s.Staging == gogit.Unmodified || s.Staging == gogit.Untracked {
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return Clipped{}, ErrNoStagedChanges
	}
	sort.Strings(paths)

	var b strings.Builder
	for i, path := range paths {
		if i > 0 {
			b.WriteString("\n")
		}
		code := byte('M')
		switch status[path].Staging {
		case gogit.Added:
			code = 'A'
		case gogit.Deleted:
			code = 'D'
		case gogit.Renamed:
			code = 'R'
		case gogit.Copied:
			code = 'C'
		}
		fmt.Fprintf(&b, "%c\t%s", code, path)
	}
	return Clip(b.String(), maxChars), nil
}

// StagedDiff returns a unified diff of the staged changes against HEAD,
// for reviewing work that has not been committed yet. Returns
// ErrNoStagedChanges when the index matches HEAD.
func (r *Repository) StagedDiff() (string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}

	var headTree *object.Tree
	if head, err := r.repo.Head(); err == nil {
		headCommit, err := r.repo.CommitObject(head.Hash())
		if err != nil {
			return "", fmt.Errorf("failed to load HEAD commit: %w", err)
		}
		if headTree, err = headCommit.Tree(); err != nil {
			return "", fmt.Errorf("failed to load HEAD tree: %w", err)
		}
	}

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("failed to read index: %w", err)
	}

	var b strings.Builder
	staged := 0
	for _, entry := range idx.Entries {
		fileStatus := status.File(entry.Name)
		if fileStatus.Staging == gogit.Unmodified || fileStatus.Staging == gogit.Untracked {
			continue
		}
		staged++

		newContent, err := r.blobContent(entry.Hash)
		if err != nil {
			return "", fmt.Errorf("failed to read staged %s: %w", entry.Name, err)
		}

		oldContent := ""
		if headTree != nil && fileStatus.Staging != gogit.Added {
			if file, err := headTree.File(entry.Name); err == nil {
				if oldContent, err = file.Contents(); err != nil {
					return "", fmt.Errorf("failed to read HEAD %s: %w", entry.Name, err)
				}
			}
		}
		if fileStatus.Staging == gogit.Deleted {
			newContent = ""
		}

		b.WriteString(godiffpatch.GeneratePatch(entry.Name, oldContent, newContent))
	}

	// Deleted files leave no index entry; diff them from the status map.
	for path, s := range status {
		if s.Staging != gogit.Deleted || headTree == nil {
			continue
		}
		file, err := headTree.File(path)
		if err != nil {
			continue
		}
		oldContent, err := file.Contents()
		if err != nil {
			return "", fmt.Errorf("failed to read HEAD %s: %w", path, err)
		}
		staged++
		b.WriteString(godiffpatch.GeneratePatch(path, oldContent, ""))
	}

	if staged == 0 {
		return "", ErrNoStagedChanges
	}
	return b.String(), nil
}

func (r *Repository) blobContent(hash plumbing.Hash) (content string, err error) {
	blob, err := r.repo.BlobObject(hash)
	if err != nil {
		return "", err
	}
	reader, err := blob.Reader()
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
