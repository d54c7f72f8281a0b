// Package git resolves changed files by running the git CLI.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/zerr"
)

const headRef = "HEAD"

// ChangeSource implements ports.ChangeSource on top of the git executable.
// It is safe for concurrent use.
type ChangeSource struct {
	binary string
}

// NewChangeSource creates a ChangeSource running the git found in PATH.
func NewChangeSource() *ChangeSource {
	return &ChangeSource{binary: "git"}
}

// ResolveChanges lists the files changed according to req, relative to req.Root.
// Files outside req.Root are dropped.
func (s *ChangeSource) ResolveChanges(ctx context.Context, req domain.ChangeRequest) (domain.ChangeSet, error) {
	if req.ForceAll {
		return domain.AllChanged(), nil
	}

	gitRoot, err := FindRoot(req.Root)
	if err != nil {
		return domain.ChangeSet{}, resolutionError(err, "workspace is not inside a git repository")
	}

	current := req.CurrentRef
	if current == "" {
		current = headRef
	}

	var paths []string
	switch req.Mode {
	case domain.CompareCommit, "":
		if req.PreviousRef == "" {
			return domain.AllChanged(), nil
		}
		paths, err = s.diff(ctx, gitRoot, req.PreviousRef, current)
	case domain.CompareStaged:
		paths, err = s.diff(ctx, gitRoot, "--cached")
	case domain.CompareWorking:
		paths, err = s.workingTree(ctx, gitRoot)
	case domain.CompareBranch:
		if req.PreviousRef == "" {
			return domain.ChangeSet{}, resolutionError(nil, "branch comparison requires a base revision")
		}
		paths, err = s.diff(ctx, gitRoot, req.PreviousRef+"..."+current)
	default:
		return domain.ChangeSet{}, zerr.With(resolutionError(nil, "unknown compare mode"), "compare", string(req.Mode))
	}
	if err != nil {
		return domain.ChangeSet{}, err
	}

	rebased, err := rebase(paths, gitRoot, req.Root)
	if err != nil {
		return domain.ChangeSet{}, resolutionError(err, "failed to rebase changed files")
	}
	return domain.NewChangeSet(rebased...), nil
}

// Revision resolves ref, HEAD when empty, to a full commit hash.
func (s *ChangeSource) Revision(ctx context.Context, root, ref string) (string, error) {
	if ref == "" {
		ref = headRef
	}
	out, err := s.run(ctx, root, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", zerr.With(err, "ref", ref)
	}
	return strings.TrimSpace(string(out)), nil
}

func (s *ChangeSource) diff(ctx context.Context, gitRoot string, revs ...string) ([]string, error) {
	args := append([]string{"diff", "--name-status", "-z", "-M", "--no-ext-diff"}, revs...)
	out, err := s.run(ctx, gitRoot, args...)
	if err != nil {
		return nil, err
	}
	return parseNameStatus(out), nil
}

// workingTree lists tracked changes against HEAD plus untracked files.
func (s *ChangeSource) workingTree(ctx context.Context, gitRoot string) ([]string, error) {
	tracked, err := s.diff(ctx, gitRoot, headRef)
	if err != nil {
		return nil, err
	}
	out, err := s.run(ctx, gitRoot, "ls-files", "--others", "--exclude-standard", "-z")
	if err != nil {
		return nil, err
	}
	return append(tracked, splitNUL(out)...), nil
}

func (s *ChangeSource) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	// #nosec G204 -- arguments are revisions and fixed flags
	cmd := exec.CommandContext(ctx, s.binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		wrapped := resolutionError(err, "git command failed")
		wrapped = zerr.With(wrapped, "command", "git "+strings.Join(args, " "))
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			wrapped = zerr.With(wrapped, "stderr", msg)
		}
		return nil, wrapped
	}
	return stdout.Bytes(), nil
}

// parseNameStatus parses `git diff --name-status -z` output. Renames and
// copies contribute both the old and the new path.
func parseNameStatus(out []byte) []string {
	fields := splitNUL(out)

	var paths []string
	for i := 0; i < len(fields); i++ {
		status := fields[i]
		switch {
		case strings.HasPrefix(status, "R"), strings.HasPrefix(status, "C"):
			if i+2 < len(fields) {
				paths = append(paths, fields[i+1], fields[i+2])
			}
			i += 2
		default:
			if i+1 < len(fields) {
				paths = append(paths, fields[i+1])
			}
			i++
		}
	}
	return paths
}

func splitNUL(out []byte) []string {
	var fields []string
	for f := range strings.SplitSeq(string(out), "\x00") {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// rebase converts paths relative to gitRoot into paths relative to root,
// dropping those that fall outside root.
func rebase(paths []string, gitRoot, root string) ([]string, error) {
	prefix, err := relativeRoot(gitRoot, root)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = domain.NormalizePath(p)
		if !domain.IsPathPrefix(prefix, p) {
			continue
		}
		if prefix != "" {
			p = strings.TrimPrefix(strings.TrimPrefix(p, prefix), "/")
		}
		out = append(out, p)
	}
	return out, nil
}

func relativeRoot(gitRoot, root string) (string, error) {
	gitRoot, err := filepath.EvalSymlinks(gitRoot)
	if err != nil {
		return "", err
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(gitRoot, root)
	if err != nil {
		return "", err
	}
	return domain.NormalizePath(filepath.ToSlash(rel)), nil
}

// FindRoot walks up from dir to the first directory containing .git.
// A .git file, as used by worktrees and submodules, counts too.
func FindRoot(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve directory")
	}
	for {
		if _, err := os.Stat(filepath.Join(current, domain.GitDirName)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", zerr.With(zerr.Wrap(domain.ErrGitRootNotFound, ""), "dir", dir)
		}
		current = parent
	}
}

// resolutionError wraps cause, if any, under ErrChangeResolution.
func resolutionError(cause error, msg string) error {
	err := zerr.Wrap(domain.ErrChangeResolution, msg)
	if cause != nil {
		err = zerr.With(err, "error", cause.Error())
	}
	return err
}
