// Package gitsource answers "what changed between two revisions" by
// shelling out to git. Failures degrade to empty results: a missing
// revision or a non-repository directory must never abort a run.
package gitsource

import (
	"context"
	"os/exec"
	"strings"

	"docwatch/internal/logging"
)

// Source retrieves changed files and per-file diffs between two revisions.
type Source struct {
	repoRoot string
	logger   *logging.Logger
}

// NewSource creates a Source rooted at repoRoot.
func NewSource(repoRoot string, logger *logging.Logger) *Source {
	return &Source{repoRoot: repoRoot, logger: logger}
}

// ChangedFiles returns the Python source files changed between from and to,
// excluding anything that looks like a test. Git failures yield an empty
// list.
func (s *Source) ChangedFiles(ctx context.Context, from, to string) []string {
	out, err := s.git(ctx, "diff", "--name-only", from, to)
	if err != nil {
		s.logger.Warn("Failed to list changed files", map[string]interface{}{
			"from":  from,
			"to":    to,
			"error": err.Error(),
		})
		return nil
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if IsCandidateFile(line) {
			files = append(files, line)
		}
	}
	return files
}

// FileDiff returns the unified diff for one file between from and to.
// Git failures yield empty text.
func (s *Source) FileDiff(ctx context.Context, path, from, to string) string {
	out, err := s.git(ctx, "diff", from, to, "--", path)
	if err != nil {
		s.logger.Warn("Failed to get file diff", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return ""
	}
	return out
}

func (s *Source) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.repoRoot

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

// IsCandidateFile reports whether a changed path is worth scanning:
// Python source, not a test file.
func IsCandidateFile(path string) bool {
	if path == "" || !strings.HasSuffix(path, ".py") {
		return false
	}
	return !strings.Contains(strings.ToLower(path), "test")
}

// IsGitRepository checks if the given path is a git repository
func IsGitRepository(repoRoot string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = repoRoot
	err := cmd.Run()
	return err == nil
}

// RepoRoot finds the git repository root from the given directory
func RepoRoot(startPath string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = startPath

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
