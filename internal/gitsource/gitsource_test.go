package gitsource

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"docwatch/internal/logging"
)

func TestIsCandidateFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"services/customer/main.py", true},
		{"main.py", true},
		{"services/customer/test_main.py", false},
		{"tests/helpers.py", false},
		{"services/Test_Endpoints.py", false},
		{"main.go", false},
		{"README.md", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsCandidateFile(tt.path); got != tt.expected {
				t.Errorf("IsCandidateFile(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestChangedFilesOutsideRepository(t *testing.T) {
	requireGit(t)

	tmpDir := t.TempDir()
	src := NewSource(tmpDir, testLogger())

	files := src.ChangedFiles(context.Background(), "HEAD^", "HEAD")
	if len(files) != 0 {
		t.Errorf("expected empty list outside a repository, got %v", files)
	}

	if diff := src.FileDiff(context.Background(), "main.py", "HEAD^", "HEAD"); diff != "" {
		t.Errorf("expected empty diff outside a repository, got %q", diff)
	}
}

func TestChangedFilesBetweenCommits(t *testing.T) {
	requireGit(t)

	repo := initTestRepo(t)

	writeFile(t, repo, "services/customer/main.py", "print('v1')\n")
	writeFile(t, repo, "notes.md", "notes\n")
	commit(t, repo, "initial")

	writeFile(t, repo, "services/customer/main.py", "print('v2')\n")
	writeFile(t, repo, "services/customer/test_main.py", "def test(): pass\n")
	writeFile(t, repo, "notes.md", "more notes\n")
	commit(t, repo, "changes")

	src := NewSource(repo, testLogger())
	files := src.ChangedFiles(context.Background(), "HEAD^", "HEAD")

	if len(files) != 1 || files[0] != "services/customer/main.py" {
		t.Errorf("ChangedFiles = %v, want only services/customer/main.py", files)
	}

	diff := src.FileDiff(context.Background(), "services/customer/main.py", "HEAD^", "HEAD")
	if diff == "" {
		t.Fatal("expected non-empty diff")
	}
	if !containsLine(diff, "+print('v2')") {
		t.Errorf("diff missing added line:\n%s", diff)
	}
}

func TestIsGitRepository(t *testing.T) {
	requireGit(t)

	repo := initTestRepo(t)
	if !IsGitRepository(repo) {
		t.Error("initialized repo should be recognized")
	}
	if IsGitRepository(t.TempDir()) {
		t.Error("plain directory should not be recognized")
	}
}

// Test helpers

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
	})
}

func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run(t, dir, "git", "init", "-q")
	run(t, dir, "git", "config", "user.email", "test@example.com")
	run(t, dir, "git", "config", "user.name", "test")
	return dir
}

func writeFile(t *testing.T, repo, rel, content string) {
	t.Helper()
	path := filepath.Join(repo, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func commit(t *testing.T, repo, message string) {
	t.Helper()
	run(t, repo, "git", "add", "-A")
	run(t, repo, "git", "commit", "-q", "-m", message)
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("%s %v failed: %v\n%s", name, args, err, out)
	}
}

func containsLine(text, line string) bool {
	for _, l := range splitLines(text) {
		if l == line {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
