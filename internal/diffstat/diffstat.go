// Package diffstat summarizes unified diffs into per-file statistics for
// run logging and the notification report.
package diffstat

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// FileStat describes the shape of one file's change.
type FileStat struct {
	Path      string `json:"path"`
	OldPath   string `json:"oldPath,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	IsNew     bool   `json:"isNew,omitempty"`
	Deleted   bool   `json:"deleted,omitempty"`
	Renamed   bool   `json:"renamed,omitempty"`
}

// Parse parses a unified diff into per-file statistics.
func Parse(diffContent string) ([]FileStat, error) {
	if diffContent == "" {
		return []FileStat{}, nil
	}

	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(diffContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	stats := make([]FileStat, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		stats = append(stats, statFromFileDiff(fd))
	}
	return stats, nil
}

func statFromFileDiff(fd *godiff.FileDiff) FileStat {
	st := FileStat{
		Path:    cleanPath(fd.NewName),
		OldPath: cleanPath(fd.OrigName),
	}

	if fd.OrigName == "/dev/null" || fd.OrigName == "" {
		st.IsNew = true
		st.OldPath = ""
	}
	if fd.NewName == "/dev/null" || fd.NewName == "" {
		st.Deleted = true
		st.Path = st.OldPath
		st.OldPath = ""
	}
	if !st.IsNew && !st.Deleted && st.OldPath != st.Path {
		st.Renamed = true
	}
	if st.OldPath == st.Path {
		st.OldPath = ""
	}

	for _, hunk := range fd.Hunks {
		adds, dels := countHunk(hunk)
		st.Additions += adds
		st.Deletions += dels
	}

	return st
}

func countHunk(hunk *godiff.Hunk) (additions, deletions int) {
	for _, line := range strings.Split(string(hunk.Body), "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			additions++
		case '-':
			deletions++
		}
	}
	return additions, deletions
}

// cleanPath removes the a/ or b/ prefix from git diff paths
func cleanPath(path string) string {
	if path == "" || path == "/dev/null" {
		return path
	}
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}

// Totals sums additions and deletions across files.
func Totals(stats []FileStat) (additions, deletions int) {
	for _, st := range stats {
		additions += st.Additions
		deletions += st.Deletions
	}
	return additions, deletions
}

// IsSourceFile checks if the file is a source code file (not generated,
// vendored, or lock content).
func IsSourceFile(path string) bool {
	skipPrefixes := []string{
		"vendor/",
		"node_modules/",
		".git/",
		"testdata/",
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}

	skipSuffixes := []string{
		".sum",
		".lock",
		".min.js",
		".min.css",
		".map",
		"-lock.json",
	}
	for _, suffix := range skipSuffixes {
		if strings.HasSuffix(path, suffix) {
			return false
		}
	}

	return true
}

// FilterSourceFiles drops non-source entries from a stat list.
func FilterSourceFiles(stats []FileStat) []FileStat {
	filtered := make([]FileStat, 0, len(stats))
	for _, st := range stats {
		if IsSourceFile(st.Path) {
			filtered = append(filtered, st)
		}
	}
	return filtered
}
