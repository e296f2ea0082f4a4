package detect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// snippetMaxLines bounds how much of a handler body is extracted.
const snippetMaxLines = 20

// SnippetExtractor pulls handler source out of the current working tree.
// Extraction reads final file state, not the diff, so the snippet reflects
// the post-change function even when the diff shows incremental edits.
type SnippetExtractor struct {
	repoRoot string
}

// NewSnippetExtractor creates an extractor rooted at repoRoot.
func NewSnippetExtractor(repoRoot string) *SnippetExtractor {
	return &SnippetExtractor{repoRoot: repoRoot}
}

// Extract returns the source of functionName from the file at relPath.
// Failures never propagate: an unreadable file or a missing function yields
// a diagnostic placeholder so the enclosing record survives.
func (e *SnippetExtractor) Extract(relPath, functionName string) string {
	content, err := os.ReadFile(filepath.Join(e.repoRoot, relPath))
	if err != nil {
		return fmt.Sprintf("# Error reading function: %v", err)
	}
	return ExtractSnippet(string(content), functionName)
}

// ExtractSnippet finds functionName in full file text and returns up to
// snippetMaxLines lines of it, truncated before the next top-level
// definition or route decorator.
func ExtractSnippet(fileText, functionName string) string {
	lines := strings.Split(fileText, "\n")
	marker := "def " + functionName + "("

	for i, line := range lines {
		if !strings.Contains(line, marker) {
			continue
		}

		end := i + snippetMaxLines
		if end > len(lines) {
			end = len(lines)
		}
		window := lines[i:end]

		// Stop before the next definition so it is not swallowed into
		// this snippet.
		for j := 1; j < len(window); j++ {
			stripped := strings.TrimSpace(window[j])
			if strings.HasPrefix(stripped, "def ") ||
				strings.HasPrefix(stripped, "class ") ||
				strings.HasPrefix(stripped, "@app.") ||
				strings.HasPrefix(stripped, "@router.") {
				window = window[:j]
				break
			}
		}

		return strings.Join(window, "\n")
	}

	return fmt.Sprintf("# Function %s not found in current file", functionName)
}
