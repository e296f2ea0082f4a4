package detect

import (
	"regexp"
	"strings"

	"docwatch/internal/logging"
)

// Route decorator patterns, tested in fixed order; the first match wins.
// The two decorator prefixes are mutually exclusive, so at most one pattern
// can match a given line.
var routePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)@app\.(get|post|put|delete|patch)\s*\(`),
	regexp.MustCompile(`(?i)@router\.(get|post|put|delete|patch)\s*\(`),
}

// quotedPathPattern extracts the first quoted string literal on a line.
var quotedPathPattern = regexp.MustCompile(`["']([^"']+)["']`)

// funcDefPattern recognizes an (optionally async-qualified) function
// definition and captures its identifier.
var funcDefPattern = regexp.MustCompile(`(?:async\s+)?def\s+(\w+)`)

// locatorWindow bounds the forward scan for a handler signature: the line
// after the decorator plus at most nine more.
const locatorWindow = 10

// Detector runs the change-detection pipeline over one file's diff at a
// time. It keeps no state across files.
type Detector struct {
	snippets *SnippetExtractor
	logger   *logging.Logger
}

// NewDetector creates a Detector that resolves handler bodies against the
// current working tree under repoRoot.
func NewDetector(repoRoot string, logger *logging.Logger) *Detector {
	return &Detector{
		snippets: NewSnippetExtractor(repoRoot),
		logger:   logger,
	}
}

// DetectChanges scans a unified diff for newly added route declarations and
// returns one ChangeRecord per matched decorator with a locatable handler.
// Only added lines are considered; a route that appears only in context or
// removed lines is never reported.
func (d *Detector) DetectChanges(diffText, filePath string) []ChangeRecord {
	var records []ChangeRecord
	lines := strings.Split(diffText, "\n")

	for i, line := range lines {
		if !strings.HasPrefix(line, "+") {
			continue
		}
		cleanLine := strings.TrimSpace(line[1:])

		for _, pattern := range routePatterns {
			match := pattern.FindStringSubmatch(cleanLine)
			if match == nil {
				continue
			}

			method := Method(strings.ToUpper(match[1]))

			path := PathUnknown
			if pm := quotedPathPattern.FindStringSubmatch(cleanLine); pm != nil {
				path = pm[1]
			}

			fn, ok := locateFunction(lines, i)
			if !ok {
				// Known gap: a decorator with no signature inside the
				// window is dropped, not reported partially.
				d.logger.Debug("Dropping decorator without handler in window", map[string]interface{}{
					"file":   filePath,
					"method": string(method),
					"path":   path,
				})
				break
			}

			records = append(records, ChangeRecord{
				Method:       method,
				Path:         path,
				FunctionName: fn.Name,
				FilePath:     filePath,
				CodeSnippet:  d.snippets.Extract(filePath, fn.Name),
				LineNumber:   fn.Line,
				ChangeType:   ChangeNew,
			})

			d.logger.Debug("Detected new endpoint", map[string]interface{}{
				"file":   filePath,
				"method": string(method),
				"path":   path,
				"func":   fn.Name,
			})
			break
		}
	}

	return records
}

// locatedFunction is a handler signature found near a decorator.
type locatedFunction struct {
	Name string
	Line int // 1-based position within the diff text
}

// locateFunction scans forward from the line after afterIndex for a
// function definition, skipping blank lines and further decorators. The
// scan gives up after the bounded window.
func locateFunction(lines []string, afterIndex int) (locatedFunction, bool) {
	end := afterIndex + locatorWindow
	if end > len(lines) {
		end = len(lines)
	}

	for i := afterIndex + 1; i < end; i++ {
		cleanLine := strings.TrimSpace(strings.TrimLeft(lines[i], "+- "))

		if cleanLine == "" || strings.HasPrefix(cleanLine, "@") {
			continue
		}

		if m := funcDefPattern.FindStringSubmatch(cleanLine); m != nil {
			return locatedFunction{Name: m[1], Line: i + 1}, true
		}
	}

	return locatedFunction{}, false
}
