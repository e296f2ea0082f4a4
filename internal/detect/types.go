// Package detect finds newly declared HTTP routes in unified diffs.
//
// The recognizer is a deliberate heuristic, not a parser: a line-pattern
// classifier over added diff lines plus a bounded forward scan for the
// handler signature. It has known false-negative windows (multi-line
// signatures, decorators more than nine lines from their function) and no
// awareness of nesting.
package detect

// Method is an HTTP method detected from a route decorator.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// ChangeType classifies how an endpoint changed. Only additions are
// detected; removed and context diff lines are never considered.
type ChangeType string

const (
	ChangeNew ChangeType = "new"
)

// PathUnknown is the sentinel path used when a decorator matched but no
// quoted route literal was present on its line.
const PathUnknown = "unknown"

// ChangeRecord is one detected new route and its handler metadata.
// A record is immutable once constructed: it is produced exactly once per
// matched decorator line and never merged or updated.
type ChangeRecord struct {
	Method       Method     `json:"method"`
	Path         string     `json:"path"`
	FunctionName string     `json:"functionName"`
	FilePath     string     `json:"filePath"`
	CodeSnippet  string     `json:"codeSnippet"`
	LineNumber   int        `json:"lineNumber"`
	ChangeType   ChangeType `json:"changeType"`
}
