package generate

import (
	"bytes"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"docwatch/internal/detect"
)

// promptData is the view passed to prompt templates.
type promptData struct {
	Method       string
	Path         string
	FunctionName string
	FilePath     string
	Service      string
	CodeSnippet  string
	SnippetHead  string // bounded excerpt for the changelog prompt
	Date         string
}

// Default prompt templates. The docs prompt pins an exact output format so
// the drafts can be copy-pasted into the docs tool without restructuring.
const defaultAPIReferencePrompt = `Generate complete API documentation for this FastAPI endpoint:

**Endpoint:** {{.Method}} {{.Path}}
**Function:** {{.FunctionName}}
**Service:** {{.Service}}
**File:** {{.FilePath}}

**Code:**
` + "```python\n{{.CodeSnippet}}\n```" + `

Generate documentation in this EXACT format:

## {{.Method}} {{.Path}}

**Description:** [Brief 1-2 sentence description of what this endpoint does]

**Parameters:**
- ` + "`parameter_name`" + ` (type): Description of parameter

**Request Example:**
` + "```json\n{\n  \"example\": \"request_data\"\n}\n```" + `

**Response Example:**
` + "```json\n{\n  \"example\": \"response_data\"\n}\n```" + `

**Error Responses:**
- ` + "`400 Bad Request`" + `: Invalid request data
- ` + "`404 Not Found`" + `: Resource not found
- ` + "`422 Unprocessable Entity`" + `: Validation errors

**Notes:**
- Any important implementation details
- Related endpoints or functionality

Make it professional, concise, and developer-friendly. Base the content on the actual code provided.`

const defaultChangelogPrompt = `Generate a changelog entry for this new API endpoint:

**Date:** {{.Date}}
**Endpoint:** {{.Method}} {{.Path}}
**Service:** {{.Service}}
**Function:** {{.FunctionName}}

**Code Context:**
` + "```python\n{{.SnippetHead}}\n```" + `

Format as:

### {{.Date}}

#### New Features
- **{{.Service}} service**: Added ` + "`{{.Method}} {{.Path}}`" + ` endpoint
  - [Brief description of what it does]
  - [Who would use this and why]

#### Technical Details
- New endpoint: ` + "`{{.Method}} {{.Path}}`" + `
- Function: ` + "`{{.FunctionName}}`" + `
- Service: {{.Service}}

Keep it concise and user-focused.`

// Prompts holds the two prompt templates used per change record.
type Prompts struct {
	apiReference *template.Template
	changelog    *template.Template
}

// promptsFile is the on-disk YAML override shape.
type promptsFile struct {
	APIReference string `yaml:"apiReference"`
	Changelog    string `yaml:"changelog"`
}

// DefaultPrompts returns the built-in prompt templates.
func DefaultPrompts() *Prompts {
	p, err := newPrompts(defaultAPIReferencePrompt, defaultChangelogPrompt)
	if err != nil {
		// Built-in templates are compile-time constants; a parse failure
		// here is a programming error.
		panic(err)
	}
	return p
}

// LoadPrompts reads template overrides from a YAML file. An empty field
// keeps the corresponding built-in template.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pf promptsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, err
	}

	apiRef := defaultAPIReferencePrompt
	if pf.APIReference != "" {
		apiRef = pf.APIReference
	}
	changelog := defaultChangelogPrompt
	if pf.Changelog != "" {
		changelog = pf.Changelog
	}

	return newPrompts(apiRef, changelog)
}

func newPrompts(apiRef, changelog string) (*Prompts, error) {
	apiTmpl, err := template.New("apiReference").Parse(apiRef)
	if err != nil {
		return nil, err
	}
	clTmpl, err := template.New("changelog").Parse(changelog)
	if err != nil {
		return nil, err
	}
	return &Prompts{apiReference: apiTmpl, changelog: clTmpl}, nil
}

// RenderAPIReference renders the docs prompt for one record.
func (p *Prompts) RenderAPIReference(rec detect.ChangeRecord) (string, error) {
	return render(p.apiReference, newPromptData(rec, ""))
}

// RenderChangelog renders the changelog prompt for one record.
func (p *Prompts) RenderChangelog(rec detect.ChangeRecord, date string) (string, error) {
	return render(p.changelog, newPromptData(rec, date))
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const snippetHeadLimit = 300

func newPromptData(rec detect.ChangeRecord, date string) promptData {
	head := rec.CodeSnippet
	if len(head) > snippetHeadLimit {
		head = head[:snippetHeadLimit] + "..."
	}
	return promptData{
		Method:       string(rec.Method),
		Path:         rec.Path,
		FunctionName: rec.FunctionName,
		FilePath:     rec.FilePath,
		Service:      ServiceName(rec.FilePath),
		CodeSnippet:  rec.CodeSnippet,
		SnippetHead:  head,
		Date:         date,
	}
}

// ServiceName derives a human service name from a file path: the segment
// after a "services" directory with its -service/_service suffix removed,
// or "api" when the path has no services segment.
func ServiceName(filePath string) string {
	parts := strings.Split(filePath, "/")
	for i, part := range parts {
		if part == "services" && i+1 < len(parts) {
			service := parts[i+1]
			service = strings.TrimSuffix(service, "-service")
			service = strings.TrimSuffix(service, "_service")
			return service
		}
	}
	return "api"
}
