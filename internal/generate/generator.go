// Package generate turns change records into documentation drafts through
// a text-generation capability. The Gemini implementation retries with
// exponential backoff and degrades to deterministic fallback templates, so
// a generation outage never aborts a run.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docwatch/internal/detect"
	"docwatch/internal/logging"
)

// Generator drafts reference documentation and changelog entries for
// detected endpoints. Implementations must be safe to call sequentially
// for every record of a run.
type Generator interface {
	APIReference(ctx context.Context, rec detect.ChangeRecord) (string, error)
	ChangelogEntry(ctx context.Context, rec detect.ChangeRecord) (string, error)
}

// Token budgets per draft kind, matching the generation config the docs
// team tuned: enough for a full reference section, short for a changelog.
const (
	apiReferenceMaxTokens = 800
	changelogMaxTokens    = 300
	generationTemperature = 0.3
)

// retry behavior for the generateContent call
const (
	defaultMaxRetries = 3
	retryBaseDelay    = time.Second
	retryMaxDelay     = 5 * time.Second
)

// Options configures a Gemini generator.
type Options struct {
	APIKey         string
	Model          string        // e.g. "gemini-1.5-flash"
	BaseURL        string        // override for tests; default is the public API
	MaxRetries     int           // attempts per draft; default 3
	Timeout        time.Duration // per-request HTTP timeout
	RetryBaseDelay time.Duration // first backoff step; default 1s
	Prompts        *Prompts      // nil means built-in templates
	Now            func() time.Time
}

// Gemini generates drafts against the Gemini generateContent REST API.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	baseDelay  time.Duration
	prompts    *Prompts
	client     *http.Client
	logger     *logging.Logger
	now        func() time.Time
}

// NewGemini creates a Gemini generator.
func NewGemini(opts Options, logger *logging.Logger) *Gemini {
	if opts.Model == "" {
		opts.Model = "gemini-1.5-flash"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Prompts == nil {
		opts.Prompts = DefaultPrompts()
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = retryBaseDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Gemini{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		baseURL:    opts.BaseURL,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.RetryBaseDelay,
		prompts:    opts.Prompts,
		client:     &http.Client{Timeout: opts.Timeout},
		logger:     logger,
		now:        opts.Now,
	}
}

// APIReference drafts reference documentation for one endpoint.
func (g *Gemini) APIReference(ctx context.Context, rec detect.ChangeRecord) (string, error) {
	prompt, err := g.prompts.RenderAPIReference(rec)
	if err != nil {
		return FallbackAPIReference(rec), nil
	}

	text, ok := g.generate(ctx, prompt, apiReferenceMaxTokens)
	if !ok {
		g.logger.Warn("All generation attempts failed, using fallback documentation", map[string]interface{}{
			"method": string(rec.Method),
			"path":   rec.Path,
		})
		return FallbackAPIReference(rec), nil
	}
	return text, nil
}

// ChangelogEntry drafts a changelog entry for one endpoint.
func (g *Gemini) ChangelogEntry(ctx context.Context, rec detect.ChangeRecord) (string, error) {
	date := g.now().Format("2006-01-02")

	prompt, err := g.prompts.RenderChangelog(rec, date)
	if err != nil {
		return FallbackChangelog(rec, date), nil
	}

	text, ok := g.generate(ctx, prompt, changelogMaxTokens)
	if !ok {
		g.logger.Warn("All generation attempts failed, using fallback changelog", map[string]interface{}{
			"method": string(rec.Method),
			"path":   rec.Path,
		})
		return FallbackChangelog(rec, date), nil
	}
	return text, nil
}

// Wire types for the generateContent endpoint

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate performs the request with bounded retries and exponential
// backoff. Empty generated text counts as a failed attempt. The second
// return value is false when every attempt failed.
func (g *Gemini) generate(ctx context.Context, prompt string, maxTokens int) (string, bool) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     generationTemperature,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", false
	}

	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if attempt > 0 {
			delay := g.baseDelay * time.Duration(1<<uint(attempt-1))
			if delay > retryMaxDelay {
				delay = retryMaxDelay
			}

			select {
			case <-ctx.Done():
				return "", false
			case <-time.After(delay):
			}
		}

		text, err := g.doRequest(ctx, url, body)
		if err != nil {
			g.logger.Warn("Generation attempt failed", map[string]interface{}{
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
			continue
		}
		if text == "" {
			g.logger.Warn("Empty generation response", map[string]interface{}{
				"attempt": attempt + 1,
			})
			continue
		}
		return text, true
	}

	return "", false
}

func (g *Gemini) doRequest(ctx context.Context, url string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "docwatch/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var gr generateResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return "", fmt.Errorf("malformed response: %w", err)
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}

	var text string
	for _, p := range gr.Candidates[0].Content.Parts {
		text += p.Text
	}
	return strings.TrimSpace(text), nil
}
