package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"docwatch/internal/config"
	"docwatch/internal/detect"
	"docwatch/internal/diffstat"
	"docwatch/internal/generate"
	"docwatch/internal/gitsource"
	"docwatch/internal/logging"
	"docwatch/internal/notify"
	"docwatch/internal/runlog"
)

var (
	checkFrom     string
	checkTo       string
	checkDryRun   bool
	checkLogLevel string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Detect new endpoints and send generated documentation",
	Long: `Diff the repository between two revisions, detect newly added FastAPI
endpoints, generate documentation and changelog drafts for each, and email
the result to the configured recipient.

Requires GEMINI_API_KEY, GMAIL_USER, GMAIL_PASSWORD and NOTIFICATION_EMAIL
in the environment. Missing credentials are the only fatal condition; a
missing revision or an unreachable generation API degrades to empty results
or deterministic fallback drafts.

Examples:
  # Compare the last commit against its parent (the defaults)
  docwatch check

  # Compare an explicit revision range
  docwatch check --from origin/main --to HEAD

  # Print the notification instead of sending it
  docwatch check --dry-run`,
	Run: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFrom, "from", "", "Base revision (default from config, HEAD^)")
	checkCmd.Flags().StringVar(&checkTo, "to", "", "Target revision (default from config, HEAD)")
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "Print the notification to stdout instead of sending it")
	checkCmd.Flags().StringVar(&checkLogLevel, "log-level", "", "Log level: debug, info, warn, or error")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(repoFlag)
	logger := newLogger(cfg, checkLogLevel)

	creds, err := config.LoadCredentials()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	from, to := cfg.Revisions.From, cfg.Revisions.To
	if checkFrom != "" {
		from = checkFrom
	}
	if checkTo != "" {
		to = checkTo
	}

	ctx := context.Background()
	run := runlog.NewRun(from, to)

	logger.Info("Starting documentation check", map[string]interface{}{
		"repo": repoFlag,
		"from": from,
		"to":   to,
	})

	records, additions, deletions, filesChanged := detectEndpoints(ctx, repoFlag, from, to, logger)
	run.FilesChanged = filesChanged
	run.EndpointsFound = len(records)

	if len(records) == 0 {
		logger.Info("No new API endpoints detected", nil)
		fmt.Println("No new API endpoints detected.")
		finishRun(run, logger)
		return
	}

	logger.Info("New endpoints detected", map[string]interface{}{
		"count": len(records),
	})

	gen := newGenerator(cfg, creds.GeminiAPIKey, logger)

	report := &notify.Report{
		FromRevision: from,
		ToRevision:   to,
		Records:      records,
		FilesChanged: filesChanged,
		Additions:    additions,
		Deletions:    deletions,
		GeneratedAt:  time.Now(),
	}

	date := time.Now().Format("2006-01-02")
	for _, rec := range records {
		fallback := generate.FallbackAPIReference(rec)
		docs, err := gen.APIReference(ctx, rec)
		if err != nil {
			docs = fallback
		}
		if docs == fallback {
			run.FallbacksUsed++
		}
		report.APIReferences = append(report.APIReferences, docs)

		entry, err := gen.ChangelogEntry(ctx, rec)
		if err != nil {
			entry = generate.FallbackChangelog(rec, date)
		}
		report.ChangelogEntries = append(report.ChangelogEntries, entry)
	}

	if checkDryRun {
		fmt.Println(notify.RenderEmailBody(report))
		finishRun(run, logger)
		return
	}

	run.Notification = runlog.NotifySent
	email := notify.NewEmailNotifier(
		cfg.Notify.SMTPHost, cfg.Notify.SMTPPort,
		creds.SMTPUser, creds.SMTPPassword, creds.NotificationEmail,
		logger,
	)
	if err := email.Send(ctx, report); err != nil {
		run.Notification = runlog.NotifyFailed
		fmt.Fprintf(os.Stderr, "Warning: email delivery failed: %v\n", err)
	}

	if cfg.Notify.SlackWebhookURL != "" {
		slack := notify.NewSlackNotifier(cfg.Notify.SlackWebhookURL, logger)
		if err := slack.Send(ctx, report); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Slack delivery failed: %v\n", err)
		}
	}

	finishRun(run, logger)

	fmt.Printf("Detected %d new endpoint(s); notification %s.\n", len(records), run.Notification)
}

// detectEndpoints walks the changed candidate files and collects endpoint
// records plus diff totals for the report.
func detectEndpoints(ctx context.Context, repoRoot, from, to string, logger *logging.Logger) (records []detect.ChangeRecord, additions, deletions, filesChanged int) {
	source := gitsource.NewSource(repoRoot, logger)
	detector := detect.NewDetector(repoRoot, logger)

	files := source.ChangedFiles(ctx, from, to)
	filesChanged = len(files)

	for _, file := range files {
		diff := source.FileDiff(ctx, file, from, to)
		if diff == "" {
			continue
		}

		if stats, err := diffstat.Parse(diff); err == nil {
			add, del := diffstat.Totals(stats)
			additions += add
			deletions += del
		}

		records = append(records, detector.DetectChanges(diff, file)...)
	}
	return records, additions, deletions, filesChanged
}

// newGenerator builds the Gemini client, honoring a prompt override file
// when one is configured or present at .docwatch/prompts.yaml.
func newGenerator(cfg *config.Config, apiKey string, logger *logging.Logger) *generate.Gemini {
	var prompts *generate.Prompts

	promptsPath := cfg.Generator.PromptsPath
	if promptsPath == "" {
		candidate := filepath.Join(stateDir(repoFlag), "prompts.yaml")
		if _, err := os.Stat(candidate); err == nil {
			promptsPath = candidate
		}
	}
	if promptsPath != "" {
		p, err := generate.LoadPrompts(promptsPath)
		if err != nil {
			logger.Warn("Failed to load prompt overrides, using defaults", map[string]interface{}{
				"path":  promptsPath,
				"error": err.Error(),
			})
		} else {
			prompts = p
		}
	}

	return generate.NewGemini(generate.Options{
		APIKey:     apiKey,
		Model:      cfg.Generator.Model,
		BaseURL:    cfg.Generator.BaseURL,
		MaxRetries: cfg.Generator.MaxRetries,
		Timeout:    time.Duration(cfg.Generator.TimeoutMs) * time.Millisecond,
		Prompts:    prompts,
	}, logger)
}

// finishRun stamps and persists the run record. Persistence failures are
// logged but never fail the check.
func finishRun(run *runlog.Run, logger *logging.Logger) {
	run.Complete()

	store, err := runlog.OpenStore(stateDir(repoFlag), logger)
	if err != nil {
		logger.Warn("Failed to open run database", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer store.Close()

	if err := store.RecordRun(run); err != nil {
		logger.Warn("Failed to record run", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
