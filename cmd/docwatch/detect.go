package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docwatch/internal/detect"
)

var (
	detectFrom     string
	detectTo       string
	detectFormat   string
	detectLogLevel string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect new endpoints without generating or sending anything",
	Long: `Run only the detection stage: diff the repository between two revisions
and print the newly added FastAPI endpoints. No credentials are required.

Examples:
  # Human-readable listing for the default range
  docwatch detect

  # JSON records for an explicit range
  docwatch detect --from origin/main --to HEAD --format json`,
	Run: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectFrom, "from", "", "Base revision (default from config, HEAD^)")
	detectCmd.Flags().StringVar(&detectTo, "to", "", "Target revision (default from config, HEAD)")
	detectCmd.Flags().StringVar(&detectFormat, "format", "human", "Output format: json or human")
	detectCmd.Flags().StringVar(&detectLogLevel, "log-level", "", "Log level: debug, info, warn, or error")

	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(repoFlag)
	logger := newLogger(cfg, detectLogLevel)

	from, to := cfg.Revisions.From, cfg.Revisions.To
	if detectFrom != "" {
		from = detectFrom
	}
	if detectTo != "" {
		to = detectTo
	}

	ctx := context.Background()
	records, additions, deletions, filesChanged := detectEndpoints(ctx, repoFlag, from, to, logger)

	if detectFormat == "json" {
		if records == nil {
			records = []detect.ChangeRecord{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding records: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Compared %s..%s: %d candidate file(s), +%d -%d\n",
		from, to, filesChanged, additions, deletions)

	if len(records) == 0 {
		fmt.Println("No new API endpoints detected.")
		return
	}

	fmt.Printf("New endpoints (%d):\n", len(records))
	for _, rec := range records {
		fmt.Printf("  %s %s\n", rec.Method, rec.Path)
		fmt.Printf("    function: %s\n", rec.FunctionName)
		fmt.Printf("    file:     %s:%d\n", rec.FilePath, rec.LineNumber)
	}
}
