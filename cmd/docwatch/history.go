package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docwatch/internal/runlog"
)

var (
	historyLimit  int
	historyFormat string
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past check runs",
	Long: `List past check runs recorded in the local run database. Only run-level
metadata is stored; detected endpoints and generated drafts are not kept.`,
	Run: runHistory,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history as JSON",
	Long: `Write the full run history to a file as JSON, newest first. An output
path ending in .gz produces gzip-compressed output.

Examples:
  docwatch history export --output runs.json
  docwatch history export --output runs.json.gz`,
	Run: runHistoryExport,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show (0 for all)")
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format: json or human")
	historyExportCmd.Flags().StringVar(&historyOutput, "output", "", "Output file path (required)")

	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func openRunStore() *runlog.Store {
	cfg := mustLoadConfig(repoFlag)
	logger := newLogger(cfg, "")

	store, err := runlog.OpenStore(stateDir(repoFlag), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run database: %v\n", err)
		os.Exit(1)
	}
	return store
}

func runHistory(cmd *cobra.Command, args []string) {
	store := openRunStore()
	defer store.Close()

	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}

	if historyFormat == "json" {
		if runs == nil {
			runs = []*runlog.Run{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(runs); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding runs: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	for _, run := range runs {
		fmt.Printf("%s  %s..%s\n", run.StartedAt.Format("2006-01-02 15:04:05"), run.FromRevision, run.ToRevision)
		fmt.Printf("  files: %d  endpoints: %d  fallbacks: %d  notification: %s\n",
			run.FilesChanged, run.EndpointsFound, run.FallbacksUsed, run.Notification)
	}
}

func runHistoryExport(cmd *cobra.Command, args []string) {
	if historyOutput == "" {
		fmt.Fprintln(os.Stderr, "Error: --output path is required")
		os.Exit(1)
	}

	store := openRunStore()
	defer store.Close()

	if err := store.ExportFile(historyOutput); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting history: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Run history exported to %s\n", historyOutput)
}
