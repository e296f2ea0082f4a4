package main

import (
	"github.com/spf13/cobra"

	"docwatch/internal/version"
)

var (
	// repoFlag is the CLI --repo flag value
	repoFlag string
)

var rootCmd = &cobra.Command{
	Use:   "docwatch",
	Short: "docwatch - documentation assistant for FastAPI services",
	Long: `docwatch inspects the git history of a FastAPI service, detects newly
added API endpoints between two revisions, drafts reference documentation and
changelog entries for them, and emails the drafts to the docs team.

It is designed to run as a CI step after merge; credentials are read from the
environment and never written to disk.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("docwatch version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", ".",
		"Path to the git repository to inspect")
}
