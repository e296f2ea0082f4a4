// Package notify delivers generated documentation drafts to reviewers.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docwatch/internal/detect"
)

// Report carries everything a single check run produced. It is assembled
// once and handed to each configured notifier.
type Report struct {
	FromRevision     string
	ToRevision       string
	Records          []detect.ChangeRecord
	APIReferences    []string // parallel to Records
	ChangelogEntries []string // parallel to Records
	FilesChanged     int
	Additions        int
	Deletions        int
	GeneratedAt      time.Time
}

// Notifier delivers a report to one channel.
type Notifier interface {
	Send(ctx context.Context, report *Report) error
}

const sectionRule = "======================================================================"
const contentRule = "----------------------------------------"

// Subject returns the email subject line for a report.
func Subject(report *Report) string {
	return fmt.Sprintf("API Documentation Update Required - %d new endpoint(s)", len(report.Records))
}

// RenderEmailBody renders the plain-text notification for a report. The
// drafts are embedded verbatim so reviewers can copy them straight into
// the docs tool.
func RenderEmailBody(report *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "API DOCUMENTATION UPDATE REQUIRED\n\n")
	fmt.Fprintf(&b, "Hi Team,\n\n")
	fmt.Fprintf(&b, "%d new API endpoint(s) detected between %s and %s. Documentation has been generated automatically.\n\n",
		len(report.Records), report.FromRevision, report.ToRevision)

	b.WriteString("DETECTED CHANGES:\n")
	for i, rec := range report.Records {
		fmt.Fprintf(&b, "\n%d. %s %s\n", i+1, rec.Method, rec.Path)
		fmt.Fprintf(&b, "   Function: %s\n", rec.FunctionName)
		fmt.Fprintf(&b, "   File: %s\n", rec.FilePath)
	}

	b.WriteString("\n" + sectionRule + "\n")
	b.WriteString("GENERATED DOCUMENTATION:\n")
	b.WriteString(sectionRule + "\n\n")

	for i, draft := range report.APIReferences {
		fmt.Fprintf(&b, "UPDATE #%d: API REFERENCE DOCUMENTATION\n\n", i+1)
		b.WriteString("WHERE TO ADD: API Reference section of the docs\n")
		b.WriteString("ACTION: Copy the markdown below and add to the page\n\n")
		b.WriteString("CONTENT TO ADD:\n")
		b.WriteString(contentRule + "\n")
		b.WriteString(draft + "\n")
		b.WriteString(contentRule + "\n\n")
	}

	b.WriteString("CHANGELOG UPDATE\n\n")
	b.WriteString("WHERE TO ADD: Changelog page\n")
	b.WriteString("ACTION: Add to the TOP of the changelog (most recent first)\n\n")
	b.WriteString("CONTENT TO ADD:\n")
	b.WriteString(contentRule + "\n")
	for _, entry := range report.ChangelogEntries {
		b.WriteString(entry + "\n\n")
	}
	b.WriteString(contentRule + "\n\n")

	fmt.Fprintf(&b, "DIFF SUMMARY: %d file(s) changed, +%d -%d\n\n",
		report.FilesChanged, report.Additions, report.Deletions)

	b.WriteString("NEXT STEPS:\n")
	b.WriteString("1. Review the generated documentation above\n")
	b.WriteString("2. Copy-paste the sections into the docs tool\n")
	b.WriteString("3. Make any necessary edits for accuracy\n")
	b.WriteString("4. Reply to this email when complete\n\n")

	b.WriteString("Generated by docwatch\n")
	fmt.Fprintf(&b, "Time: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	return b.String()
}
