package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docwatch/internal/errors"
	"docwatch/internal/logging"
)

// SlackNotifier posts a run summary to a Slack incoming webhook. The
// full drafts stay in the email; Slack just gets the headline.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *logging.Logger
}

// NewSlackNotifier returns a notifier for an incoming webhook URL.
func NewSlackNotifier(webhookURL string, logger *logging.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Send posts the summary attachment. A report with no records is a no-op.
func (n *SlackNotifier) Send(ctx context.Context, report *Report) error {
	if len(report.Records) == 0 {
		return nil
	}

	payload, err := formatSlack(report)
	if err != nil {
		return errors.New(errors.DeliveryFailed, "failed to format Slack payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return errors.New(errors.DeliveryFailed, "failed to build Slack request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "docwatch-webhook/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("Slack delivery failed", map[string]interface{}{
			"error": err.Error(),
		})
		return errors.New(errors.DeliveryFailed, "failed to post to Slack webhook", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		n.logger.Warn("Slack delivery rejected", map[string]interface{}{
			"statusCode": resp.StatusCode,
		})
		return errors.New(errors.DeliveryFailed, "Slack webhook rejected the payload", err)
	}

	n.logger.Info("Slack summary posted", map[string]interface{}{
		"endpoints": len(report.Records),
	})
	return nil
}

// formatSlack builds the incoming-webhook attachment payload.
func formatSlack(report *Report) ([]byte, error) {
	var lines []string
	for _, rec := range report.Records {
		lines = append(lines, fmt.Sprintf("`%s %s` (%s)", rec.Method, rec.Path, rec.FunctionName))
	}

	text := fmt.Sprintf(":memo: %d new API endpoint(s) detected between %s and %s\n%s",
		len(report.Records), report.FromRevision, report.ToRevision,
		strings.Join(lines, "\n"))

	payload := map[string]interface{}{
		"attachments": []map[string]interface{}{
			{
				"color":  "good",
				"text":   text,
				"ts":     report.GeneratedAt.Unix(),
				"footer": "docwatch",
			},
		},
	}
	return json.Marshal(payload)
}
