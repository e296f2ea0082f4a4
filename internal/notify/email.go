package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"docwatch/internal/errors"
	"docwatch/internal/logging"
)

// EmailNotifier delivers reports as plain-text email over SMTP with
// STARTTLS. Defaults are tuned for Gmail app passwords.
type EmailNotifier struct {
	host      string
	port      int
	username  string
	password  string
	recipient string
	logger    *logging.Logger

	// sendMail is swappable for tests; defaults to smtp.SendMail,
	// which upgrades to TLS when the server advertises STARTTLS.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier returns a notifier for a single recipient.
func NewEmailNotifier(host string, port int, username, password, recipient string, logger *logging.Logger) *EmailNotifier {
	return &EmailNotifier{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		recipient: recipient,
		logger:    logger,
		sendMail:  smtp.SendMail,
	}
}

// Send delivers the report. A report with no records is a no-op.
func (n *EmailNotifier) Send(ctx context.Context, report *Report) error {
	if len(report.Records) == 0 {
		n.logger.Info("No endpoint changes, skipping email", nil)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := n.buildMessage(report)
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.host)

	if err := n.sendMail(addr, auth, n.username, []string{n.recipient}, msg); err != nil {
		n.logger.Warn("Email delivery failed", map[string]interface{}{
			"host":      n.host,
			"recipient": n.recipient,
			"error":     err.Error(),
		})
		return errors.New(errors.DeliveryFailed, "failed to send notification email", err)
	}

	n.logger.Info("Documentation notification sent", map[string]interface{}{
		"recipient": n.recipient,
		"endpoints": len(report.Records),
	})
	return nil
}

// buildMessage assembles the RFC 5322 message with headers.
func (n *EmailNotifier) buildMessage(report *Report) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.username)
	fmt.Fprintf(&b, "To: %s\r\n", n.recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", Subject(report))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(RenderEmailBody(report))
	return []byte(b.String())
}
