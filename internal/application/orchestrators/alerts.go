package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"polyglot/internal/adapters/email"
	"polyglot/internal/domain/gdpr"
)

// AlertNotifier sends operational alerts by email. Delivery is best
// effort: a missed alert never changes a webhook outcome, and there is no
// retry queue behind it. The audit trail remains the durable record.
type AlertNotifier struct {
	Sender email.Sender
	From   string
	To     string
}

// NotifyRedactionFailure emails ops about a redaction that left data behind.
func (n AlertNotifier) NotifyRedactionFailure(ctx context.Context, shopDomain string, requestType gdpr.RequestType, report RedactionReport) {
	if n.Sender == nil || n.To == "" {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Redaction incomplete\n\n")
	fmt.Fprintf(&b, "Shop: `%s`\n\nRequest type: `%s`\n\n", shopDomain, requestType)
	fmt.Fprintf(&b, "Step outcomes:\n\n")
	for _, step := range report.Steps {
		if step.Err != nil {
			fmt.Fprintf(&b, "- **%s: failed** (%v)\n", step.Entity, step.Err)
		} else {
			fmt.Fprintf(&b, "- %s: %d rows deleted\n", step.Entity, step.Deleted)
		}
	}
	fmt.Fprintf(&b, "\nManual remediation is required for the failed steps. The audit trail holds the matching record.\n")

	html, err := email.RenderHTML(b.String())
	if err != nil {
		slog.Error("alert_render_failed", "shop_domain", shopDomain, "error", err)
		return
	}

	_, err = n.Sender.Send(ctx, email.SendRequest{
		To:      []string{n.To},
		From:    n.From,
		Subject: fmt.Sprintf("Redaction incomplete for %s", shopDomain),
		HTML:    html,
	})
	if err != nil {
		slog.Error("alert_send_failed", "shop_domain", shopDomain, "error", err)
	}
}
