// Package notify delivers rendered ledger documents.
package notify

import (
	"context"
	"fmt"

	"fishledger/internal/domain/render"
	"fishledger/pkg/logger"
)

var _ render.Notifier = (*LogNotifier)(nil)

// LogNotifier renders the attachment and logs the delivery instead of sending it.
// It stands in for a mail or messenger gateway in development.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a notifier writing to log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithComponent("notifier")}
}

// Send implements render.Notifier.
func (n *LogNotifier) Send(ctx context.Context, recipient string, att render.Attachment) error {
	body, err := att.Render(ctx)
	if err != nil {
		return fmt.Errorf("render %s: %w", att.Name, err)
	}

	n.log.WithContext(ctx).Infow("document delivered",
		"recipient", recipient,
		"attachment", att.Name,
		"content_type", att.ContentType,
		"bytes", len(body),
	)
	return nil
}
