package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	"github.com/slack-go/slack"
)

type SlackNotifier struct {
	client  *slack.Client
	channel string
	enabled bool
	log     *slog.Logger
}

func NewSlackNotifier(cfg internal.SlackConfig, log *slog.Logger) *SlackNotifier {
	n := &SlackNotifier{channel: cfg.Channel, enabled: cfg.Enabled, log: log}
	if cfg.Enabled {
		n.client = slack.New(cfg.Token)
	}
	return n
}

func (n *SlackNotifier) Post(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	if !n.enabled {
		logger.FromOr(ctx, n.log).Info("slack disabled, skipping post", "text", text)
		return nil
	}
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post to slack channel %s: %w", n.channel, err)
	}
	return nil
}
