package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
)

// Notifier posts formatted summaries to the staff channel. Delivery is best
// effort: a failed post is reported to the caller and logged, but domain
// state already committed in memory is never rolled back.
type Notifier struct {
	bot       *tgbot.Bot
	channelID int64
	logger    *slog.Logger
}

// NewNotifier creates a notifier posting to the given channel. The Telegram
// client is attached later with Bind, after it has been constructed.
func NewNotifier(channelID int64, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{
		channelID: channelID,
		logger:    logger.With("component", "notifier"),
	}
}

// Bind attaches the Telegram client used for delivery.
func (n *Notifier) Bind(bot *tgbot.Bot) {
	n.bot = bot
}

// Broadcast posts text to the staff channel.
func (n *Notifier) Broadcast(ctx context.Context, text string) error {
	if n.bot == nil || n.channelID == 0 {
		n.logger.DebugContext(ctx, "Notification skipped, no channel configured")
		return nil
	}

	_, err := n.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: n.channelID,
		Text:   text,
	})
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to deliver channel notification",
			"channel_id", n.channelID, "error", err)
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	n.logger.DebugContext(ctx, "Notification delivered", "channel_id", n.channelID)
	return nil
}
