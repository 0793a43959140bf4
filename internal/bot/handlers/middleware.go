package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AllowedOnly creates a middleware that checks the sender against the staff
// allow-list. Anyone else gets a fixed rejection reply and no state is
// touched.
func AllowedOnly(deps HandlerDeps) tgbot.Middleware {
	allowed := make(map[int64]bool, len(deps.Config.Telegram.AllowedUserIDs))
	for _, id := range deps.Config.Telegram.AllowedUserIDs {
		allowed[id] = true
	}

	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}

			userID := update.Message.From.ID
			if !allowed[userID] {
				chatID := update.Message.Chat.ID
				log := deps.Logger.With("middleware", "AllowedOnly")
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)

				_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   deps.Config.Messages.NotAuthorized,
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
