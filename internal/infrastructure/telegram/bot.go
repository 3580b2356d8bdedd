// Package telegram serves the citizen assistant over a Telegram bot.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"civicsolve/internal/assistant"
	"civicsolve/pkg/logger"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type AssistantBot struct {
	api    *tgbotapi.BotAPI
	sender sender
}

func NewAssistantBot(token string) (*AssistantBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	api.Debug = false
	logger.Info("Telegram assistant authorized as %s", api.Self.UserName)

	return &AssistantBot{api: api, sender: api}, nil
}

// Run long-polls for updates until ctx is cancelled.
func (b *AssistantBot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

func (b *AssistantBot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	var text string

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start", "help":
			g := assistant.Greet()
			text = g.Greeting + "\n\nYou can ask me about:\n• " + strings.Join(g.Suggestions, "\n• ")
		default:
			text = assistant.Answer(update.Message.CommandArguments()).Reply
		}
	} else {
		content := update.Message.Text
		if content == "" {
			content = update.Message.Caption
		}
		if strings.TrimSpace(content) == "" {
			return
		}
		text = assistant.Answer(content).Reply
	}

	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Error("Failed to send telegram reply to chat %d: %v", chatID, err)
	}
}
