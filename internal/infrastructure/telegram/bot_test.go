package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicsolve/internal/assistant"
)

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		Text: text,
	}}
}

func commandUpdate(command string) tgbotapi.Update {
	update := textUpdate(command)
	update.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return update
}

func TestHandleUpdateAnswersText(t *testing.T) {
	sender := &recordingSender{}
	bot := &AssistantBot{sender: sender}

	bot.handleUpdate(textUpdate("who do I call in an emergency"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Equal(t, assistant.Answer("emergency").Reply, sender.sent[0].Text)
}

func TestHandleUpdateStartGreets(t *testing.T) {
	sender := &recordingSender{}
	bot := &AssistantBot{sender: sender}

	bot.handleUpdate(commandUpdate("/start"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, assistant.Greet().Greeting)
}

func TestHandleUpdateIgnoresEmpty(t *testing.T) {
	sender := &recordingSender{}
	bot := &AssistantBot{sender: sender}

	bot.handleUpdate(tgbotapi.Update{})
	bot.handleUpdate(textUpdate("   "))

	assert.Empty(t, sender.sent)
}
