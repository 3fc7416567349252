package bot

import (
	"context"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mkrell/vidify/config"
)

// A bot with no API connection panics on any send attempt, which makes it a
// convenient panic source for exercising the update-path recovery boundary.
func TestHandleUpdateRecoversPanic(t *testing.T) {
	b := &Bot{
		cfg:     &config.Config{},
		control: make(chan Signal, 1),
		log:     slog.Default(),
	}
	msg := &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: 5, Type: "private"},
		Text:      "/help",
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 5},
		},
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic escaped handleUpdate: %v", r)
		}
	}()
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func TestHandleUpdateIgnoresNonMessages(t *testing.T) {
	b := &Bot{
		cfg:     &config.Config{},
		control: make(chan Signal, 1),
		log:     slog.Default(),
	}
	b.handleUpdate(context.Background(), tgbotapi.Update{})
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{}})
}
