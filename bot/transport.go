package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mkrell/vidify/relay"
)

// The bot is the relay pipeline's transport: artifacts and status text go
// back to the originating chat, quoting the triggering message.

func (b *Bot) SendVideo(_ context.Context, req relay.Request, path, caption string) error {
	v := tgbotapi.NewVideo(req.ChatID, tgbotapi.FilePath(path))
	v.Caption = caption
	v.ReplyToMessageID = req.MessageID
	v.SupportsStreaming = true
	_, err := b.api.Send(v)
	return err
}

func (b *Bot) SendAnimation(_ context.Context, req relay.Request, path, caption string) error {
	a := tgbotapi.NewAnimation(req.ChatID, tgbotapi.FilePath(path))
	a.Caption = caption
	a.ReplyToMessageID = req.MessageID
	_, err := b.api.Send(a)
	return err
}

func (b *Bot) ReplyText(_ context.Context, req relay.Request, text string) error {
	m := tgbotapi.NewMessage(req.ChatID, text)
	m.ReplyToMessageID = req.MessageID
	m.DisableWebPagePreview = true
	_, err := b.api.Send(m)
	return err
}
