// Package bot is the Telegram adapter: it long-polls for updates, routes
// commands, turns URL-bearing messages into relay requests, and implements
// the relay transport for deliveries back to chat.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mkrell/vidify/config"
	"github.com/mkrell/vidify/relay"
)

// Signal is a lifecycle request raised by an owner command and observed by
// main over the control channel.
type Signal int

const (
	SignalShutdown Signal = iota + 1
	SignalRestart
)

func (s Signal) String() string {
	if s == SignalRestart {
		return "restart"
	}
	return "shutdown"
}

type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	pipeline *relay.Pipeline
	control  chan Signal
	log      *slog.Logger
}

// New connects to the Telegram API and returns the bot. The pipeline is
// attached afterwards because it needs the bot as its transport.
func New(cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	return &Bot{
		api:     api,
		cfg:     cfg,
		control: make(chan Signal, 1),
		log:     slog.Default().With(slog.String("component", "bot")),
	}, nil
}

func (b *Bot) AttachPipeline(p *relay.Pipeline) { b.pipeline = p }

// Control delivers at most one lifecycle signal; main acts on the first.
func (b *Bot) Control() <-chan Signal { return b.control }

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.log.Info("bot connected", slog.String("username", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	// Recovery boundary for the inline update path (routing, URL extraction,
	// replies); batch goroutines carry their own via reportPanic.
	defer func() {
		if r := recover(); r != nil {
			b.reportRecovered(r, msg.Chat.ID, msg.MessageID)
		}
	}()

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.replyTo(msg, helpText)
		case "shutdown":
			b.lifecycle(msg, SignalShutdown)
		case "restart":
			b.lifecycle(msg, SignalRestart)
		case "vidify":
			b.dispatch(ctx, msg, relay.KindVideo)
		case "gifify":
			b.dispatch(ctx, msg, relay.KindAnimation)
		default:
			b.log.Debug("ignoring unknown command", slog.String("command", msg.Command()))
		}
		return
	}

	// Implicit trigger: a plain URL in a private chat converts in video mode.
	if msg.Chat.IsPrivate() && len(collectURLs(msg)) > 0 {
		b.dispatch(ctx, msg, relay.KindVideo)
	}
}

const noURLsText = "Unable to find any URLs to convert in your message or the replied-to message. " +
	"If this is a private group, I probably can't see the replied-to message."

// dispatch turns one message into a relay request and runs it on its own
// goroutine. The pipeline's semaphore bounds how many run at once.
func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message, kind relay.Kind) {
	urls := collectURLs(msg)
	if len(urls) == 0 {
		b.replyTo(msg, noURLsText)
		return
	}

	req := relay.Request{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
		URLs:      urls,
		Kind:      kind,
	}
	b.log.Info("dispatching batch",
		slog.Int("message_id", msg.MessageID),
		slog.String("mode", kind.String()),
		slog.String("urls", strings.Join(urls, ", ")))

	go func() {
		defer b.reportPanic(req)
		b.pipeline.Handle(ctx, req)
	}()
}

// lifecycle handles owner-only shutdown/restart commands. Anyone else is
// logged and ignored.
func (b *Bot) lifecycle(msg *tgbotapi.Message, sig Signal) {
	if !b.isOwner(msg.From) {
		from := "unknown user"
		if msg.From != nil {
			from = fmt.Sprintf("user %d", msg.From.ID)
		}
		b.log.Info("lifecycle command ignored", slog.String("signal", sig.String()), slog.String("from", from))
		return
	}

	note := "Shutting down"
	if sig == SignalRestart {
		note = "Restarting"
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(b.cfg.OwnerID, note)); err != nil {
		b.log.Warn("failed to notify owner", slog.Any("err", err))
	}

	select {
	case b.control <- sig:
	default:
		// A signal is already pending; main will act on it.
	}
}

// isOwner reports whether the sender is the configured owner. An unset owner
// id disables lifecycle commands entirely.
func (b *Bot) isOwner(from *tgbotapi.User) bool {
	return from != nil && b.cfg.OwnerID != 0 && from.ID == b.cfg.OwnerID
}

// reportPanic is the recovery boundary for batch goroutines.
func (b *Bot) reportPanic(req relay.Request) {
	if r := recover(); r != nil {
		b.reportRecovered(r, req.ChatID, req.MessageID)
	}
}

// reportRecovered logs a recovered panic, sends the owner the stack, and
// gives the user a generic acknowledgment.
func (b *Bot) reportRecovered(r any, chatID int64, messageID int) {
	b.log.Error("panic recovered",
		slog.Any("panic", r),
		slog.Int64("chat_id", chatID),
		slog.Int("message_id", messageID))

	if b.api == nil {
		return
	}
	if b.cfg.OwnerID != 0 {
		report := fmt.Sprintf("panic handling message %d in chat %d: %v\n\n%s",
			messageID, chatID, r, debug.Stack())
		if len(report) > 4000 {
			report = report[:4000]
		}
		if _, err := b.api.Send(tgbotapi.NewMessage(b.cfg.OwnerID, report)); err != nil {
			b.log.Warn("failed to deliver panic report", slog.Any("err", err))
		}
	}

	ack := tgbotapi.NewMessage(chatID, "Something went wrong processing your message.")
	ack.ReplyToMessageID = messageID
	if _, err := b.api.Send(ack); err != nil {
		b.log.Warn("failed to send panic acknowledgment", slog.Any("err", err))
	}
}

func (b *Bot) replyTo(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	reply.DisableWebPagePreview = true
	if _, err := b.api.Send(reply); err != nil {
		b.log.Warn("failed to send reply", slog.Int("message_id", msg.MessageID), slog.Any("err", err))
	}
}
