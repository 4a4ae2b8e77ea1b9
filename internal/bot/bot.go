package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/DoseLine/internal/ai"
	"github.com/hray3182/DoseLine/internal/bot/handlers"
	"github.com/hray3182/DoseLine/internal/history"
	"github.com/hray3182/DoseLine/internal/reminders"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
}

// New connects to Telegram. aiClient may be nil, in which case free text
// is answered with a hint to use /add.
func New(token string, svc *reminders.Service, reporter *history.Reporter, aiClient *ai.Client, snoozeMinutes int) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	var parser handlers.ReminderParser
	if aiClient != nil {
		parser = aiClient
	}

	return &Bot{
		api:      api,
		handlers: handlers.New(api, svc, reporter, parser, snoozeMinutes),
	}, nil
}

// Handlers exposes the handlers so the scheduler can dispatch through them.
func (b *Bot) Handlers() *handlers.Handlers {
	return b.handlers
}

func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handlers.HandleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if update.Message.IsCommand() {
		b.handlers.HandleCommand(ctx, update.Message)
		return
	}

	b.handlers.HandleMessage(ctx, update.Message)
}
