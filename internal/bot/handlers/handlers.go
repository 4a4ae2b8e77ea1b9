package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/DoseLine/internal/ai"
	"github.com/hray3182/DoseLine/internal/format"
	"github.com/hray3182/DoseLine/internal/history"
	"github.com/hray3182/DoseLine/internal/reminders"
)

// Sender is the part of *tgbotapi.BotAPI the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ReminderParser turns free text into a reminder draft.
type ReminderParser interface {
	ParseReminder(ctx context.Context, text string, now time.Time) (*ai.Draft, error)
}

type Handlers struct {
	api           Sender
	svc           *reminders.Service
	reporter      *history.Reporter
	ai            ReminderParser
	snoozeMinutes int

	actions *actionRegistry

	pendingMu sync.Mutex
	pending   map[int64]*pendingDraft
}

func New(api Sender, svc *reminders.Service, reporter *history.Reporter, parser ReminderParser, snoozeMinutes int) *Handlers {
	return &Handlers{
		api:           api,
		svc:           svc,
		reporter:      reporter,
		ai:            parser,
		snoozeMinutes: snoozeMinutes,
		actions:       newActionRegistry(),
		pending:       make(map[int64]*pendingDraft),
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "today":
		h.handleToday(ctx, msg)
	case "add":
		h.handleAdd(ctx, msg)
	case "reminders":
		h.handleReminderList(ctx, msg)
	case "delete":
		h.handleDelete(ctx, msg)
	case "report":
		h.handleReport(ctx, msg)
	case "sleep":
		h.handleSleep(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "未知指令，請使用 /help 查看可用指令")
	}
}

func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	h.handleAIMessage(ctx, msg)
}

func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Answer callback to remove loading state
	if _, err := h.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
	if callback.Message == nil {
		return
	}

	action, arg, ok := strings.Cut(callback.Data, ":")
	if !ok {
		return
	}

	switch action {
	case "confirm", "cancel":
		userID, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return
		}
		if callback.From.ID != userID {
			h.answerCallbackWithAlert(callback.ID, "這不是你的操作")
			return
		}
		h.handleDraftCallback(ctx, callback, action == "confirm")
	case actionTake, actionSnooze, actionSkip:
		h.handleInstanceCallback(ctx, callback, action, arg)
	}
}

func (h *Handlers) answerCallbackWithAlert(callbackID string, text string) {
	answer := tgbotapi.NewCallbackWithAlert(callbackID, text)
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback with alert: %v", err)
	}
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	parsed := format.Markdown(text)
	msg := tgbotapi.NewMessage(chatID, parsed.Text)
	msg.Entities = parsed.Entities
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) sendWithKeyboard(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	parsed := format.Markdown(text)
	msg := tgbotapi.NewMessage(chatID, parsed.Text)
	msg.Entities = parsed.Entities
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	_, err := h.api.Send(msg)
	return err
}

func (h *Handlers) editMessageText(chatID int64, messageID int, text string) {
	parsed := format.Markdown(text)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, parsed.Text)
	edit.Entities = parsed.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

// replyError logs err and tells the user something went wrong.
func (h *Handlers) replyError(chatID int64, what string, err error) {
	log.Printf("Failed to %s: %v", what, err)
	var text string
	switch {
	case errors.Is(err, reminders.ErrInvalidArgument):
		text = fmt.Sprintf("❌ %v", err)
	default:
		text = "操作失敗，請稍後再試"
	}
	h.sendMessage(chatID, text)
}

func (h *Handlers) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	text := fmt.Sprintf(`👋 你好 %s！

我是 DoseLine，你的用藥提醒助理。

我可以幫你：
⏰ 準時提醒服藥與保健品
💤 延後或跳過某一次服用
📊 統計每月的服藥遵從率

你可以直接用自然語言告訴我，例如：
• "每天早餐跟晚餐後吃維他命，吃兩週"
• "抗生素每 8 小時一次，從早上 8 點開始"

使用 /help 查看所有指令`, msg.From.FirstName)
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	text := `📖 *指令列表*

*今日*
/today [YYYY-MM-DD] - 查看當天的提醒

*提醒*
/add <HH:MM> <頻率> <標題> - 新增提醒
  頻率: daily, weekly, once, 8h, mon,wed,fri
/reminders - 查看所有提醒
/delete <編號> - 刪除提醒

*統計*
/report [YYYY-MM] - 查看月報告

*設定*
/sleep <HH:MM> <HH:MM> - 設定睡眠時段

💡 你也可以直接用自然語言告訴我！`
	h.sendMessage(msg.Chat.ID, text)
}
