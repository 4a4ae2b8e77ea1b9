package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/DoseLine/internal/ai"
	"github.com/hray3182/DoseLine/internal/format"
	"github.com/hray3182/DoseLine/internal/models"
)

const confirmationTimeout = 2 * time.Minute

// pendingDraft is a parsed reminder waiting for the user to confirm.
type pendingDraft struct {
	Definition models.ReminderDefinition
	ExpiresAt  time.Time
}

func (h *Handlers) handleAIMessage(ctx context.Context, msg *tgbotapi.Message) {
	if h.ai == nil {
		h.sendMessage(msg.Chat.ID, "AI 功能尚未啟用，請使用 /add 新增提醒")
		return
	}

	now, _, err := h.svc.LocalNow(ctx, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, "get local time", err)
		return
	}

	draft, err := h.ai.ParseReminder(ctx, msg.Text, now)
	if err != nil {
		log.Printf("Failed to parse reminder: %v", err)
		h.sendMessage(msg.Chat.ID, "抱歉，我無法理解你的訊息。請試著用更清楚的方式描述，或使用 /help 查看可用指令。")
		return
	}

	def, err := draft.ToDefinition()
	if err != nil {
		reply := draft.Reply
		if reply == "" || !errors.Is(err, ai.ErrNotAReminder) {
			log.Printf("Rejected reminder draft: %v (raw: %s)", err, draft.RawResponse)
			reply = "我不太確定你想設定什麼提醒，可以說得更清楚一點嗎？"
		}
		h.sendMessage(msg.Chat.ID, reply)
		return
	}

	h.requestConfirmation(msg.Chat.ID, msg.From.ID, def, draft.Reply, now)
}

func (h *Handlers) requestConfirmation(chatID, userID int64, def models.ReminderDefinition, reply string, now time.Time) {
	h.pendingMu.Lock()
	h.pending[userID] = &pendingDraft{
		Definition: def,
		ExpiresAt:  now.Add(confirmationTimeout),
	}
	h.pendingMu.Unlock()

	var sb strings.Builder
	if reply != "" {
		sb.WriteString(reply)
		sb.WriteString("\n\n")
	}
	sb.WriteString(format.DefinitionLine(def))
	if def.Instructions != "" {
		fmt.Fprintf(&sb, "\n📝 %s", format.Escape(def.Instructions))
	}
	sb.WriteString("\n\n確認新增此提醒？")

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ 確認", fmt.Sprintf("confirm:%d", userID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ 取消", fmt.Sprintf("cancel:%d", userID)),
		),
	)
	if err := h.sendWithKeyboard(chatID, sb.String(), &keyboard); err != nil {
		log.Printf("Failed to send confirmation message: %v", err)
	}
}

func (h *Handlers) takePending(userID int64, now time.Time) (*pendingDraft, bool) {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()

	p, ok := h.pending[userID]
	delete(h.pending, userID)
	if !ok || now.After(p.ExpiresAt) {
		return nil, false
	}
	return p, true
}

func (h *Handlers) handleDraftCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, confirmed bool) {
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	pending, ok := h.takePending(callback.From.ID, h.svc.Now())
	if !ok {
		h.editMessageText(chatID, messageID, "⏰ 確認已過期")
		return
	}
	if !confirmed {
		h.editMessageText(chatID, messageID, "❌ 已取消操作")
		return
	}

	saved, err := h.svc.AddReminder(ctx, callback.From.ID, pending.Definition)
	if err != nil {
		h.replyError(chatID, "add reminder", err)
		return
	}
	h.editMessageText(chatID, messageID, "✅ 已新增提醒\n\n"+format.DefinitionLine(*saved))
}
