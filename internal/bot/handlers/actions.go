package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/hray3182/DoseLine/internal/format"
	"github.com/hray3182/DoseLine/internal/models"
)

const (
	actionTake   = "take"
	actionSnooze = "snooze"
	actionSkip   = "skip"

	actionTTL = 48 * time.Hour
)

// instanceRef is what an inline button acts on. Telegram limits callback
// data to 64 bytes, so buttons carry a token that maps back to it.
type instanceRef struct {
	UserID      int64
	ReminderID  models.ID
	InstanceKey string
	Date        string
	UniqueID    string
	ExpiresAt   time.Time
}

type actionRegistry struct {
	mu    sync.Mutex
	items map[string]instanceRef
}

func newActionRegistry() *actionRegistry {
	return &actionRegistry{items: make(map[string]instanceRef)}
}

func (r *actionRegistry) put(ref instanceRef, now time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, item := range r.items {
		if now.After(item.ExpiresAt) {
			delete(r.items, token)
		}
	}
	token := uuid.NewString()
	ref.ExpiresAt = now.Add(actionTTL)
	r.items[token] = ref
	return token
}

func (r *actionRegistry) get(token string, now time.Time) (instanceRef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.items[token]
	if !ok || now.After(ref.ExpiresAt) {
		return instanceRef{}, false
	}
	return ref, true
}

// instanceKeyboard builds take/snooze/skip buttons for one instance.
func (h *Handlers) instanceKeyboard(userID int64, inst models.Instance) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(h.instanceRow(userID, inst, ""))
}

func (h *Handlers) instanceRow(userID int64, inst models.Instance, label string) []tgbotapi.InlineKeyboardButton {
	token := h.actions.put(instanceRef{
		UserID:      userID,
		ReminderID:  inst.SourceReminder.ID,
		InstanceKey: inst.InstanceKey,
		Date:        inst.Date,
		UniqueID:    inst.UniqueID,
	}, h.svc.Now())

	take := "✅ 已服用"
	if label != "" {
		take = "✅ " + label
	}
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(take, actionTake+":"+token),
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("💤 %d 分", h.snoozeMinutes), actionSnooze+":"+token),
		tgbotapi.NewInlineKeyboardButtonData("⏭ 跳過", actionSkip+":"+token),
	)
}

func (h *Handlers) handleInstanceCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, action, token string) {
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	ref, ok := h.actions.get(token, h.svc.Now())
	if !ok {
		h.editMessageText(chatID, messageID, "⏰ 按鈕已過期，請使用 /today 重新操作")
		return
	}
	if callback.From.ID != ref.UserID {
		h.answerCallbackWithAlert(callback.ID, "這不是你的操作")
		return
	}

	var (
		err  error
		verb string
	)
	switch action {
	case actionTake:
		err = h.svc.LogReminderStatus(ctx, ref.UserID, ref.ReminderID, ref.InstanceKey, models.StatusTaken)
		verb = "已記錄服用"
	case actionSnooze:
		err = h.svc.SnoozeReminder(ctx, ref.UserID, ref.ReminderID, ref.InstanceKey, h.snoozeMinutes)
		verb = fmt.Sprintf("已延後 %d 分鐘", h.snoozeMinutes)
	case actionSkip:
		err = h.svc.LogReminderStatus(ctx, ref.UserID, ref.ReminderID, ref.InstanceKey, models.StatusMissed)
		verb = "已跳過"
	}
	if err != nil {
		h.replyError(chatID, action+" instance", err)
		return
	}

	text := verb
	if inst, err := h.svc.Find(ctx, ref.UserID, ref.Date, ref.UniqueID); err == nil {
		text = fmt.Sprintf("%s\n\n%s", verb, format.InstanceLine(*inst))
	}
	h.editMessageText(chatID, messageID, text)
}
