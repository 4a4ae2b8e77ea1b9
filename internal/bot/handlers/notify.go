package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/hray3182/DoseLine/internal/format"
	"github.com/hray3182/DoseLine/internal/models"
)

// Dispatch sends a due instance with take/snooze/skip buttons. Private
// chats share the user's id, so userID doubles as the chat id.
func (h *Handlers) Dispatch(ctx context.Context, userID int64, inst models.Instance) error {
	var sb strings.Builder
	sb.WriteString("⏰ *服藥提醒*\n\n")
	sb.WriteString(format.InstanceLine(inst))
	if inst.Status == models.StatusSnoozed {
		sb.WriteString("\n(延後的提醒)")
	}

	keyboard := h.instanceKeyboard(userID, inst)
	if err := h.sendWithKeyboard(userID, sb.String(), &keyboard); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	return nil
}

// Summary sends the day's plan.
func (h *Handlers) Summary(ctx context.Context, userID int64, date string, insts []models.Instance) error {
	text := "☀️ 早安！\n\n" + format.DayList(date, insts)
	if err := h.sendWithKeyboard(userID, text, nil); err != nil {
		return fmt.Errorf("failed to send summary: %w", err)
	}
	return nil
}
