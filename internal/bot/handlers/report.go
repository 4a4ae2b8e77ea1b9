package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/DoseLine/internal/format"
	"github.com/hray3182/DoseLine/internal/history"
)

func (h *Handlers) handleReport(ctx context.Context, msg *tgbotapi.Message) {
	now, _, err := h.svc.LocalNow(ctx, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, "get local time", err)
		return
	}

	month := strings.TrimSpace(msg.CommandArguments())
	if month == "" {
		month = now.Format("2006-01")
	}
	from, to, err := history.MonthRange(month)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "月份格式錯誤，請使用 YYYY-MM")
		return
	}

	report, err := h.reporter.Build(ctx, msg.From.ID, from, to, now)
	if err != nil {
		h.replyError(msg.Chat.ID, "build report", err)
		return
	}
	h.sendMessage(msg.Chat.ID, format.ReportText(report))
}

func (h *Handlers) handleSleep(ctx context.Context, msg *tgbotapi.Message) {
	parts := strings.Fields(msg.CommandArguments())
	if len(parts) == 0 {
		settings, err := h.svc.Settings(ctx, msg.From.ID)
		if err != nil {
			h.replyError(msg.Chat.ID, "get settings", err)
			return
		}
		s := settings.Settings.WithDefaults()
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("😴 目前睡眠時段: `%s` - `%s`\n用法: /sleep <HH:MM> <HH:MM>", s.SleepStart, s.SleepEnd))
		return
	}
	if len(parts) != 2 {
		h.sendMessage(msg.Chat.ID, "用法: /sleep <HH:MM> <HH:MM>\n例如: /sleep 23:00 07:00")
		return
	}

	if err := h.svc.SetSleepWindow(ctx, msg.From.ID, parts[0], parts[1]); err != nil {
		h.replyError(msg.Chat.ID, "set sleep window", err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("😴 睡眠時段已設定為 `%s` - `%s`", parts[0], parts[1]))
}
